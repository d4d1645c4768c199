package compiler

import (
	"github.com/ramsaycarslaw/mt/internal/bytecode"
	"github.com/ramsaycarslaw/mt/internal/token"
)

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, ErrExpectedClassName, "expected class name")
	className := c.sh.prev.Lexeme
	nameConst := c.identifierConstant(className)
	c.declareLocal(className)

	c.emitOpByte(bytecode.OpClass, nameConst)
	c.defineVariable(nameConst)

	cc := &classCtx{enclosing: c.cc}
	c.cc = cc

	if c.match(token.LESS) {
		c.consume(token.IDENT, ErrExpectedSuperclassName, "expected superclass name")
		superName := c.sh.prev.Lexeme
		if superName == className {
			c.error(ErrSelfInheritance, "a class can't inherit from itself")
		}
		c.namedVariable(superName, false)

		c.beginScope()
		c.addLocal("super")
		c.markInitialized()

		c.namedVariable(className, false)
		c.emitOp(bytecode.OpInherit)
		cc.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LBRACE, ErrExpectedLBrace, "expected '{' before class body")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, ErrExpectedRBrace, "expected '}' after class body")
	c.emitOp(bytecode.OpPop) // the class value pushed for OP_METHOD targeting

	if cc.hasSuperclass {
		c.endScope()
	}
	c.cc = cc.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENT, ErrExpectedMethodName, "expected method name")
	name := c.sh.prev.Lexeme
	nameConst := c.identifierConstant(name)

	fnType := TypeMethod
	if name == "init" {
		fnType = TypeInitializer
	}
	c.function(fnType)
	c.emitOpByte(bytecode.OpMethod, nameConst)
}
