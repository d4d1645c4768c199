package compiler

import (
	"github.com/ramsaycarslaw/mt/internal/bytecode"
	"github.com/ramsaycarslaw/mt/internal/token"
	"github.com/ramsaycarslaw/mt/internal/value"
)

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.sh.advance()
	prefix := getRule(c.sh.prev.Kind).prefix
	if prefix == nil {
		c.error(ErrExpectedExpression, "expected expression")
		return
	}
	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.sh.current.Kind).prec {
		c.sh.advance()
		infix := getRule(c.sh.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && (c.match(token.EQUAL) || c.isCompoundAssignToken()) {
		c.error(ErrInvalidAssignment, "invalid assignment target")
	}
}

func (c *Compiler) isCompoundAssignToken() bool {
	switch c.sh.current.Kind {
	case token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL,
		token.CARET_EQUAL, token.PERCENT_EQUAL:
		c.sh.advance()
		return true
	}
	return false
}

// --- literals ---------------------------------------------------------

func (c *Compiler) number(canAssign bool) {
	c.emitConstant(value.Number(parseNumber(c.sh.prev.Lexeme)))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	c.emitConstant(value.FromObj(c.internString(c.sh.prev.Lexeme)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.sh.prev.Kind {
	case token.TRUE:
		c.emitOp(bytecode.OpTrue)
	case token.FALSE:
		c.emitOp(bytecode.OpFalse)
	case token.NIL:
		c.emitOp(bytecode.OpNil)
	}
}

// grouping handles both a parenthesized expression and a tuple literal
// `(a, b, c)`; the two are disambiguated by whether a comma follows the
// first element.
func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	n := 1
	for c.match(token.COMMA) {
		c.expression()
		n++
	}
	c.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after expression")
	if n > 1 {
		c.tupleLiteral(n)
	}
}

func (c *Compiler) unary(canAssign bool) {
	opKind := c.sh.prev.Kind
	c.parsePrecedence(PrecUnary)
	switch opKind {
	case token.MINUS:
		c.emitOp(bytecode.OpNegate)
	case token.BANG:
		c.emitOp(bytecode.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opKind := c.sh.prev.Kind
	r := getRule(opKind)
	c.parsePrecedence(r.prec + 1)
	switch opKind {
	case token.PLUS:
		c.emitOp(bytecode.OpAdd)
	case token.MINUS:
		c.emitOp(bytecode.OpSubtract)
	case token.STAR:
		c.emitOp(bytecode.OpMultiply)
	case token.SLASH:
		c.emitOp(bytecode.OpDivide)
	case token.CARET:
		c.emitOp(bytecode.OpPow)
	case token.PERCENT:
		c.emitOp(bytecode.OpMod)
	case token.EQUAL_EQUAL:
		c.emitOp(bytecode.OpEqual)
	case token.BANG_EQUAL:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case token.GREATER:
		c.emitOp(bytecode.OpGreater)
	case token.GREATER_EQUAL:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case token.LESS:
		c.emitOp(bytecode.OpLess)
	case token.LESS_EQUAL:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) conditional(canAssign bool) {
	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecAssignment)
	c.consume(token.COLON, ErrExpectedColon, "expected ':' in conditional expression")
	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecConditional)
	c.patchJump(elseJump)
}

// rangeExpr compiles `low..high` into a list [low, high). The left
// operand is already on the stack; compile the right at one precedence
// above Range so `..` does not itself associate with a following `..`.
func (c *Compiler) rangeExpr(canAssign bool) {
	c.parsePrecedence(PrecRange + 1)
	c.emitOp(bytecode.OpGenerateList)
}

func (c *Compiler) postIncrement(canAssign bool) {
	c.emitOp(bytecode.OpIncrement)
}

// --- calls, subscripts, properties -------------------------------------

func (c *Compiler) call(canAssign bool) {
	argc := c.argumentList()
	c.emitOpByte(bytecode.OpCall, argc)
}

func (c *Compiler) argumentList() byte {
	var argc int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == 255 {
				c.error(ErrTooManyArgs, "can't have more than 255 arguments")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after arguments")
	return byte(argc)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, ErrExpectedPropertyName, "expected property name after '.'")
	name := c.identifierConstant(c.sh.prev.Lexeme)

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emitOpByte(bytecode.OpSetProperty, name)
	default:
		if op, ok := c.tryCompoundOp(canAssign); ok {
			c.emitOp(bytecode.OpCopy)
			c.emitOpByte(bytecode.OpGetProperty, name)
			c.expression()
			c.emitOp(op)
			c.emitOpByte(bytecode.OpSetProperty, name)
			return
		}
		if c.match(token.LPAREN) {
			argc := c.argumentList()
			c.emitOpByte(bytecode.OpInvoke, name)
			c.emitByte(argc)
			return
		}
		c.emitOpByte(bytecode.OpGetProperty, name)
	}
}

func (c *Compiler) subscript(canAssign bool) {
	c.expression()
	c.consume(token.RBRACKET, ErrExpectedRBracket, "expected ']' after index")

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emitOp(bytecode.OpIndexSet)
	default:
		if op, ok := c.tryCompoundOp(canAssign); ok {
			c.emitOp(bytecode.OpCopy)
			c.emitOp(bytecode.OpIndexGet)
			c.expression()
			c.emitOp(op)
			c.emitOp(bytecode.OpIndexSet)
			return
		}
		c.emitOp(bytecode.OpIndexGet)
	}
}

// tryCompoundOp consumes a `+= -= *= /= ^= %=` token if present and
// canAssign is set, reporting which arithmetic opcode it desugars to.
func (c *Compiler) tryCompoundOp(canAssign bool) (bytecode.Op, bool) {
	if !canAssign {
		return 0, false
	}
	var op bytecode.Op
	switch c.sh.current.Kind {
	case token.PLUS_EQUAL:
		op = bytecode.OpAdd
	case token.MINUS_EQUAL:
		op = bytecode.OpSubtract
	case token.STAR_EQUAL:
		op = bytecode.OpMultiply
	case token.SLASH_EQUAL:
		op = bytecode.OpDivide
	case token.CARET_EQUAL:
		op = bytecode.OpPow
	case token.PERCENT_EQUAL:
		op = bytecode.OpMod
	default:
		return 0, false
	}
	c.sh.advance()
	return op, true
}

func (c *Compiler) listLiteral(canAssign bool) {
	var n int
	if !c.check(token.RBRACKET) {
		for {
			c.expression()
			n++
			if n > 255 {
				c.error(ErrListTooLarge, "too many elements in list literal")
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RBRACKET, ErrExpectedRBracket, "expected ']' after list literal")
	c.emitOpByte(bytecode.OpBuildList, byte(n))
}

func (c *Compiler) tupleLiteral(n int) {
	if n > 255 {
		c.error(ErrTupleTooLarge, "too many elements in tuple literal")
	}
	c.emitOpByte(bytecode.OpBuildTuple, byte(n))
}

// lambda compiles `\(params) -> expr` as an anonymous function whose
// body is a single return statement.
func (c *Compiler) lambda(canAssign bool) {
	fc := newCompiler(c.sh, c, TypeLambda, "")
	fc.beginScope()

	fc.consume(token.LPAREN, ErrExpectedLParen, "expected '(' after '\\'")
	if !fc.check(token.RPAREN) {
		for {
			fc.fn.Arity++
			paramConst := fc.parseVariable(ErrExpectedIdentifier, "expected parameter name")
			fc.defineVariable(paramConst)
			if !fc.match(token.COMMA) {
				break
			}
		}
	}
	fc.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after lambda parameters")
	fc.consume(token.ARROW, ErrExpectedArrow, "expected '->' after lambda parameters")
	fc.expression()
	fc.emitOp(bytecode.OpReturn)

	fn := fc.endCompilerNoImplicitReturn()
	fn.UpvalueCount = len(fc.upvalues)

	c.emitOpByte(bytecode.OpClosure, c.makeConstant(value.FromObj(fn)))
	for _, uv := range fc.upvalues {
		var isLocalByte byte
		if uv.isLocal {
			isLocalByte = 1
		}
		c.emitByte(isLocalByte)
		c.emitByte(uv.index)
	}
}

// endCompilerNoImplicitReturn is used by forms (lambdas) that already
// emitted their own terminating OP_RETURN and must not get a second
// implicit `return nil;` appended.
func (c *Compiler) endCompilerNoImplicitReturn() *value.ObjFunction {
	return c.fn
}

// --- variables, this, super ---------------------------------------------

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.sh.prev.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp bytecode.Op
	arg, kind := c.resolveVariable(name)
	switch kind {
	case varLocal:
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
	case varUpvalue:
		getOp, setOp = bytecode.OpGetUpvalue, bytecode.OpSetUpvalue
	default:
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
		arg = int(c.identifierConstant(name))
	}

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	default:
		if op, ok := c.tryCompoundOp(canAssign); ok {
			c.emitOpByte(getOp, byte(arg))
			c.expression()
			c.emitOp(op)
			c.emitOpByte(setOp, byte(arg))
			return
		}
		c.emitOpByte(getOp, byte(arg))
	}
}

type varKind int

const (
	varGlobal varKind = iota
	varLocal
	varUpvalue
)

func (c *Compiler) resolveVariable(name string) (int, varKind) {
	if idx := c.resolveLocal(name); idx != -1 {
		return idx, varLocal
	}
	if idx := c.resolveUpvalue(name); idx != -1 {
		return idx, varUpvalue
	}
	return -1, varGlobal
}

func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.error(ErrLocalResolverError, "can't read local variable '"+name+"' in its own initializer")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if idx := c.enclosing.resolveLocal(name); idx != -1 {
		c.enclosing.locals[idx].isCaptured = true
		return c.addUpvalue(byte(idx), true)
	}
	if idx := c.enclosing.resolveUpvalue(name); idx != -1 {
		return c.addUpvalue(byte(idx), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(index byte, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= 256 {
		c.error(ErrTooManyClosures, "too many closure variables in function")
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(c.upvalues) - 1
}

func (c *Compiler) this(canAssign bool) {
	if c.cc == nil {
		c.error(ErrReservedKeyword, "can't use 'this' outside of a class")
		return
	}
	c.namedVariable("this", false)
}

func (c *Compiler) super(canAssign bool) {
	if c.cc == nil {
		c.error(ErrSuperNotAllowed, "can't use 'super' outside of a class")
	} else if !c.cc.hasSuperclass {
		c.error(ErrSuperNotAllowed, "can't use 'super' in a class with no superclass")
	}
	c.consume(token.DOT, ErrExpectedDot, "expected '.' after 'super'")
	c.consume(token.IDENT, ErrExpectedPropertyName, "expected superclass method name")
	name := c.identifierConstant(c.sh.prev.Lexeme)

	if c.match(token.LPAREN) {
		c.emitVariableGet("this")
		argc := c.argumentList()
		c.emitVariableGet("super")
		c.emitOpByte(bytecode.OpSuperInvoke, name)
		c.emitByte(argc)
	} else {
		c.emitVariableGet("this")
		c.emitVariableGet("super")
		c.emitOpByte(bytecode.OpGetSuper, name)
	}
}

// emitVariableGet pushes the named variable's value without going
// through the assignment-target machinery in namedVariable, used for
// `this`/`super` where only a read ever makes sense.
func (c *Compiler) emitVariableGet(name string) {
	arg, kind := c.resolveVariable(name)
	switch kind {
	case varLocal:
		c.emitOpByte(bytecode.OpGetLocal, byte(arg))
	case varUpvalue:
		c.emitOpByte(bytecode.OpGetUpvalue, byte(arg))
	default:
		c.emitOpByte(bytecode.OpGetGlobal, c.identifierConstant(name))
	}
}
