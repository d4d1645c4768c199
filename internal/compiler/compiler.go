// Package compiler implements MT's single-pass Pratt compiler: it reads
// tokens one at a time from the lexer and emits bytecode directly, with
// no intermediate syntax tree. It resolves locals, upvalues, and class
// method tables as it goes.
package compiler

import (
	"strconv"

	"github.com/ramsaycarslaw/mt/internal/bytecode"
	"github.com/ramsaycarslaw/mt/internal/lexer"
	"github.com/ramsaycarslaw/mt/internal/token"
	"github.com/ramsaycarslaw/mt/internal/value"
)

// FnType tags what kind of function a Compiler frame is building, since
// top-level code, ordinary functions, lambdas, and methods each have
// slightly different rules (e.g. only Initializer rewrites bare
// `return;` to return `this`).
type FnType int

const (
	TypeScript FnType = iota
	TypeFunction
	TypeLambda
	TypeMethod
	TypeInitializer
)

type local struct {
	name       string
	depth      int // -1: declared but not yet initialized
	isCaptured bool
	typeAnn    string
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// loopCtx tracks the nearest breakable construct (a loop or a switch)
// so `break` knows where to jump and how many locals to pop first, and
// the nearest loop specifically so `continue` can skip past an
// enclosing switch to the loop that contains it. isLoop is false for a
// switch frame pushed purely to host `break` targets.
type loopCtx struct {
	enclosing  *loopCtx
	isLoop     bool
	loopStart  int
	scopeDepth int
	breakJumps []int
}

// nearestLoop walks outward past any switch frames to the loop that
// `continue` should jump back to.
func (l *loopCtx) nearestLoop() *loopCtx {
	for cur := l; cur != nil; cur = cur.enclosing {
		if cur.isLoop {
			return cur
		}
	}
	return nil
}

// classCtx tracks the enclosing class so `this`/`super` can be rejected
// outside one and so a subclass knows whether it has a superclass.
type classCtx struct {
	enclosing     *classCtx
	hasSuperclass bool
}

// shared is the state every nested Compiler frame reads and writes in
// common: the token cursor over the single lexer, accumulated errors,
// and the string interning table constants are allocated through.
type shared struct {
	lex     *lexer.Lexer
	current token.Token
	prev    token.Token

	hadError  bool
	panicMode bool
	errs      []*CompileError

	strings *value.Strings
}

// Compiler is one activation of the compile-time call stack: one per
// script, function, lambda, or method body being compiled. Nested
// functions push a new Compiler linked to their parent via `enclosing`.
type Compiler struct {
	sh *shared

	enclosing *Compiler

	fn     *value.ObjFunction
	chunk  *bytecode.Chunk
	fnType FnType

	locals     []local
	scopeDepth int
	upvalues   []upvalueRef

	loop *loopCtx
	cc   *classCtx
}

// Compile compiles an entire source file to a top-level script
// Function. On any compile error it returns the accumulated *Errors
// instead of a usable function.
func Compile(source string, strings *value.Strings) (*value.ObjFunction, error) {
	sh := &shared{lex: lexer.New(source), strings: strings}
	c := newCompiler(sh, nil, TypeScript, "")
	sh.advance()

	for !c.match(token.EOF) {
		c.declaration()
	}

	fn := c.endCompiler()
	if sh.hadError {
		return nil, &Errors{List: sh.errs}
	}
	return fn, nil
}

func newCompiler(sh *shared, enclosing *Compiler, fnType FnType, name string) *Compiler {
	c := &Compiler{
		sh:        sh,
		enclosing: enclosing,
		fnType:    fnType,
		fn:        &value.ObjFunction{Name: name, Chunk: &bytecode.Chunk{}},
	}
	c.chunk = c.fn.Chunk.(*bytecode.Chunk)
	// Slot 0 is reserved: `this` for methods/initializers, the called
	// closure itself otherwise (never read, but keeps slot numbering
	// uniform with the rest of the locals array).
	slotName := ""
	if fnType == TypeMethod || fnType == TypeInitializer {
		slotName = "this"
	}
	c.locals = append(c.locals, local{name: slotName, depth: 0})
	if enclosing != nil {
		c.cc = enclosing.cc
	}
	return c
}

func (c *Compiler) endCompiler() *value.ObjFunction {
	c.emitReturn()
	return c.fn
}

// --- token plumbing -------------------------------------------------

func (sh *shared) advance() {
	sh.prev = sh.current
	for {
		sh.current = sh.lex.Next()
		if sh.current.Kind != token.ILLEGAL {
			break
		}
		sh.errorAtCurrent(sh.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.sh.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.sh.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, code ErrorCode, msg string) {
	if c.sh.current.Kind == k {
		c.sh.advance()
		return
	}
	c.errorAtCurrentCode(code, msg)
}

func (sh *shared) errorAtCurrent(msg string) { sh.errorAt(sh.current, ErrGeneric, msg) }

func (c *Compiler) errorAtCurrentCode(code ErrorCode, msg string) {
	c.sh.errorAt(c.sh.current, code, msg)
}

func (c *Compiler) error(code ErrorCode, msg string) {
	c.sh.errorAt(c.sh.prev, code, msg)
}

func (sh *shared) errorAt(tok token.Token, code ErrorCode, msg string) {
	if sh.panicMode {
		return
	}
	sh.panicMode = true
	sh.hadError = true
	sh.errs = append(sh.errs, &CompileError{Line: tok.Line, Lexeme: tok.Lexeme, Code: code, Message: msg})
}

// synchronize skips tokens until a likely statement boundary, so one
// panic-mode error doesn't cascade into a wall of spurious follow-ons.
func (c *Compiler) synchronize() {
	c.sh.panicMode = false
	for c.sh.current.Kind != token.EOF {
		if c.sh.prev.Kind == token.SEMICOLON {
			return
		}
		switch c.sh.current.Kind {
		case token.CLASS, token.FN, token.VAR, token.LET, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.SWITCH:
			return
		}
		c.sh.advance()
	}
}

// --- emit helpers ----------------------------------------------------

func (c *Compiler) line() int { return c.sh.prev.Line }

func (c *Compiler) emitByte(b byte) { c.chunk.Write(b, c.line()) }

func (c *Compiler) emitOp(op bytecode.Op) { c.chunk.WriteOp(op, c.line()) }

func (c *Compiler) emitOpByte(op bytecode.Op, arg byte) {
	c.emitOp(op)
	c.emitByte(arg)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := len(c.chunk.Code) - loopStart + 2
	if offset > 0xFFFF {
		c.error(ErrLoopBodyTooLarge, "loop body too large")
	}
	c.chunk.WriteShort(uint16(offset), c.line())
}

func (c *Compiler) emitJump(op bytecode.Op) int {
	c.emitOp(op)
	c.chunk.WriteShort(0xFFFF, c.line())
	return len(c.chunk.Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk.Code) - offset - 2
	if jump > 0xFFFF {
		c.error(ErrJumpTooLarge, "jump too large")
	}
	c.chunk.PatchJump(offset)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	if len(c.chunk.Constants) >= bytecode.MaxConstants {
		c.error(ErrTooManyConstants, "too many constants in function")
		return 0
	}
	return byte(c.chunk.AddConstant(v))
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(bytecode.OpConstant, c.makeConstant(v))
}

func (c *Compiler) internString(s string) *value.ObjString {
	return c.sh.strings.Intern(s)
}

func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(value.FromObj(c.internString(name)))
}

// --- declarations & statements ---------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FN):
		c.fnDeclaration()
	case c.match(token.VAR):
		c.varDeclaration(false)
	case c.match(token.LET):
		c.varDeclaration(true)
	default:
		c.statement()
	}
	if c.sh.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration(isLet bool) {
	global := c.parseVariable(ErrExpectedIdentifier, "expected variable name")

	var typeAnn string
	if isLet && c.match(token.COLON) {
		c.consume(token.IDENT, ErrExpectedIdentifier, "expected type name")
		typeAnn = c.sh.prev.Lexeme
	}
	if typeAnn != "" && c.scopeDepth > 0 {
		c.locals[len(c.locals)-1].typeAnn = typeAnn
	}

	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(token.SEMICOLON, ErrExpectedSemicolon, "expected ';' after variable declaration")
	c.defineVariable(global)
}

func (c *Compiler) fnDeclaration() {
	global := c.parseVariable(ErrExpectedIdentifier, "expected function name")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global)
}

func (c *Compiler) function(fnType FnType) {
	name := c.sh.prev.Lexeme
	fc := newCompiler(c.sh, c, fnType, name)
	fc.beginScope()

	fc.consume(token.LPAREN, ErrExpectedLParen, "expected '(' after function name")
	if !fc.check(token.RPAREN) {
		for {
			fc.fn.Arity++
			if fc.fn.Arity > 255 {
				fc.errorAtCurrentCode(ErrTooManyArgs, "can't have more than 255 parameters")
			}
			paramConst := fc.parseVariable(ErrExpectedIdentifier, "expected parameter name")
			fc.defineVariable(paramConst)
			if !fc.match(token.COMMA) {
				break
			}
		}
	}
	fc.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after parameters")
	fc.consume(token.LBRACE, ErrExpectedLBrace, "expected '{' before function body")
	fc.block()

	fn := fc.endCompiler()
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

func (c *Compiler) parseVariable(code ErrorCode, msg string) byte {
	c.consume(token.IDENT, code, msg)
	name := c.sh.prev.Lexeme

	c.declareLocal(name)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) declareLocal(name string) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.error(ErrVariableRedeclaration, "variable '"+name+"' already declared in this scope")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= 256 {
		c.error(ErrTooManyLocals, "too many local variables in function")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(bytecode.OpDefineGlobal, global)
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.isCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.SWITCH):
		c.switchStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.DEFER):
		c.deferStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.USE):
		c.useStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, ErrExpectedRBrace, "expected '}' after block")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, ErrExpectedSemicolon, "expected ';' after value")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, ErrExpectedSemicolon, "expected ';' after expression")
	c.emitOp(bytecode.OpPop)
}

// useStatement accepts `use <expr>;` syntactically. Resolution happens
// before the lexer ever sees the source, via a textual prescan in
// package driver, so here the expression is only evaluated and popped.
func (c *Compiler) useStatement() {
	c.expression()
	c.consume(token.SEMICOLON, ErrExpectedSemicolon, "expected ';' after use directive")
	c.emitOp(bytecode.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, ErrExpectedLParen, "expected '(' after 'if'")
	c.expression()
	c.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after condition")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk.Code)
	loop := &loopCtx{enclosing: c.loop, isLoop: true, loopStart: loopStart, scopeDepth: c.scopeDepth}
	c.loop = loop

	c.consume(token.LPAREN, ErrExpectedLParen, "expected '(' after 'while'")
	c.expression()
	c.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after condition")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)

	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.loop = loop.enclosing
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, ErrExpectedLParen, "expected '(' after 'for'")

	// for x in <iterable> { ... }
	if c.check(token.IDENT) && c.peekIsIn() {
		c.forInStatement()
		c.endScope()
		return
	}

	if c.match(token.SEMICOLON) {
		// no initializer
	} else if c.match(token.VAR) {
		c.varDeclaration(false)
	} else {
		c.expressionStatement()
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, ErrExpectedSemicolon, "expected ';' after loop condition")
		exitJump = c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(bytecode.OpJump)
		incrementStart := len(c.chunk.Code)
		c.expression()
		c.emitOp(bytecode.OpPop)
		c.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after for clauses")
	}

	loop := &loopCtx{enclosing: c.loop, isLoop: true, loopStart: loopStart, scopeDepth: c.scopeDepth}
	c.loop = loop

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.OpPop)
	}
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.loop = loop.enclosing
	c.endScope()
}

// peekIsIn performs a one-token-ahead check (without consuming) for the
// `for x in e` form by scanning a throwaway lexer copy positioned at
// the same offset; this keeps the single-token-lookahead discipline of
// the main token cursor intact for everything else.
func (c *Compiler) peekIsIn() bool {
	save := *c.sh.lex
	savedCur, savedPrev := c.sh.current, c.sh.prev
	c.sh.advance() // consume the identifier speculatively
	isIn := c.sh.current.Kind == token.IN
	*c.sh.lex = save
	c.sh.current, c.sh.prev = savedCur, savedPrev
	return isIn
}

func (c *Compiler) forInStatement() {
	c.consume(token.IDENT, ErrExpectedIdentifier, "expected loop variable name")
	varName := c.sh.prev.Lexeme
	c.consume(token.IN, ErrExpectedIn, "expected 'in' after loop variable")

	c.expression()
	c.emitOp(bytecode.OpIterator)
	c.addLocal("@iterator")
	c.markInitialized()
	c.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after iterator expression")

	loopStart := len(c.chunk.Code)
	exitJump := c.emitJump(bytecode.OpForIterator)

	loop := &loopCtx{enclosing: c.loop, isLoop: true, loopStart: loopStart, scopeDepth: c.scopeDepth}
	c.loop = loop

	c.beginScope()
	c.addLocal(varName)
	c.markInitialized()
	c.statement()
	c.endScope()

	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.loop = loop.enclosing
	// The @iterator local is popped by forStatement's endScope.
}

func (c *Compiler) switchStatement() {
	c.consume(token.LPAREN, ErrExpectedLParen, "expected '(' after 'switch'")
	c.expression()
	c.consume(token.RPAREN, ErrExpectedRParen, "expected ')' after switch subject")
	c.consume(token.LBRACE, ErrExpectedLBrace, "expected '{' before switch body")

	sw := &loopCtx{enclosing: c.loop, scopeDepth: c.scopeDepth}
	c.loop = sw

	var caseEndJumps []int
	var prevCaseSkip = -1

	for c.match(token.CASE) {
		if prevCaseSkip != -1 {
			caseEndJumps = append(caseEndJumps, c.emitJump(bytecode.OpJump))
			c.patchJump(prevCaseSkip)
			c.emitOp(bytecode.OpPop)
		}
		c.emitOp(bytecode.OpCopy)
		c.expression()
		c.consume(token.COLON, ErrExpectedColon, "expected ':' after case value")
		c.emitOp(bytecode.OpEqual)
		prevCaseSkip = c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)

		for !c.check(token.CASE) && !c.check(token.DEFAULT) && !c.check(token.RBRACE) {
			c.statement()
		}
	}

	if prevCaseSkip != -1 {
		caseEndJumps = append(caseEndJumps, c.emitJump(bytecode.OpJump))
		c.patchJump(prevCaseSkip)
		c.emitOp(bytecode.OpPop)
	}

	if c.match(token.DEFAULT) {
		c.consume(token.COLON, ErrExpectedColon, "expected ':' after 'default'")
		for !c.check(token.RBRACE) {
			c.statement()
		}
	}

	for _, j := range caseEndJumps {
		c.patchJump(j)
	}
	for _, j := range sw.breakJumps {
		c.patchJump(j)
	}
	c.loop = sw.enclosing
	c.consume(token.RBRACE, ErrExpectedRBrace, "expected '}' after switch body")
	c.emitOp(bytecode.OpPop) // the subject value
}

func (c *Compiler) breakStatement() {
	if c.loop == nil {
		c.error(ErrUnexpectedBreak, "'break' outside a loop")
		c.consume(token.SEMICOLON, ErrExpectedBreak, "expected ';' after 'break'")
		return
	}
	c.popLocalsTo(c.loop.scopeDepth)
	jump := c.emitJump(bytecode.OpJump)
	c.loop.breakJumps = append(c.loop.breakJumps, jump)
	c.consume(token.SEMICOLON, ErrExpectedBreak, "expected ';' after 'break'")
}

func (c *Compiler) continueStatement() {
	target := c.loop.nearestLoop()
	if target == nil {
		c.error(ErrUnexpectedContinue, "'continue' outside a loop")
		c.consume(token.SEMICOLON, ErrExpectedContinue, "expected ';' after 'continue'")
		return
	}
	c.popLocalsTo(target.scopeDepth)
	c.emitLoop(target.loopStart)
	c.consume(token.SEMICOLON, ErrExpectedContinue, "expected ';' after 'continue'")
}

func (c *Compiler) popLocalsTo(depth int) {
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].depth > depth; i-- {
		if c.locals[i].isCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
	}
}

func (c *Compiler) returnStatement() {
	if c.fnType == TypeScript {
		c.error(ErrUnexpectedReturn, "can't return from top-level code")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.fnType == TypeInitializer {
		c.error(ErrUnexpectedReturn, "can't return a value from an initializer")
	}
	c.expression()
	c.consume(token.SEMICOLON, ErrExpectedSemicolon, "expected ';' after return value")
	c.emitOp(bytecode.OpReturn)
}

func (c *Compiler) emitReturn() {
	if c.fnType == TypeInitializer {
		c.emitOpByte(bytecode.OpGetLocal, 0)
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.emitOp(bytecode.OpReturn)
}

// deferStatement accepts `defer e;` syntactically and emits OP_DEFER,
// which the VM raises a runtime error on: the resolution left open by
// the scripting-language description is to reserve the opcode rather
// than give it semantics nobody specified.
func (c *Compiler) deferStatement() {
	c.expression()
	c.consume(token.SEMICOLON, ErrUnexpectedDefer, "expected ';' after 'defer'")
	c.emitOp(bytecode.OpDefer)
}

// parseNumber parses the lexer's raw decimal lexeme.
func parseNumber(lexeme string) float64 {
	n, _ := strconv.ParseFloat(lexeme, 64)
	return n
}
