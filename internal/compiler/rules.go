package compiler

import "github.com/ramsaycarslaw/mt/internal/token"

// Precedence is the Pratt precedence ladder, low to high.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecRange
	PrecConditional
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecSubscript
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix parseFn
	infix  parseFn
	prec   Precedence
}

var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LPAREN:        {prefix: (*Compiler).grouping, infix: (*Compiler).call, prec: PrecCall},
		token.LBRACKET:      {prefix: (*Compiler).listLiteral, infix: (*Compiler).subscript, prec: PrecSubscript},
		token.DOT:           {infix: (*Compiler).dot, prec: PrecCall},
		token.MINUS:         {prefix: (*Compiler).unary, infix: (*Compiler).binary, prec: PrecTerm},
		token.PLUS:          {infix: (*Compiler).binary, prec: PrecTerm},
		token.SLASH:         {infix: (*Compiler).binary, prec: PrecFactor},
		token.STAR:          {infix: (*Compiler).binary, prec: PrecFactor},
		token.CARET:         {infix: (*Compiler).binary, prec: PrecFactor},
		token.PERCENT:       {infix: (*Compiler).binary, prec: PrecFactor},
		token.BANG:          {prefix: (*Compiler).unary},
		token.BANG_EQUAL:    {infix: (*Compiler).binary, prec: PrecEquality},
		token.EQUAL_EQUAL:   {infix: (*Compiler).binary, prec: PrecEquality},
		token.GREATER:       {infix: (*Compiler).binary, prec: PrecComparison},
		token.GREATER_EQUAL: {infix: (*Compiler).binary, prec: PrecComparison},
		token.LESS:          {infix: (*Compiler).binary, prec: PrecComparison},
		token.LESS_EQUAL:    {infix: (*Compiler).binary, prec: PrecComparison},
		token.PLUS_PLUS:     {infix: (*Compiler).postIncrement, prec: PrecCall},
		token.DOTDOT:        {infix: (*Compiler).rangeExpr, prec: PrecRange},
		token.QUESTION:      {infix: (*Compiler).conditional, prec: PrecConditional},
		token.AND:           {infix: (*Compiler).and, prec: PrecAnd},
		token.OR:            {infix: (*Compiler).or, prec: PrecOr},
		token.IDENT:         {prefix: (*Compiler).variable},
		token.STRING:        {prefix: (*Compiler).stringLiteral},
		token.NUMBER:        {prefix: (*Compiler).number},
		token.TRUE:          {prefix: (*Compiler).literal},
		token.FALSE:         {prefix: (*Compiler).literal},
		token.NIL:           {prefix: (*Compiler).literal},
		token.THIS:          {prefix: (*Compiler).this},
		token.SUPER:         {prefix: (*Compiler).super},
		token.BACKSLASH:     {prefix: (*Compiler).lambda},
	}
}

func getRule(k token.Kind) rule { return rules[k] }
