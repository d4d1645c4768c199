package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramsaycarslaw/mt/internal/token"
)

func tokenize(t *testing.T, source string) []token.Token {
	t.Helper()
	l := New(source)
	var out []token.Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestTokenizesArithmeticExpression(t *testing.T) {
	toks := tokenize(t, "1 + 2 * 3;")
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []token.Kind{
		token.NUMBER, token.PLUS, token.NUMBER, token.STAR, token.NUMBER, token.SEMICOLON, token.EOF,
	}, kinds)
}

func TestKeywordsFoldToReservedKinds(t *testing.T) {
	toks := tokenize(t, "var let fn class if else for while return this super true false nil")
	want := []token.Kind{
		token.VAR, token.LET, token.FN, token.CLASS, token.IF, token.ELSE, token.FOR,
		token.WHILE, token.RETURN, token.THIS, token.SUPER, token.TRUE, token.FALSE, token.NIL, token.EOF,
	}
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, want, kinds)
}

func TestStringLiteralLexemeExcludesQuotes(t *testing.T) {
	toks := tokenize(t, `"hello there"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello there", toks[0].Lexeme)
}

func TestUnterminatedStringProducesIllegalToken(t *testing.T) {
	toks := tokenize(t, `"never closes`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Contains(t, toks[0].Lexeme, "unterminated")
}

func TestCompoundAssignOperators(t *testing.T) {
	toks := tokenize(t, "+= -= *= /= ^= %=")
	want := []token.Kind{
		token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL,
		token.SLASH_EQUAL, token.CARET_EQUAL, token.PERCENT_EQUAL, token.EOF,
	}
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, want, kinds)
}

func TestRangeOperatorDisambiguatedFromDot(t *testing.T) {
	toks := tokenize(t, "a.b 1..3")
	require.Equal(t, token.DOT, toks[1].Kind)
	require.Equal(t, token.DOTDOT, toks[4].Kind)
}

func TestLineCommentsAreSkipped(t *testing.T) {
	toks := tokenize(t, "1 // comment\n2")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, 2, toks[1].Line)
}

func TestBlockCommentsTrackLines(t *testing.T) {
	toks := tokenize(t, "1 /* spans\nlines */ 2")
	require.Equal(t, 2, toks[1].Line)
}
