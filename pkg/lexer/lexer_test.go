package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hinglish-lang/hpc/pkg/token"
)

func allTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestKeywords(t *testing.T) {
	toks := allTokens(t, "agar nahi_to jabtak karo vidhi wapas likho ank sankhya vakya akshar aur ya nahi")
	assert.Equal(t, []token.Kind{
		token.If, token.Else, token.While, token.For, token.Func, token.Return, token.Print,
		token.TypeInt, token.TypeFloat, token.TypeString, token.TypeChar,
		token.And, token.Or, token.Not, token.EOF,
	}, kinds(toks))
}

func TestIdentifierNotKeyword(t *testing.T) {
	toks := allTokens(t, "agarwal")
	require.Len(t, toks, 2)
	assert.Equal(t, token.Identifier, toks[0].Kind)
	assert.Equal(t, "agarwal", toks[0].Literal)
}

func TestNumberLiterals(t *testing.T) {
	toks := allTokens(t, "42 3.14 7.")
	require.Len(t, toks, 4)
	assert.Equal(t, token.IntLiteral, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Literal)
	assert.Equal(t, token.FloatLiteral, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Literal)
	assert.Equal(t, token.FloatLiteral, toks[2].Kind)
	assert.Equal(t, "7.", toks[2].Literal)
}

func TestStringLiteralWithEscapes(t *testing.T) {
	toks := allTokens(t, `"hello\nworld"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.StringLiteral, toks[0].Kind)
	assert.Equal(t, "hello\nworld", toks[0].Literal)
}

func TestUnterminatedStringIsUnknown(t *testing.T) {
	toks := allTokens(t, `"hello`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Unknown, toks[0].Kind)
}

func TestCharLiteral(t *testing.T) {
	toks := allTokens(t, `'a' '\n'`)
	require.Len(t, toks, 3)
	assert.Equal(t, token.CharLiteral, toks[0].Kind)
	assert.Equal(t, "a", toks[0].Literal)
	assert.Equal(t, token.CharLiteral, toks[1].Kind)
	assert.Equal(t, "\n", toks[1].Literal)
}

func TestMultiCharLiteralIsUnknown(t *testing.T) {
	toks := allTokens(t, `'ab'`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Unknown, toks[0].Kind)
}

func TestOperators(t *testing.T) {
	toks := allTokens(t, "== != <= >= < > + - * / % = ( ) { } ; ,")
	assert.Equal(t, []token.Kind{
		token.Equal, token.NotEqual, token.LessEq, token.GreaterEq, token.Less, token.Greater,
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent, token.Assign,
		token.LParen, token.RParen, token.LBrace, token.RBrace, token.Semicolon, token.Comma,
		token.EOF,
	}, kinds(toks))
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := allTokens(t, "ank x # this is a comment\n= 5;")
	assert.Equal(t, []token.Kind{
		token.TypeInt, token.Identifier, token.Assign, token.IntLiteral, token.Semicolon, token.EOF,
	}, kinds(toks))
}

func TestLineTracking(t *testing.T) {
	toks := allTokens(t, "ank x;\nank y;")
	require.Len(t, toks, 7)
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 2, toks[3].Pos.Line)
}
