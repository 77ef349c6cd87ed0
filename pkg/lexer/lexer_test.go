package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/tacc/pkg/token"
)

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenKinds(t *testing.T) {
	toks := NewLexer([]rune(`(, _ x "a b")`), 0).All()
	assert.Equal(t, []token.Type{
		token.LParen, token.Comma, token.Nil, token.Atom, token.String, token.RParen, token.EOF,
	}, types(toks))
	assert.Equal(t, "x", toks[3].Value)
	assert.Equal(t, `"a b"`, toks[4].Value, "strings keep their quotes")
}

func TestOperatorsAndNumbersAreAtoms(t *testing.T) {
	toks := NewLexer([]rune("(<= -1 2.5 if-elif-else)"), 0).All()
	require.Len(t, toks, 7)
	assert.Equal(t, token.RParen, toks[5].Type)
	assert.Equal(t, token.EOF, toks[6].Type)
	for i, want := range []string{"<=", "-1", "2.5", "if-elif-else"} {
		assert.Equal(t, token.Atom, toks[i+1].Type)
		assert.Equal(t, want, toks[i+1].Value)
	}
}

func TestCommentsAndPositions(t *testing.T) {
	src := "; leading comment\n(call\n  f) ; trailing\n"
	toks := NewLexer([]rune(src), 3).All()
	require.Equal(t, []token.Type{token.LParen, token.Atom, token.Atom, token.RParen, token.EOF}, types(toks))

	f := toks[2]
	assert.Equal(t, 3, f.Line)
	assert.Equal(t, 3, f.Column)
	assert.Equal(t, 1, f.Len)
	assert.Equal(t, 3, f.FileIndex)

	call := toks[1]
	assert.Equal(t, 2, call.Line)
	assert.Equal(t, 2, call.Column)
	assert.Equal(t, 4, call.Len)
}

func TestEscapedQuoteStaysInString(t *testing.T) {
	toks := NewLexer([]rune(`"say \"hi\""`), 0).All()
	require.Len(t, toks, 2)
	assert.Equal(t, token.String, toks[0].Type)
	assert.Equal(t, `"say \"hi\""`, toks[0].Value)
}

func TestUnterminatedString(t *testing.T) {
	toks := NewLexer([]rune(`(x "open`), 0).All()
	require.Len(t, toks, 4)
	assert.Equal(t, token.Illegal, toks[2].Type)
	assert.Equal(t, "unterminated string literal", toks[2].Value)
}
