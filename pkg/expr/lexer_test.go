package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex_WordsNumbersSymbols(t *testing.T) {
	toks, err := Lex("gConfig.count")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, Token{Kind: TokenWord, Text: "gConfig"}, toks[0])
	assert.Equal(t, Token{Kind: TokenSymbol, Text: "."}, toks[1])
	assert.Equal(t, Token{Kind: TokenWord, Text: "count"}, toks[2])
}

func TestLex_HexAndDecimalNumbers(t *testing.T) {
	toks, err := Lex("0x2A 42")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, uint64(42), toks[0].Num)
	assert.Equal(t, uint64(42), toks[1].Num)
}

func TestLex_LongestMatchSymbols(t *testing.T) {
	toks, err := Lex("a::b->c")
	require.NoError(t, err)
	var kinds []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Text)
	}
	assert.Equal(t, []string{"a", "::", "b", "->", "c"}, kinds)
}

func TestLex_UnexpectedChar(t *testing.T) {
	_, err := Lex("gConfig@count")
	require.Error(t, err)
	assert.Equal(t, "Unexpected char '@'", err.Error())
}

func TestLex_WhitespaceSkipped(t *testing.T) {
	toks, err := Lex(" \t gConfig \n .count\r\n")
	require.NoError(t, err)
	assert.Len(t, toks, 3)
}
