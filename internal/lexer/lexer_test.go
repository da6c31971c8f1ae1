package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/internal/token"
)

func tokenize(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.AddFile("t.aria", src)
	bag := diag.NewBag()
	return New(f, bag).Tokenize(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	toks, bag := tokenize(t, "func add wild x")
	assert.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.KwFunc, token.Ident, token.KwWild, token.Ident, token.EOF}, kinds(toks))
}

func TestTokenizeNumberLiterals(t *testing.T) {
	toks, bag := tokenize(t, "42 0x1F 0b101 3.14 2e10")
	require.False(t, bag.HasErrors())
	want := []token.Kind{token.IntLit, token.IntLit, token.IntLit, token.FloatLit, token.FloatLit, token.EOF}
	assert.Equal(t, want, kinds(toks))
	assert.Equal(t, "0x1F", toks[1].Text)
}

func TestTokenizeThreeByteOperatorsBeforeShorterPrefixes(t *testing.T) {
	toks, bag := tokenize(t, "a <=> b ... c <<= d")
	require.False(t, bag.HasErrors())
	assert.Equal(t, token.Spaceship, toks[1].Kind)
	assert.Equal(t, token.DotDotDot, toks[3].Kind)
	assert.Equal(t, token.ShlAssign, toks[5].Kind)
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks, bag := tokenize(t, `"hello\nworld"`)
	require.False(t, bag.HasErrors())
	require.Equal(t, token.StringLit, toks[0].Kind)
	assert.Equal(t, `hello\nworld`, toks[0].Text)
}

func TestTokenizeUnterminatedStringRecordsError(t *testing.T) {
	toks, bag := tokenize(t, `"unterminated`)
	assert.True(t, bag.HasErrors())
	assert.Equal(t, token.Error, toks[0].Kind)
}

func TestTokenizeTemplateStringPreservesInterpolationMarkers(t *testing.T) {
	toks, bag := tokenize(t, "`hi ${name}!`")
	require.False(t, bag.HasErrors())
	require.Equal(t, token.TemplateStringLit, toks[0].Kind)
	assert.Equal(t, "hi ${name}!", toks[0].Text)
}

func TestTokenizeSkipsLineAndBlockComments(t *testing.T) {
	toks, bag := tokenize(t, "a // comment\n/* block */ b")
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Ident, token.Ident, token.EOF}, kinds(toks))
}

func TestTokenizeUnexpectedCharacterResumesScanning(t *testing.T) {
	toks, bag := tokenize(t, "a \\ b")
	assert.True(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Ident, token.Error, token.Ident, token.EOF}, kinds(toks))
}
