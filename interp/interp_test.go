package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileHelloWorld(t *testing.T) {
	c := New(Options{})
	art, err := c.Compile(`
func:add = int32(int32:a, int32:b) {
	return a + b;
};
`, "hello.aria")
	require.NoError(t, err)
	require.NotNil(t, art)
	assert.False(t, art.Diags.HasErrors(), art.Diags.Render(art.Fset))
	assert.Contains(t, art.IR, "define")
}

func TestCompileUndefinedSymbolReportsDiagnostic(t *testing.T) {
	c := New(Options{})
	art, err := c.Compile(`
func:broken = int32() {
	return missingName;
};
`, "broken.aria")
	require.NoError(t, err)
	assert.True(t, art.Diags.HasErrors())
}

func TestCompileStrictPromotesWarnings(t *testing.T) {
	c := New(Options{Strict: true})
	art, err := c.Compile(`
func:f = void() {
	wild int32: p = 0;
};
`, "warn.aria")
	require.NoError(t, err)
	// whether this particular program actually produces a warning is a
	// sema-analysis question; what this test pins down is that Strict
	// promotes any recorded warning into a failing HasErrors().
	_, warns, _ := art.Diags.Counts()
	if warns > 0 {
		assert.True(t, art.HasErrors(true))
	}
}

func TestCompilePathMissingFile(t *testing.T) {
	c := New(Options{})
	_, err := c.CompilePath("/nonexistent/path/does/not/exist.aria")
	assert.Error(t, err)
}
