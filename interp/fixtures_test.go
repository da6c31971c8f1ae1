package interp

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/tools/txtar"
)

// runFixture compiles the "input.aria" file inside a testdata/*.txtar
// archive and checks it against the key=value expectations in its
// "expect.txt" file:
//
//	errors=N        exact diagnostic error count
//	ir_contains=S   substring S must appear in the emitted IR
//	ir_empty=true   no IR is emitted (compilation stopped before emit)
func runFixture(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	ar := txtar.Parse(data)

	var input, expect string
	for _, f := range ar.Files {
		switch f.Name {
		case "input.aria":
			input = string(f.Data)
		case "expect.txt":
			expect = string(f.Data)
		}
	}
	require.NotEmpty(t, input, "%s: missing input.aria", path)
	require.NotEmpty(t, expect, "%s: missing expect.txt", path)

	c := New(Options{})
	art, err := c.Compile(input, filepath.Base(path))
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimSpace(expect), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		require.True(t, ok, "malformed expectation line %q", line)
		switch key {
		case "errors":
			n, err := strconv.Atoi(val)
			require.NoError(t, err)
			errs, _, _ := art.Diags.Counts()
			assert.Equal(t, n, errs, "%s: error count; diagnostics: %s", path, art.Diags.Render(art.Fset))
		case "ir_contains":
			assert.Contains(t, art.IR, val, "%s", path)
		case "ir_empty":
			assert.Empty(t, art.IR, "%s", path)
		default:
			t.Fatalf("%s: unknown expectation key %q", path, key)
		}
	}
}

func TestFixtures(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("..", "testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, path := range matches {
		path := path
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			runFixture(t, path)
		})
	}
}
