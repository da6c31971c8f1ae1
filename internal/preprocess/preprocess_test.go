package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/source"
)

func run(t *testing.T, src string, resolver IncludeResolver, predefines map[string]string) (string, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.AddFile("t.aria", src)
	bag := diag.NewBag()
	return Process(fs, bag, f, resolver, predefines), bag
}

func TestProcessDefineSubstitution(t *testing.T) {
	out, bag := run(t, "%define WIDTH 32\nint WIDTH x;\n", nil, nil)
	require.False(t, bag.HasErrors())
	assert.Contains(t, out, "int 32 x;")
}

func TestProcessPredefines(t *testing.T) {
	out, bag := run(t, "fn f() -> VALUE { return VALUE; }\n", nil, map[string]string{"VALUE": "42"})
	require.False(t, bag.HasErrors())
	assert.Contains(t, out, "42")
}

func TestProcessIfdefTakesTrueBranch(t *testing.T) {
	src := "%define FEATURE 1\n%ifdef FEATURE\nfeature_on();\n%else\nfeature_off();\n%endif\n"
	out, bag := run(t, src, nil, nil)
	require.False(t, bag.HasErrors())
	assert.Contains(t, out, "feature_on();")
	assert.NotContains(t, out, "feature_off();")
}

func TestProcessIfEvaluatesArithmeticCondition(t *testing.T) {
	src := "%if 1 + 1 == 2\nyes();\n%else\nno();\n%endif\n"
	out, bag := run(t, src, nil, nil)
	require.False(t, bag.HasErrors())
	assert.Contains(t, out, "yes();")
}

func TestProcessUnclosedIfReportsError(t *testing.T) {
	_, bag := run(t, "%if 1\nbody();\n", nil, nil)
	assert.True(t, bag.HasErrors())
}

func TestProcessMacroParenthesizedCall(t *testing.T) {
	src := "%macro add 2\n%1 + %2\n%endmacro\nadd(x, y);\n"
	out, bag := run(t, src, nil, nil)
	require.False(t, bag.HasErrors())
	assert.Contains(t, out, "x + y;")
}

func TestProcessIncludeWithoutResolverErrors(t *testing.T) {
	_, bag := run(t, `%include "missing.inc"`+"\n", nil, nil)
	assert.True(t, bag.HasErrors())
}

func TestProcessIncludeResolvesThroughCallback(t *testing.T) {
	resolver := func(path, fromDir string, angled bool) (string, string, error) {
		return "/virtual/" + path, "included_body();\n", nil
	}
	out, bag := run(t, `%include "inc.aria"`+"\n", resolver, nil)
	require.False(t, bag.HasErrors())
	assert.Contains(t, out, "included_body();")
}

func TestProcessIncludeCycleDetected(t *testing.T) {
	resolver := func(path, fromDir string, angled bool) (string, string, error) {
		return "t.aria", `%include "t.aria"` + "\n", nil
	}
	_, bag := run(t, `%include "t.aria"`+"\n", resolver, nil)
	assert.True(t, bag.HasErrors())
}

func TestProcessContextLocalLabel(t *testing.T) {
	src := "%push loop1\nlabel_%$top:\n%pop\n"
	out, bag := run(t, src, nil, nil)
	require.False(t, bag.HasErrors())
	assert.Contains(t, out, "label_loop1_1_top:")
}
