// Package diag defines the diagnostic model shared by every pipeline phase:
// a Diagnostic record, a Bag that phases append to without knowing how the
// driver will render or count them, and a renderer that produces a
// file:line:col + caret excerpt format.
//
// Each Diagnostic carries a Severity, a stable Code, a Message, a primary
// position, and an optional help suggestion. Rendering colors severities
// and carets with github.com/fatih/color.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/aria-lang/ariac/internal/source"
)

// Severity is a three-level diagnostic level.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Code is a stable diagnostic identifier, e.g. "E002" for a visibility
// violation or "E_ASYNC_OUTSIDE_CONTEXT".
type Code string

const (
	CodeVisibility       Code = "E002"
	CodeAsyncOutsideCtx  Code = "E_ASYNC_OUTSIDE_CONTEXT"
	CodeUndefinedSymbol  Code = "E_UNDEFINED_SYMBOL"
	CodeTypeMismatch     Code = "E_TYPE_MISMATCH"
	CodeTBBSentinel      Code = "E_TBB_SENTINEL_LITERAL"
	CodeRefOutlives      Code = "E_REF_OUTLIVES_HOST"
	CodeWildxEscape      Code = "E_WILDX_ESCAPE"
	CodeMonoAmbiguous    Code = "E_MONO_AMBIGUOUS"
	CodeMissingTraitImpl Code = "E_MISSING_TRAIT_METHOD"
	CodeParse            Code = "E_PARSE"
	CodeLex              Code = "E_LEX"
	CodePreprocess       Code = "E_PREPROCESS"
	CodeWildNotFreed     Code = "W_WILD_NOT_FREED"
	CodeIncludeTwice     Code = "W_INCLUDE_TWICE"
)

// Diagnostic is one finding from a phase.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Pos      source.Pos
	Help     string // optional "did you mean X?" suggestion
}

// Bag accumulates diagnostics across every phase of one compilation. It is
// threaded through the pipeline explicitly: phases append to it and
// continue where safe, rather than aborting on the first error.
type Bag struct {
	items []Diagnostic
}

func NewBag() *Bag { return &Bag{} }

func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Errorf(pos source.Pos, code Code, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (b *Bag) Warnf(pos source.Pos, code Code, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (b *Bag) Notef(pos source.Pos, code Code, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: Note, Code: code, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// HasErrors reports whether any accumulated diagnostic is at Error severity;
// compilation fails iff the error count is non-zero.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (b *Bag) Items() []Diagnostic { return b.items }

// Counts returns (errors, warnings, notes).
func (b *Bag) Counts() (errs, warns, notes int) {
	for _, d := range b.items {
		switch d.Severity {
		case Error:
			errs++
		case Warning:
			warns++
		case Note:
			notes++
		}
	}
	return
}

// SortByPosition orders diagnostics in source order within a file:
// diagnostics for a single module are emitted in source order of their
// originating positions.
func (b *Bag) SortByPosition() {
	sort.SliceStable(b.items, func(i, j int) bool {
		a, c := b.items[i].Pos, b.items[j].Pos
		if a.File != c.File {
			return a.File < c.File
		}
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		return a.Col < c.Col
	})
}

// Render formats the bag as a file:line:col + caret + summary report.
// Color is applied with fatih/color and respects color.NoColor, which that
// package sets itself for non-terminal output (or when NO_COLOR is set);
// nothing in this module changes it.
func (b *Bag) Render(fset *source.FileSet) string {
	var sb strings.Builder
	sevColor := func(s Severity) *color.Color {
		switch s {
		case Error:
			return color.New(color.FgRed, color.Bold)
		case Warning:
			return color.New(color.FgYellow, color.Bold)
		default:
			return color.New(color.FgCyan)
		}
	}
	for _, d := range b.items {
		c := sevColor(d.Severity)
		fmt.Fprintf(&sb, "%s: %s [%s]\n", c.Sprint(d.Severity), d.Message, d.Code)
		if f := fset.File(d.Pos.File); f != nil {
			fmt.Fprintf(&sb, "  --> %s:%s\n", f.Name, d.Pos)
			line := f.Excerpt(d.Pos.Line)
			fmt.Fprintf(&sb, "   | %s\n", line)
			caret := strings.Repeat(" ", max(d.Pos.Col-1, 0)) + "^"
			fmt.Fprintf(&sb, "   | %s\n", color.New(color.FgRed).Sprint(caret))
		}
		if d.Help != "" {
			fmt.Fprintf(&sb, "  help: %s\n", d.Help)
		}
	}
	errs, warns, notes := b.Counts()
	fmt.Fprintf(&sb, "%d error(s), %d warning(s), %d note(s)\n", errs, warns, notes)
	return sb.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
