// Package symbols implements symbols, lexically nested scopes, and modules
// with export visibility. Scope is a name->Symbol map plus a parent link,
// walked on lookup, giving module-level and block-level lexical scoping
// the same shape.
package symbols

import (
	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/internal/types"
)

// Visibility is the export visibility of a module-level symbol.
type Visibility int

const (
	Private Visibility = iota
	Pub
	PubPackage
	PubSuper
)

func (v Visibility) String() string {
	switch v {
	case Pub:
		return "pub"
	case PubPackage:
		return "pub(package)"
	case PubSuper:
		return "pub(super)"
	default:
		return "private"
	}
}

// Symbol binds a name to a type plus the metadata requires.
type Symbol struct {
	Name       string
	Type       *types.Type
	Mutable    bool
	Visibility Visibility
	IsFunc     bool
	Signature  *types.Type // Function-category type, set when IsFunc
	ScopeDepth int
	DeclLine   int
	DeclPos    source.Pos
	Module     *Module // owning module, for visibility checks
	Flags      ast.VarFlags // storage class, for borrow/escape analysis
}

// Scope is a name -> Symbol map with a parent link; lookups walk the parent
// chain.
type Scope struct {
	Parent *Scope
	Depth  int
	Global bool
	Names  map[string]*Symbol
}

func NewScope(parent *Scope) *Scope {
	depth := 0
	if parent != nil {
		depth = parent.Depth + 1
	}
	return &Scope{Parent: parent, Depth: depth, Names: map[string]*Symbol{}}
}

// Define adds a symbol to this scope, shadowing any same-named symbol in an
// enclosing scope.
func (s *Scope) Define(sym *Symbol) {
	sym.ScopeDepth = s.Depth
	s.Names[sym.Name] = sym
}

// Lookup walks the parent chain looking for name, returning the defining
// scope alongside the symbol so callers can compare scope depths (needed by
// the borrow/escape analysis).
func (s *Scope) Lookup(name string) (*Symbol, *Scope) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.Names[name]; ok {
			return sym, sc
		}
	}
	return nil, nil
}

// LookupLocal looks only in this scope, not its ancestors.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.Names[name]
	return sym, ok
}

// AllNames returns every name visible from this scope, walking to the root;
// used by the "did you mean?" suggestion search.
func (s *Scope) AllNames() []string {
	seen := map[string]bool{}
	var names []string
	for sc := s; sc != nil; sc = sc.Parent {
		for n := range sc.Names {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// Import is one entry in a module's import list.
type Import struct {
	Path      string
	Alias     string
	Wildcard  bool
	Selective []string
	Pos       source.Pos
}

// Export maps an exported name to its symbol and visibility.
type Export struct {
	Symbol     *Symbol
	Visibility Visibility
}

// Module owns a root scope, its import list, and its export table.
type Module struct {
	Path    string // the resolved, canonical module path
	File    *source.File
	Root    *Scope
	Imports []Import
	Exports map[string]Export
	Parent  string // the module path of the "super" module, for pub(super)
}

func NewModule(path string, file *source.File) *Module {
	return &Module{
		Path:    path,
		File:    file,
		Root:    NewScope(nil),
		Exports: map[string]Export{},
	}
}

// Export records sym in this module's export table under the given
// visibility, making it resolvable from importing modules.
func (m *Module) Export(sym *Symbol, vis Visibility) {
	sym.Visibility = vis
	sym.Module = m
	m.Exports[sym.Name] = Export{Symbol: sym, Visibility: vis}
}

// CanAccess implements the visibility table: whether sym, exported by its
// owning module m, is visible from the module accessing, which is the
// immediate child of m iff accessing.Parent was recorded as m.Path.
func CanAccess(sym *Symbol, accessing *Module) bool {
	if sym.Module == nil {
		return true // unresolved / builtin symbol, not subject to visibility
	}
	switch sym.Visibility {
	case Pub:
		return true
	case PubPackage:
		return true // "same compilation unit" — the whole program, for a single-shot batch compiler
	case PubSuper:
		return accessing != nil && accessing.Parent == sym.Module.Path
	default: // Private
		return accessing != nil && accessing.Path == sym.Module.Path
	}
}
