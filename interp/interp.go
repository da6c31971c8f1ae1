// Package interp is the library surface of the compiler: an Options struct
// and a New constructor feeding a Compiler whose Compile/CompilePath methods
// give callers one-shot and path-based entry points. Everything below the
// entry points is built on the internal/* phase packages — a
// reflection-based tree-walking VM has no role here, since this is a
// static, LLVM-emitting compiler rather than an interpreter; see
// DESIGN.md's "interp/ (Compiler API)" entry for the reasoning.
package interp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/ctfe"
	"github.com/aria-lang/ariac/internal/diag"
	llvmir "github.com/aria-lang/ariac/internal/ir/llvm"
	"github.com/aria-lang/ariac/internal/lexer"
	"github.com/aria-lang/ariac/internal/log"
	"github.com/aria-lang/ariac/internal/mono"
	"github.com/aria-lang/ariac/internal/parser"
	"github.com/aria-lang/ariac/internal/preprocess"
	"github.com/aria-lang/ariac/internal/resolve"
	"github.com/aria-lang/ariac/internal/sema"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/internal/symbols"
	"github.com/aria-lang/ariac/internal/types"
	"github.com/aria-lang/ariac/internal/vtable"
)

// Options configures one Compiler run.
type Options struct {
	IncludePaths []string          // -I
	Defines      map[string]string // -D
	Strict       bool              // --strict: warnings are promoted to errors
	Verbose      bool              // -v
	Limits       ctfe.Limits
}

// Compiler runs the full pipeline over one program.
type Compiler struct {
	opts Options
	fset *source.FileSet
}

// New constructs a Compiler.
func New(opts Options) *Compiler {
	if opts.Limits == (ctfe.Limits{}) {
		opts.Limits = ctfe.DefaultLimits()
	}
	log.SetVerbose(opts.Verbose)
	return &Compiler{opts: opts, fset: source.NewFileSet()}
}

// Artifact is everything one Compile call produces.
type Artifact struct {
	Program   *ast.Program
	Diags     *diag.Bag
	Fset      *source.FileSet
	IR        string
	Mono      *mono.Registry
	VTables   *vtable.Registry
}

// HasErrors reports whether compilation failed.
func (a *Artifact) HasErrors(strict bool) bool {
	if a.Diags.HasErrors() {
		return true
	}
	if strict {
		_, warns, _ := a.Diags.Counts()
		return warns > 0
	}
	return false
}

// Compile runs every phase over one in-memory source buffer: preprocess,
// lex, parse, check, then emit IR.
func (c *Compiler) Compile(src, filename string) (*Artifact, error) {
	bag := diag.NewBag()
	file := c.fset.AddFile(filename, src)

	t0 := time.Now()
	resolver := func(includePath, fromDir string, angled bool) (string, string, error) {
		dirs := append([]string{fromDir}, c.opts.IncludePaths...)
		for _, dir := range dirs {
			cand := filepath.Join(dir, includePath)
			if data, err := os.ReadFile(cand); err == nil {
				return cand, string(data), nil
			}
		}
		return "", "", fmt.Errorf("include %q not found in %v", includePath, dirs)
	}
	expanded := preprocess.Process(c.fset, bag, file, resolver, c.opts.Defines)
	expandedFile := c.fset.AddFile(filename+".expanded", expanded)
	log.Phase("preprocess", fmt.Sprintf("%d bytes in %s", len(expanded), time.Since(t0)))

	t1 := time.Now()
	toks := lexer.New(expandedFile, bag).Tokenize()
	log.Phase("lexer", fmt.Sprintf("%d tokens in %s", len(toks), time.Since(t1)))

	t2 := time.Now()
	prog := parser.New(toks, expandedFile, bag).Parse()
	log.Phase("parser", fmt.Sprintf("%d top-level decls in %s", len(prog.Decls), time.Since(t2)))

	mod := symbols.NewModule(filename, file)
	monoReg := mono.NewRegistry()
	vtReg := vtable.NewRegistry()

	t3 := time.Now()
	ck := sema.New(bag, mod, nil, c.opts.Limits, monoReg)
	ck.Check(prog)
	log.Phase("sema", fmt.Sprintf("checked %d decls in %s", len(prog.Decls), time.Since(t3)))

	art := &Artifact{Program: prog, Diags: bag, Fset: c.fset, Mono: monoReg, VTables: vtReg}

	if bag.HasErrors() {
		return art, nil
	}

	descs := buildVtables(bag, vtReg, ck, prog)

	t4 := time.Now()
	em := llvmir.New(filename)
	defer em.Dispose()
	for _, d := range prog.Decls {
		switch d.Kind {
		case ast.SFuncDecl:
			emitFunc(em, bag, ck, d.Name, d)
		case ast.SStructDecl:
			for _, m := range d.Methods {
				emitFunc(em, bag, ck, d.Name+"_"+m.Name, m)
			}
		case ast.SImplDecl:
			for _, m := range d.Methods {
				emitFunc(em, bag, ck, implMethodName(d, m.Name), m)
			}
		}
	}
	for _, desc := range descs {
		if err := em.EmitVtable(desc); err != nil {
			bag.Errorf(source.NoPos, diag.CodeParse, "%s", err)
		}
	}
	if err := em.Verify(); err != nil {
		bag.Errorf(source.NoPos, diag.CodeParse, "module failed verification: %s", err)
	}
	art.IR = em.String()
	log.Phase("ir/llvm", fmt.Sprintf("emitted in %s", time.Since(t4)))

	return art, nil
}

// implMethodName is the external linkage name an impl block's method is
// emitted under: monomorphized trait-method mangling (§6.2) for a trait
// impl, or a plain "<type>_<method>" for an inherent one.
func implMethodName(impl *ast.Stmt, method string) string {
	if impl.TraitName != "" {
		return mono.MangledTraitMethod(impl.TraitName, impl.TypeName, method)
	}
	return impl.TypeName + "_" + method
}

// emitFunc declares and lowers one function/method body under name,
// recording a diagnostic instead of aborting the rest of the module on
// failure so one bad function doesn't swallow every other emission.
func emitFunc(em *llvmir.Emitter, bag *diag.Bag, ck *sema.Checker, name string, d *ast.Stmt) {
	if d.FuncBody == nil {
		return // trait method signature, no body to lower
	}
	sig := ck.FuncSignature(d)
	fn, err := em.EmitFuncHeader(name, sig)
	if err != nil {
		bag.Errorf(d.Pos, diag.CodeParse, "%s", err)
		return
	}
	if err := em.EmitFuncBody(fn, d); err != nil {
		bag.Errorf(d.Pos, diag.CodeParse, "%s", err)
	}
}

// buildVtables lays out one vtable.Descriptor per trait impl block, walking
// each trait's supertrait chain depth-first (declaration order, first
// occurrence wins) before appending the trait's own methods, per the
// layout algorithm every (type, trait) pair's dynamic dispatch slot
// assignment follows. Returns the built descriptors in declaration order so
// the caller can emit one vtable global per descriptor once every impl
// method has been declared.
func buildVtables(bag *diag.Bag, vtReg *vtable.Registry, ck *sema.Checker, prog *ast.Program) []*vtable.Descriptor {
	traits := map[string]*ast.Stmt{}
	for _, d := range prog.Decls {
		if d.Kind == ast.STraitDecl {
			traits[d.Name] = d
		}
	}
	var descs []*vtable.Descriptor
	for _, d := range prog.Decls {
		if d.Kind != ast.SImplDecl || d.TraitName == "" {
			continue
		}
		methods := traitMethodOrder(traits, d.TraitName, map[string]bool{})
		impls := map[string]*types.Type{}
		for _, m := range d.Methods {
			impls[m.Name] = ck.FuncSignature(m)
		}
		descs = append(descs, vtReg.Build(bag, d.Pos, d.TypeName, d.TraitName, methods, impls))
	}
	return descs
}

// traitMethodOrder depth-first walks traitName's supertraits in declaration
// order, collecting each method name the first time it is seen, then
// appends traitName's own method names.
func traitMethodOrder(traits map[string]*ast.Stmt, traitName string, seen map[string]bool) []string {
	t, ok := traits[traitName]
	if !ok || seen[traitName] {
		return nil
	}
	seen[traitName] = true
	var names []string
	have := map[string]bool{}
	for _, super := range t.SuperTraits {
		for _, n := range traitMethodOrder(traits, super, seen) {
			if !have[n] {
				have[n] = true
				names = append(names, n)
			}
		}
	}
	for _, sig := range t.MethodSigs {
		if !have[sig.Name] {
			have[sig.Name] = true
			names = append(names, sig.Name)
		}
	}
	return names
}

// CompilePath reads path from disk and compiles it.
func (c *Compiler) CompilePath(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return c.Compile(string(data), path)
}

// CompileModuleGraph resolves and compiles root plus every module it
// transitively uses, fanning module loads out through
// internal/resolve's errgroup-backed Resolver.
func (c *Compiler) CompileModuleGraph(ctx context.Context, rootPath string) (map[string]*Artifact, error) {
	load := func(path string) (*ast.Program, *source.File, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		file := c.fset.AddFile(path, string(data))
		bag := diag.NewBag()
		toks := lexer.New(file, bag).Tokenize()
		prog := parser.New(toks, file, bag).Parse()
		return prog, file, nil
	}
	r := resolve.New(load, diag.NewBag())
	mods, err := r.ResolveAll(ctx, rootPath)
	if err != nil {
		return nil, err
	}
	out := map[string]*Artifact{}
	for path := range mods {
		art, err := c.CompilePath(path)
		if err != nil {
			return nil, err
		}
		out[path] = art
	}
	return out, nil
}
