// Package sema implements the two-pass symbol resolution & type checker,
// the borrow/escape analysis, and the closure capture analyzer. It is the
// single phase that turns an untyped ast.Program into one with every
// ast.Expr.ResolvedType filled in and every ast.Expr Captures/NeedsHeapEnv
// annotation set.
//
// The first pass collects every top-level declaration's signature into
// scope; the second pass type-checks bodies against that scope, so forward
// references and mutual recursion between functions resolve correctly.
package sema

import (
	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/ctfe"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/mono"
	"github.com/aria-lang/ariac/internal/symbols"
	"github.com/aria-lang/ariac/internal/types"
)

// Checker type-checks one module's program against its own symbol table and
// the export tables of whatever modules it imports.
type Checker struct {
	bag     *diag.Bag
	mod     *symbols.Module
	imports map[string]*symbols.Module // alias/last-segment -> imported module
	scope   *symbols.Scope
	loopDepth int
	asyncDepth int
	ctfeEval *ctfe.Evaluator // evaluates const declarations in place
	monoReg  *mono.Registry  // generic call-site instantiations, nil disables monomorphization

	generics      map[string]*ast.Stmt      // generic func name -> its SFuncDecl, for call-site instantiation
	genericSubst  map[string]*types.Type    // active substitution while resolving an instantiated signature
}

// New constructs a Checker. monoReg may be nil, in which case explicit
// generic call instantiations (f<T>(...)) are still type-checked but no
// monomorphization record is produced for them.
func New(bag *diag.Bag, mod *symbols.Module, imports map[string]*symbols.Module, limits ctfe.Limits, monoReg *mono.Registry) *Checker {
	return &Checker{
		bag: bag, mod: mod, imports: imports, scope: mod.Root,
		ctfeEval: ctfe.New(bag, limits), monoReg: monoReg,
		generics: map[string]*ast.Stmt{},
	}
}

// Check runs both passes over prog's declarations.
func (c *Checker) Check(prog *ast.Program) {
	c.declarePass(prog.Decls)
	for _, d := range prog.Decls {
		c.checkDecl(d)
	}
}

// declarePass (pass 1) resolves every top-level declaration's static type
// signature before any body is checked, so forward references and mutual
// recursion between functions/structs work.
func (c *Checker) declarePass(decls []*ast.Stmt) {
	for _, d := range decls {
		switch d.Kind {
		case ast.SFuncDecl:
			if len(d.Generics) > 0 {
				c.generics[d.Name] = d
			}
			sig := c.funcSignature(d)
			if sym, _ := c.scope.LookupLocal(d.Name); sym != nil {
				sym.Signature = sig
				sym.Type = sig
			} else {
				c.scope.Define(&symbols.Symbol{Name: d.Name, IsFunc: true, Signature: sig, Type: sig, DeclPos: d.Pos})
			}
		case ast.SStructDecl:
			st := c.structType(d)
			if sym, _ := c.scope.LookupLocal(d.Name); sym != nil {
				sym.Type = st
			} else {
				c.scope.Define(&symbols.Symbol{Name: d.Name, Type: st, DeclPos: d.Pos})
			}
		}
	}
}

// FuncSignature resolves d's parameter/return types without checking its
// body, for callers (the IR emitter) that need a declared function's
// signature after Check has already run.
func (c *Checker) FuncSignature(d *ast.Stmt) *types.Type { return c.funcSignature(d) }

func (c *Checker) funcSignature(d *ast.Stmt) *types.Type {
	sig := &types.Type{Cat: types.Function}
	for _, p := range d.Params {
		sig.Params = append(sig.Params, c.resolveTypeExpr(p.Type))
	}
	if d.Type != nil {
		sig.Return = c.resolveTypeExpr(d.Type)
	} else {
		sig.Return = types.VoidType
	}
	return sig
}

func (c *Checker) structType(d *ast.Stmt) *types.Type {
	st := &types.Type{Cat: types.Struct, Name: d.Name, Packed: d.Packed}
	for _, f := range d.Fields {
		st.Fields = append(st.Fields, types.Field{Name: f.Name, Type: c.resolveTypeExpr(f.Type)})
	}
	return st
}

// resolveTypeExpr turns a parsed ast.TypeExpr into a checked types.Type,
// looking named types up in the current scope.
func (c *Checker) resolveTypeExpr(te *ast.TypeExpr) *types.Type {
	if te == nil {
		return types.VoidType
	}
	switch te.Kind {
	case ast.TVoid:
		return types.VoidType
	case ast.TBool:
		return types.BoolType
	case ast.TString:
		return types.StringType
	case ast.TDyn:
		return types.DynType
	case ast.TSignedInt:
		return types.Int(te.Bits)
	case ast.TUnsignedInt:
		return types.UInt(te.Bits)
	case ast.TFloat:
		return types.Flt(te.Bits)
	case ast.TTBB:
		return types.TBBInt(te.Bits)
	case ast.TPointer:
		pk := types.PtrPlain
		switch te.PtrFlag {
		case ast.PointerWild:
			pk = types.PtrWild
		case ast.PointerWildX:
			pk = types.PtrWildX
		case ast.PointerPinned:
			pk = types.PtrPinned
		}
		return &types.Type{Cat: types.Pointer, Pointee: c.resolveTypeExpr(te.Pointee), PtrKind: pk}
	case ast.TArray:
		size := -1
		if te.ArrayLen != nil {
			size = -1 // const-evaluated by ctfe; left dynamic at sema time
		}
		return &types.Type{Cat: types.Array, Elem: c.resolveTypeExpr(te.Elem), ArraySize: size}
	case ast.TVector:
		return &types.Type{Cat: types.Vector, Elem: c.resolveTypeExpr(te.Elem), VecDim: te.VectorDim}
	case ast.TResult:
		return &types.Type{Cat: types.Result, ValueType: c.resolveTypeExpr(te.Value)}
	case ast.TFuture:
		return &types.Type{Cat: types.Future, ValueType: c.resolveTypeExpr(te.Value)}
	case ast.TFunction:
		sig := &types.Type{Cat: types.Function}
		for _, p := range te.Params {
			sig.Params = append(sig.Params, c.resolveTypeExpr(p))
		}
		sig.Return = c.resolveTypeExpr(te.Return)
		return sig
	case ast.TNamed:
		if sym, _ := c.scope.Lookup(te.Name); sym != nil && sym.Type != nil {
			return sym.Type
		}
		c.bag.Errorf(te.Pos, diag.CodeUndefinedSymbol, "undefined type %q", te.Name)
		return types.ErrorType
	case ast.TGeneric:
		if t, ok := c.genericSubst[te.Name]; ok {
			return t
		}
		return types.UnknownType
	default:
		return types.UnknownType
	}
}
