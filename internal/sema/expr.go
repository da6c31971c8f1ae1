package sema

import (
	"strconv"

	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/symbols"
	"github.com/aria-lang/ariac/internal/types"
)

// checkExpr type-checks e, annotates e.ResolvedType, and returns the
// resolved type.
func (c *Checker) checkExpr(e *ast.Expr) *types.Type {
	if e == nil {
		return types.VoidType
	}
	t := c.checkExprKind(e)
	e.ResolvedType = t
	return t
}

func (c *Checker) checkExprKind(e *ast.Expr) *types.Type {
	switch e.Kind {
	case ast.ELiteral:
		return c.literalType(e)
	case ast.EIdent:
		return c.identType(e)
	case ast.EBinary:
		lt := c.checkExpr(e.Left)
		rt := c.checkExpr(e.Right)
		rt2, reason := types.BinaryResult(e.Op, lt, rt)
		if reason != "" {
			c.bag.Errorf(e.Pos, diag.CodeTypeMismatch, "%s", reason)
		}
		return rt2
	case ast.EUnary:
		ot := c.checkExpr(e.Right)
		rt, reason := types.UnaryResult(e.Op, ot)
		if reason != "" {
			c.bag.Errorf(e.Pos, diag.CodeTypeMismatch, "%s", reason)
		}
		c.checkBorrowUnary(e, ot)
		return rt
	case ast.EAssign:
		lt := c.checkExpr(e.Left)
		rt := c.checkExpr(e.Right)
		if e.Op == "=" {
			if !types.Assignable(lt, rt) {
				c.bag.Errorf(e.Pos, diag.CodeTypeMismatch, "cannot assign %s to %s", rt, lt)
			}
			return lt
		}
		rt2, reason := types.BinaryResult(e.Op[:len(e.Op)-1], lt, rt)
		if reason != "" {
			c.bag.Errorf(e.Pos, diag.CodeTypeMismatch, "%s", reason)
		}
		return rt2
	case ast.ETernary:
		c.checkExpr(e.Left)
		tt := c.checkExpr(e.Then)
		c.checkExpr(e.Else)
		return tt
	case ast.ECall:
		return c.checkCall(e)
	case ast.EIndex:
		ot := c.checkExpr(e.Object)
		c.checkExpr(e.Index)
		if ot.Cat == types.Array || ot.Cat == types.Vector {
			return ot.Elem
		}
		if ot.Cat == types.Error {
			return types.ErrorType
		}
		c.bag.Errorf(e.Pos, diag.CodeTypeMismatch, "cannot index non-array/vector type %s", ot)
		return types.ErrorType
	case ast.EMember:
		ot := c.checkExpr(e.Object)
		target := ot
		if ot.Cat == types.Pointer {
			target = ot.Pointee
		}
		if target.Cat == types.Struct {
			for _, f := range target.Fields {
				if f.Name == e.Field {
					return f.Type
				}
			}
		}
		if target.Cat == types.Error {
			return types.ErrorType
		}
		c.bag.Errorf(e.Pos, diag.CodeUndefinedSymbol, "%s has no field %q", target, e.Field)
		return types.ErrorType
	case ast.ELambda:
		return c.checkLambda(e)
	case ast.ETemplateString:
		for _, sub := range e.TemplateExprs {
			c.checkExpr(sub)
		}
		return types.StringType
	case ast.ERange:
		c.checkExpr(e.Left)
		c.checkExpr(e.Right)
		return &types.Type{Cat: types.Array, Elem: types.Int(64), ArraySize: -1}
	case ast.EArrayLit:
		var elem *types.Type = types.UnknownType
		for _, el := range e.Elements {
			elem = c.checkExpr(el)
		}
		return &types.Type{Cat: types.Array, Elem: elem, ArraySize: len(e.Elements)}
	case ast.EVectorLit:
		var elem *types.Type = types.Flt(32)
		for _, el := range e.Elements {
			elem = c.checkExpr(el)
		}
		return &types.Type{Cat: types.Vector, Elem: elem, VecDim: len(e.Elements)}
	case ast.EObjectLit:
		st := &types.Type{Cat: types.Struct, Name: e.TypeName}
		for _, f := range e.Fields {
			st.Fields = append(st.Fields, types.Field{Name: f.Name, Type: c.checkExpr(f.Value)})
		}
		return st
	case ast.EUnwrap:
		inner := c.checkExpr(e.Left)
		if e.Default != nil {
			c.checkExpr(e.Default)
		}
		if inner.Cat == types.Result {
			return inner.ValueType
		}
		return inner
	case ast.EAwait:
		if c.asyncDepth == 0 {
			c.bag.Errorf(e.Pos, diag.CodeAsyncOutsideCtx, "await used outside an async function")
		}
		inner := c.checkExpr(e.Right)
		if inner.Cat == types.Future {
			return inner.ValueType
		}
		return inner
	case ast.ESpawn:
		inner := c.checkExpr(e.Right)
		return &types.Type{Cat: types.Future, ValueType: inner}
	default:
		return types.UnknownType
	}
}

func (c *Checker) literalType(e *ast.Expr) *types.Type {
	switch e.LitKind {
	case ast.LitInt:
		if _, err := strconv.ParseInt(e.LitText, 0, 64); err != nil {
			return types.Int(64) // wide literal; exact width/overflow handled by ctfe
		}
		return types.Int(32)
	case ast.LitFloat:
		return types.Flt(64)
	case ast.LitString:
		return types.StringType
	case ast.LitChar:
		return types.UInt(8)
	case ast.LitBool:
		return types.BoolType
	case ast.LitNull:
		return types.DynType
	}
	return types.UnknownType
}

func (c *Checker) identType(e *ast.Expr) *types.Type {
	sym, _ := c.scope.Lookup(e.Ident)
	if sym == nil {
		help := diag.Suggest(e.Ident, c.scope.AllNames())
		c.bag.Add(diag.Diagnostic{
			Severity: diag.Error, Code: diag.CodeUndefinedSymbol,
			Message: "undefined symbol " + e.Ident, Pos: e.Pos, Help: help,
		})
		return types.ErrorType
	}
	return sym.Type
}

func (c *Checker) checkCall(e *ast.Expr) *types.Type {
	ct := c.checkExpr(e.Callee)
	for _, a := range e.Args {
		c.checkExpr(a)
	}
	if len(e.TypeArgs) > 0 && e.Callee.Kind == ast.EIdent {
		if ct2 := c.instantiateGenericCall(e); ct2 != nil {
			ct = ct2
		}
	}
	if ct.Cat == types.Function {
		if len(e.Args) != len(ct.Params) && !ct.Variadic {
			c.bag.Errorf(e.Pos, diag.CodeTypeMismatch, "expected %d argument(s), got %d", len(ct.Params), len(e.Args))
		}
		for i, a := range e.Args {
			if i < len(ct.Params) {
				at := a.ResolvedType
				if at == nil {
					continue
				}
				if t, ok := at.(*types.Type); ok && !types.Assignable(ct.Params[i], t) {
					c.bag.Errorf(a.Pos, diag.CodeTypeMismatch, "argument %d: cannot pass %s as %s", i+1, t, ct.Params[i])
				}
			}
		}
		return ct.Return
	}
	if ct.Cat == types.Error {
		return types.ErrorType
	}
	c.bag.Errorf(e.Pos, diag.CodeTypeMismatch, "cannot call non-function type %s", ct)
	return types.ErrorType
}

// instantiateGenericCall resolves an explicit generic call site (f<T, U>(...))
// against the registered generic function and, when a mono.Registry is
// wired in, records the (name, type-args) instantiation so IR emission and
// vtable layout can reference it by its deduplicated key. Returns nil if
// e's callee is not a known generic function.
func (c *Checker) instantiateGenericCall(e *ast.Expr) *types.Type {
	decl, ok := c.generics[e.Callee.Ident]
	if !ok {
		return nil
	}
	argTypes := make([]*types.Type, len(e.TypeArgs))
	for i, ta := range e.TypeArgs {
		argTypes[i] = c.resolveTypeExpr(ta)
	}
	resolve := func() *types.Type {
		subst := map[string]*types.Type{}
		for i, g := range decl.Generics {
			if i < len(argTypes) {
				subst[g.Name] = argTypes[i]
			}
		}
		prev := c.genericSubst
		c.genericSubst = subst
		sig := c.funcSignature(decl)
		c.genericSubst = prev
		return sig
	}
	if c.monoReg == nil {
		return resolve()
	}
	inst := c.monoReg.GetOrCreate(e.Callee.Ident, argTypes, resolve)
	return inst.Resolved
}

func (c *Checker) checkLambda(e *ast.Expr) *types.Type {
	outer := c.scope
	inner := symbols.NewScope(outer)
	c.scope = inner
	sig := &types.Type{Cat: types.Function}
	for _, p := range e.Params {
		pt := c.resolveTypeExpr(p.Type)
		sig.Params = append(sig.Params, pt)
		inner.Define(&symbols.Symbol{Name: p.Name, Type: pt, DeclPos: e.Pos})
	}
	c.checkStmt(e.Body)
	if e.ReturnType != nil {
		sig.Return = c.resolveTypeExpr(e.ReturnType)
	} else {
		sig.Return = types.UnknownType
	}
	c.scope = outer
	c.analyzeCaptures(e, inner, outer)
	return sig
}

// analyzeCaptures implements the closure capture analyzer:
// every free identifier the lambda body references that resolves outside
// its own parameter scope is a capture. A binding found in the module root
// is treated as a global (no capture needed); a wild/wildx pointer is
// captured by move, which forces NeedsHeapEnv so the captured environment
// survives the host frame; any other mutable binding is captured by
// reference; and a const binding is captured by value.
func (c *Checker) analyzeCaptures(e *ast.Expr, inner, outer *symbols.Scope) {
	seen := map[string]bool{}
	visit := func(x *ast.Expr) bool {
		if x.Kind != ast.EIdent {
			return true
		}
		if _, local := inner.LookupLocal(x.Ident); local {
			return true
		}
		sym, defScope := outer.Lookup(x.Ident)
		if sym == nil || seen[x.Ident] {
			return true
		}
		seen[x.Ident] = true
		mode := ast.CaptureByValue
		if defScope == c.mod.Root {
			mode = ast.CaptureGlobal
		} else if sym.Type != nil && sym.Type.Cat == types.Pointer &&
			(sym.Type.PtrKind == types.PtrWild || sym.Type.PtrKind == types.PtrWildX) {
			mode = ast.CaptureByMove
			e.NeedsHeapEnv = true
		} else if sym.Mutable {
			mode = ast.CaptureByRef
		}
		e.Captures = append(e.Captures, ast.Capture{Name: x.Ident, Mode: mode})
		return true
	}
	walkExprField := func(x *ast.Expr) { x.WalkExpr(visit, nil) }
	e.Body.Walk(func(s *ast.Stmt) bool {
		walkExprField(s.Expr)
		walkExprField(s.Cond)
		walkExprField(s.Init)
		return true
	}, nil)
}

// checkBorrowUnary implements the locally decidable part of the
// address-of/pin borrow-escape check: taking @ or # of a wildx-scoped
// symbol is always reported (CodeWildxEscape), and taking it of a
// stack-scoped local is checked for CodeRefOutlives below. Where the
// resulting pointer is returned or stored is not examined here.
func (c *Checker) checkBorrowUnary(e *ast.Expr, operandType *types.Type) {
	if e.Op != "@" && e.Op != "#" {
		return
	}
	if e.Right == nil || e.Right.Kind != ast.EIdent {
		return
	}
	sym, scope := c.scope.Lookup(e.Right.Ident)
	if sym == nil {
		return
	}
	if sym.Flags.WildX {
		c.bag.Errorf(e.Pos, diag.CodeWildxEscape,
			"taking a reference to wildx-scoped %q risks the reference outliving the wildx heap's W^X validity window", e.Right.Ident)
		return
	}
	if scope != c.mod.Root && scope.Depth == 0 {
		// taking a reference to a parameter/local in the function's own
		// top scope is fine; deeper (block-local) wildx references are
		// where an escape past the block is possible.
		return
	}
	if sym.Flags.Stack {
		c.bag.Errorf(e.Pos, diag.CodeRefOutlives,
			"reference to stack-scoped %q cannot outlive the block it is declared in", e.Right.Ident)
	}
}
