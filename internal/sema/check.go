package sema

import (
	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/symbols"
	"github.com/aria-lang/ariac/internal/types"
)

func (c *Checker) checkDecl(d *ast.Stmt) {
	switch d.Kind {
	case ast.SFuncDecl:
		c.checkFunc(d)
	case ast.SStructDecl:
		for _, m := range d.Methods {
			c.checkFunc(m)
		}
	case ast.STraitDecl, ast.SImplDecl:
		for _, m := range d.Methods {
			c.checkFunc(m)
		}
		for _, m := range d.MethodSigs {
			c.checkFunc(m)
		}
	default:
		c.checkStmt(d)
	}
}

func (c *Checker) checkFunc(d *ast.Stmt) {
	if d.FuncBody == nil {
		return // trait method signature, no body to check
	}
	outer := c.scope
	c.scope = symbols.NewScope(outer)
	if d.Async {
		c.asyncDepth++
	}
	for _, p := range d.Params {
		c.scope.Define(&symbols.Symbol{Name: p.Name, Type: c.resolveTypeExpr(p.Type), DeclPos: d.Pos})
	}
	c.checkStmt(d.FuncBody)
	if d.Async {
		c.asyncDepth--
	}
	c.scope = outer
}

func (c *Checker) checkStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.SBlock:
		outer := c.scope
		c.scope = symbols.NewScope(outer)
		for _, st := range s.Body {
			c.checkStmt(st)
		}
		c.scope = outer
	case ast.SVarDecl:
		var declared *types.Type
		if s.Type != nil {
			declared = c.resolveTypeExpr(s.Type)
		}
		var initType *types.Type = types.UnknownType
		if s.Init != nil {
			initType = c.checkExpr(s.Init)
		}
		vt := declared
		if vt == nil {
			vt = initType
		} else if s.Init != nil && !types.Assignable(vt, initType) && !(vt.Cat == types.TBB && isIntLiteral(s.Init)) {
			c.bag.Errorf(s.Pos, diag.CodeTypeMismatch, "cannot initialize %s of type %s with value of type %s", s.Name, vt, initType)
		}
		if s.VarFlags.Const && s.Init != nil {
			c.checkConstInit(s, vt)
		}
		c.scope.Define(&symbols.Symbol{
			Name: s.Name, Type: vt, Mutable: !s.VarFlags.Const, DeclPos: s.Pos, Flags: s.VarFlags,
		})
	case ast.SExprStmt:
		c.checkExpr(s.Expr)
	case ast.SReturn:
		if s.Expr != nil {
			c.checkExpr(s.Expr)
		}
	case ast.SIf:
		c.checkExpr(s.Cond)
		c.checkBlockBody(s.Body)
		if s.Else2 != nil {
			c.checkStmt(s.Else2)
		}
	case ast.SWhile:
		c.checkExpr(s.Cond)
		c.loopDepth++
		c.checkBlockBody(s.Body)
		c.loopDepth--
	case ast.SForIn:
		c.checkExpr(s.IterExpr)
		outer := c.scope
		c.scope = symbols.NewScope(outer)
		c.scope.Define(&symbols.Symbol{Name: s.IterVar, Type: types.UnknownType, DeclPos: s.Pos})
		c.loopDepth++
		for _, st := range s.Body {
			c.checkStmt(st)
		}
		c.loopDepth--
		c.scope = outer
	case ast.SLoop, ast.STill:
		if s.Start != nil {
			c.checkExpr(s.Start)
		}
		c.checkExpr(s.Limit)
		if s.Step != nil {
			c.checkExpr(s.Step)
		}
		c.loopDepth++
		c.checkBlockBody(s.Body)
		c.loopDepth--
	case ast.SWhen:
		c.checkExpr(s.Cond)
		c.checkBlockBody(s.Body)
		c.checkBlockBody(s.ThenBody)
		c.checkBlockBody(s.EndBody)
	case ast.SPick:
		c.checkExpr(s.Selector)
		for _, cs := range s.Cases {
			if cs.Exact != nil {
				c.checkExpr(cs.Exact)
			}
			if cs.RangeLow != nil {
				c.checkExpr(cs.RangeLow)
			}
			if cs.RangeHigh != nil {
				c.checkExpr(cs.RangeHigh)
			}
			if cs.CompareValue != nil {
				c.checkExpr(cs.CompareValue)
			}
			c.checkBlockBody(cs.Body)
		}
	case ast.SDefer:
		c.checkStmt(s.DeferBody)
	case ast.SBreak, ast.SContinue:
		if c.loopDepth == 0 && s.Label == "" {
			c.bag.Errorf(s.Pos, diag.CodeParse, "%s outside of a loop", map[bool]string{true: "break", false: "continue"}[s.Kind == ast.SBreak])
		}
	case ast.SFuncDecl:
		c.checkFunc(s)
	case ast.SStructDecl, ast.STraitDecl, ast.SImplDecl:
		c.checkDecl(s)
	}
}

// checkConstInit folds a const declaration's initializer through the CTFE
// evaluator, rejecting direct assignment of a TBB type's reserved ERR
// sentinel value.
func (c *Checker) checkConstInit(s *ast.Stmt, vt *types.Type) {
	val, ok := c.ctfeEval.Eval(s.Init)
	if !ok {
		return
	}
	if vt != nil && vt.Cat == types.TBB && val.Int == types.TBBMin(vt.Bits) {
		c.bag.Errorf(s.Pos, diag.CodeTBBSentinel,
			"const %q is directly initialized to the TBB%d reserved ERR sentinel (%d)", s.Name, vt.Bits, val.Int)
	}
}

// isIntLiteral reports whether e is an integer literal, optionally negated;
// such a literal may initialize a TBB variable without a cast.
func isIntLiteral(e *ast.Expr) bool {
	if e.Kind == ast.EUnary && e.Op == "-" && e.Right != nil {
		e = e.Right
	}
	return e.Kind == ast.ELiteral && e.LitKind == ast.LitInt
}

func (c *Checker) checkBlockBody(body []*ast.Stmt) {
	outer := c.scope
	c.scope = symbols.NewScope(outer)
	for _, st := range body {
		c.checkStmt(st)
	}
	c.scope = outer
}
