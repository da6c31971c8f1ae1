package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/ctfe"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/symbols"
	"github.com/aria-lang/ariac/internal/types"
)

func intType(bits int) *ast.TypeExpr { return &ast.TypeExpr{Kind: ast.TSignedInt, Bits: bits} }

func block(stmts ...*ast.Stmt) *ast.Stmt { return &ast.Stmt{Kind: ast.SBlock, Body: stmts} }

func exprStmt(e *ast.Expr) *ast.Stmt { return &ast.Stmt{Kind: ast.SExprStmt, Expr: e} }

func newChecker() (*Checker, *diag.Bag) {
	bag := diag.NewBag()
	mod := symbols.NewModule("main", nil)
	return New(bag, mod, nil, ctfe.DefaultLimits(), nil), bag
}

func TestCheckResolvesMutualRecursionViaDeclarePass(t *testing.T) {
	c, bag := newChecker()
	isEven := &ast.Stmt{
		Kind: ast.SFuncDecl, Name: "isEven",
		Params: []ast.Param{{Type: intType(32), Name: "n"}},
		Type:   intType(32),
		FuncBody: block(exprStmt(&ast.Expr{
			Kind: ast.ECall,
			Callee: &ast.Expr{Kind: ast.EIdent, Ident: "isOdd"},
			Args:   []*ast.Expr{{Kind: ast.EIdent, Ident: "n"}},
		})),
	}
	isOdd := &ast.Stmt{
		Kind: ast.SFuncDecl, Name: "isOdd",
		Params: []ast.Param{{Type: intType(32), Name: "n"}},
		Type:   intType(32),
		FuncBody: block(exprStmt(&ast.Expr{
			Kind: ast.ECall,
			Callee: &ast.Expr{Kind: ast.EIdent, Ident: "isEven"},
			Args:   []*ast.Expr{{Kind: ast.EIdent, Ident: "n"}},
		})),
	}

	c.Check(&ast.Program{Decls: []*ast.Stmt{isEven, isOdd}})
	assert.False(t, bag.HasErrors(), bag.Items())
}

func TestCheckVarDeclTypeMismatchReportsDiagnostic(t *testing.T) {
	c, bag := newChecker()
	decl := &ast.Stmt{
		Kind: ast.SVarDecl,
		Name: "x",
		Type: &ast.TypeExpr{Kind: ast.TBool},
		Init: &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitInt, LitText: "1"},
	}
	fn := &ast.Stmt{Kind: ast.SFuncDecl, Name: "f", FuncBody: block(decl)}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	assert.True(t, bag.HasErrors())
	errs, _, _ := bag.Counts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, diag.CodeTypeMismatch, bag.Items()[0].Code)
}

func TestCheckVarDeclCompatibleTypeHasNoDiagnostic(t *testing.T) {
	c, bag := newChecker()
	decl := &ast.Stmt{
		Kind: ast.SVarDecl,
		Name: "x",
		Type: intType(32),
		Init: &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitInt, LitText: "1"},
	}
	fn := &ast.Stmt{Kind: ast.SFuncDecl, Name: "f", FuncBody: block(decl)}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	assert.False(t, bag.HasErrors(), bag.Items())
}

func TestResolveTypeExprUndefinedNamedTypeReportsDiagnostic(t *testing.T) {
	c, bag := newChecker()
	rt := c.resolveTypeExpr(&ast.TypeExpr{Kind: ast.TNamed, Name: "Unknown"})
	assert.Equal(t, types.ErrorType, rt)
	assert.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeUndefinedSymbol, bag.Items()[0].Code)
}

func TestResolveTypeExprNamedTypeFoundInScope(t *testing.T) {
	c, bag := newChecker()
	structTy := &types.Type{Cat: types.Struct, Name: "Point"}
	c.scope.Define(&symbols.Symbol{Name: "Point", Type: structTy})

	rt := c.resolveTypeExpr(&ast.TypeExpr{Kind: ast.TNamed, Name: "Point"})
	assert.Same(t, structTy, rt)
	assert.False(t, bag.HasErrors())
}

func TestCheckBreakOutsideLoopReportsDiagnostic(t *testing.T) {
	c, bag := newChecker()
	fn := &ast.Stmt{Kind: ast.SFuncDecl, Name: "f", FuncBody: block(&ast.Stmt{Kind: ast.SBreak})}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	assert.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeParse, bag.Items()[0].Code)
}

func TestCheckBreakInsideLoopIsFine(t *testing.T) {
	c, bag := newChecker()
	loop := &ast.Stmt{
		Kind: ast.SWhile,
		Cond: &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitBool, LitText: "true"},
		Body: []*ast.Stmt{{Kind: ast.SBreak}},
	}
	fn := &ast.Stmt{Kind: ast.SFuncDecl, Name: "f", FuncBody: block(loop)}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	assert.False(t, bag.HasErrors(), bag.Items())
}

func TestCheckBlockScopeDoesNotLeakToOuterScope(t *testing.T) {
	c, bag := newChecker()
	inner := &ast.Stmt{
		Kind: ast.SVarDecl, Name: "y",
		Type: intType(32),
		Init: &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitInt, LitText: "1"},
	}
	useOutside := exprStmt(&ast.Expr{Kind: ast.EIdent, Ident: "y"})
	fn := &ast.Stmt{
		Kind: ast.SFuncDecl, Name: "f",
		FuncBody: block(block(inner), useOutside),
	}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	assert.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeUndefinedSymbol, bag.Items()[len(bag.Items())-1].Code)
}

func TestCheckAwaitOutsideAsyncReportsDiagnostic(t *testing.T) {
	c, bag := newChecker()
	fn := &ast.Stmt{
		Kind: ast.SFuncDecl, Name: "f",
		FuncBody: block(exprStmt(&ast.Expr{
			Kind:  ast.EAwait,
			Right: &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitInt, LitText: "1"},
		})),
	}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	assert.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeAsyncOutsideCtx, bag.Items()[0].Code)
}

func TestCheckLambdaCapturesOuterLocalByValue(t *testing.T) {
	c, bag := newChecker()
	outer := &ast.Stmt{
		Kind: ast.SVarDecl, Name: "n",
		VarFlags: ast.VarFlags{Const: true},
		Type: intType(32),
		Init: &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitInt, LitText: "1"},
	}
	lambda := &ast.Expr{
		Kind: ast.ELambda,
		Body: block(exprStmt(&ast.Expr{Kind: ast.EIdent, Ident: "n"})),
	}
	fn := &ast.Stmt{
		Kind: ast.SFuncDecl, Name: "f",
		FuncBody: block(outer, exprStmt(lambda)),
	}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	require.False(t, bag.HasErrors(), bag.Items())
	require.Len(t, lambda.Captures, 1)
	assert.Equal(t, "n", lambda.Captures[0].Name)
	assert.Equal(t, ast.CaptureByValue, lambda.Captures[0].Mode)
}

func TestCheckLambdaCapturesWildPointerByMoveAndNeedsHeapEnv(t *testing.T) {
	c, bag := newChecker()
	wildPtrParam := ast.Param{
		Name: "p",
		Type: &ast.TypeExpr{Kind: ast.TPointer, PtrFlag: ast.PointerWild, Pointee: intType(32)},
	}
	lambda := &ast.Expr{
		Kind: ast.ELambda,
		Body: block(exprStmt(&ast.Expr{Kind: ast.EIdent, Ident: "p"})),
	}
	fn := &ast.Stmt{
		Kind:     ast.SFuncDecl,
		Name:     "f",
		Params:   []ast.Param{wildPtrParam},
		FuncBody: block(exprStmt(lambda)),
	}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	assert.False(t, bag.HasErrors(), bag.Items())
	require.Len(t, lambda.Captures, 1)
	assert.Equal(t, ast.CaptureByMove, lambda.Captures[0].Mode)
	assert.True(t, lambda.NeedsHeapEnv)
}

func TestCheckBorrowUnaryOfWildxScopedLocalReportsWildxEscape(t *testing.T) {
	c, bag := newChecker()
	decl := &ast.Stmt{
		Kind:     ast.SVarDecl,
		Name:     "p",
		VarFlags: ast.VarFlags{WildX: true},
		Type:     intType(32),
		Init:     &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitInt, LitText: "0"},
	}
	ref := exprStmt(&ast.Expr{Kind: ast.EUnary, Op: "@", Right: &ast.Expr{Kind: ast.EIdent, Ident: "p"}})
	fn := &ast.Stmt{Kind: ast.SFuncDecl, Name: "f", FuncBody: block(decl, ref)}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeWildxEscape, bag.Items()[0].Code)
}

func TestCheckBorrowUnaryOfBlockLocalStackVarReportsRefOutlives(t *testing.T) {
	c, bag := newChecker()
	decl := &ast.Stmt{
		Kind:     ast.SVarDecl,
		Name:     "p",
		VarFlags: ast.VarFlags{Stack: true},
		Type:     intType(32),
		Init:     &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitInt, LitText: "0"},
	}
	ref := exprStmt(&ast.Expr{Kind: ast.EUnary, Op: "@", Right: &ast.Expr{Kind: ast.EIdent, Ident: "p"}})
	fn := &ast.Stmt{Kind: ast.SFuncDecl, Name: "f", FuncBody: block(block(decl, ref))}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeRefOutlives, bag.Items()[0].Code)
}

func TestCheckConstTBBSentinelAssignmentReportsDiagnostic(t *testing.T) {
	c, bag := newChecker()
	decl := &ast.Stmt{
		Kind:     ast.SVarDecl,
		Name:     "x",
		VarFlags: ast.VarFlags{Const: true},
		Type:     &ast.TypeExpr{Kind: ast.TTBB, Bits: 8},
		Init:     &ast.Expr{Kind: ast.ELiteral, LitKind: ast.LitInt, LitText: "-128"},
	}
	fn := &ast.Stmt{Kind: ast.SFuncDecl, Name: "f", FuncBody: block(decl)}

	c.Check(&ast.Program{Decls: []*ast.Stmt{fn}})
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeTBBSentinel, bag.Items()[0].Code)
}
