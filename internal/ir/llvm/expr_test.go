package llvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/types"
)

func ident(name string) *ast.Expr { return &ast.Expr{Kind: ast.EIdent, Ident: name} }

func newEmitterWithEntry(t *testing.T, name string, sig *types.Type) *Emitter {
	t.Helper()
	em := New(name)
	t.Cleanup(em.Dispose)
	fn, err := em.EmitFuncHeader(name, sig)
	require.NoError(t, err)
	entry := em.ctx.AddBasicBlock(fn, "entry")
	em.builder.SetInsertPointAtEnd(entry)
	return em
}

func TestEmitLiteralProducesConstants(t *testing.T) {
	em := newEmitterWithEntry(t, "lits", &types.Type{Cat: types.Function, Return: types.VoidType})

	v, err := em.emitExpr(intLit("7"))
	require.NoError(t, err)
	assert.False(t, v.IsNil())
	assert.Contains(t, v.String(), "7")
}

func TestEmitIdentResolvesParameterAndLocal(t *testing.T) {
	sig := &types.Type{Cat: types.Function, Params: []*types.Type{types.Int(64)}, Return: types.Int(64)}
	em := newEmitterWithEntry(t, "idents", sig)
	em.vars["a"] = em.fns["idents"].Param(0)

	v, err := em.emitExpr(ident("a"))
	require.NoError(t, err)
	assert.False(t, v.IsNil())

	_, err = em.emitExpr(ident("undeclared"))
	assert.Error(t, err)
}

func TestEmitBinaryArithmetic(t *testing.T) {
	em := newEmitterWithEntry(t, "binop", &types.Type{Cat: types.Function, Return: types.Int(64)})

	v, err := em.emitExpr(&ast.Expr{Kind: ast.EBinary, Op: "+", Left: intLit("2"), Right: intLit("3")})
	require.NoError(t, err)
	assert.False(t, v.IsNil())
}

func TestEmitBinaryUnsupportedOperatorErrors(t *testing.T) {
	em := newEmitterWithEntry(t, "badop", &types.Type{Cat: types.Function, Return: types.Int(64)})

	_, err := em.emitExpr(&ast.Expr{Kind: ast.EBinary, Op: "??", Left: intLit("1"), Right: intLit("1")})
	assert.Error(t, err)
}

func TestEmitCallToUndeclaredFunctionErrors(t *testing.T) {
	em := newEmitterWithEntry(t, "caller", &types.Type{Cat: types.Function, Return: types.VoidType})

	_, err := em.emitExpr(&ast.Expr{Kind: ast.ECall, Callee: ident("missing")})
	assert.Error(t, err)
}
