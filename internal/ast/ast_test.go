package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStmtWalkVisitsNestedBodies(t *testing.T) {
	inner := &Stmt{Kind: SExprStmt}
	elseBranch := &Stmt{Kind: SBlock, Body: []*Stmt{{Kind: SReturn}}}
	root := &Stmt{
		Kind:  SIf,
		Body:  []*Stmt{inner},
		Else2: elseBranch,
	}

	var visited []StmtKind
	root.Walk(func(s *Stmt) bool {
		visited = append(visited, s.Kind)
		return true
	}, nil)

	assert.Equal(t, []StmtKind{SIf, SExprStmt, SBlock, SReturn}, visited)
}

func TestStmtWalkInFalseStopsDescent(t *testing.T) {
	root := &Stmt{Kind: SBlock, Body: []*Stmt{{Kind: SReturn}}}
	var visited []StmtKind
	root.Walk(func(s *Stmt) bool {
		visited = append(visited, s.Kind)
		return false
	}, nil)
	assert.Equal(t, []StmtKind{SBlock}, visited)
}

func TestStmtWalkNilReceiverIsNoop(t *testing.T) {
	var s *Stmt
	assert.NotPanics(t, func() {
		s.Walk(func(*Stmt) bool { return true }, nil)
	})
}

func TestExprWalkExprVisitsBinaryOperands(t *testing.T) {
	left := &Expr{Kind: EIdent, Ident: "a"}
	right := &Expr{Kind: EIdent, Ident: "b"}
	root := &Expr{Kind: EBinary, Op: "+", Left: left, Right: right}

	var idents []string
	root.WalkExpr(func(e *Expr) bool {
		if e.Kind == EIdent {
			idents = append(idents, e.Ident)
		}
		return true
	}, nil)

	assert.Equal(t, []string{"a", "b"}, idents)
}

func TestExprWalkExprVisitsCallArgsAndFields(t *testing.T) {
	arg := &Expr{Kind: EIdent, Ident: "x"}
	fieldVal := &Expr{Kind: EIdent, Ident: "y"}
	root := &Expr{
		Kind: ECall,
		Args: []*Expr{arg},
		Fields: []Field{{Name: "f", Value: fieldVal}},
	}

	var idents []string
	root.WalkExpr(func(e *Expr) bool {
		if e.Kind == EIdent {
			idents = append(idents, e.Ident)
		}
		return true
	}, nil)

	assert.ElementsMatch(t, []string{"x", "y"}, idents)
}

func TestExprWalkExprNilReceiverIsNoop(t *testing.T) {
	var e *Expr
	assert.NotPanics(t, func() {
		e.WalkExpr(func(*Expr) bool { return true }, nil)
	})
}
