package llvm

import (
	"fmt"
	"strconv"

	"tinygo.org/x/go-llvm"

	"github.com/aria-lang/ariac/internal/ast"
)

func (em *Emitter) emitExpr(e *ast.Expr) (llvm.Value, error) {
	switch e.Kind {
	case ast.ELiteral:
		return em.emitLiteral(e)
	case ast.EIdent:
		if slot, ok := em.vars[e.Ident]; ok {
			if slot.IsAAllocaInst().IsNil() {
				return slot, nil // function parameter, already a value
			}
			return em.builder.CreateLoad(slot.Type().ElementType(), slot, e.Ident), nil
		}
		if fn, ok := em.fns[e.Ident]; ok {
			return fn, nil
		}
		return llvm.Value{}, fmt.Errorf("unresolved identifier %q during IR emission", e.Ident)
	case ast.EBinary:
		return em.emitBinary(e)
	case ast.EUnary:
		return em.emitUnary(e)
	case ast.ECall:
		return em.emitCall(e)
	case ast.EAssign:
		return em.emitAssign(e)
	default:
		return llvm.Value{}, fmt.Errorf("IR emission not implemented for this expression kind")
	}
}

func (em *Emitter) emitLiteral(e *ast.Expr) (llvm.Value, error) {
	switch e.LitKind {
	case ast.LitInt:
		n, _ := strconv.ParseInt(e.LitText, 0, 64)
		return llvm.ConstInt(em.ctx.Int64Type(), uint64(n), true), nil
	case ast.LitFloat:
		f, _ := strconv.ParseFloat(e.LitText, 64)
		return llvm.ConstFloat(em.ctx.DoubleType(), f), nil
	case ast.LitBool:
		v := uint64(0)
		if e.LitText == "true" {
			v = 1
		}
		return llvm.ConstInt(em.ctx.Int1Type(), v, false), nil
	case ast.LitString:
		return em.builder.CreateGlobalStringPtr(e.LitText, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("literal kind not supported in IR emission")
	}
}

func (em *Emitter) emitBinary(e *ast.Expr) (llvm.Value, error) {
	l, err := em.emitExpr(e.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	r, err := em.emitExpr(e.Right)
	if err != nil {
		return llvm.Value{}, err
	}
	isFloat := l.Type().TypeKind() == llvm.DoubleTypeKind || l.Type().TypeKind() == llvm.FloatTypeKind
	switch e.Op {
	case "+":
		if isFloat {
			return em.builder.CreateFAdd(l, r, ""), nil
		}
		return em.builder.CreateAdd(l, r, ""), nil
	case "-":
		if isFloat {
			return em.builder.CreateFSub(l, r, ""), nil
		}
		return em.builder.CreateSub(l, r, ""), nil
	case "*":
		if isFloat {
			return em.builder.CreateFMul(l, r, ""), nil
		}
		return em.builder.CreateMul(l, r, ""), nil
	case "/":
		if isFloat {
			return em.builder.CreateFDiv(l, r, ""), nil
		}
		return em.builder.CreateSDiv(l, r, ""), nil
	case "%":
		return em.builder.CreateSRem(l, r, ""), nil
	case "==", "!=", "<", ">", "<=", ">=":
		return em.emitCompare(e.Op, l, r, isFloat), nil
	case "&":
		return em.builder.CreateAnd(l, r, ""), nil
	case "|":
		return em.builder.CreateOr(l, r, ""), nil
	case "^":
		return em.builder.CreateXor(l, r, ""), nil
	case "<<":
		return em.builder.CreateShl(l, r, ""), nil
	case ">>":
		return em.builder.CreateLShr(l, r, ""), nil
	case "&&":
		return em.builder.CreateAnd(l, r, ""), nil
	case "||":
		return em.builder.CreateOr(l, r, ""), nil
	}
	return llvm.Value{}, fmt.Errorf("operator %q not supported in IR emission", e.Op)
}

func (em *Emitter) emitCompare(op string, l, r llvm.Value, isFloat bool) llvm.Value {
	if isFloat {
		var pred llvm.FloatPredicate
		switch op {
		case "==":
			pred = llvm.FloatOEQ
		case "!=":
			pred = llvm.FloatONE
		case "<":
			pred = llvm.FloatOLT
		case ">":
			pred = llvm.FloatOGT
		case "<=":
			pred = llvm.FloatOLE
		case ">=":
			pred = llvm.FloatOGE
		}
		return em.builder.CreateFCmp(pred, l, r, "")
	}
	var pred llvm.IntPredicate
	switch op {
	case "==":
		pred = llvm.IntEQ
	case "!=":
		pred = llvm.IntNE
	case "<":
		pred = llvm.IntSLT
	case ">":
		pred = llvm.IntSGT
	case "<=":
		pred = llvm.IntSLE
	case ">=":
		pred = llvm.IntSGE
	}
	return em.builder.CreateICmp(pred, l, r, "")
}

func (em *Emitter) emitUnary(e *ast.Expr) (llvm.Value, error) {
	v, err := em.emitExpr(e.Right)
	if err != nil {
		return llvm.Value{}, err
	}
	switch e.Op {
	case "-":
		if v.Type().TypeKind() == llvm.DoubleTypeKind || v.Type().TypeKind() == llvm.FloatTypeKind {
			return em.builder.CreateFNeg(v, ""), nil
		}
		return em.builder.CreateNeg(v, ""), nil
	case "!":
		return em.builder.CreateNot(v, ""), nil
	case "~":
		return em.builder.CreateNot(v, ""), nil
	}
	return llvm.Value{}, fmt.Errorf("unary operator %q not supported in IR emission", e.Op)
}

func (em *Emitter) emitCall(e *ast.Expr) (llvm.Value, error) {
	if e.Callee.Kind != ast.EIdent {
		return llvm.Value{}, fmt.Errorf("indirect calls not yet supported in IR emission")
	}
	fn, ok := em.fns[e.Callee.Ident]
	if !ok {
		return llvm.Value{}, fmt.Errorf("call to undeclared function %q", e.Callee.Ident)
	}
	var args []llvm.Value
	for _, a := range e.Args {
		v, err := em.emitExpr(a)
		if err != nil {
			return llvm.Value{}, err
		}
		args = append(args, v)
	}
	return em.builder.CreateCall(fn.GlobalValueType(), fn, args, ""), nil
}

func (em *Emitter) emitAssign(e *ast.Expr) (llvm.Value, error) {
	v, err := em.emitExpr(e.Right)
	if err != nil {
		return llvm.Value{}, err
	}
	if e.Left.Kind != ast.EIdent {
		return llvm.Value{}, fmt.Errorf("assignment to non-identifier not yet supported in IR emission")
	}
	slot, ok := em.vars[e.Left.Ident]
	if !ok {
		return llvm.Value{}, fmt.Errorf("assignment to undeclared variable %q", e.Left.Ident)
	}
	em.builder.CreateStore(v, slot)
	return v, nil
}
