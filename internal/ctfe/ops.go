package ctfe

import (
	"github.com/aria-lang/ariac/internal/ast"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/types"
)

// evalBinary folds a binary expression, applying the TBB sentinel/overflow
// rule: an arithmetic result landing outside [TBBMin+1, TBBMax] (i.e. at or
// past the reserved minimum) folds to the ERR sentinel instead of wrapping,
// and ERR is sticky — any further arithmetic on an ERR operand folds to ERR.
func (ev *Evaluator) evalBinary(e *ast.Expr) (Value, bool) {
	l, ok := ev.Eval(e.Left)
	if !ok {
		return Value{}, false
	}
	r, ok := ev.Eval(e.Right)
	if !ok {
		return Value{}, false
	}
	if l.IsErr || r.IsErr {
		return Value{Type: l.Type, IsErr: true}, true
	}
	switch e.Op {
	case "+", "-", "*", "/", "%":
		return ev.foldArith(e, l, r)
	case "==", "!=", "<", ">", "<=", ">=":
		return ev.foldCompare(e, l, r), true
	case "&&":
		return Value{Type: types.BoolType, Bool: l.Bool && r.Bool}, true
	case "||":
		return Value{Type: types.BoolType, Bool: l.Bool || r.Bool}, true
	}
	ev.bag.Errorf(e.Pos, diag.CodeParse, "operator %q is not const-evaluable", e.Op)
	return Value{}, false
}

func (ev *Evaluator) foldArith(e *ast.Expr, l, r Value) (Value, bool) {
	if l.Type != nil && l.Type.Cat == types.Float || r.Type != nil && r.Type.Cat == types.Float {
		var res float64
		switch e.Op {
		case "+":
			res = l.Flt + r.Flt
		case "-":
			res = l.Flt - r.Flt
		case "*":
			res = l.Flt * r.Flt
		case "/":
			if r.Flt == 0 {
				ev.bag.Errorf(e.Pos, diag.CodeParse, "const division by zero")
				return Value{}, false
			}
			res = l.Flt / r.Flt
		}
		return Value{Type: types.Flt(64), Flt: res}, true
	}

	var res int64
	switch e.Op {
	case "+":
		res = l.Int + r.Int
	case "-":
		res = l.Int - r.Int
	case "*":
		res = l.Int * r.Int
	case "/":
		if r.Int == 0 {
			ev.bag.Errorf(e.Pos, diag.CodeParse, "const division by zero")
			return Value{}, false
		}
		res = l.Int / r.Int
	case "%":
		if r.Int == 0 {
			ev.bag.Errorf(e.Pos, diag.CodeParse, "const division by zero")
			return Value{}, false
		}
		res = l.Int % r.Int
	}

	resultType := l.Type
	if resultType != nil && resultType.Cat == types.TBB {
		bits := resultType.Bits
		if res <= types.TBBMin(bits) || res > types.TBBMax(bits) {
			ev.bag.Notef(e.Pos, diag.CodeTBBSentinel, "const TBB arithmetic overflowed into the ERR sentinel")
			return Value{Type: resultType, IsErr: true}, true
		}
	}
	return Value{Type: resultType, Int: res}, true
}

func (ev *Evaluator) foldCompare(e *ast.Expr, l, r Value) Value {
	var b bool
	if l.Type != nil && l.Type.Cat == types.Float {
		switch e.Op {
		case "==":
			b = l.Flt == r.Flt
		case "!=":
			b = l.Flt != r.Flt
		case "<":
			b = l.Flt < r.Flt
		case ">":
			b = l.Flt > r.Flt
		case "<=":
			b = l.Flt <= r.Flt
		case ">=":
			b = l.Flt >= r.Flt
		}
	} else {
		switch e.Op {
		case "==":
			b = l.Int == r.Int
		case "!=":
			b = l.Int != r.Int
		case "<":
			b = l.Int < r.Int
		case ">":
			b = l.Int > r.Int
		case "<=":
			b = l.Int <= r.Int
		case ">=":
			b = l.Int >= r.Int
		}
	}
	return Value{Type: types.BoolType, Bool: b}
}

func (ev *Evaluator) evalUnary(e *ast.Expr) (Value, bool) {
	v, ok := ev.Eval(e.Right)
	if !ok {
		return Value{}, false
	}
	if v.IsErr {
		return v, true
	}
	switch e.Op {
	case "-":
		if v.Type != nil && v.Type.Cat == types.Float {
			return Value{Type: v.Type, Flt: -v.Flt}, true
		}
		return Value{Type: v.Type, Int: -v.Int}, true
	case "!":
		return Value{Type: types.BoolType, Bool: !v.Bool}, true
	case "~":
		return Value{Type: v.Type, Int: ^v.Int}, true
	}
	ev.bag.Errorf(e.Pos, diag.CodeParse, "operator %q is not const-evaluable", e.Op)
	return Value{}, false
}
