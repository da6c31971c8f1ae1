package types

import "fmt"

// BinaryResult computes the result type of a binary operator applied to
// (left, right). On a rule violation it returns (ErrorType, reason) — the
// absorbing Error type plus the prose sema attaches to its diagnostic. If
// either operand is already Error, the result is Error with no reason, so
// a single bad subexpression doesn't cascade into diagnostics at every
// enclosing site.
func BinaryResult(op string, left, right *Type) (*Type, string) {
	if left.Cat == Error || right.Cat == Error {
		return ErrorType, ""
	}

	switch op {
	case "+", "-", "*", "/", "%":
		return arithmeticResult(op, left, right)
	case "&", "|", "^", "<<", ">>":
		return bitwiseResult(op, left, right)
	case "==", "!=", "<", ">", "<=", ">=", "<=>":
		return comparisonResult(op, left, right)
	case "&&", "||":
		if left.Cat != Bool || right.Cat != Bool {
			return ErrorType, "logical operator requires bool operands"
		}
		return BoolType, ""
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		return left, "" // assignment type-checks like its non-compound form at the call site
	}
	return ErrorType, fmt.Sprintf("unknown operator %q", op)
}

func arithmeticResult(op string, left, right *Type) (*Type, string) {
	if left.Cat == Vector || right.Cat == Vector {
		return vectorArith(left, right)
	}
	if !IsNumeric(left) || !IsNumeric(right) {
		return ErrorType, "arithmetic operator requires numeric operands"
	}
	if left.Cat == TBB || right.Cat == TBB {
		return tbbArith(left, right)
	}
	if left.Cat == Float || right.Cat == Float {
		return Flt(64), ""
	}
	// widen to the wider of the two integer types
	if WidthOf(left) >= WidthOf(right) {
		return left, ""
	}
	return right, ""
}

// tbbArith implements the "TBB operands are sticky" rule: TBB-ERR
// propagates, TBB of different widths promotes to the wider TBB, and TBB
// mixed with a plain integer is an error requiring an explicit cast.
func tbbArith(left, right *Type) (*Type, string) {
	if left.Cat == TBB && right.Cat == TBB {
		if left.Bits >= right.Bits {
			return left, ""
		}
		return right, ""
	}
	// one TBB, one plain integer/float
	return ErrorType, "TBB operand cannot combine with a plain numeric type without an explicit cast"
}

func vectorArith(left, right *Type) (*Type, string) {
	if left.Cat == Vector && right.Cat == Vector {
		if left.VecDim != right.VecDim || !Equal(left.Elem, right.Elem) {
			return ErrorType, "vector-vector arithmetic requires matching vector types"
		}
		return left, ""
	}
	// vector-scalar broadcast
	if left.Cat == Vector {
		return left, ""
	}
	return right, ""
}

func bitwiseResult(op string, left, right *Type) (*Type, string) {
	if !IsInteger(left) || !IsInteger(right) {
		return ErrorType, "bitwise operator requires integer operands"
	}
	if left.Cat != UnsignedInt || right.Cat != UnsignedInt {
		return ErrorType, "bitwise operator requires unsigned operands (signed and TBB are not allowed)"
	}
	if WidthOf(left) >= WidthOf(right) {
		return left, ""
	}
	return right, ""
}

func comparisonResult(op string, left, right *Type) (*Type, string) {
	if left.Cat == TBB && right.Cat == TBB {
		if op == "<" || op == ">" || op == "<=" || op == ">=" || op == "<=>" {
			// ERR compared ordinally against a valid value is undefined
			//; callers check for a literal ERR operand and
			// emit the diagnostic, this just returns the nominal type.
			return BoolType, ""
		}
		return BoolType, "" // ERR == ERR is true, handled at the value level
	}
	if !assignableCompatible(left, right) {
		return ErrorType, fmt.Sprintf("cannot compare %s and %s", left, right)
	}
	return BoolType, ""
}

// assignableCompatible is a permissive structural check used for comparison
// and argument-assignability.
func assignableCompatible(dst, src *Type) bool {
	if Equal(dst, src) {
		return true
	}
	if dst.Cat == Dyn || src.Cat == Dyn {
		return true
	}
	if IsNumeric(dst) && IsNumeric(src) && dst.Cat != TBB && src.Cat != TBB {
		return true
	}
	return false
}

// Assignable reports whether a value of type src may be assigned to / passed
// where dst is expected: used for call arguments and return-type checks.
func Assignable(dst, src *Type) bool {
	if dst == nil || src == nil {
		return false
	}
	if dst.Cat == Error || src.Cat == Error {
		return true
	}
	return assignableCompatible(dst, src)
}

// UnaryResult implements the unary operator typing rules.
func UnaryResult(op string, operand *Type) (*Type, string) {
	if operand.Cat == Error {
		return ErrorType, ""
	}
	switch op {
	case "-":
		if !IsNumeric(operand) {
			return ErrorType, "negation requires a numeric operand"
		}
		return operand, ""
	case "!":
		if operand.Cat != Bool {
			return ErrorType, "logical-not requires a bool operand"
		}
		return BoolType, ""
	case "~":
		if operand.Cat != UnsignedInt {
			return ErrorType, "bitwise-not requires an unsigned integer operand"
		}
		return operand, ""
	case "@":
		return &Type{Cat: Pointer, Pointee: operand, PtrKind: PtrPlain}, ""
	case "#":
		return &Type{Cat: Pointer, Pointee: operand, PtrKind: PtrPinned}, ""
	case "$":
		if operand.Cat == Array {
			return operand.Elem, ""
		}
		if operand.Cat == Vector {
			return operand.Elem, ""
		}
		return ErrorType, "iterate operator requires an iterable operand"
	case "++", "--":
		if !IsNumeric(operand) {
			return ErrorType, "increment/decrement requires a numeric lvalue"
		}
		return operand, ""
	}
	return ErrorType, fmt.Sprintf("unknown unary operator %q", op)
}
