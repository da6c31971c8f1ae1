package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualStructuralShape(t *testing.T) {
	a := &Type{Cat: Struct, Name: "Point", Fields: []Field{{Name: "x", Type: Int(32)}}}
	b := &Type{Cat: Struct, Name: "Point", Fields: []Field{{Name: "x", Type: Int(32)}}}
	c := &Type{Cat: Struct, Name: "Point", Fields: []Field{{Name: "x", Type: Int(64)}}}

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestEqualTBBNeverUnifiesWithPlainInt(t *testing.T) {
	assert.False(t, Equal(Int(32), TBBInt(32)))
	assert.True(t, Equal(TBBInt(32), TBBInt(32)))
}

func TestEqualNilHandling(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, Int(32)))
}

func TestEqualPointerComparesKindAndPointee(t *testing.T) {
	wild := &Type{Cat: Pointer, PtrKind: PtrWild, Pointee: Int(32)}
	plain := &Type{Cat: Pointer, PtrKind: PtrPlain, Pointee: Int(32)}
	assert.False(t, Equal(wild, plain))
}

func TestTBBMinMaxSymmetricRange(t *testing.T) {
	assert.Equal(t, int64(-128), TBBMin(8))
	assert.Equal(t, int64(127), TBBMax(8))
}

func TestStringFormatsEachCategory(t *testing.T) {
	assert.Equal(t, "int32", Int(32).String())
	assert.Equal(t, "tbb8", TBBInt(8).String())
	assert.Equal(t, "*pinned int32", (&Type{Cat: Pointer, PtrKind: PtrPinned, Pointee: Int(32)}).String())
	assert.Equal(t, "<nil>", (*Type)(nil).String())
}

func TestIsNumericAndIsInteger(t *testing.T) {
	assert.True(t, IsNumeric(Int(32)))
	assert.True(t, IsNumeric(TBBInt(16)))
	assert.True(t, IsNumeric(Flt(64)))
	assert.False(t, IsNumeric(BoolType))

	assert.True(t, IsInteger(UInt(8)))
	assert.False(t, IsInteger(Flt(32)))
}

func TestBinaryResultArithmeticWidensToWiderInt(t *testing.T) {
	res, reason := BinaryResult("+", Int(32), Int(64))
	assert.Empty(t, reason)
	assert.True(t, Equal(Int(64), res))
}

func TestBinaryResultTBBMixedWithPlainIntIsError(t *testing.T) {
	res, reason := BinaryResult("+", TBBInt(32), Int(32))
	assert.Equal(t, ErrorType, res)
	assert.NotEmpty(t, reason)
}

func TestBinaryResultErrorOperandSuppressesReason(t *testing.T) {
	res, reason := BinaryResult("+", ErrorType, Int(32))
	assert.Equal(t, ErrorType, res)
	assert.Empty(t, reason)
}

func TestBinaryResultBitwiseRequiresUnsigned(t *testing.T) {
	res, reason := BinaryResult("&", Int(32), Int(32))
	assert.Equal(t, ErrorType, res)
	assert.Contains(t, reason, "unsigned")

	res2, reason2 := BinaryResult("&", UInt(32), UInt(16))
	assert.Empty(t, reason2)
	assert.True(t, Equal(UInt(32), res2))
}

func TestUnaryResultNegationAndNot(t *testing.T) {
	res, reason := UnaryResult("-", Int(32))
	assert.Empty(t, reason)
	assert.True(t, Equal(Int(32), res))

	res2, reason2 := UnaryResult("!", Int(32))
	assert.Equal(t, ErrorType, res2)
	assert.NotEmpty(t, reason2)
}

func TestUnaryResultAddressOfProducesPointer(t *testing.T) {
	res, reason := UnaryResult("@", Int(32))
	assert.Empty(t, reason)
	assert.Equal(t, Pointer, res.Cat)
	assert.Equal(t, PtrPlain, res.PtrKind)
}

func TestAssignableDynAcceptsAnything(t *testing.T) {
	assert.True(t, Assignable(DynType, Int(32)))
	assert.True(t, Assignable(Int(32), DynType))
}

func TestAssignableRejectsTBBCrossAssignment(t *testing.T) {
	assert.False(t, Assignable(Int(32), TBBInt(32)))
}
