// Package types implements Aria's type model: a tagged
// variant over primitive, pointer, array, vector, struct, union, result,
// function, generic, future, unknown, and error types, plus the TBB
// ("twisted balanced binary") integer family with its sticky ERR sentinel.
//
// Two types are equal iff their shapes are structurally equal; Equal
// below is the single source of truth other phases (sema, mono, vtable) call
// into, rather than each phase re-deriving shape equality itself.
package types

import "fmt"

type Category int

const (
	Void Category = iota
	Bool
	SignedInt
	UnsignedInt
	Float
	TBB
	String
	Dyn
	Pointer
	Array
	Vector
	Struct
	Union
	Result
	Function
	Generic
	Future
	Unknown
	Error
)

type PointerKind int

const (
	PtrPlain PointerKind = iota
	PtrWild
	PtrWildX
	PtrPinned
)

// Field is one named, typed struct/union-variant member.
type Field struct {
	Name string
	Type *Type
}

// UnionVariant is one tagged variant of a union type.
type UnionVariant struct {
	Name   string
	Fields []Field
}

// Type is the tagged-variant type value described in
type Type struct {
	Cat Category

	Bits int // signed/unsigned-int, float, TBB width

	Pointee *Type
	PtrKind PointerKind

	Elem      *Type
	ArraySize int // -1 => dynamic
	VecDim    int

	Name     string // struct/union/generic-placeholder name
	Fields   []Field
	Packed   bool
	Variants []UnionVariant

	ValueType *Type // Result

	Params   []*Type
	Return   *Type
	Variadic bool
}

// ErrorType is the absorbing error type: any operation involving it
// produces Error and suppresses cascading diagnostics at that site.
var ErrorType = &Type{Cat: Error}
var UnknownType = &Type{Cat: Unknown}
var VoidType = &Type{Cat: Void}
var BoolType = &Type{Cat: Bool}
var StringType = &Type{Cat: String}
var DynType = &Type{Cat: Dyn}

func Int(bits int) *Type  { return &Type{Cat: SignedInt, Bits: bits} }
func UInt(bits int) *Type { return &Type{Cat: UnsignedInt, Bits: bits} }
func Flt(bits int) *Type  { return &Type{Cat: Float, Bits: bits} }
func TBBInt(bits int) *Type { return &Type{Cat: TBB, Bits: bits} }

// TBBMin returns the reserved ERR sentinel value for a TBB width: the
// minimum representable two's-complement value of that width.
func TBBMin(bits int) int64 {
	return -(int64(1) << (uint(bits) - 1))
}

// TBBMax returns the maximum valid (non-ERR) value for a TBB width: the
// symmetric range is [-(2^(n-1)-1), +(2^(n-1)-1)].
func TBBMax(bits int) int64 {
	return (int64(1) << (uint(bits) - 1)) - 1
}

// String renders t in Aria type syntax for diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Cat {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case SignedInt:
		return fmt.Sprintf("int%d", t.Bits)
	case UnsignedInt:
		return fmt.Sprintf("uint%d", t.Bits)
	case Float:
		return fmt.Sprintf("flt%d", t.Bits)
	case TBB:
		return fmt.Sprintf("tbb%d", t.Bits)
	case String:
		return "string"
	case Dyn:
		return "dyn"
	case Pointer:
		flag := ""
		switch t.PtrKind {
		case PtrWild:
			flag = "wild "
		case PtrWildX:
			flag = "wildx "
		case PtrPinned:
			flag = "pinned "
		}
		return fmt.Sprintf("*%s%s", flag, t.Pointee)
	case Array:
		if t.ArraySize < 0 {
			return fmt.Sprintf("[]%s", t.Elem)
		}
		return fmt.Sprintf("[%d]%s", t.ArraySize, t.Elem)
	case Vector:
		return fmt.Sprintf("vec%d<%s>", t.VecDim, t.Elem)
	case Struct:
		return "struct " + t.Name
	case Union:
		return "union " + t.Name
	case Result:
		return fmt.Sprintf("result<%s>", t.ValueType)
	case Function:
		return "func(...)"
	case Generic:
		return "generic:" + t.Name
	case Future:
		return fmt.Sprintf("future<%s>", t.ValueType)
	case Unknown:
		return "unknown"
	case Error:
		return "error"
	}
	return "?"
}

// Equal implements the structural-shape equality invariant of:
// "Two types are equal iff their shapes are structurally equal." TBB types
// never unify with plain integer types, even of the same width.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Cat != b.Cat {
		return false
	}
	switch a.Cat {
	case SignedInt, UnsignedInt, Float, TBB:
		return a.Bits == b.Bits
	case Pointer:
		return a.PtrKind == b.PtrKind && Equal(a.Pointee, b.Pointee)
	case Array:
		return a.ArraySize == b.ArraySize && Equal(a.Elem, b.Elem)
	case Vector:
		return a.VecDim == b.VecDim && Equal(a.Elem, b.Elem)
	case Struct:
		if a.Name != b.Name || len(a.Fields) != len(b.Fields) || a.Packed != b.Packed {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case Union:
		return a.Name == b.Name
	case Result:
		return Equal(a.ValueType, b.ValueType)
	case Function:
		if a.Variadic != b.Variadic || len(a.Params) != len(b.Params) || !Equal(a.Return, b.Return) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case Generic:
		return a.Name == b.Name
	case Future:
		return Equal(a.ValueType, b.ValueType)
	default:
		return true // Void, Bool, String, Dyn, Unknown, Error: no extra shape
	}
}

// IsNumeric reports whether t participates in arithmetic: both operands of
// a binary arithmetic op must be numeric.
func IsNumeric(t *Type) bool {
	switch t.Cat {
	case SignedInt, UnsignedInt, Float, TBB:
		return true
	default:
		return false
	}
}

func IsInteger(t *Type) bool {
	switch t.Cat {
	case SignedInt, UnsignedInt, TBB:
		return true
	default:
		return false
	}
}

// WidthOf returns the bit width for the numeric categories that carry one.
func WidthOf(t *Type) int { return t.Bits }
