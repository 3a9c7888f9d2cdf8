// Package types defines WaveType, the structural type representation the
// IR generator and ABI lowering operate on, and resolves the parser's
// named-type syntax (aliases, enum-as-integer-repr, struct names) into it.
//
// There is no type inference here beyond spec's literal-to-declared-type
// coercion and binary-operator promotion (see internal/ir): every
// variable is explicitly typed, so resolution is a pure structural walk,
// not unification.
package types

import "fmt"

// Kind tags the variant of a WaveType.
type Kind int

const (
	KInt Kind = iota
	KUint
	KFloat
	KBool
	KChar
	KByte
	KString
	KVoid
	KPointer
	KArray
	KStruct
)

// WaveType is the structural type representation. Bits is meaningful for
// KInt/KUint/KFloat (and for KInt/KUint doubles as the pointer-width
// marker when IsSize is set, for isz/usz). Elem is the pointee/element
// type for KPointer/KArray. Len is the array length for KArray.
// StructName names the struct for KStruct (structs are referred to by
// name, never by structural shape, per the design note in spec §9).
type WaveType struct {
	Kind       Kind
	Bits       int
	IsSize     bool // isz/usz: pointer-width integer
	Elem       *WaveType
	Len        int64
	StructName string
}

var (
	Bool   = &WaveType{Kind: KBool}
	Char   = &WaveType{Kind: KChar}
	Byte   = &WaveType{Kind: KByte}
	String = &WaveType{Kind: KString}
	Void   = &WaveType{Kind: KVoid}
)

// Int returns the signed integer type of the given bit width.
func Int(bits int) *WaveType { return &WaveType{Kind: KInt, Bits: bits} }

// Uint returns the unsigned integer type of the given bit width.
func Uint(bits int) *WaveType { return &WaveType{Kind: KUint, Bits: bits} }

// Float returns the floating-point type of the given bit width.
func Float(bits int) *WaveType { return &WaveType{Kind: KFloat, Bits: bits} }

// Isz/Usz are the pointer-width signed/unsigned integer types.
func Isz(pointerBits int) *WaveType { return &WaveType{Kind: KInt, Bits: pointerBits, IsSize: true} }
func Usz(pointerBits int) *WaveType { return &WaveType{Kind: KUint, Bits: pointerBits, IsSize: true} }

// Pointer returns a pointer-to-elem type.
func Pointer(elem *WaveType) *WaveType { return &WaveType{Kind: KPointer, Elem: elem} }

// Array returns a fixed-length array-of-elem type.
func Array(elem *WaveType, length int64) *WaveType {
	return &WaveType{Kind: KArray, Elem: elem, Len: length}
}

// StructRef returns a by-name reference to a struct type.
func StructRef(name string) *WaveType { return &WaveType{Kind: KStruct, StructName: name} }

// IsInteger reports whether t is a signed or unsigned integer type.
func (t *WaveType) IsInteger() bool { return t.Kind == KInt || t.Kind == KUint }

// IsFloat reports whether t is a floating-point type.
func (t *WaveType) IsFloat() bool { return t.Kind == KFloat }

// IsNumeric reports whether t is an integer or float type.
func (t *WaveType) IsNumeric() bool { return t.IsInteger() || t.IsFloat() }

// Signed reports whether an integer type is signed.
func (t *WaveType) Signed() bool { return t.Kind == KInt }

// Equal reports structural equality.
func (t *WaveType) Equal(o *WaveType) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KInt, KUint, KFloat:
		return t.Bits == o.Bits
	case KPointer:
		return t.Elem.Equal(o.Elem)
	case KArray:
		return t.Len == o.Len && t.Elem.Equal(o.Elem)
	case KStruct:
		return t.StructName == o.StructName
	default:
		return true
	}
}

func (t *WaveType) String() string {
	switch t.Kind {
	case KInt:
		if t.IsSize {
			return "isz"
		}
		return fmt.Sprintf("i%d", t.Bits)
	case KUint:
		if t.IsSize {
			return "usz"
		}
		return fmt.Sprintf("u%d", t.Bits)
	case KFloat:
		return fmt.Sprintf("f%d", t.Bits)
	case KBool:
		return "bool"
	case KChar:
		return "char"
	case KByte:
		return "byte"
	case KString:
		return "str"
	case KVoid:
		return "void"
	case KPointer:
		return fmt.Sprintf("ptr<%s>", t.Elem.String())
	case KArray:
		return fmt.Sprintf("array<%s, %d>", t.Elem.String(), t.Len)
	case KStruct:
		return t.StructName
	}
	return "<invalid>"
}
