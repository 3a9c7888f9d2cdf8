package ir

import (
	"fmt"
	"strconv"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/types"
)

// flavor distinguishes the two contexts the original Rust codegen used
// distinct inkwell type builders for: a plain value slot (flavorValue) and
// a struct-body field reference (flavorAbiC). Under LLVM's opaque-pointer
// model and named struct types, both collapse to the same textual
// lowering here; the parameter is kept so the two call sites stay
// self-documenting rather than folding them into one spelling.
type flavor int

const (
	flavorValue flavor = iota
	flavorAbiC
)

func lowerType(t *types.WaveType, f flavor) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case types.KVoid:
		return "void"
	case types.KBool:
		return "i1"
	case types.KChar, types.KByte:
		return "i8"
	case types.KInt, types.KUint:
		return fmt.Sprintf("i%d", t.Bits)
	case types.KFloat:
		switch t.Bits {
		case 32:
			return "float"
		case 64:
			return "double"
		default:
			// LLVM has no named float type above 64 bits that spells "fpN"
			// for arbitrary N; f128/f256/f512/f1024 lower as opaque
			// integer-sized blobs instead (Open Question 4). Arithmetic on
			// them is rejected at the point it would be emitted, by
			// requireArithFloat, not here.
			return fmt.Sprintf("i%d", t.Bits)
		}
	case types.KPointer, types.KString:
		return "ptr"
	case types.KArray:
		return fmt.Sprintf("[%d x %s]", t.Len, lowerType(t.Elem, f))
	case types.KStruct:
		return "%" + t.StructName
	}
	return "void"
}

func zeroText(t *types.WaveType) string {
	if t == nil {
		return "0"
	}
	switch t.Kind {
	case types.KFloat:
		if t.Bits > maxArithFloatBits {
			return "0"
		}
		return "0.0"
	case types.KPointer, types.KString:
		return "null"
	case types.KStruct, types.KArray:
		return "zeroinitializer"
	default:
		return "0"
	}
}

// maxArithFloatBits is the widest float width LLVM's fadd/fsub/fmul/fdiv/
// frem/fcmp/fneg/fpext/fptrunc/sitofp/fptosi instructions accept in this
// generator's lowering (float/double). Wider Wave float types lower to an
// opaque iN blob (see lowerType) and can be stored and passed around but
// never operated on or converted to/from directly.
const maxArithFloatBits = 64

// requireArithFloat rejects a float-producing or float-consuming operation
// on a type whose width lowers to an opaque blob rather than a real LLVM
// float type.
func requireArithFloat(t *types.WaveType, pos ast.Pos) {
	if t.Bits > maxArithFloatBits {
		panicf(errors.E7007, pos, "arithmetic on %s is not supported: float widths above %d bits lower to an opaque integer blob", t, maxArithFloatBits)
	}
}

func formatFloatLiteral(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
