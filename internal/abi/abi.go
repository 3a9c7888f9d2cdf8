// Package abi implements the C calling-convention classifier (spec §4.5):
// size/alignment/offset arithmetic over WaveType, and the Direct / Split /
// ByVal / SRet classification of every extern "c" parameter and return
// type. The classifier never touches IR; it only produces the Lowering
// data structure that internal/ir's extern-call emitter later turns into
// store/load/memcpy sequences, which keeps classification decisions
// testable without a running IR generator.
package abi

import (
	"fmt"

	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/target"
	"github.com/wavelang/wavec/internal/types"
)

// SizeOf returns the in-memory size, in bytes, of t under tgt's pointer
// width, following struct fields through env.
func SizeOf(t *types.WaveType, env *types.Env, tgt *target.Spec) (int, *errors.Report) {
	switch t.Kind {
	case types.KVoid:
		return 0, nil
	case types.KBool, types.KChar, types.KByte:
		return 1, nil
	case types.KInt, types.KUint:
		return (t.Bits + 7) / 8, nil
	case types.KFloat:
		return floatSize(t.Bits), nil
	case types.KString, types.KPointer:
		return tgt.PointerBits / 8, nil
	case types.KArray:
		elemSize, err := SizeOf(t.Elem, env, tgt)
		if err != nil {
			return 0, err
		}
		return elemSize * int(t.Len), nil
	case types.KStruct:
		layout, err := StructLayout(t.StructName, env, tgt)
		if err != nil {
			return 0, err
		}
		return layout.Size, nil
	}
	return 0, unrepresentable(t)
}

// AlignOf returns the required alignment, in bytes, of t.
func AlignOf(t *types.WaveType, env *types.Env, tgt *target.Spec) (int, *errors.Report) {
	switch t.Kind {
	case types.KVoid:
		return 1, nil
	case types.KBool, types.KChar, types.KByte:
		return 1, nil
	case types.KInt, types.KUint:
		size, _ := SizeOf(t, env, tgt)
		return size, nil
	case types.KFloat:
		return floatSize(t.Bits), nil
	case types.KString, types.KPointer:
		return tgt.PointerBits / 8, nil
	case types.KArray:
		return AlignOf(t.Elem, env, tgt)
	case types.KStruct:
		layout, err := StructLayout(t.StructName, env, tgt)
		if err != nil {
			return 0, err
		}
		return layout.Align, nil
	}
	return 0, unrepresentable(t)
}

// floatSize maps a float bit-width to its store size; widths this ABI
// does not natively support (spec §4.1 allows declaring f128 and wider,
// but only f32/f64 are ABI-complete) are sized as opaque bits/8-byte
// blobs, the same width as the iN type internal/ir lowers them to, so
// SizeOf/AlignOf stay total.
func floatSize(bits int) int {
	switch bits {
	case 32:
		return 4
	case 64:
		return 8
	default:
		return bits / 8
	}
}

// Layout is a struct type's computed field offsets, overall size, and
// alignment.
type Layout struct {
	Size    int
	Align   int
	Offsets []int // one entry per field, in declaration order
}

// StructLayout computes the field offsets of a previously-registered
// struct, applying System V field alignment and trailing size padding.
func StructLayout(name string, env *types.Env, tgt *target.Spec) (*Layout, *errors.Report) {
	fields, ok := env.StructFields(name)
	if !ok {
		return nil, errors.New(errors.KindCompilationFail, errors.E6001, "", 0, 0,
			fmt.Sprintf("struct %q has no registered field layout", name))
	}

	l := &Layout{Align: 1, Offsets: make([]int, len(fields))}
	offset := 0
	for i, f := range fields {
		size, err := SizeOf(f.Type, env, tgt)
		if err != nil {
			return nil, err
		}
		align, err := AlignOf(f.Type, env, tgt)
		if err != nil {
			return nil, err
		}
		if align > l.Align {
			l.Align = align
		}
		if offset%align != 0 {
			offset += align - offset%align
		}
		l.Offsets[i] = offset
		offset += size
	}
	if offset%l.Align != 0 {
		offset += l.Align - offset%l.Align
	}
	l.Size = offset
	return l, nil
}

// FieldOffset returns the byte offset of structName's fieldName within its
// layout. The IR generator calls this to address struct storage as a raw
// byte blob — struct-literal field stores and ABI pack/unpack scratch-slot
// addressing — rather than through LLVM's named-member GEP indexing, so
// those byte computations stay pinned to the same layout SizeOf/AlignOf
// already use for memcpy lengths.
func FieldOffset(structName, fieldName string, env *types.Env, tgt *target.Spec) (int, *errors.Report) {
	fields, ok := env.StructFields(structName)
	if !ok {
		return 0, errors.New(errors.KindCompilationFail, errors.E6001, "", 0, 0,
			fmt.Sprintf("struct %q has no registered field layout", structName))
	}
	idx := -1
	for i, f := range fields {
		if f.Name == fieldName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, errors.New(errors.KindCompilationFail, errors.E6001, "", 0, 0,
			fmt.Sprintf("struct %q has no field %q", structName, fieldName))
	}
	layout, err := StructLayout(structName, env, tgt)
	if err != nil {
		return 0, err
	}
	return layout.Offsets[idx], nil
}

func unrepresentable(t *types.WaveType) *errors.Report {
	return errors.New(errors.KindCompilationFail, errors.E6001, "", 0, 0,
		fmt.Sprintf("type %s is not representable in the C ABI", t.String()))
}
