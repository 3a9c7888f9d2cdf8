package abi

import (
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/target"
	"github.com/wavelang/wavec/internal/types"
)

// Kind tags how a single extern "c" parameter or return value crosses the
// function boundary.
type Kind int

const (
	// KindVoid is the return-only case of no value at all.
	KindVoid Kind = iota
	// KindDirect passes Type as-is, in a register or the return value.
	KindDirect
	// KindSplit passes Parts as consecutive scalar parameters (param-only;
	// the 3-float-leaf HFA case, which doesn't fit one vector register).
	KindSplit
	// KindByVal passes a pointer to a private callee-owned copy of the
	// aggregate (param-only).
	KindByVal
	// KindSRet passes a pointer to caller-allocated storage as a hidden
	// first parameter, and the callee writes the result there (return-only).
	KindSRet
)

// Lowering is the classification of one parameter or return type.
type Lowering struct {
	Kind Kind

	// Type is the lowered scalar/vector type for KindDirect. Integer
	// packing represents the packed type as types.Int(size*8); an HFA of
	// count>1 leaves is represented as types.Array(leafFloatType, count),
	// standing in for a SIMD register value.
	Type *types.WaveType

	// Parts is the flattened scratch-type list for KindSplit.
	Parts []*types.WaveType

	// Size/Align describe the source aggregate for KindByVal/KindSRet, so
	// the emitter knows how large a scratch slot and memcpy to use.
	Size  int
	Align int
}

// ClassifyParam classifies one extern "c" parameter type.
func ClassifyParam(t *types.WaveType, env *types.Env, tgt *target.Spec) (*Lowering, *errors.Report) {
	size, err := SizeOf(t, env, tgt)
	if err != nil {
		return nil, err
	}
	if !isAggregate(t) {
		return &Lowering{Kind: KindDirect, Type: t}, nil
	}
	if size > 16 {
		align, err := AlignOf(t, env, tgt)
		if err != nil {
			return nil, err
		}
		return &Lowering{Kind: KindByVal, Size: size, Align: align}, nil
	}

	leaves, err := flattenLeaves(t, env, nil)
	if err != nil {
		return nil, err
	}
	if hfa, fsz, count := homogeneousFloat(leaves); hfa {
		switch fsz {
		case 32:
			switch count {
			case 1:
				return &Lowering{Kind: KindDirect, Type: types.Float(32)}, nil
			case 2:
				return &Lowering{Kind: KindDirect, Type: types.Array(types.Float(32), 2)}, nil
			case 3:
				return &Lowering{Kind: KindSplit, Parts: []*types.WaveType{types.Array(types.Float(32), 2), types.Float(32)}}, nil
			case 4:
				return &Lowering{Kind: KindDirect, Type: types.Array(types.Float(32), 4)}, nil
			}
		case 64:
			switch count {
			case 1:
				return &Lowering{Kind: KindDirect, Type: types.Float(64)}, nil
			case 2:
				return &Lowering{Kind: KindDirect, Type: types.Array(types.Float(64), 2)}, nil
			}
		}
		align, err := AlignOf(t, env, tgt)
		if err != nil {
			return nil, err
		}
		return &Lowering{Kind: KindByVal, Size: size, Align: align}, nil
	}
	if allIntOrPointer(leaves) {
		return &Lowering{Kind: KindDirect, Type: types.Int(size * 8)}, nil
	}

	align, err := AlignOf(t, env, tgt)
	if err != nil {
		return nil, err
	}
	return &Lowering{Kind: KindByVal, Size: size, Align: align}, nil
}

// ClassifyReturn classifies an extern "c" return type. t == types.Void
// classifies as KindVoid.
func ClassifyReturn(t *types.WaveType, env *types.Env, tgt *target.Spec) (*Lowering, *errors.Report) {
	if t == nil || t.Kind == types.KVoid {
		return &Lowering{Kind: KindVoid}, nil
	}
	size, err := SizeOf(t, env, tgt)
	if err != nil {
		return nil, err
	}
	if !isAggregate(t) {
		return &Lowering{Kind: KindDirect, Type: t}, nil
	}
	if size > 16 {
		align, err := AlignOf(t, env, tgt)
		if err != nil {
			return nil, err
		}
		return &Lowering{Kind: KindSRet, Size: size, Align: align}, nil
	}

	leaves, err := flattenLeaves(t, env, nil)
	if err != nil {
		return nil, err
	}
	if allIntOrPointer(leaves) {
		return &Lowering{Kind: KindDirect, Type: types.Int(size * 8)}, nil
	}
	if hfa, fsz, count := homogeneousFloat(leaves); hfa {
		switch fsz {
		case 32:
			switch count {
			case 1:
				return &Lowering{Kind: KindDirect, Type: types.Float(32)}, nil
			case 2:
				return &Lowering{Kind: KindDirect, Type: types.Array(types.Float(32), 2)}, nil
			case 4:
				return &Lowering{Kind: KindDirect, Type: types.Array(types.Float(32), 4)}, nil
			}
		case 64:
			switch count {
			case 1:
				return &Lowering{Kind: KindDirect, Type: types.Float(64)}, nil
			case 2:
				return &Lowering{Kind: KindDirect, Type: types.Array(types.Float(64), 2)}, nil
			}
		}
	}

	align, err := AlignOf(t, env, tgt)
	if err != nil {
		return nil, err
	}
	return &Lowering{Kind: KindSRet, Size: size, Align: align}, nil
}

func isAggregate(t *types.WaveType) bool {
	return t.Kind == types.KStruct || t.Kind == types.KArray
}

// flattenLeaves recursively expands struct fields and array elements into
// their scalar leaf WaveTypes, the same way the classifier's source
// counts integer-vs-float leaves of a small aggregate.
func flattenLeaves(t *types.WaveType, env *types.Env, out []*types.WaveType) ([]*types.WaveType, *errors.Report) {
	switch t.Kind {
	case types.KStruct:
		fields, ok := env.StructFields(t.StructName)
		if !ok {
			return nil, unrepresentable(t)
		}
		var err *errors.Report
		for _, f := range fields {
			out, err = flattenLeaves(f.Type, env, out)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case types.KArray:
		var err *errors.Report
		for i := int64(0); i < t.Len; i++ {
			out, err = flattenLeaves(t.Elem, env, out)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return append(out, t), nil
	}
}

func homogeneousFloat(leaves []*types.WaveType) (ok bool, bits int, count int) {
	if len(leaves) == 0 {
		return false, 0, 0
	}
	bits = -1
	for _, l := range leaves {
		if !l.IsFloat() {
			return false, 0, 0
		}
		if bits == -1 {
			bits = l.Bits
		} else if l.Bits != bits {
			return false, 0, 0
		}
	}
	return true, bits, len(leaves)
}

func allIntOrPointer(leaves []*types.WaveType) bool {
	for _, l := range leaves {
		if !l.IsInteger() && l.Kind != types.KPointer && l.Kind != types.KBool && l.Kind != types.KChar && l.Kind != types.KByte {
			return false
		}
	}
	return true
}
