package consteval

import (
	"fmt"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/types"
)

// eval evaluates one constant expression under an optional expected-type
// hint (used to pick an int/float literal's width and to validate array
// lengths). It returns an *unknownIdentErr for a forward reference (so the
// caller can requeue) and a plain error for anything else unsupported or
// malformed, which Evaluator.Run turns into a fatal E5002/E5003 report.
func (e *Evaluator) eval(expr ast.Expr, hint *types.WaveType) (*Value, error) {
	switch x := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(x, hint)
	case *ast.Null:
		t := hint
		if t == nil {
			t = types.Pointer(types.Void)
		}
		return &Value{Type: t, IsNull: true}, nil
	case *ast.Variable:
		if v, ok := e.consts[x.Name]; ok {
			return v, nil
		}
		return nil, &unknownIdentErr{name: x.Name}
	case *ast.Grouped:
		return e.eval(x.X, hint)
	case *ast.Unary:
		return e.evalUnary(x, hint)
	case *ast.Cast:
		return e.evalCast(x)
	case *ast.StructLiteral:
		return e.evalStructLiteral(x)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(x, hint)
	}
	return nil, fmt.Errorf("expression form is not a constant expression")
}

func (e *Evaluator) evalLiteral(lit *ast.Literal, hint *types.WaveType) (*Value, error) {
	switch lit.Kind {
	case ast.LitInt:
		v, suffixType, err := types.ParseIntLiteral(lit.Text, e.pointerBits)
		if err != nil {
			return nil, err
		}
		t := suffixType
		if t == nil {
			t = hint
		}
		if t == nil {
			t = types.Int(32)
		}
		if t.Kind == types.KFloat {
			return &Value{Type: t, Float: float64(v)}, nil
		}
		return &Value{Type: t, Int: v}, nil
	case ast.LitFloat:
		t := hint
		if t == nil || t.Kind != types.KFloat {
			t = types.Float(64)
		}
		return &Value{Type: t, Float: lit.Value.(float64)}, nil
	case ast.LitString:
		return &Value{Type: types.String, Str: lit.Value.(string)}, nil
	case ast.LitChar:
		return &Value{Type: types.Char, Int: int64(lit.Value.(rune))}, nil
	case ast.LitByte:
		return &Value{Type: types.Byte, Int: int64(lit.Value.(byte))}, nil
	case ast.LitBool:
		b := int64(0)
		if lit.Value.(bool) {
			b = 1
		}
		return &Value{Type: types.Bool, Int: b}, nil
	}
	return nil, fmt.Errorf("unrecognized literal kind")
}

func (e *Evaluator) evalUnary(u *ast.Unary, hint *types.WaveType) (*Value, error) {
	x, err := e.eval(u.X, hint)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case ast.UnaryNeg:
		if x.Type.IsFloat() {
			return &Value{Type: x.Type, Float: -x.Float}, nil
		}
		if !x.Type.IsInteger() {
			return nil, fmt.Errorf("unary '-' on non-numeric constant")
		}
		return &Value{Type: x.Type, Int: -x.Int}, nil
	case ast.UnaryNot:
		b := int64(0)
		if x.Int == 0 {
			b = 1
		}
		return &Value{Type: types.Bool, Int: b}, nil
	case ast.UnaryBitNot:
		if !x.Type.IsInteger() {
			return nil, fmt.Errorf("unary '~' on non-integer constant")
		}
		return &Value{Type: x.Type, Int: ^x.Int}, nil
	}
	return nil, fmt.Errorf("unsupported unary operator in constant expression")
}

func (e *Evaluator) evalCast(c *ast.Cast) (*Value, error) {
	x, err := e.eval(c.X, nil)
	if err != nil {
		return nil, err
	}
	target, rerr := e.env.Resolve(c.TargetType)
	if rerr != nil {
		return nil, rerr
	}

	switch {
	case target.Kind == types.KPointer:
		// int-to-pointer: only a literal zero may become null.
		if x.Type.IsInteger() && x.Int == 0 {
			return &Value{Type: target, IsNull: true}, nil
		}
		if x.Type.Kind == types.KPointer && x.IsNull {
			return &Value{Type: target, IsNull: true}, nil
		}
		return nil, fmt.Errorf("non-zero integer cannot be cast to a pointer in a constant expression")

	case x.Type.Kind == types.KPointer:
		// pointer-to-int: only a null pointer survives constant folding.
		if !x.IsNull {
			return nil, fmt.Errorf("non-null pointer cannot be cast to an integer in a constant expression")
		}
		return &Value{Type: target, Int: 0}, nil

	case target.IsInteger() && x.Type.IsInteger():
		v, ok := castInt(x.Int, target)
		if !ok {
			return nil, fmt.Errorf("constant %d is not representable in %s", x.Int, target)
		}
		return &Value{Type: target, Int: v}, nil

	case target.IsFloat() && x.Type.IsInteger():
		return &Value{Type: target, Float: float64(x.Int)}, nil

	case target.IsInteger() && x.Type.IsFloat():
		return &Value{Type: target, Int: int64(x.Float)}, nil

	case target.IsFloat() && x.Type.IsFloat():
		return &Value{Type: target, Float: x.Float}, nil
	}
	return nil, fmt.Errorf("unsupported constant cast from %s to %s", x.Type, target)
}

// castInt applies sign extension/truncation for an int-to-int const cast,
// rejecting a truncation that would not be representable in the narrower
// signed/unsigned target (spec §4.4: "truncation rejected if not
// representable").
func castInt(v int64, target *types.WaveType) (int64, bool) {
	bits := target.Bits
	if bits >= 64 {
		return v, true
	}
	mask := int64(1)<<uint(bits) - 1
	truncated := v & mask
	if target.Signed() && truncated&(int64(1)<<uint(bits-1)) != 0 {
		truncated |= ^mask
	}
	return truncated, truncated == v
}

func (e *Evaluator) evalStructLiteral(sl *ast.StructLiteral) (*Value, error) {
	fields, ok := e.env.StructFields(sl.Name)
	if !ok {
		return nil, fmt.Errorf("unknown struct %q in constant expression", sl.Name)
	}

	out := &Value{
		Type:       types.StructRef(sl.Name),
		FieldOrder: make([]string, len(fields)),
		Fields:     make(map[string]*Value, len(fields)),
	}
	for i, f := range fields {
		out.FieldOrder[i] = f.Name
	}

	// positional initializers: assign in declaration order.
	named := false
	for _, fi := range sl.Fields {
		if fi.Name != "" {
			named = true
		}
	}

	if named {
		for _, fi := range sl.Fields {
			idx := fieldIndex(fields, fi.Name)
			if idx < 0 {
				return nil, fmt.Errorf("struct %q has no field %q", sl.Name, fi.Name)
			}
			v, err := e.eval(fi.Value, fields[idx].Type)
			if err != nil {
				return nil, err
			}
			out.Fields[fi.Name] = v
		}
	} else {
		if len(sl.Fields) > len(fields) {
			return nil, fmt.Errorf("too many initializers for struct %q", sl.Name)
		}
		for i, fi := range sl.Fields {
			v, err := e.eval(fi.Value, fields[i].Type)
			if err != nil {
				return nil, err
			}
			out.Fields[fields[i].Name] = v
		}
	}

	// missing fields default to zero.
	for _, f := range fields {
		if _, ok := out.Fields[f.Name]; !ok {
			out.Fields[f.Name] = zeroValue(f.Type)
		}
	}
	return out, nil
}

func fieldIndex(fields []types.Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func zeroValue(t *types.WaveType) *Value {
	switch t.Kind {
	case types.KFloat:
		return &Value{Type: t}
	case types.KString:
		return &Value{Type: t}
	case types.KPointer:
		return &Value{Type: t, IsNull: true}
	case types.KStruct:
		return &Value{Type: t, Fields: map[string]*Value{}}
	case types.KArray:
		elems := make([]*Value, t.Len)
		for i := range elems {
			elems[i] = zeroValue(t.Elem)
		}
		return &Value{Type: t, Elems: elems}
	default:
		return &Value{Type: t}
	}
}

func (e *Evaluator) evalArrayLiteral(al *ast.ArrayLiteral, hint *types.WaveType) (*Value, error) {
	var elemHint *types.WaveType
	if hint != nil && hint.Kind == types.KArray {
		elemHint = hint.Elem
		if int64(len(al.Elements)) != hint.Len {
			return nil, &arrayLengthErr{got: int64(len(al.Elements)), want: hint.Len}
		}
	}

	elems := make([]*Value, len(al.Elements))
	for i, el := range al.Elements {
		v, err := e.eval(el, elemHint)
		if err != nil {
			return nil, err
		}
		elems[i] = v
		if elemHint == nil {
			elemHint = v.Type
		}
	}

	arrType := hint
	if arrType == nil {
		var et *types.WaveType = types.Void
		if len(elems) > 0 {
			et = elems[0].Type
		}
		arrType = types.Array(et, int64(len(elems)))
	}
	return &Value{Type: arrType, Elems: elems}, nil
}
