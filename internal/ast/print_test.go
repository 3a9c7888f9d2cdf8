package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintStructIncludesFieldsAndMethods(t *testing.T) {
	s := &Struct{
		Name: "Point",
		Fields: []StructField{
			{Name: "x", Type: &TypeExpr{Kind: "base", Base: "i32"}},
			{Name: "y", Type: &TypeExpr{Kind: "base", Base: "i32"}},
		},
		Methods: []*Function{
			{Name: "Point_sum", ReturnType: &TypeExpr{Kind: "base", Base: "i32"}},
		},
	}

	out := Print(s)
	require.Contains(t, out, `"type": "Struct"`)
	require.Contains(t, out, `"name": "Point"`)
	require.Contains(t, out, `"fieldType": "i32"`)
	require.Contains(t, out, "Point_sum")
}

func TestPrintEnumIncludesVariants(t *testing.T) {
	e := &Enum{
		Name:     "Color",
		ReprType: &TypeExpr{Kind: "base", Base: "u8"},
		Variants: []EnumVariant{{Name: "Red"}, {Name: "Green"}, {Name: "Blue"}},
	}

	out := Print(e)
	require.Contains(t, out, `"type": "Enum"`)
	require.Contains(t, out, `"reprType": "u8"`)
	require.Contains(t, out, "Red")
	require.Contains(t, out, "Green")
	require.Contains(t, out, "Blue")
}

func TestPrintBinaryNestsOperandsAndSymbol(t *testing.T) {
	b := &Binary{
		Op:    BinAdd,
		Left:  &Literal{Kind: LitInt, Text: "1"},
		Right: &Literal{Kind: LitInt, Text: "2"},
	}

	out := Print(b)
	require.Contains(t, out, `"type": "Binary"`)
	require.Contains(t, out, `"op": "+"`)
	require.Contains(t, out, `"text": "1"`)
	require.Contains(t, out, `"text": "2"`)
}

func TestPrintDeclsWrapsEachTopLevelDecl(t *testing.T) {
	decls := []Decl{
		&Function{Name: "main"},
		&TypeAlias{Name: "Id", Target: &TypeExpr{Kind: "base", Base: "i32"}},
	}

	out := PrintDecls(decls)
	require.Contains(t, out, `"name": "main"`)
	require.Contains(t, out, `"type": "TypeAlias"`)
}

func TestPrintNilNodeIsJSONNull(t *testing.T) {
	require.Equal(t, "null", Print(nil))
}

func TestCompactProducesSingleLine(t *testing.T) {
	out := Compact(&Break{})
	require.Equal(t, `{"type":"Break"}`, out)
}

// TestDeterministicMarshaling mirrors the teacher's golden-snapshot
// guarantee: printing the same tree repeatedly must never vary, since
// Go map key ordering is otherwise unspecified.
func TestDeterministicMarshaling(t *testing.T) {
	fn := &Function{
		Name: "compute",
		Params: []Param{
			{Name: "a", Type: &TypeExpr{Kind: "base", Base: "i32"}},
			{Name: "b", Type: &TypeExpr{Kind: "base", Base: "i32"}},
		},
		ReturnType: &TypeExpr{Kind: "base", Base: "i32"},
		Body: []Stmt{
			&Return{Value: &Binary{
				Op:    BinAdd,
				Left:  &Variable{Name: "a"},
				Right: &Variable{Name: "b"},
			}},
		},
	}

	baseline := Print(fn)
	for i := 0; i < 50; i++ {
		require.Equal(t, baseline, Print(fn))
	}
}
