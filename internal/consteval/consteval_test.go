package consteval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/types"
)

func intLit(text string) *ast.Literal { return &ast.Literal{Kind: ast.LitInt, Text: text} }

func i32Type() *ast.TypeExpr { return &ast.TypeExpr{Kind: "base", Base: "i32"} }

func TestRunResolvesForwardReferencedConstant(t *testing.T) {
	env := types.NewEnv(64)
	decls := []ast.Decl{
		&ast.Variable{Name: "B", Mutability: ast.MutConst, Type: i32Type(), Init: &ast.Variable{Name: "A"}},
		&ast.Variable{Name: "A", Mutability: ast.MutConst, Type: i32Type(), Init: intLit("7")},
	}

	ev := New(env, 64)
	consts, err := ev.Run(decls)
	require.Nil(t, err)
	require.Equal(t, int64(7), consts["A"].Int)
	require.Equal(t, int64(7), consts["B"].Int)
}

func TestRunDetectsCycle(t *testing.T) {
	env := types.NewEnv(64)
	decls := []ast.Decl{
		&ast.Variable{Name: "A", Mutability: ast.MutConst, Type: i32Type(), Init: &ast.Variable{Name: "B"}},
		&ast.Variable{Name: "B", Mutability: ast.MutConst, Type: i32Type(), Init: &ast.Variable{Name: "A"}},
	}

	ev := New(env, 64)
	_, err := ev.Run(decls)
	require.NotNil(t, err)
	require.Equal(t, "E5001", err.Code)
}

func TestRunNegatedIntLiteral(t *testing.T) {
	env := types.NewEnv(64)
	decls := []ast.Decl{
		&ast.Variable{Name: "NEG", Mutability: ast.MutConst, Type: i32Type(),
			Init: &ast.Unary{Op: ast.UnaryNeg, X: intLit("5")}},
	}
	ev := New(env, 64)
	consts, err := ev.Run(decls)
	require.Nil(t, err)
	require.Equal(t, int64(-5), consts["NEG"].Int)
}

func TestRunStructLiteralMissingFieldDefaultsToZero(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Point")
	env.SetStructFields("Point", []types.Field{
		{Name: "x", Type: types.Int(32)},
		{Name: "y", Type: types.Int(32)},
	})

	decls := []ast.Decl{
		&ast.Variable{Name: "ORIGIN", Mutability: ast.MutConst,
			Init: &ast.StructLiteral{Name: "Point", Fields: []ast.StructFieldInit{
				{Name: "x", Value: intLit("3")},
			}}},
	}
	ev := New(env, 64)
	consts, err := ev.Run(decls)
	require.Nil(t, err)
	require.Equal(t, int64(3), consts["ORIGIN"].Fields["x"].Int)
	require.Equal(t, int64(0), consts["ORIGIN"].Fields["y"].Int)
}

func TestRunArrayLiteralLengthMismatchIsE5003(t *testing.T) {
	env := types.NewEnv(64)
	decls := []ast.Decl{
		&ast.Variable{Name: "ARR", Mutability: ast.MutConst,
			Type: &ast.TypeExpr{Kind: "array", Elem: i32Type(), Len: 3},
			Init: &ast.ArrayLiteral{Elements: []ast.Expr{intLit("1"), intLit("2")}}},
	}
	ev := New(env, 64)
	_, err := ev.Run(decls)
	require.NotNil(t, err)
	require.Equal(t, "E5003", err.Code)
}

func TestRunIntToPointerZeroCastIsNull(t *testing.T) {
	env := types.NewEnv(64)
	decls := []ast.Decl{
		&ast.Variable{Name: "NP", Mutability: ast.MutConst,
			Init: &ast.Cast{X: intLit("0"), TargetType: &ast.TypeExpr{Kind: "ptr", Elem: i32Type()}}},
	}
	ev := New(env, 64)
	consts, err := ev.Run(decls)
	require.Nil(t, err)
	require.True(t, consts["NP"].IsNull)
}
