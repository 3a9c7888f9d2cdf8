package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wavelang/wavec/internal/ast"
)

func base(name string) *ast.TypeExpr { return &ast.TypeExpr{Kind: "base", Base: name} }
func named(name string) *ast.TypeExpr { return &ast.TypeExpr{Kind: "name", Name: name} }

func TestResolveBaseTypes(t *testing.T) {
	e := NewEnv(64)
	wt, err := e.Resolve(base("i32"))
	require.Nil(t, err)
	require.Equal(t, Int(32), wt)
}

func TestResolveAliasChain(t *testing.T) {
	e := NewEnv(64)
	e.DeclareAlias("MyInt", base("i64"))
	e.DeclareAlias("MyAlias", named("MyInt"))

	wt, err := e.Resolve(named("MyAlias"))
	require.Nil(t, err)
	require.True(t, wt.Equal(Int(64)))
}

func TestResolveAliasCycleIsE4001(t *testing.T) {
	e := NewEnv(64)
	e.DeclareAlias("A", named("B"))
	e.DeclareAlias("B", named("A"))

	_, err := e.Resolve(named("A"))
	require.NotNil(t, err)
	require.Equal(t, "E4001", err.Code)
}

func TestResolveEnumReprMustBeInteger(t *testing.T) {
	e := NewEnv(64)
	e.DeclareEnum("Color", base("bool"))
	_, err := e.Resolve(named("Color"))
	require.NotNil(t, err)
	require.Equal(t, "E4002", err.Code)
}

func TestResolveEnumAsIntegerRepr(t *testing.T) {
	e := NewEnv(64)
	e.DeclareEnum("Color", base("u8"))
	wt, err := e.Resolve(named("Color"))
	require.Nil(t, err)
	require.True(t, wt.Equal(Uint(8)))
}

func TestResolveUndefinedNameIsE4002(t *testing.T) {
	e := NewEnv(64)
	_, err := e.Resolve(named("Nope"))
	require.NotNil(t, err)
	require.Equal(t, "E4002", err.Code)
}

func TestResolvePointerAndArray(t *testing.T) {
	e := NewEnv(64)
	ptrT := &ast.TypeExpr{Kind: "ptr", Elem: base("i32")}
	wt, err := e.Resolve(ptrT)
	require.Nil(t, err)
	require.Equal(t, KPointer, wt.Kind)
	require.True(t, wt.Elem.Equal(Int(32)))

	arrT := &ast.TypeExpr{Kind: "array", Elem: base("i32"), Len: 3}
	wt2, err := e.Resolve(arrT)
	require.Nil(t, err)
	require.Equal(t, KArray, wt2.Kind)
	require.Equal(t, int64(3), wt2.Len)
}

func TestResolveStructByName(t *testing.T) {
	e := NewEnv(64)
	e.DeclareStruct("Point")
	wt, err := e.Resolve(named("Point"))
	require.Nil(t, err)
	require.Equal(t, KStruct, wt.Kind)
	require.Equal(t, "Point", wt.StructName)
}

func TestIszUszUsePointerWidth(t *testing.T) {
	e := NewEnv(32)
	wt, err := e.Resolve(base("isz"))
	require.Nil(t, err)
	require.Equal(t, 32, wt.Bits)
	require.True(t, wt.IsSize)
}
