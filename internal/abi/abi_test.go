package abi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wavelang/wavec/internal/target"
	"github.com/wavelang/wavec/internal/types"
)

func testTarget(t *testing.T) *target.Spec {
	t.Helper()
	tgt, err := target.Lookup("linux-x86_64")
	require.NoError(t, err)
	return tgt
}

func TestStructLayoutAppliesFieldAndTrailingPadding(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Packed3")
	env.SetStructFields("Packed3", []types.Field{
		{Name: "a", Type: types.Int(8)},
		{Name: "b", Type: types.Int(32)},
		{Name: "c", Type: types.Int(8)},
	})

	layout, err := StructLayout("Packed3", env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, []int{0, 4, 8}, layout.Offsets)
	require.Equal(t, 4, layout.Align)
	require.Equal(t, 12, layout.Size) // trailing pad to 4-byte struct alignment
}

func TestFieldOffsetMatchesStructLayout(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Packed3")
	env.SetStructFields("Packed3", []types.Field{
		{Name: "a", Type: types.Int(8)},
		{Name: "b", Type: types.Int(32)},
		{Name: "c", Type: types.Int(8)},
	})

	off, err := FieldOffset("Packed3", "b", env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, 4, off)

	off, err = FieldOffset("Packed3", "c", env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, 8, off)
}

func TestFieldOffsetUnknownFieldIsError(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Point")
	env.SetStructFields("Point", []types.Field{{Name: "x", Type: types.Int(32)}})

	_, err := FieldOffset("Point", "z", env, testTarget(t))
	require.NotNil(t, err)
}

func TestSizeOfStructFollowsFields(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Point")
	env.SetStructFields("Point", []types.Field{
		{Name: "x", Type: types.Int(32)},
		{Name: "y", Type: types.Int(32)},
	})

	size, err := SizeOf(types.StructRef("Point"), env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, 8, size)
}

func TestClassifyParamNonAggregateIsDirect(t *testing.T) {
	env := types.NewEnv(64)
	lw, err := ClassifyParam(types.Int(32), env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, KindDirect, lw.Kind)
	require.True(t, types.Int(32).Equal(lw.Type))
}

func TestClassifyParamSmallIntegerStructIsIntegerPacked(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Point")
	env.SetStructFields("Point", []types.Field{
		{Name: "x", Type: types.Int(32)},
		{Name: "y", Type: types.Int(32)},
	})

	lw, err := ClassifyParam(types.StructRef("Point"), env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, KindDirect, lw.Kind)
	require.True(t, types.Int(64).Equal(lw.Type), "8-byte all-integer struct packs into i64")
}

func TestClassifyParamLargeStructIsByVal(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Big")
	env.SetStructFields("Big", []types.Field{
		{Name: "a", Type: types.Int(64)},
		{Name: "b", Type: types.Int(64)},
		{Name: "c", Type: types.Int(64)},
	})

	lw, err := ClassifyParam(types.StructRef("Big"), env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, KindByVal, lw.Kind)
	require.Equal(t, 24, lw.Size)
	require.Equal(t, 8, lw.Align)
}

func TestClassifyParamHomogeneousFloatAggregates(t *testing.T) {
	env := types.NewEnv(64)
	tgt := testTarget(t)

	env.DeclareStruct("Vec2")
	env.SetStructFields("Vec2", []types.Field{{Name: "x", Type: types.Float(32)}, {Name: "y", Type: types.Float(32)}})
	lw2, err := ClassifyParam(types.StructRef("Vec2"), env, tgt)
	require.Nil(t, err)
	require.Equal(t, KindDirect, lw2.Kind)
	require.True(t, types.Array(types.Float(32), 2).Equal(lw2.Type))

	env.DeclareStruct("Vec3")
	env.SetStructFields("Vec3", []types.Field{
		{Name: "x", Type: types.Float(32)}, {Name: "y", Type: types.Float(32)}, {Name: "z", Type: types.Float(32)},
	})
	lw3, err := ClassifyParam(types.StructRef("Vec3"), env, tgt)
	require.Nil(t, err)
	require.Equal(t, KindSplit, lw3.Kind)
	require.Len(t, lw3.Parts, 2)
	require.True(t, types.Array(types.Float(32), 2).Equal(lw3.Parts[0]))
	require.True(t, types.Float(32).Equal(lw3.Parts[1]))

	env.DeclareStruct("DVec2")
	env.SetStructFields("DVec2", []types.Field{{Name: "x", Type: types.Float(64)}, {Name: "y", Type: types.Float(64)}})
	lwd, err := ClassifyParam(types.StructRef("DVec2"), env, tgt)
	require.Nil(t, err)
	require.Equal(t, KindDirect, lwd.Kind)
	require.True(t, types.Array(types.Float(64), 2).Equal(lwd.Type))
}

func TestClassifyParamMixedSmallStructFallsBackToByVal(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Mixed")
	env.SetStructFields("Mixed", []types.Field{
		{Name: "a", Type: types.Int(32)},
		{Name: "b", Type: types.Float(32)},
	})

	lw, err := ClassifyParam(types.StructRef("Mixed"), env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, KindByVal, lw.Kind)
	require.Equal(t, 8, lw.Size)
}

func TestClassifyReturnVoid(t *testing.T) {
	env := types.NewEnv(64)
	lw, err := ClassifyReturn(types.Void, env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, KindVoid, lw.Kind)
}

func TestClassifyReturnLargeStructIsSRet(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Big")
	env.SetStructFields("Big", []types.Field{
		{Name: "a", Type: types.Int(64)},
		{Name: "b", Type: types.Int(64)},
		{Name: "c", Type: types.Int(64)},
	})

	lw, err := ClassifyReturn(types.StructRef("Big"), env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, KindSRet, lw.Kind)
	require.Equal(t, 24, lw.Size)
}

func TestClassifyReturnSmallIntegerStructIsDirect(t *testing.T) {
	env := types.NewEnv(64)
	env.DeclareStruct("Point")
	env.SetStructFields("Point", []types.Field{
		{Name: "x", Type: types.Int(32)},
		{Name: "y", Type: types.Int(32)},
	})

	lw, err := ClassifyReturn(types.StructRef("Point"), env, testTarget(t))
	require.Nil(t, err)
	require.Equal(t, KindDirect, lw.Kind)
	require.True(t, types.Int(64).Equal(lw.Type))
}
