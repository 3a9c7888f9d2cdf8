package asmplan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/target"
)

func testTarget(t *testing.T) *target.Spec {
	t.Helper()
	tgt, err := target.Lookup("linux-x86_64")
	require.NoError(t, err)
	return tgt
}

func TestBuildTiesSameExactOutputAndInputToken(t *testing.T) {
	dummy := &ast.Variable{Name: "x"}
	plan, err := Build(testTarget(t),
		[]string{"incq %0"},
		[]RegExpr{{Reg: "rax", Expr: dummy}},
		[]RegExpr{{Reg: "rax", Expr: dummy}},
		nil, ast.Pos{})
	require.Nil(t, err)
	require.Equal(t, "incq $0", plan.AsmCode)
	require.Len(t, plan.Inputs, 1)
	require.Equal(t, "0", plan.Inputs[0].Constraint, "exact token match on both sides ties the input to output 0")
}

func TestBuildPhysicalGroupMatchAloneIsNotTied(t *testing.T) {
	dummy := &ast.Variable{Name: "x"}
	// output "eax" and input "rax" share a physical group but not the exact
	// token, so the input must stay a plain register constraint.
	plan, err := Build(testTarget(t),
		nil,
		[]RegExpr{{Reg: "eax", Expr: dummy}},
		[]RegExpr{{Reg: "rax", Expr: dummy}},
		nil, ast.Pos{})
	require.Nil(t, err)
	require.Equal(t, "{rax}", plan.Inputs[0].Constraint)
}

func TestBuildDuplicateOutputPhysGroupIsE8001(t *testing.T) {
	dummy := &ast.Variable{Name: "x"}
	_, err := Build(testTarget(t), nil,
		[]RegExpr{{Reg: "al", Expr: dummy}, {Reg: "eax", Expr: dummy}},
		nil, nil, ast.Pos{})
	require.NotNil(t, err)
	require.Equal(t, "E8001", err.Code)
}

func TestBuildDuplicateInputPhysGroupIsE8002(t *testing.T) {
	dummy := &ast.Variable{Name: "x"}
	_, err := Build(testTarget(t), nil, nil,
		[]RegExpr{{Reg: "rdx", Expr: dummy}, {Reg: "dl", Expr: dummy}},
		nil, ast.Pos{})
	require.NotNil(t, err)
	require.Equal(t, "E8002", err.Code)
}

func TestBuildDefaultClobbersAllGPRsWhenAllOperandsConcrete(t *testing.T) {
	dummy := &ast.Variable{Name: "x"}
	plan, err := Build(testTarget(t), nil,
		[]RegExpr{{Reg: "rax", Expr: dummy}}, nil, nil, ast.Pos{})
	require.Nil(t, err)
	require.Contains(t, plan.Clobbers, "~{memory}")
	require.Contains(t, plan.Clobbers, "~{rbx}", "unused GPRs are auto-clobbered when no class constraint is present")
	require.NotContains(t, plan.Clobbers, "~{rax}", "rax is in use, so it is not also auto-clobbered")
}

func TestBuildClassConstraintSuppressesGPRAutoClobber(t *testing.T) {
	dummy := &ast.Variable{Name: "x"}
	plan, err := Build(testTarget(t), nil,
		[]RegExpr{{Reg: "r", Expr: dummy}}, nil, nil, ast.Pos{})
	require.Nil(t, err)
	require.Equal(t, []string{"~{memory}", "~{dirflag}", "~{fpsr}", "~{flags}"}, plan.Clobbers)
}

func TestBuildUserClobberConflictingWithOperandIsRejected(t *testing.T) {
	dummy := &ast.Variable{Name: "x"}
	_, err := Build(testTarget(t), nil,
		[]RegExpr{{Reg: "rax", Expr: dummy}}, nil,
		[]string{"rax"}, ast.Pos{})
	require.NotNil(t, err)
	require.Equal(t, "E8001", err.Code)
}

func TestConstraintStringOrdersOutputsInputsClobbers(t *testing.T) {
	dummy := &ast.Variable{Name: "x"}
	plan, err := Build(testTarget(t), nil,
		[]RegExpr{{Reg: "rax", Expr: dummy}},
		[]RegExpr{{Reg: "rdi", Expr: dummy}},
		nil, ast.Pos{})
	require.Nil(t, err)
	cs := plan.ConstraintString()
	require.True(t, len(cs) > 0)
	require.Contains(t, cs, "={rax}")
	require.Contains(t, cs, "{rdi}")
	require.Contains(t, cs, "~{memory}")
}
