package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKnownTargets(t *testing.T) {
	s, err := Lookup("linux-x86_64")
	require.NoError(t, err)
	require.Equal(t, 64, s.PointerBits)
	require.Contains(t, s.GPRs, "rax")
	require.Equal(t, []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}, s.ArgIntRegs)

	s2, err := Lookup("darwin-arm64")
	require.NoError(t, err)
	require.Contains(t, s2.GPRs, "x0")
}

func TestLookupUnknownTargetErrors(t *testing.T) {
	_, err := Lookup("solaris-sparc")
	require.Error(t, err)
}

func TestDefaultTarget(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)
	require.Equal(t, "linux-x86_64", s.Name)
}

func TestGPRGroupNormalizesSubregisters(t *testing.T) {
	s, err := Lookup("linux-x86_64")
	require.NoError(t, err)
	require.Equal(t, "rax", s.GPRGroup("al"))
	require.Equal(t, "rax", s.GPRGroup("ax"))
	require.Equal(t, "rax", s.GPRGroup("eax"))
	require.Equal(t, "rax", s.GPRGroup("rax"))
	require.Equal(t, "r10", s.GPRGroup("r10d"))
}

func TestGPRGroupNormalizesARM64Subregisters(t *testing.T) {
	s, err := Lookup("darwin-arm64")
	require.NoError(t, err)
	require.Equal(t, "x0", s.GPRGroup("w0"))
	require.Equal(t, "x0", s.GPRGroup("x0"))
	require.Equal(t, "x19", s.GPRGroup("w19"))
	require.Equal(t, "sp", s.GPRGroup("wsp"))
}
