package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntLiteralPlainDecimal(t *testing.T) {
	v, wt, err := ParseIntLiteral("42", 64)
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
	require.Nil(t, wt)
}

func TestParseIntLiteralHexWithSuffix(t *testing.T) {
	v, wt, err := ParseIntLiteral("0xFF_u8", 64)
	require.NoError(t, err)
	require.Equal(t, int64(255), v)
	require.True(t, Uint(8).Equal(wt))
}

func TestParseIntLiteralBinaryWithDigitSeparators(t *testing.T) {
	v, wt, err := ParseIntLiteral("0b10_10", 64)
	require.NoError(t, err)
	require.Equal(t, int64(10), v)
	require.Nil(t, wt)
}

func TestParseIntLiteralDigitGroupingDoesNotConfuseSuffix(t *testing.T) {
	v, wt, err := ParseIntLiteral("1_000_000", 64)
	require.NoError(t, err)
	require.Equal(t, int64(1000000), v)
	require.Nil(t, wt)
}

func TestParseIntLiteralPointerWidthSuffix(t *testing.T) {
	v, wt, err := ParseIntLiteral("8_usz", 32)
	require.NoError(t, err)
	require.Equal(t, int64(8), v)
	require.True(t, Usz(32).Equal(wt))
}
