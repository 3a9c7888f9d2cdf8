package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportStringIncludesPositionAndCode(t *testing.T) {
	r := New(KindUnexpectedChar, E1001, "main.wave", 4, 7, "stray '`'").
		WithHelp("remove the stray character").
		WithSuggestion("delete the backtick")

	s := r.String()
	require.True(t, strings.HasPrefix(s, "main.wave:4:7: UnexpectedChar [E1001]"))
	require.Contains(t, s, "stray '`'")
	require.Contains(t, s, "help: remove the stray character")
	require.Contains(t, s, "suggestion: delete the backtick")
}

func TestReportImplementsError(t *testing.T) {
	var err error = New(KindSyntax, E2001, "a.wave", 1, 1, "unexpected token")
	require.EqualError(t, err, err.(*Report).String())
}
