package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/lexer"
	"github.com/wavelang/wavec/internal/parser"
)

func parseFile(t *testing.T, path string) []ast.Decl {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	toks, lerr := lexer.New(string(content), path).Tokenize()
	require.Nil(t, lerr)
	decls, perr := parser.Parse(path, toks)
	require.Nil(t, perr, "%v", perr)
	return decls
}

func TestResolveSplicesImportedDeclsBeforeImporter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math.wave"), []byte(`
fun square(x: i32) -> i32 {
    return x * x;
}
`), 0o644))
	mainPath := filepath.Join(dir, "main.wave")
	require.NoError(t, os.WriteFile(mainPath, []byte(`
import "math";

fun main() -> i32 {
    return square(2);
}
`), 0o644))

	decls := parseFile(t, mainPath)
	resolved, err := Resolve(decls, dir, map[string]bool{})
	require.Nil(t, err)
	require.Len(t, resolved, 2)
	fn0, ok := resolved[0].(*ast.Function)
	require.True(t, ok)
	require.Equal(t, "square", fn0.Name)
	fn1, ok := resolved[1].(*ast.Function)
	require.True(t, ok)
	require.Equal(t, "main", fn1.Name)
}

func TestResolveDedupsRepeatedImport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.wave"), []byte(`
const ONE: i32 = 1;
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wave"), []byte(`
import "util";
`), 0o644))
	mainPath := filepath.Join(dir, "main.wave")
	require.NoError(t, os.WriteFile(mainPath, []byte(`
import "util";
import "a";

fun main() -> i32 {
    return 0;
}
`), 0o644))

	decls := parseFile(t, mainPath)
	resolved, err := Resolve(decls, dir, map[string]bool{})
	require.Nil(t, err)

	count := 0
	for _, d := range resolved {
		if v, ok := d.(*ast.Variable); ok && v.Name == "ONE" {
			count++
		}
	}
	require.Equal(t, 1, count, "util.wave's const must be spliced only once")
}

func TestResolveSelfImportCycleIsSilentlySkipped(t *testing.T) {
	dir := t.TempDir()
	cyclePath := filepath.Join(dir, "cycle.wave")
	require.NoError(t, os.WriteFile(cyclePath, []byte(`
import "cycle";

fun f() -> i32 {
    return 0;
}
`), 0o644))

	decls := parseFile(t, cyclePath)
	visited := map[string]bool{CanonicalPath(cyclePath): true}
	resolved, err := Resolve(decls, dir, visited)
	require.Nil(t, err)
	require.Len(t, resolved, 1)
}

func TestResolveMissingImportIsE3001(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.wave")
	require.NoError(t, os.WriteFile(mainPath, []byte(`import "does_not_exist";`), 0o644))

	decls := parseFile(t, mainPath)
	_, err := Resolve(decls, dir, map[string]bool{})
	require.NotNil(t, err)
	require.Equal(t, "E3001", err.Code)
}
