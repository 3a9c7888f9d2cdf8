// Package loader implements the import resolver (spec §4.3): it walks
// Import(path) declarations in a parsed file, recursively lexes and parses
// each imported file relative to the importing file's directory, and
// splices the resolved declarations of each import in before the
// importer's own declarations. Re-imports of an already-visited canonical
// path are silently skipped, which is what makes the walk cycle-safe
// without a dedicated cycle diagnostic.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/lexer"
	"github.com/wavelang/wavec/internal/parser"
)

// Resolve replaces every Import in decls (parsed from a file in baseDir)
// with the declarations reachable from it, recursively, placing all
// imported declarations ahead of decls' own non-import declarations.
// visited is both read and written: callers resolving a fresh top-level
// file should pass an empty map.
func Resolve(decls []ast.Decl, baseDir string, visited map[string]bool) ([]ast.Decl, *errors.Report) {
	var imported, own []ast.Decl
	for _, d := range decls {
		imp, ok := d.(*ast.Import)
		if !ok {
			own = append(own, d)
			continue
		}
		resolved, err := resolveOne(imp, baseDir, visited)
		if err != nil {
			return nil, err
		}
		imported = append(imported, resolved...)
	}
	return append(imported, own...), nil
}

func resolveOne(imp *ast.Import, baseDir string, visited map[string]bool) ([]ast.Decl, *errors.Report) {
	fullPath := resolvePath(imp.Path, baseDir)
	canonical := CanonicalPath(fullPath)
	if visited[canonical] {
		return nil, nil
	}
	visited[canonical] = true

	content, ioerr := os.ReadFile(fullPath)
	if ioerr != nil {
		return nil, errors.New(errors.KindFileRead, errors.E3001, imp.Pos.File, imp.Pos.Line, imp.Pos.Column,
			fmt.Sprintf("cannot read imported file %q: %v", imp.Path, ioerr)).
			WithHelp("check that the import path is correct relative to the importing file")
	}

	toks, lerr := lexer.New(string(content), fullPath).Tokenize()
	if lerr != nil {
		return nil, lerr
	}
	fileDecls, perr := parser.Parse(fullPath, toks)
	if perr != nil {
		return nil, perr
	}

	return Resolve(fileDecls, filepath.Dir(fullPath), visited)
}

// resolvePath resolves an import path relative to the importing file's
// directory. Absolute paths and paths already carrying a file extension
// are used as-is; everything else is joined to baseDir with a ".wave"
// suffix.
func resolvePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return withWaveSuffix(path)
	}
	return withWaveSuffix(filepath.Join(baseDir, path))
}

func withWaveSuffix(path string) string {
	if filepath.Ext(path) == ".wave" {
		return path
	}
	return path + ".wave"
}

// CanonicalPath is the deduplication key for the visited set: a cleaned,
// absolute path, so that "./foo" and "foo" (and symlinked equivalents)
// resolve to the same entry.
func CanonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		if real, err := filepath.EvalSymlinks(abs); err == nil {
			return real
		}
		return filepath.Clean(abs)
	}
	return filepath.Clean(path)
}
