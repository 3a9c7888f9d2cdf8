package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/ir"
	"github.com/wavelang/wavec/internal/lexer"
	"github.com/wavelang/wavec/internal/loader"
	"github.com/wavelang/wavec/internal/parser"
	"github.com/wavelang/wavec/internal/target"
	"github.com/wavelang/wavec/internal/types"
)

// compileResult holds the lowered textual IR plus the intermediate stages
// dumpDebugWave needs to print under --debug-wave.
type compileResult struct {
	tokens []lexer.Token
	decls  []ast.Decl
	ir     string
}

// compileFile drives the whole core pipeline: lex, parse, resolve imports,
// build the named-type environment, and lower to textual IR. It returns a
// *errors.Report for any diagnostic the pipeline itself raises, and a plain
// error only for CLI-level failures (unreadable entry file, unknown
// target) that never reach the compiler's own diagnostic taxonomy.
func compileFile(path string, tgt *target.Spec) (*compileResult, *errors.Report, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	toks, rep := lexer.New(string(content), path).Tokenize()
	if rep != nil {
		return nil, rep, nil
	}

	decls, rep := parser.Parse(path, toks)
	if rep != nil {
		return &compileResult{tokens: toks}, rep, nil
	}

	visited := map[string]bool{loader.CanonicalPath(path): true}
	decls, rep = loader.Resolve(decls, filepath.Dir(path), visited)
	if rep != nil {
		return &compileResult{tokens: toks}, rep, nil
	}

	env, rep := buildEnv(decls, tgt.PointerBits)
	if rep != nil {
		return &compileResult{tokens: toks, decls: decls}, rep, nil
	}

	out, rep := ir.Generate(decls, env, tgt)
	if rep != nil {
		return &compileResult{tokens: toks, decls: decls}, rep, nil
	}

	return &compileResult{tokens: toks, decls: decls, ir: out}, nil, nil
}

// buildEnv declares every struct/enum/type-alias name up front (so a
// struct's fields may reference a sibling struct declared later in the
// same file) and then resolves each struct's field list in a second pass,
// satisfying internal/ir's precondition that every struct's fields are set
// before lowering begins.
func buildEnv(decls []ast.Decl, pointerBits int) (*types.Env, *errors.Report) {
	env := types.NewEnv(pointerBits)

	var structs []*ast.Struct
	for _, d := range decls {
		switch x := d.(type) {
		case *ast.Struct:
			env.DeclareStruct(x.Name)
			structs = append(structs, x)
		case *ast.Enum:
			env.DeclareEnum(x.Name, x.ReprType)
		case *ast.TypeAlias:
			env.DeclareAlias(x.Name, x.Target)
		}
	}

	for _, s := range structs {
		fields := make([]types.Field, 0, len(s.Fields))
		seen := map[string]bool{}
		for _, f := range s.Fields {
			if seen[f.Name] {
				return nil, errors.New(errors.KindCompilationFail, errors.E7009, s.Pos.File, s.Pos.Line, s.Pos.Column,
					fmt.Sprintf("struct %q has duplicate field %q", s.Name, f.Name))
			}
			seen[f.Name] = true
			ft, err := env.Resolve(f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, types.Field{Name: f.Name, Type: ft})
		}
		env.SetStructFields(s.Name, fields)
	}

	return env, nil
}
