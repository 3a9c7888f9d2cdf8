// Package consteval implements the const evaluator (spec §4.4): bounded
// fixed-point evaluation of global `const` declarations. Each round
// attempts every pending constant; an unknown-identifier failure requeues
// it for the next round (it may reference a constant declared later in
// source order), and a round that makes no progress is a cycle.
package consteval

import (
	"fmt"
	"sort"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/types"
)

// Value is an evaluated constant: exactly one of the fields below is
// meaningful, selected by Type.Kind.
type Value struct {
	Type *types.WaveType

	Int    int64   // KInt, KUint, KBool (0/1), KChar, KByte
	Float  float64 // KFloat
	Str    string  // KString
	IsNull bool    // KPointer

	FieldOrder []string          // KStruct, declaration order
	Fields     map[string]*Value // KStruct
	Elems      []*Value          // KArray
}

// unknownIdentErr signals a forward reference to a constant not yet
// evaluated; Evaluator.Run requeues the declaration that produced it.
type unknownIdentErr struct{ name string }

func (e *unknownIdentErr) Error() string { return fmt.Sprintf("unknown identifier %q", e.name) }

// arrayLengthErr signals a const array literal whose length doesn't match
// its declared size, reported as E5003 rather than the generic E5002.
type arrayLengthErr struct {
	got, want int64
}

func (e *arrayLengthErr) Error() string {
	return fmt.Sprintf("array literal has %d elements, declared length is %d", e.got, e.want)
}

// Evaluator holds the named-type environment and growing table of
// already-evaluated constants for one translation unit.
type Evaluator struct {
	env         *types.Env
	pointerBits int
	consts      map[string]*Value
}

// New creates an Evaluator over env (for struct field layouts and named
// type resolution already performed by the type resolver).
func New(env *types.Env, pointerBits int) *Evaluator {
	return &Evaluator{env: env, pointerBits: pointerBits, consts: map[string]*Value{}}
}

// Lookup returns a previously evaluated constant by name.
func (e *Evaluator) Lookup(name string) (*Value, bool) {
	v, ok := e.consts[name]
	return v, ok
}

// Seed registers a constant directly, without evaluating an expression for
// it. The IR generator uses this to fold enum variants into the same flat
// constant namespace as `const` declarations before running Run, so a const
// initializer may reference an enum variant by name and vice versa.
func (e *Evaluator) Seed(name string, v *Value) {
	e.consts[name] = v
}

// EvalConst evaluates a single constant expression outside the fixed-point
// loop in Run, for callers (such as the IR generator) that need to fold one
// expression on demand — an enum variant's explicit value, or a `static`
// variable's initializer — against the same growing constant table.
func (e *Evaluator) EvalConst(expr ast.Expr, hint *types.WaveType) (*Value, *errors.Report) {
	val, err := e.eval(expr, hint)
	if err == nil {
		return val, nil
	}
	if report, ok := err.(*errors.Report); ok {
		return nil, report
	}
	if lenErr, ok := err.(*arrayLengthErr); ok {
		pos := expr.Position()
		return nil, errors.New(errors.KindCompilationFail, errors.E5003, pos.File, pos.Line, pos.Column, lenErr.Error())
	}
	if unknown, ok := err.(*unknownIdentErr); ok {
		pos := expr.Position()
		return nil, errors.New(errors.KindCompilationFail, errors.E5002, pos.File, pos.Line, pos.Column,
			fmt.Sprintf("invalid constant expression: %s", unknown.Error()))
	}
	return nil, e.invalid(expr, err.Error())
}

// Run evaluates every top-level `const` Variable declaration in decls to a
// fixed point, returning the full table of resolved constants.
func (e *Evaluator) Run(decls []ast.Decl) (map[string]*Value, *errors.Report) {
	var pending []*ast.Variable
	for _, d := range decls {
		if v, ok := d.(*ast.Variable); ok && v.Mutability == ast.MutConst {
			pending = append(pending, v)
		}
	}

	for len(pending) > 0 {
		var next []*ast.Variable
		progressed := false

		for _, v := range pending {
			var hint *types.WaveType
			if v.Type != nil {
				var herr *errors.Report
				hint, herr = e.env.Resolve(v.Type)
				if herr != nil {
					return nil, herr
				}
			}
			val, err := e.eval(v.Init, hint)
			if err == nil {
				e.consts[v.Name] = val
				progressed = true
				continue
			}
			if _, unknown := err.(*unknownIdentErr); unknown {
				next = append(next, v)
				continue
			}
			if report, ok := err.(*errors.Report); ok {
				return nil, report
			}
			if lenErr, ok := err.(*arrayLengthErr); ok {
				pos := v.Init.Position()
				return nil, errors.New(errors.KindCompilationFail, errors.E5003, pos.File, pos.Line, pos.Column, lenErr.Error())
			}
			return nil, e.invalid(v.Init, err.Error())
		}

		if !progressed {
			names := make([]string, len(next))
			for i, v := range next {
				names[i] = v.Name
			}
			sort.Strings(names)
			return nil, errors.New(errors.KindCompilationFail, errors.E5001, next[0].Pos.File, next[0].Pos.Line, next[0].Pos.Column,
				fmt.Sprintf("const declaration cycle (no progress): %v", names))
		}
		pending = next
	}

	return e.consts, nil
}

func (e *Evaluator) invalid(expr ast.Expr, msg string) *errors.Report {
	pos := expr.Position()
	return errors.New(errors.KindCompilationFail, errors.E5002, pos.File, pos.Line, pos.Column,
		fmt.Sprintf("invalid constant expression: %s", msg))
}
