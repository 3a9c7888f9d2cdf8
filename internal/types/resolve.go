package types

import (
	"fmt"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
)

// namedKind tags what a name in the environment refers to.
type namedKind int

const (
	namedAlias namedKind = iota
	namedEnum
	namedStruct
)

type namedEntry struct {
	kind       namedKind
	aliasOf    *ast.TypeExpr // namedAlias
	enumRepr   *ast.TypeExpr // namedEnum
	structName string        // namedStruct
}

// Env is the named-type environment: a map from type-alias, enum, or
// struct name to enough information to resolve references to it into a
// structural WaveType. PointerBits configures isz/usz's width.
type Env struct {
	entries      map[string]namedEntry
	structFields map[string][]Field
	PointerBits  int
}

// NewEnv creates an empty Env for the given target pointer width.
func NewEnv(pointerBits int) *Env {
	return &Env{entries: make(map[string]namedEntry), PointerBits: pointerBits}
}

// DeclareAlias registers a `type Name = target;` declaration.
func (e *Env) DeclareAlias(name string, target *ast.TypeExpr) {
	e.entries[name] = namedEntry{kind: namedAlias, aliasOf: target}
}

// DeclareEnum registers an `enum Name: repr { ... }` declaration.
func (e *Env) DeclareEnum(name string, repr *ast.TypeExpr) {
	e.entries[name] = namedEntry{kind: namedEnum, enumRepr: repr}
}

// DeclareStruct registers a `struct Name { ... }` declaration.
func (e *Env) DeclareStruct(name string) {
	e.entries[name] = namedEntry{kind: namedStruct, structName: name}
}

// Field is one resolved field of a struct, in declaration order.
type Field struct {
	Name string
	Type *WaveType
}

// SetStructFields records a struct's resolved field list, once its
// TypeExprs have all been resolved. Must be called after every struct name
// in the environment has been declared (fields may reference sibling
// structs), and before any call to StructFields/the ABI lowering pass.
func (e *Env) SetStructFields(name string, fields []Field) {
	if e.structFields == nil {
		e.structFields = make(map[string][]Field)
	}
	e.structFields[name] = fields
}

// StructFields returns the resolved field list for a previously declared
// struct name.
func (e *Env) StructFields(name string) ([]Field, bool) {
	fields, ok := e.structFields[name]
	return fields, ok
}

// Resolve converts a parsed TypeExpr into a structural WaveType, following
// alias chains and enum representations, detecting cycles.
func (e *Env) Resolve(t *ast.TypeExpr) (*WaveType, *errors.Report) {
	return e.resolve(t, nil)
}

func (e *Env) resolve(t *ast.TypeExpr, seen []string) (*WaveType, *errors.Report) {
	if t == nil {
		return Void, nil
	}
	switch t.Kind {
	case "base":
		wt, ok := baseType(t.Base, e.PointerBits)
		if !ok {
			return nil, errors.New(errors.KindCompilationFail, errors.E4002, t.Pos.File, t.Pos.Line, t.Pos.Column,
				fmt.Sprintf("unknown base type %q", t.Base))
		}
		return wt, nil
	case "ptr":
		elem, err := e.resolve(t.Elem, seen)
		if err != nil {
			return nil, err
		}
		return Pointer(elem), nil
	case "array":
		elem, err := e.resolve(t.Elem, seen)
		if err != nil {
			return nil, err
		}
		return Array(elem, t.Len), nil
	case "name":
		return e.resolveName(t.Name, t.Pos, seen)
	}
	return nil, errors.New(errors.KindCompilationFail, errors.E4002, t.Pos.File, t.Pos.Line, t.Pos.Column,
		"malformed type expression")
}

func (e *Env) resolveName(name string, pos ast.Pos, seen []string) (*WaveType, *errors.Report) {
	for _, s := range seen {
		if s == name {
			return nil, cycleError(name, append(seen, name), pos)
		}
	}
	entry, ok := e.entries[name]
	if !ok {
		return nil, errors.New(errors.KindCompilationFail, errors.E4002, pos.File, pos.Line, pos.Column,
			fmt.Sprintf("undefined type %q", name))
	}
	switch entry.kind {
	case namedStruct:
		return StructRef(name), nil
	case namedEnum:
		repr, err := e.resolve(entry.enumRepr, append(seen, name))
		if err != nil {
			return nil, err
		}
		if !repr.IsInteger() {
			return nil, errors.New(errors.KindCompilationFail, errors.E4002, pos.File, pos.Line, pos.Column,
				fmt.Sprintf("enum %q representation type must be an integer type", name))
		}
		return repr, nil
	case namedAlias:
		return e.resolve(entry.aliasOf, append(seen, name))
	}
	return nil, errors.New(errors.KindCompilationFail, errors.E4002, pos.File, pos.Line, pos.Column,
		fmt.Sprintf("unresolvable type %q", name))
}

func cycleError(name string, chain []string, pos ast.Pos) *errors.Report {
	return errors.New(errors.KindCompilationFail, errors.E4001, pos.File, pos.Line, pos.Column,
		fmt.Sprintf("type resolution cycle involving %q", name)).
		WithHelp(fmt.Sprintf("cycle: %v", chain))
}

func baseType(name string, pointerBits int) (*WaveType, bool) {
	switch name {
	case "i8":
		return Int(8), true
	case "i16":
		return Int(16), true
	case "i32":
		return Int(32), true
	case "i64":
		return Int(64), true
	case "i128":
		return Int(128), true
	case "i256":
		return Int(256), true
	case "i512":
		return Int(512), true
	case "i1024":
		return Int(1024), true
	case "u8":
		return Uint(8), true
	case "u16":
		return Uint(16), true
	case "u32":
		return Uint(32), true
	case "u64":
		return Uint(64), true
	case "u128":
		return Uint(128), true
	case "u256":
		return Uint(256), true
	case "u512":
		return Uint(512), true
	case "u1024":
		return Uint(1024), true
	case "f32":
		return Float(32), true
	case "f64":
		return Float(64), true
	case "f128":
		return Float(128), true
	case "f256":
		return Float(256), true
	case "f512":
		return Float(512), true
	case "f1024":
		return Float(1024), true
	case "isz":
		return Isz(pointerBits), true
	case "usz":
		return Usz(pointerBits), true
	case "bool":
		return Bool, true
	case "char":
		return Char, true
	case "byte":
		return Byte, true
	case "str":
		return String, true
	case "void":
		return Void, true
	}
	return nil, false
}
