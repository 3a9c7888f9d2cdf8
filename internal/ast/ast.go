// Package ast defines the typed abstract syntax tree the parser produces:
// declarations, statements, expressions, and the small parsed-type-syntax
// tree that the types package later resolves into structural WaveTypes.
package ast

import "fmt"

// Pos is a 1-based source position.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Span is a half-open range in source text, start to end.
type Span struct {
	Start Pos
	End   Pos
}

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// File is one parsed translation unit, before import resolution splices in
// the ASTs of its imports.
type File struct {
	Path  string
	Decls []Decl
}

// ---- Type syntax ----------------------------------------------------

// TypeExpr is the small grammar parsed for type annotations: a base
// keyword, ptr<T>, array<T, N>, or a user type name. The types package
// resolves these into structural WaveType values.
type TypeExpr struct {
	// Kind is one of: "base", "ptr", "array", "name".
	Kind string
	// Base holds the keyword text for Kind=="base" (e.g. "i32", "bool").
	Base string
	// Elem is the pointee/element type for Kind in {"ptr","array"}.
	Elem *TypeExpr
	// Len is the array length for Kind=="array"; -1 if not an array.
	Len int64
	// Name is the user type name for Kind=="name".
	Name string
	Pos  Pos
}

func (t *TypeExpr) Position() Pos { return t.Pos }

func (t *TypeExpr) String() string {
	switch t.Kind {
	case "base":
		return t.Base
	case "ptr":
		return fmt.Sprintf("ptr<%s>", t.Elem.String())
	case "array":
		return fmt.Sprintf("array<%s, %d>", t.Elem.String(), t.Len)
	case "name":
		return t.Name
	}
	return "<invalid type>"
}

// ---- Declarations -----------------------------------------------------

// Mutability tags a Variable declaration's binding mode.
type Mutability int

const (
	MutVar Mutability = iota
	MutLet
	MutLetMut
	MutConst
	MutStatic
)

// Param is one function/extern parameter.
type Param struct {
	Name    string
	Type    *TypeExpr
	Default Expr // optional default value, Function params only
}

// Function is a `fun` declaration, including struct methods and proto-impl
// methods. A struct method keeps its bare Name here (internal/ir renames
// it "<Struct>_<method>"); a proto-impl method's Name is already
// "<Target>_<method>", set by the parser.
type Function struct {
	Name       string
	Params     []Param
	ReturnType *TypeExpr // nil means unannotated/void
	Body       []Stmt
	Pos        Pos
}

func (f *Function) declNode()       {}
func (f *Function) Position() Pos   { return f.Pos }

// ExternFunction is an `extern(abi) fun name(...) -> T;` declaration.
type ExternFunction struct {
	Name       string
	Symbol     string // optional link-name override
	ABI        string // only "c" is supported
	Params     []Param
	ReturnType *TypeExpr
	Variadic   bool
	Pos        Pos
}

func (e *ExternFunction) declNode()     {}
func (e *ExternFunction) Position() Pos { return e.Pos }

// StructField is one field of a Struct declaration.
type StructField struct {
	Name string
	Type *TypeExpr
}

// Struct is a `struct` declaration with its fields and inline methods.
type Struct struct {
	Name    string
	Fields  []StructField
	Methods []*Function
	Pos     Pos
}

func (s *Struct) declNode()     {}
func (s *Struct) Position() Pos { return s.Pos }

// EnumVariant is one variant of an Enum declaration.
type EnumVariant struct {
	Name     string
	Explicit Expr // optional explicit value expression; nil means prev+1 (or 0 for the first)
}

// Enum is an `enum Name: reprType { ... }` declaration.
type Enum struct {
	Name     string
	ReprType *TypeExpr // must resolve to an integer WaveType
	Variants []EnumVariant
	Pos      Pos
}

func (e *Enum) declNode()     {}
func (e *Enum) Position() Pos { return e.Pos }

// TypeAlias is a `type Name = T;` declaration.
type TypeAlias struct {
	Name   string
	Target *TypeExpr
	Pos    Pos
}

func (t *TypeAlias) declNode()     {}
func (t *TypeAlias) Position() Pos { return t.Pos }

// ProtoImpl is a `proto Target { ... }` method-implementation block.
// The parser names its methods "<Target>_<method>".
type ProtoImpl struct {
	Target  string
	Methods []*Function
	Pos     Pos
}

func (p *ProtoImpl) declNode()     {}
func (p *ProtoImpl) Position() Pos { return p.Pos }

// Variable is a top-level or local variable/const/static declaration.
type Variable struct {
	Name       string
	Type       *TypeExpr // may be nil when inferred from Init's literal form
	Init       Expr      // optional, except Const which always has one
	Mutability Mutability
	Pos        Pos
}

func (v *Variable) declNode()     {}
func (v *Variable) stmtNode()     {}
func (v *Variable) Position() Pos { return v.Pos }

// Import is a top-level `import "path";` directive.
type Import struct {
	Path string
	Pos  Pos
}

func (i *Import) declNode()     {}
func (i *Import) stmtNode()     {}
func (i *Import) Position() Pos { return i.Pos }
