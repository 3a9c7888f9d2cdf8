package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/lexer"
)

func parseSrc(t *testing.T, src string) []ast.Decl {
	t.Helper()
	toks, lerr := lexer.New(src, "t.wave").Tokenize()
	require.Nil(t, lerr)
	decls, perr := Parse("t.wave", toks)
	require.Nil(t, perr, "%v", perr)
	return decls
}

func TestParseFunctionWithParamsAndReturn(t *testing.T) {
	decls := parseSrc(t, `
fun add(a: i32, b: i32) -> i32 {
    return a + b;
}
`)
	require.Len(t, decls, 1)
	fn, ok := decls[0].(*ast.Function)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.NotNil(t, fn.ReturnType)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.BinAdd, bin.Op)
}

func TestParseStructWithMethodAndFieldTypes(t *testing.T) {
	decls := parseSrc(t, `
struct Point {
    x: i32;
    y: i32;

    fun sum(self: ptr<Point>) -> i32 {
        return 0;
    }
}
`)
	require.Len(t, decls, 1)
	st, ok := decls[0].(*ast.Struct)
	require.True(t, ok)
	require.Equal(t, "Point", st.Name)
	require.Len(t, st.Fields, 2)
	require.Len(t, st.Methods, 1)
	require.Equal(t, "sum", st.Methods[0].Name)
}

func TestParseEnumWithReprAndExplicitValue(t *testing.T) {
	decls := parseSrc(t, `
enum Color: u8 {
    Red = 1,
    Green,
    Blue,
}
`)
	en, ok := decls[0].(*ast.Enum)
	require.True(t, ok)
	require.Equal(t, "u8", en.ReprType.Base)
	require.Len(t, en.Variants, 3)
	require.NotNil(t, en.Variants[0].Explicit)
	require.Nil(t, en.Variants[1].Explicit)
}

func TestParseTypeAliasContextualKeyword(t *testing.T) {
	decls := parseSrc(t, `type Id = u64;`)
	al, ok := decls[0].(*ast.TypeAlias)
	require.True(t, ok)
	require.Equal(t, "Id", al.Name)
	require.Equal(t, "u64", al.Target.Base)
}

func TestParseExternVariadicFunction(t *testing.T) {
	decls := parseSrc(t, `extern(c) fun printf(fmt: ptr<byte>, ...) -> i32;`)
	ex, ok := decls[0].(*ast.ExternFunction)
	require.True(t, ok)
	require.Equal(t, "c", ex.ABI)
	require.True(t, ex.Variadic)
	require.Len(t, ex.Params, 1)
}

func TestParseConstRequiresInitializer(t *testing.T) {
	toks, _ := lexer.New(`const X: i32;`, "t.wave").Tokenize()
	_, err := Parse("t.wave", toks)
	require.NotNil(t, err)
	require.Equal(t, "E2001", err.Code)
}

func TestParseIfElseIfElse(t *testing.T) {
	decls := parseSrc(t, `
fun classify(n: i32) -> i32 {
    if n < 0 {
        return -1;
    } else if n == 0 {
        return 0;
    } else {
        return 1;
    }
}
`)
	fn := decls[0].(*ast.Function)
	ifStmt, ok := fn.Body[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.ElseIf, 1)
	require.Len(t, ifStmt.Else, 1)
}

func TestParseWhileAndForLoops(t *testing.T) {
	decls := parseSrc(t, `
fun loop() -> void {
    var i: i32 = 0;
    while i < 10 {
        i += 1;
    }
    for var j: i32 = 0; j < 10; j += 1 {
        print("iter");
    }
}
`)
	fn := decls[0].(*ast.Function)
	require.Len(t, fn.Body, 3)
	_, ok := fn.Body[1].(*ast.While)
	require.True(t, ok)
	forStmt, ok := fn.Body[2].(*ast.For)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Step)
}

func TestParseMatchWithWildcardAndDuplicateWildcardRejected(t *testing.T) {
	decls := parseSrc(t, `
fun f(n: i32) -> i32 {
    match n {
        0 => { return 10; },
        1 => return 20;
        _ => return 30;
    }
    return 0;
}
`)
	fn := decls[0].(*ast.Function)
	m, ok := fn.Body[0].(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)
	require.Nil(t, m.Arms[2].Pattern)

	toks, _ := lexer.New(`
fun g(n: i32) -> i32 {
    match n {
        _ => return 1;
        _ => return 2;
    }
}
`, "t.wave").Tokenize()
	_, err := Parse("t.wave", toks)
	require.NotNil(t, err)
	require.Equal(t, "E2005", err.Code)
}

func TestParseStructLiteralNotConfusedWithIfBrace(t *testing.T) {
	decls := parseSrc(t, `
fun f(flag: bool) -> i32 {
    if flag {
        return 1;
    }
    var p: Point = Point{ x: 1, y: 2 };
    return p.x;
}
`)
	fn := decls[0].(*ast.Function)
	_, ok := fn.Body[0].(*ast.If)
	require.True(t, ok)
	varDecl, ok := fn.Body[1].(*ast.Variable)
	require.True(t, ok)
	lit, ok := varDecl.Init.(*ast.StructLiteral)
	require.True(t, ok)
	require.Equal(t, "Point", lit.Name)
	require.Len(t, lit.Fields, 2)
}

func TestParseCastBindsTighterThanAdditive(t *testing.T) {
	decls := parseSrc(t, `
fun f() -> i64 {
    return 1 + 2 as i64;
}
`)
	fn := decls[0].(*ast.Function)
	ret := fn.Body[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.Binary)
	require.True(t, ok)
	_, ok = bin.Right.(*ast.Cast)
	require.True(t, ok)
}

func TestParseAsmBlockStatement(t *testing.T) {
	decls := parseSrc(t, `
fun f(x: i32) -> i32 {
    var result: i32 = 0;
    asm {
        "addl %1, %0";
        in(rax) x;
        out(rax) result;
        clobber(flags);
    }
    return result;
}
`)
	fn := decls[0].(*ast.Function)
	block, ok := fn.Body[1].(*ast.AsmBlock)
	require.True(t, ok)
	require.Len(t, block.Instructions, 1)
	require.Len(t, block.Inputs, 1)
	require.Len(t, block.Outputs, 1)
	require.Len(t, block.Clobbers, 1)
}

func TestParseArrayTypeAndLiteral(t *testing.T) {
	decls := parseSrc(t, `
fun f() -> void {
    var xs: array<i32, 3> = [1, 2, 3];
}
`)
	fn := decls[0].(*ast.Function)
	v := fn.Body[0].(*ast.Variable)
	require.Equal(t, "array", v.Type.Kind)
	require.Equal(t, int64(3), v.Type.Len)
	arrLit, ok := v.Init.(*ast.ArrayLiteral)
	require.True(t, ok)
	require.Len(t, arrLit.Elements, 3)
}

func TestParseImportDecl(t *testing.T) {
	decls := parseSrc(t, `import "std/io";`)
	imp, ok := decls[0].(*ast.Import)
	require.True(t, ok)
	require.Equal(t, "std/io", imp.Path)
}

func TestParseProtoImplMethodsAreMangled(t *testing.T) {
	decls := parseSrc(t, `
struct Point { x: i32; }
proto Point {
    fun dist(self: ptr<Point>) -> i32 {
        return 0;
    }
}
`)
	require.Len(t, decls, 2)
	impl, ok := decls[1].(*ast.ProtoImpl)
	require.True(t, ok)
	require.Equal(t, "Point_dist", impl.Methods[0].Name)
}
