package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/lexer"
	"github.com/wavelang/wavec/internal/parser"
	"github.com/wavelang/wavec/internal/target"
	"github.com/wavelang/wavec/internal/types"
)

func testTarget(t *testing.T) *target.Spec {
	t.Helper()
	tgt, err := target.Lookup("linux-x86_64")
	require.NoError(t, err)
	return tgt
}

// parseDecls runs the real lex/parse stages so these tests exercise the
// generator against the same AST shapes the driver pipeline produces,
// rather than hand-built fixtures that could drift from the parser.
func parseDecls(t *testing.T, src string) []ast.Decl {
	t.Helper()
	toks, lerr := lexer.New(src, "t.wave").Tokenize()
	require.Nil(t, lerr)
	decls, perr := parser.Parse("t.wave", toks)
	require.Nil(t, perr, "%v", perr)
	return decls
}

// buildTestEnv mirrors the driver's buildEnv: declare every struct/enum/
// alias up front, then resolve each struct's fields, satisfying Generate's
// precondition that env already knows every struct's layout.
func buildTestEnv(t *testing.T, decls []ast.Decl, pointerBits int) *types.Env {
	t.Helper()
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
		var fields []types.Field
		for _, f := range s.Fields {
			ft, err := env.Resolve(f.Type)
			require.Nil(t, err)
			fields = append(fields, types.Field{Name: f.Name, Type: ft})
		}
		env.SetStructFields(s.Name, fields)
	}

	return env
}

func generateSrc(t *testing.T, src string) (string, *errors.Report) {
	t.Helper()
	decls := parseDecls(t, src)
	env := buildTestEnv(t, decls, 64)
	return Generate(decls, env, testTarget(t))
}

func TestGenerateHelloWorldMainImplicitReturn(t *testing.T) {
	out, rep := generateSrc(t, `
fun main() {
    print("hello");
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "declare i32 @printf(ptr, ...)")
	require.Contains(t, out, "define i32 @main()")
	require.Contains(t, out, `call i32 (ptr, ...) @printf(ptr @.str.1)`)
	require.Contains(t, out, "ret i32 0")
}

func TestGenerateBinaryPromotesNarrowerOperandWithZext(t *testing.T) {
	out, rep := generateSrc(t, `
fun addMixed(a: u8, b: i32) -> i32 {
    return a + b;
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "zext i8")
	require.Contains(t, out, "add i32")
	require.Contains(t, out, "define i32 @addMixed(i8 %arg.a, i32 %arg.b)")
}

func TestGenerateLocalArrayWithCompoundAssignment(t *testing.T) {
	out, rep := generateSrc(t, `
fun bump() -> i32 {
    let xs: array<i32, 3> = [1, 2, 3];
    xs[0] += 5;
    return xs[0];
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "[3 x i32]")
	require.Contains(t, out, "getelementptr")
	require.Contains(t, out, "define i32 @bump()")
}

func TestGenerateStructMethodCallUsesMangledName(t *testing.T) {
	out, rep := generateSrc(t, `
struct Point {
    x: i32;
    y: i32;

    fun sum(self: ptr<Point>) -> i32 {
        return 0;
    }
}

fun main() -> i32 {
    let p: Point = Point{ x: 1, y: 2 };
    return p.sum();
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "%Point = type { i32, i32 }")
	require.Contains(t, out, "define i32 @Point_sum(ptr %arg.self)")
	require.Contains(t, out, "call i32 @Point_sum(")
}

func TestGenerateEnumMatchEmitsSwitch(t *testing.T) {
	out, rep := generateSrc(t, `
enum Color: u8 {
    Red,
    Green,
    Blue,
}

fun code(c: Color) -> i32 {
    match c {
        Red => { return 1; }
        Green => { return 2; }
        _ => { return 0; }
    }
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "switch i8")
	require.Contains(t, out, "i8 0, label %match.arm")
	require.Contains(t, out, "i8 1, label %match.arm")
}

func TestGenerateExternCCallPacksSmallStruct(t *testing.T) {
	out, rep := generateSrc(t, `
struct Pair {
    a: i32;
    b: i32;
}

extern(c) fun consume_pair(p: Pair) -> i32;

fun main() -> i32 {
    let p: Pair = Pair{ a: 1, b: 2 };
    return consume_pair(p);
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "declare i32 @consume_pair(i64)")
	require.Contains(t, out, "call void @llvm.memcpy.p0.p0.i64")
	require.Contains(t, out, "call i32 @consume_pair(")
}

func TestGenerateBreakOutsideLoopIsE7007(t *testing.T) {
	_, rep := generateSrc(t, `
fun main() {
    break;
}
`)
	require.NotNil(t, rep)
	require.Equal(t, errors.E7007, rep.Code)
}

func TestGenerateUndeclaredVariableIsE7001(t *testing.T) {
	_, rep := generateSrc(t, `
fun main() -> i32 {
    return missing;
}
`)
	require.NotNil(t, rep)
	require.Equal(t, errors.E7001, rep.Code)
}

func TestGenerateNonVoidFunctionMissingReturnIsE7003(t *testing.T) {
	_, rep := generateSrc(t, `
fun give() -> i32 {
    let x: i32 = 1;
}
`)
	require.NotNil(t, rep)
	require.Equal(t, errors.E7003, rep.Code)
}

func TestGenerateWideFloatLowersToOpaqueBlobWithZeroInit(t *testing.T) {
	out, rep := generateSrc(t, `
fun main() {
    let x: f128;
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "alloca i128")
	require.Contains(t, out, "store i128 0")
}

func TestGenerateFloatLiteralIntoWideFloatIsE7007(t *testing.T) {
	_, rep := generateSrc(t, `
fun main() -> i32 {
    let x: f128 = 1.0;
    return 0;
}
`)
	require.NotNil(t, rep)
	require.Equal(t, errors.E7007, rep.Code)
}

func TestGenerateStructFieldAccessAndLiteralUseByteOffsetGEP(t *testing.T) {
	out, rep := generateSrc(t, `
struct Pair {
    a: i32;
    b: i32;
}

fun main() -> i32 {
    let p: Pair = Pair{ a: 1, b: 2 };
    return p.b;
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "getelementptr inbounds i8, ptr %")
	require.Contains(t, out, "i64 4")
}

func TestGenerateDuplicateMatchArmConstantIsE7006(t *testing.T) {
	_, rep := generateSrc(t, `
fun pick(n: i32) -> i32 {
    match n {
        1 => { return 10; }
        1 => { return 20; }
        _ => { return 0; }
    }
}
`)
	require.NotNil(t, rep)
	require.Equal(t, errors.E7006, rep.Code)
}

func TestGenerateExplicitMainReturnValue(t *testing.T) {
	out, rep := generateSrc(t, `
fun main() -> i32 {
    return 42;
}
`)
	require.Nil(t, rep)
	require.Contains(t, out, "define i32 @main()")
	require.Contains(t, out, "ret i32 42")
}
