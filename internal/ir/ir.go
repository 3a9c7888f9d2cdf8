// Package ir lowers a resolved Wave AST into a textual LLVM-IR-dialect
// module: struct type definitions, global statics, function signatures
// (including ABI-lowered extern "c" declarations) and function bodies.
//
// Integer add/sub/mul lower to plain LLVM add/sub/mul with no nsw/nuw
// flags, so integer overflow wraps around in two's complement.
//
// The environment env must already have every struct/enum/alias declared
// and every struct's fields set (the same precondition internal/abi and
// internal/consteval already require of their callers).
package ir

import (
	"fmt"
	"strings"

	"github.com/wavelang/wavec/internal/abi"
	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/consteval"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/target"
	"github.com/wavelang/wavec/internal/types"
)

// rvalue is a generated expression's value: its IR text, its IR type text,
// and the WaveType it carries. Array/struct-typed rvalues hold an address
// (irTy "ptr") by convention rather than a loaded aggregate value.
type rvalue struct {
	text string
	irTy string
	wt   *types.WaveType
}

type localVar struct {
	ptr string
	wt  *types.WaveType
}

type funcSig struct {
	params []*types.WaveType
	ret    *types.WaveType
}

type externInfo struct {
	name     string
	symbol   string
	params   []*types.WaveType
	retType  *types.WaveType
	paramLow []*abi.Lowering
	retLow   *abi.Lowering
	variadic bool
}

type genCtx struct {
	env *types.Env
	tgt *target.Spec

	consts           map[string]*consteval.Value
	globals          map[string]*localVar
	structFieldIndex map[string]map[string]int
	funcSigs         map[string]*funcSig
	externInfo       map[string]*externInfo

	mod        *genModule
	strCounter *int
	usedMemcpy bool
	usedPrintf bool

	funcDefs []fnDef
}

type fnDef struct {
	ast *ast.Function
	fn  *function
}

// irPanic carries a diagnostic report through a recover() at Generate's
// entry point; any other panic value propagates as a genuine bug.
type irPanic struct{ report *errors.Report }

func panicf(code errors.Code, pos ast.Pos, format string, args ...interface{}) {
	panic(irPanic{report: errors.New(errors.KindCompilationFail, code, pos.File, pos.Line, pos.Column, fmt.Sprintf(format, args...))})
}

// Generate lowers decls into a textual LLVM-IR-dialect module string.
func Generate(decls []ast.Decl, env *types.Env, tgt *target.Spec) (out string, report *errors.Report) {
	g := &genCtx{
		env:              env,
		tgt:              tgt,
		consts:           map[string]*consteval.Value{},
		globals:          map[string]*localVar{},
		structFieldIndex: map[string]map[string]int{},
		funcSigs:         map[string]*funcSig{},
		externInfo:       map[string]*externInfo{},
		mod:              &genModule{},
		strCounter:       new(int),
	}

	defer func() {
		if r := recover(); r != nil {
			if ip, ok := r.(irPanic); ok {
				report = ip.report
				out = ""
				return
			}
			panic(r)
		}
	}()

	g.generate(decls)
	g.mod.usedMemcpy = g.usedMemcpy
	g.mod.usedPrintf = g.usedPrintf
	return g.mod.render(), nil
}

func (g *genCtx) generate(decls []ast.Decl) {
	var structs []*ast.Struct
	var enums []*ast.Enum
	var vars []*ast.Variable
	var fns []*ast.Function
	var externs []*ast.ExternFunction
	var protos []*ast.ProtoImpl

	for _, d := range decls {
		switch x := d.(type) {
		case *ast.Struct:
			structs = append(structs, x)
		case *ast.Enum:
			enums = append(enums, x)
		case *ast.Variable:
			vars = append(vars, x)
		case *ast.Function:
			fns = append(fns, x)
		case *ast.ExternFunction:
			externs = append(externs, x)
		case *ast.ProtoImpl:
			protos = append(protos, x)
		}
	}

	// Struct type bodies and field-index tables first: functions and
	// static initializers both need them.
	for _, s := range structs {
		fields, ok := g.env.StructFields(s.Name)
		if !ok {
			panicf(errors.E7002, s.Pos, "struct %q has no resolved field layout", s.Name)
		}
		idx := make(map[string]int, len(fields))
		var parts []string
		for i, f := range fields {
			idx[f.Name] = i
			parts = append(parts, lowerType(f.Type, flavorAbiC))
		}
		g.structFieldIndex[s.Name] = idx
		g.mod.structDefs = append(g.mod.structDefs, fmt.Sprintf("%%%s = type { %s }", s.Name, strings.Join(parts, ", ")))
	}

	// Enum variants are folded into the same flat constant namespace as
	// `const` declarations, and must be seeded before the const
	// fixed-point so a const initializer may reference a variant by name.
	ev := consteval.New(g.env, g.tgt.PointerBits)
	for _, e := range enums {
		genEnumConsts(g, ev, e)
	}

	constTable, cerr := ev.Run(declsOf(vars))
	if cerr != nil {
		panic(irPanic{cerr})
	}
	for k, v := range constTable {
		g.consts[k] = v
	}

	for _, v := range vars {
		if v.Mutability == ast.MutStatic {
			genStaticGlobal(g, ev, v)
		}
	}

	// Struct/proto-impl methods are flattened into plain functions with
	// mangled "<Type>_<method>" names before signatures are declared.
	var methodFns []*ast.Function
	for _, s := range structs {
		for _, m := range s.Methods {
			methodFns = append(methodFns, cloneFunctionRenamed(m, s.Name+"_"+m.Name))
		}
	}
	// Proto-impl methods arrive already named "<Target>_<method>" by the
	// parser.
	for _, p := range protos {
		methodFns = append(methodFns, p.Methods...)
	}
	allFns := append(append([]*ast.Function{}, fns...), methodFns...)

	for _, f := range allFns {
		registerFuncSig(g, f)
	}
	for _, ext := range externs {
		buildExternInfo(g, ext)
	}

	for _, fd := range g.funcDefs {
		genFunctionBody(g, fd)
	}
}

func declsOf(vars []*ast.Variable) []ast.Decl {
	out := make([]ast.Decl, len(vars))
	for i, v := range vars {
		out[i] = v
	}
	return out
}

func cloneFunctionRenamed(f *ast.Function, name string) *ast.Function {
	c := *f
	c.Name = name
	return &c
}

func genEnumConsts(g *genCtx, ev *consteval.Evaluator, e *ast.Enum) {
	repr, err := g.env.Resolve(e.ReprType)
	if err != nil {
		panic(irPanic{err})
	}
	if !repr.IsInteger() {
		panicf(errors.E7005, e.Pos, "enum %q representation type must be an integer type, got %s", e.Name, repr)
	}

	var next int64
	for _, v := range e.Variants {
		if v.Explicit != nil {
			val, everr := ev.EvalConst(v.Explicit, repr)
			if everr != nil {
				panic(irPanic{everr})
			}
			next = val.Int
		}
		if !fitsInBits(next, repr.Bits, repr.Signed()) {
			panicf(errors.E7005, e.Pos, "enum %q variant %q value %d does not fit in %s", e.Name, v.Name, next, repr)
		}
		ev.Seed(v.Name, &consteval.Value{Type: repr, Int: next})
		next++
	}
}

func fitsInBits(v int64, bits int, signed bool) bool {
	if bits <= 0 || bits > 64 {
		return false
	}
	if bits == 64 {
		return true
	}
	if signed {
		min := -(int64(1) << uint(bits-1))
		max := (int64(1) << uint(bits-1)) - 1
		return v >= min && v <= max
	}
	if v < 0 {
		return false
	}
	max := (int64(1) << uint(bits)) - 1
	return v <= max
}

func genStaticGlobal(g *genCtx, ev *consteval.Evaluator, v *ast.Variable) {
	var vt *types.WaveType
	if v.Type != nil {
		t, err := g.env.Resolve(v.Type)
		if err != nil {
			panic(irPanic{err})
		}
		vt = t
	}

	var initText string
	if v.Init != nil {
		val, err := ev.EvalConst(v.Init, vt)
		if err != nil {
			panic(irPanic{err})
		}
		if vt == nil {
			vt = val.Type
		}
		initText = renderConstValue(g, val)
	} else {
		initText = zeroText(vt)
	}

	g.mod.globals = append(g.mod.globals, fmt.Sprintf("@%s = global %s %s", v.Name, lowerType(vt, flavorValue), initText))
	g.globals[v.Name] = &localVar{ptr: "@" + v.Name, wt: vt}
}

func registerFuncSig(g *genCtx, f *ast.Function) {
	var params []*types.WaveType
	for _, p := range f.Params {
		t, err := g.env.Resolve(p.Type)
		if err != nil {
			panic(irPanic{err})
		}
		params = append(params, t)
	}

	var ret *types.WaveType
	if f.ReturnType != nil {
		t, err := g.env.Resolve(f.ReturnType)
		if err != nil {
			panic(irPanic{err})
		}
		if t.Kind != types.KVoid {
			ret = t
		}
	}

	implicitMain := f.Name == "main" && ret == nil

	fn := &function{name: f.Name}
	for _, p := range f.Params {
		t, _ := g.env.Resolve(p.Type)
		fn.params = append(fn.params, paramDecl{irType: lowerType(t, flavorValue), name: p.Name})
	}
	if implicitMain {
		fn.retIR = "i32"
		ret = types.Int(32)
	} else if ret == nil {
		fn.retIR = "void"
	} else {
		fn.retIR = lowerType(ret, flavorValue)
	}
	fn.semRetType = ret
	fn.implicitI32Main = implicitMain

	g.funcSigs[f.Name] = &funcSig{params: params, ret: ret}
	g.mod.funcs = append(g.mod.funcs, fn)
	g.funcDefs = append(g.funcDefs, fnDef{ast: f, fn: fn})
}

func buildExternInfo(g *genCtx, ext *ast.ExternFunction) {
	if !strings.EqualFold(ext.ABI, "c") {
		panicf(errors.E7007, ext.Pos, "unsupported extern ABI %q: only extern(\"c\") is supported", ext.ABI)
	}

	var params []*types.WaveType
	for _, p := range ext.Params {
		t, err := g.env.Resolve(p.Type)
		if err != nil {
			panic(irPanic{err})
		}
		params = append(params, t)
	}
	var retType *types.WaveType
	if ext.ReturnType != nil {
		t, err := g.env.Resolve(ext.ReturnType)
		if err != nil {
			panic(irPanic{err})
		}
		if t.Kind != types.KVoid {
			retType = t
		}
	}

	var paramLow []*abi.Lowering
	for _, pt := range params {
		low, err := abi.ClassifyParam(pt, g.env, g.tgt)
		if err != nil {
			panic(irPanic{err})
		}
		paramLow = append(paramLow, low)
	}
	retLow, err := abi.ClassifyReturn(retType, g.env, g.tgt)
	if err != nil {
		panic(irPanic{err})
	}

	symbol := ext.Name
	if ext.Symbol != "" {
		symbol = ext.Symbol
	}

	info := &externInfo{name: ext.Name, symbol: symbol, params: params, retType: retType, paramLow: paramLow, retLow: retLow, variadic: ext.Variadic}
	g.externInfo[ext.Name] = info

	fn := &function{name: symbol, isDeclare: true, variadic: ext.Variadic}
	if retLow.Kind == abi.KindSRet {
		fn.params = append(fn.params, paramDecl{irType: "ptr", name: "ret", attr: fmt.Sprintf("sret(%s) align %d", lowerType(retType, flavorAbiC), retLow.Align)})
		fn.retIR = "void"
	} else if retLow.Kind == abi.KindVoid {
		fn.retIR = "void"
	} else {
		fn.retIR = lowerType(retLow.Type, flavorValue)
	}
	for i, low := range paramLow {
		switch low.Kind {
		case abi.KindDirect:
			fn.params = append(fn.params, paramDecl{irType: lowerType(low.Type, flavorValue)})
		case abi.KindSplit:
			for _, pt := range low.Parts {
				fn.params = append(fn.params, paramDecl{irType: lowerType(pt, flavorValue)})
			}
		case abi.KindByVal:
			fn.params = append(fn.params, paramDecl{irType: "ptr", attr: fmt.Sprintf("byval(%s) align %d", lowerType(params[i], flavorAbiC), low.Align)})
		}
	}
	g.mod.funcs = append(g.mod.funcs, fn)
}

func genFunctionBody(g *genCtx, fd fnDef) {
	f, fn := fd.ast, fd.fn
	fb := &fnBuilder{g: g, fn: fn}
	entry := fb.newBlock("entry")
	fb.switchTo(entry)
	fb.pushScope()

	for _, p := range f.Params {
		t, err := g.env.Resolve(p.Type)
		if err != nil {
			panic(irPanic{err})
		}
		slot := fb.allocaInEntry(lowerType(t, flavorValue))
		fb.emitf("store %s %%arg.%s, ptr %s", lowerType(t, flavorValue), p.Name, slot)
		fb.declareLocal(p.Name, &localVar{ptr: slot, wt: t})
	}

	genBlockStmts(fb, f.Body)

	if !fb.cur.terminated {
		switch {
		case fn.implicitI32Main:
			fb.terminate("ret i32 0")
		case fn.semRetType == nil:
			fb.terminate("ret void")
		default:
			panicf(errors.E7003, f.Pos, "non-void function %q is missing a return statement", f.Name)
		}
	}

	fb.popScope()
	spliceEntryAllocas(fn)
}

func externSymbol(info *externInfo) string { return info.symbol }
