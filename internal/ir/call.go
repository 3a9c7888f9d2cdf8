package ir

import (
	"strings"

	"github.com/wavelang/wavec/internal/abi"
	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/types"
)

func genFunctionCall(fb *fnBuilder, fc *ast.FunctionCall, hint *types.WaveType) rvalue {
	if info, ok := fb.g.externInfo[fc.Name]; ok {
		return genExternCall(fb, info, fc.Args, fc.Pos)
	}

	sig, ok := fb.g.funcSigs[fc.Name]
	if !ok {
		panicf(errors.E7008, fc.Pos, "call to undeclared function %q", fc.Name)
	}
	if len(fc.Args) != len(sig.params) {
		panicf(errors.E7008, fc.Pos, "function %q expects %d arguments, got %d", fc.Name, len(sig.params), len(fc.Args))
	}

	var argTexts []string
	for i, a := range fc.Args {
		av := genExpr(fb, a, sig.params[i])
		av = coerceArg(fb, av, sig.params[i], fc.Pos)
		argTexts = append(argTexts, av.irTy+" "+av.text)
	}

	retIR := "void"
	if sig.ret != nil {
		retIR = lowerType(sig.ret, flavorValue)
	}
	call := "call " + retIR + " @" + fc.Name + "(" + strings.Join(argTexts, ", ") + ")"
	if sig.ret == nil {
		fb.emit(call)
		return rvalue{"0", "i32", types.Int(32)}
	}
	reg := fb.newReg()
	fb.emitf("%s = %s", reg, call)
	return rvalue{reg, retIR, sig.ret}
}

func coerceArg(fb *fnBuilder, v rvalue, target *types.WaveType, pos ast.Pos) rvalue {
	if target == nil || v.wt.Equal(target) {
		return v
	}
	if v.wt.Kind == types.KPointer && target.Kind == types.KPointer {
		return rvalue{v.text, "ptr", target}
	}
	if target.Kind == types.KArray || target.Kind == types.KStruct {
		return v
	}
	return recastNoNarrow(fb, v, target, pos)
}

func genMethodCall(fb *fnBuilder, mc *ast.MethodCall, hint *types.WaveType) rvalue {
	objType := exprWaveType(fb, mc.Object)
	var structName string
	if objType.Kind == types.KStruct {
		structName = objType.StructName
	} else if objType.Kind == types.KPointer && objType.Elem.Kind == types.KStruct {
		structName = objType.Elem.StructName
	}

	if structName != "" {
		mangled := structName + "_" + mc.Name
		if sig, ok := fb.g.funcSigs[mangled]; ok {
			return callMangledMethod(fb, mangled, sig, mc.Object, mc.Args, mc.Pos)
		}
	}
	if sig, ok := fb.g.funcSigs[mc.Name]; ok {
		return callMangledMethod(fb, mc.Name, sig, mc.Object, mc.Args, mc.Pos)
	}
	panicf(errors.E7008, mc.Pos, "no method %q found for receiver type %s", mc.Name, objType)
	return rvalue{}
}

func callMangledMethod(fb *fnBuilder, name string, sig *funcSig, recv ast.Expr, args []ast.Expr, pos ast.Pos) rvalue {
	var allArgs []ast.Expr
	if recv != nil {
		allArgs = append(allArgs, recv)
	}
	allArgs = append(allArgs, args...)

	if len(allArgs) != len(sig.params) {
		panicf(errors.E7008, pos, "method %q expects %d arguments, got %d", name, len(sig.params), len(allArgs))
	}

	var argTexts []string
	for i, a := range allArgs {
		av := genExpr(fb, a, sig.params[i])
		av = coerceArg(fb, av, sig.params[i], pos)
		argTexts = append(argTexts, av.irTy+" "+av.text)
	}

	retIR := "void"
	if sig.ret != nil {
		retIR = lowerType(sig.ret, flavorValue)
	}
	call := "call " + retIR + " @" + name + "(" + strings.Join(argTexts, ", ") + ")"
	if sig.ret == nil {
		fb.emit(call)
		return rvalue{"0", "i32", types.Int(32)}
	}
	reg := fb.newReg()
	fb.emitf("%s = %s", reg, call)
	return rvalue{reg, retIR, sig.ret}
}

func isAggregateWT(t *types.WaveType) bool {
	return t != nil && (t.Kind == types.KStruct || t.Kind == types.KArray)
}

func genExternCall(fb *fnBuilder, info *externInfo, args []ast.Expr, pos ast.Pos) rvalue {
	var argTexts []string
	var sretAddr string

	if info.retLow.Kind == abi.KindSRet {
		sretAddr = fb.allocaInEntry(lowerType(info.retType, flavorValue))
		argTexts = append(argTexts, "ptr sret("+lowerType(info.retType, flavorAbiC)+") align "+itoaSimple(info.retLow.Align)+" "+sretAddr)
	}

	for i, pt := range info.params {
		if i >= len(args) {
			panicf(errors.E7008, pos, "extern %q expects at least %d arguments", info.name, len(info.params))
		}
		av := genExpr(fb, args[i], pt)
		low := info.paramLow[i]
		switch low.Kind {
		case abi.KindDirect:
			packed := packDirect(fb, av, pt, low, pos)
			argTexts = append(argTexts, packed.irTy+" "+packed.text)
		case abi.KindSplit:
			parts := splitParts(fb, av, pt, low, pos)
			for _, p := range parts {
				argTexts = append(argTexts, p.irTy+" "+p.text)
			}
		case abi.KindByVal:
			addr := av.text
			if !isAggregateWT(pt) {
				addr = fb.allocaInEntry(lowerType(pt, flavorValue))
				fb.emitf("store %s %s, ptr %s", lowerType(pt, flavorValue), av.text, addr)
			}
			argTexts = append(argTexts, "ptr byval("+lowerType(pt, flavorAbiC)+") align "+itoaSimple(low.Align)+" "+addr)
		}
	}

	for i := len(info.params); i < len(args); i++ {
		av := genExpr(fb, args[i], nil)
		argTexts = append(argTexts, av.irTy+" "+av.text)
	}

	switch info.retLow.Kind {
	case abi.KindVoid:
		fb.emitf("call void @%s(%s)", info.symbol, strings.Join(argTexts, ", "))
		return rvalue{"0", "i32", types.Int(32)}
	case abi.KindSRet:
		fb.emitf("call void @%s(%s)", info.symbol, strings.Join(argTexts, ", "))
		return rvalue{sretAddr, "ptr", info.retType}
	default:
		retIR := lowerType(info.retLow.Type, flavorValue)
		reg := fb.newReg()
		fb.emitf("%s = call %s @%s(%s)", reg, retIR, info.symbol, strings.Join(argTexts, ", "))
		return unpackDirect(fb, rvalue{reg, retIR, info.retLow.Type}, info.retType, pos)
	}
}

func itoaSimple(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// packDirect reinterprets a source operand as the single lowered scalar
// type the ABI classifies it as. Scalars coerce directly; small aggregates
// are reinterpreted byte-for-byte via a scratch alloca, since same-size
// aggregates share layout under System V.
func packDirect(fb *fnBuilder, av rvalue, srcType *types.WaveType, low *abi.Lowering, pos ast.Pos) rvalue {
	if !isAggregateWT(srcType) {
		return coerceArg(fb, av, low.Type, pos)
	}
	size, err := abi.SizeOf(srcType, fb.g.env, fb.g.tgt)
	if err != nil {
		panic(irPanic{err})
	}
	scratch := fb.allocaInEntry(lowerType(low.Type, flavorValue))
	fb.g.usedMemcpy = true
	fb.emitf("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %d, i1 false)", scratch, av.text, size)
	reg := fb.newReg()
	fb.emitf("%s = load %s, ptr %s", reg, lowerType(low.Type, flavorValue), scratch)
	return rvalue{reg, lowerType(low.Type, flavorValue), low.Type}
}

// splitParts reinterprets an aggregate operand's bytes as the sequence of
// scalar register-class parts the ABI classified it into.
func splitParts(fb *fnBuilder, av rvalue, srcType *types.WaveType, low *abi.Lowering, pos ast.Pos) []rvalue {
	size, err := abi.SizeOf(srcType, fb.g.env, fb.g.tgt)
	if err != nil {
		panic(irPanic{err})
	}
	scratch := fb.allocaInEntry("[" + itoaSimple(size) + " x i8]")
	fb.g.usedMemcpy = true
	fb.emitf("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %d, i1 false)", scratch, av.text, size)

	var out []rvalue
	offset := 0
	for _, part := range low.Parts {
		gep := fb.newReg()
		fb.emitf("%s = getelementptr inbounds i8, ptr %s, i64 %d", gep, scratch, offset)
		reg := fb.newReg()
		fb.emitf("%s = load %s, ptr %s", reg, lowerType(part, flavorValue), gep)
		out = append(out, rvalue{reg, lowerType(part, flavorValue), part})
		partSize, serr := abi.SizeOf(part, fb.g.env, fb.g.tgt)
		if serr != nil {
			panic(irPanic{serr})
		}
		offset += partSize
	}
	return out
}

// unpackDirect reconstructs expectedType from a single lowered scalar
// return/argument value, the inverse of packDirect.
func unpackDirect(fb *fnBuilder, lowered rvalue, expectedType *types.WaveType, pos ast.Pos) rvalue {
	if !isAggregateWT(expectedType) {
		return coerceArg(fb, lowered, expectedType, pos)
	}
	scratch := fb.allocaInEntry(lowered.irTy)
	fb.emitf("store %s %s, ptr %s", lowered.irTy, lowered.text, scratch)
	result := fb.allocaInEntry(lowerType(expectedType, flavorValue))
	size, err := abi.SizeOf(expectedType, fb.g.env, fb.g.tgt)
	if err != nil {
		panic(irPanic{err})
	}
	fb.g.usedMemcpy = true
	fb.emitf("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %d, i1 false)", result, scratch, size)
	return rvalue{result, "ptr", expectedType}
}
