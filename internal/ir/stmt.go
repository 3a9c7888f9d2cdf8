package ir

import (
	"strconv"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/types"
)

func genBlockStmts(fb *fnBuilder, stmts []ast.Stmt) {
	for _, s := range stmts {
		if fb.cur.terminated {
			return
		}
		genStmt(fb, s)
	}
}

func genStmt(fb *fnBuilder, s ast.Stmt) {
	switch x := s.(type) {
	case *ast.Variable:
		genLocalVar(fb, x)
	case *ast.If:
		genIf(fb, x)
	case *ast.While:
		genWhile(fb, x)
	case *ast.For:
		genFor(fb, x)
	case *ast.Match:
		genMatch(fb, x)
	case *ast.Return:
		genReturn(fb, x)
	case *ast.Break:
		genBreak(fb, x)
	case *ast.Continue:
		genContinue(fb, x)
	case *ast.Assign:
		doAssign(fb, x.Target, x.Value, x.Pos)
	case *ast.AssignOp:
		doAssignOp(fb, x.Target, x.Op, x.Value, x.Pos)
	case *ast.Print:
		genPrint(fb, x)
	case *ast.PrintFormat:
		genPrintFormat(fb, x)
	case *ast.AsmBlock:
		genAsmStmt(fb, x)
	case *ast.ExprStmt:
		genExpr(fb, x.X, nil)
	case *ast.Import:
		// local re-imports are a no-op at IR time
	default:
		panicf(errors.E7007, s.Position(), "unsupported statement form")
	}
}

func genLocalVar(fb *fnBuilder, v *ast.Variable) {
	var declared *types.WaveType
	if v.Type != nil {
		t, err := fb.g.env.Resolve(v.Type)
		if err != nil {
			panic(irPanic{err})
		}
		declared = t
	}

	if v.Init == nil {
		if declared == nil {
			panicf(errors.E7007, v.Pos, "local %q has no type or initializer", v.Name)
		}
		slot := fb.allocaInEntry(lowerType(declared, flavorValue))
		fb.emitf("store %s %s, ptr %s", lowerType(declared, flavorValue), zeroText(declared), slot)
		fb.declareLocal(v.Name, &localVar{ptr: slot, wt: declared})
		return
	}

	initVal := genExpr(fb, v.Init, declared)
	vt := declared
	if vt == nil {
		vt = initVal.wt
	}
	initVal = recastNoNarrow(fb, initVal, vt, v.Pos)

	slot := fb.allocaInEntry(lowerType(vt, flavorValue))
	storeValue(fb, slot, vt, initVal, v.Pos)
	fb.declareLocal(v.Name, &localVar{ptr: slot, wt: vt})
}

func genIf(fb *fnBuilder, s *ast.If) {
	merge := fb.newLabel("if.end")

	type branch struct {
		cond ast.Expr
		body []ast.Stmt
	}

	branches := []branch{{s.Cond, s.Body}}
	for _, ei := range s.ElseIf {
		branches = append(branches, branch{ei.Cond, ei.Body})
	}

	genBranch := func(i int) {
		b := branches[i]
		condVal := genExpr(fb, b.cond, nil)
		t := truthy(fb, condVal)

		thenLabel := fb.newLabel("if.then")
		var elseLabel string
		if i+1 < len(branches) {
			elseLabel = fb.newLabel("if.next")
		} else if s.Else != nil {
			elseLabel = fb.newLabel("if.else")
		} else {
			elseLabel = merge
		}

		fb.terminate(ifBr(t, thenLabel, elseLabel))

		thenBlk := fb.newBlock(thenLabel)
		fb.switchTo(thenBlk)
		fb.pushScope()
		genBlockStmts(fb, b.body)
		if !fb.cur.terminated {
			fb.terminate("br label %" + merge)
		}
		fb.popScope()

		if elseLabel != merge {
			nextBlk := fb.newBlock(elseLabel)
			fb.switchTo(nextBlk)
		}
	}

	for i := range branches {
		genBranch(i)
	}

	if s.Else != nil {
		fb.pushScope()
		genBlockStmts(fb, s.Else)
		if !fb.cur.terminated {
			fb.terminate("br label %" + merge)
		}
		fb.popScope()
	}

	mergeBlk := fb.newBlock(merge)
	fb.switchTo(mergeBlk)
}

func ifBr(cond, then, els string) string {
	return "br i1 " + cond + ", label %" + then + ", label %" + els
}

func genWhile(fb *fnBuilder, s *ast.While) {
	condLabel := fb.newLabel("while.cond")
	bodyLabel := fb.newLabel("while.body")
	endLabel := fb.newLabel("while.end")

	fb.terminate("br label %" + condLabel)

	condBlk := fb.newBlock(condLabel)
	fb.switchTo(condBlk)
	condVal := genExpr(fb, s.Cond, nil)
	t := truthy(fb, condVal)
	fb.terminate(ifBr(t, bodyLabel, endLabel))

	bodyBlk := fb.newBlock(bodyLabel)
	fb.switchTo(bodyBlk)
	fb.breakStack = append(fb.breakStack, endLabel)
	fb.continueStack = append(fb.continueStack, condLabel)
	fb.pushScope()
	genBlockStmts(fb, s.Body)
	if !fb.cur.terminated {
		fb.terminate("br label %" + condLabel)
	}
	fb.popScope()
	fb.breakStack = fb.breakStack[:len(fb.breakStack)-1]
	fb.continueStack = fb.continueStack[:len(fb.continueStack)-1]

	endBlk := fb.newBlock(endLabel)
	fb.switchTo(endBlk)
}

func genFor(fb *fnBuilder, s *ast.For) {
	saved := fb.snapshotScopes()
	fb.pushScope()
	if s.Init != nil {
		genStmt(fb, s.Init)
	}

	condLabel := fb.newLabel("for.cond")
	bodyLabel := fb.newLabel("for.body")
	incLabel := fb.newLabel("for.inc")
	endLabel := fb.newLabel("for.end")

	fb.terminate("br label %" + condLabel)

	condBlk := fb.newBlock(condLabel)
	fb.switchTo(condBlk)
	if s.Cond != nil {
		condVal := genExpr(fb, s.Cond, nil)
		t := truthy(fb, condVal)
		fb.terminate(ifBr(t, bodyLabel, endLabel))
	} else {
		fb.terminate("br label %" + bodyLabel)
	}

	bodyBlk := fb.newBlock(bodyLabel)
	fb.switchTo(bodyBlk)
	fb.breakStack = append(fb.breakStack, endLabel)
	fb.continueStack = append(fb.continueStack, incLabel)
	fb.pushScope()
	genBlockStmts(fb, s.Body)
	if !fb.cur.terminated {
		fb.terminate("br label %" + incLabel)
	}
	fb.popScope()
	fb.breakStack = fb.breakStack[:len(fb.breakStack)-1]
	fb.continueStack = fb.continueStack[:len(fb.continueStack)-1]

	incBlk := fb.newBlock(incLabel)
	fb.switchTo(incBlk)
	if s.Step != nil {
		genStmt(fb, s.Step)
	}
	if !fb.cur.terminated {
		fb.terminate("br label %" + condLabel)
	}

	endBlk := fb.newBlock(endLabel)
	fb.switchTo(endBlk)

	fb.popScope()
	fb.scopes = saved
}

func genMatch(fb *fnBuilder, s *ast.Match) {
	disc := exprWaveType(fb, s.Discriminant)
	if !disc.IsInteger() && disc.Kind != types.KBool && disc.Kind != types.KChar && disc.Kind != types.KByte {
		panicf(errors.E7005, s.Pos, "match discriminant must be an integer-like type, got %s", disc)
	}
	width := bitsOf(disc)
	if width == 0 {
		width = 32
	}

	discVal := genExpr(fb, s.Discriminant, nil)
	merge := fb.newLabel("match.end")

	var defaultLabel string
	seen := map[int64]bool{}
	type armInfo struct {
		label string
		value int64
		body  []ast.Stmt
		wild  bool
	}
	var arms []armInfo
	wildCount := 0

	for _, arm := range s.Arms {
		if arm.Pattern == nil {
			wildCount++
			if wildCount > 1 {
				panicf(errors.E7006, s.Pos, "match has more than one wildcard arm")
			}
			defaultLabel = fb.newLabel("match.default")
			arms = append(arms, armInfo{label: defaultLabel, body: arm.Body, wild: true})
			continue
		}
		val := evalMatchCaseConst(fb, arm.Pattern, width, s.Pos)
		if seen[val] {
			panicf(errors.E7006, s.Pos, "duplicate match arm constant %d", val)
		}
		seen[val] = true
		arms = append(arms, armInfo{label: fb.newLabel("match.arm"), value: val, body: arm.Body})
	}

	if defaultLabel == "" {
		defaultLabel = merge
	}

	var cases []string
	for _, a := range arms {
		if !a.wild {
			cases = append(cases, "i"+strconv.Itoa(width)+" "+strconv.FormatInt(a.value, 10)+", label %"+a.label)
		}
	}
	sw := "switch i" + strconv.Itoa(width) + " " + discVal.text + ", label %" + defaultLabel + " ["
	for _, c := range cases {
		sw += " " + c
	}
	sw += " ]"
	fb.terminate(sw)

	reachesMerge := defaultLabel == merge
	for _, a := range arms {
		blk := fb.newBlock(a.label)
		fb.switchTo(blk)
		fb.pushScope()
		genBlockStmts(fb, a.body)
		if !fb.cur.terminated {
			fb.terminate("br label %" + merge)
			reachesMerge = true
		}
		fb.popScope()
	}

	mergeBlk := fb.newBlock(merge)
	fb.switchTo(mergeBlk)
	if !reachesMerge {
		// every arm, including the wildcard, left through its own terminator
		fb.terminate("unreachable")
	}
}

func evalMatchCaseConst(fb *fnBuilder, expr ast.Expr, width int, pos ast.Pos) int64 {
	switch x := expr.(type) {
	case *ast.Literal:
		if x.Kind != ast.LitInt {
			panicf(errors.E7005, pos, "match arm pattern must be a constant integer")
		}
		v, _, err := types.ParseIntLiteral(x.Text, fb.g.tgt.PointerBits)
		if err != nil {
			panicf(errors.E7005, pos, "invalid match arm constant: %v", err)
		}
		return v
	case *ast.Unary:
		if x.Op == ast.UnaryNeg {
			return -evalMatchCaseConst(fb, x.X, width, pos)
		}
		panicf(errors.E7005, pos, "match arm pattern must be a constant integer")
	case *ast.Variable:
		c, ok := fb.g.consts[x.Name]
		if !ok {
			panicf(errors.E7005, pos, "match arm pattern %q is not a known constant", x.Name)
		}
		if bitsOf(c.Type) != 0 && bitsOf(c.Type) != width {
			panicf(errors.E7005, pos, "match arm constant %q has a different width than the discriminant", x.Name)
		}
		return c.Int
	case *ast.Grouped:
		return evalMatchCaseConst(fb, x.X, width, pos)
	}
	panicf(errors.E7005, pos, "match arm pattern must be a constant integer")
	return 0
}

func genReturn(fb *fnBuilder, s *ast.Return) {
	if s.Value == nil {
		if fb.fn.implicitI32Main {
			fb.terminate("ret i32 0")
			return
		}
		if fb.fn.semRetType != nil {
			panicf(errors.E7003, s.Pos, "function must return a value")
		}
		fb.terminate("ret void")
		return
	}

	if fb.fn.semRetType == nil && !fb.fn.implicitI32Main {
		panicf(errors.E7003, s.Pos, "void function must not return a value")
	}

	retType := fb.fn.semRetType
	val := genExpr(fb, s.Value, retType)
	val = recastNoNarrow(fb, val, retType, s.Pos)

	if retType.Kind == types.KArray || retType.Kind == types.KStruct {
		reg := fb.newReg()
		fb.emitf("%s = load %s, ptr %s", reg, lowerType(retType, flavorValue), val.text)
		fb.terminate("ret " + lowerType(retType, flavorValue) + " " + reg)
		return
	}
	fb.terminate("ret " + val.irTy + " " + val.text)
}

func genBreak(fb *fnBuilder, s *ast.Break) {
	if len(fb.breakStack) == 0 {
		panicf(errors.E7007, s.Pos, "break used outside a loop")
	}
	fb.terminate("br label %" + fb.breakStack[len(fb.breakStack)-1])
}

func genContinue(fb *fnBuilder, s *ast.Continue) {
	if len(fb.continueStack) == 0 {
		panicf(errors.E7007, s.Pos, "continue used outside a loop")
	}
	fb.terminate("br label %" + fb.continueStack[len(fb.continueStack)-1])
}

func doAssign(fb *fnBuilder, target, value ast.Expr, pos ast.Pos) rvalue {
	addr, wt := addrAndType(fb, target)
	val := genExpr(fb, value, wt)
	val = recastNoNarrow(fb, val, wt, pos)
	storeValue(fb, addr, wt, val, pos)
	return val
}

func compoundToBinOp(op ast.CompoundOp) ast.BinOp {
	switch op {
	case ast.OpAddAssign:
		return ast.BinAdd
	case ast.OpSubAssign:
		return ast.BinSub
	case ast.OpMulAssign:
		return ast.BinMul
	case ast.OpDivAssign:
		return ast.BinDiv
	case ast.OpModAssign:
		return ast.BinMod
	}
	return ast.BinAdd
}

func doAssignOp(fb *fnBuilder, target ast.Expr, op ast.CompoundOp, value ast.Expr, pos ast.Pos) rvalue {
	addr, wt := addrAndType(fb, target)
	cur := fb.loadVar(addr, wt)
	rhs := genExpr(fb, value, wt)
	combined := combineBinary(fb, compoundToBinOp(op), cur, rhs, wt, pos)
	combined = recastNoNarrow(fb, combined, wt, pos)
	storeValue(fb, addr, wt, combined, pos)
	return combined
}

func genPrint(fb *fnBuilder, s *ast.Print) {
	fb.g.usedPrintf = true
	text := s.Text
	if s.Newline {
		text += "\n"
	}
	ptr := fb.g.emitStringConstant(text)
	fb.emitf("call i32 (ptr, ...) @printf(ptr %s)", ptr)
}

func genPrintFormat(fb *fnBuilder, s *ast.PrintFormat) {
	fb.g.usedPrintf = true
	var fmtStr string
	var callArgs []string
	argIdx := 0
	runes := []rune(s.Format)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '{' && i+1 < len(runes) && runes[i+1] == '}' {
			if argIdx >= len(s.Args) {
				panicf(errors.E7007, s.Pos, "not enough arguments for format string")
			}
			av := genExpr(fb, s.Args[argIdx], nil)
			spec, coerced := formatSpecFor(fb, av)
			fmtStr += spec
			callArgs = append(callArgs, coerced.irTy+" "+coerced.text)
			argIdx++
			i++
			continue
		}
		fmtStr += string(runes[i])
	}
	if s.Newline {
		fmtStr += "\n"
	}
	ptr := fb.g.emitStringConstant(fmtStr)
	call := "call i32 (ptr, ...) @printf(ptr " + ptr
	for _, a := range callArgs {
		call += ", " + a
	}
	call += ")"
	fb.emit(call)
}

func formatSpecFor(fb *fnBuilder, v rvalue) (string, rvalue) {
	switch {
	case v.wt.IsFloat():
		widened := recastBinaryResult(fb, v, types.Float(64), ast.Pos{})
		return "%f", widened
	case v.wt.Kind == types.KString:
		return "%s", v
	case v.wt.Kind == types.KPointer:
		return "%ld", ptrToInt(fb, v)
	case v.wt.IsInteger() && bitsOf(v.wt) > 32:
		return "%ld", v
	default:
		return "%d", v
	}
}
