package ir

import (
	"strconv"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/types"
)

func genBinary(fb *fnBuilder, b *ast.Binary, hint *types.WaveType) rvalue {
	if b.Op == ast.BinAnd || b.Op == ast.BinOr {
		lv := genExpr(fb, b.Left, nil)
		lt := truthy(fb, lv)
		rv := genExpr(fb, b.Right, nil)
		rt := truthy(fb, rv)
		reg := fb.newReg()
		instr := "and"
		if b.Op == ast.BinOr {
			instr = "or"
		}
		fb.emitf("%s = %s i1 %s, %s", reg, instr, lt, rt)
		return rvalue{reg, "i1", types.Bool}
	}

	leftHint := literalHint(b.Left, b.Right, fb)
	rightHint := literalHint(b.Right, b.Left, fb)
	lv := genExpr(fb, b.Left, leftHint)
	rv := genExpr(fb, b.Right, rightHint)

	if lv.wt.Kind == types.KPointer && rv.wt.IsInteger() {
		pointee := inferPointee(fb, b.Left)
		return pointerArith(fb, lv, rv, pointee, b.Op, b.Pos)
	}
	if rv.wt.Kind == types.KPointer && lv.wt.IsInteger() {
		pointee := inferPointee(fb, b.Right)
		return pointerArith(fb, rv, lv, pointee, b.Op, b.Pos)
	}

	return combineBinary(fb, b.Op, lv, rv, hint, b.Pos)
}

// literalHint lets a bare literal operand adopt its sibling's inferred
// type, unless the sibling is also a bare literal (in which case neither
// side has anything concrete to offer).
func literalHint(self, other ast.Expr, fb *fnBuilder) *types.WaveType {
	if _, ok := self.(*ast.Literal); !ok {
		return nil
	}
	if _, ok := other.(*ast.Literal); ok {
		return nil
	}
	return exprWaveType(fb, other)
}

func combineBinary(fb *fnBuilder, op ast.BinOp, lv, rv rvalue, hint *types.WaveType, pos ast.Pos) rvalue {
	switch {
	case lv.wt.IsInteger() && rv.wt.IsInteger():
		return combineIntInt(fb, op, lv, rv, hint, pos)
	case lv.wt.IsFloat() && rv.wt.IsFloat():
		return combineFloatFloat(fb, op, lv, rv, hint, pos)
	case lv.wt.IsInteger() && rv.wt.IsFloat():
		lv = rvalue{signedIntToFloat(fb, lv).text, rv.irTy, rv.wt}
		return combineFloatFloat(fb, op, lv, rv, hint, pos)
	case lv.wt.IsFloat() && rv.wt.IsInteger():
		rv = rvalue{signedIntToFloat(fb, rv).text, lv.irTy, lv.wt}
		return combineFloatFloat(fb, op, lv, rv, hint, pos)
	case lv.wt.Kind == types.KPointer && rv.wt.Kind == types.KPointer:
		return combinePointerPointer(fb, op, lv, rv, hint, pos)
	}
	panicf(errors.E7007, pos, "unsupported operator for operand types %s and %s", lv.wt, rv.wt)
	return rvalue{}
}

func zextTo(fb *fnBuilder, v rvalue, bits int) rvalue {
	sb := bitsOf(v.wt)
	if sb >= bits {
		return v
	}
	reg := fb.newReg()
	fb.emitf("%s = zext %s %s to i%d", reg, v.irTy, v.text, bits)
	return rvalue{reg, fmtI(bits), v.wt}
}

func castIntWidthExact(fb *fnBuilder, v rvalue, bits int) rvalue {
	sb := bitsOf(v.wt)
	if sb == bits {
		return v
	}
	reg := fb.newReg()
	if sb > bits {
		fb.emitf("%s = trunc %s %s to i%d", reg, v.irTy, v.text, bits)
	} else if v.wt.Signed() {
		fb.emitf("%s = sext %s %s to i%d", reg, v.irTy, v.text, bits)
	} else {
		fb.emitf("%s = zext %s %s to i%d", reg, v.irTy, v.text, bits)
	}
	return rvalue{reg, fmtI(bits), v.wt}
}

func fmtI(bits int) string {
	return "i" + strconv.Itoa(bits)
}

func combineIntInt(fb *fnBuilder, op ast.BinOp, lv, rv rvalue, hint *types.WaveType, pos ast.Pos) rvalue {
	switch op {
	case ast.BinShl, ast.BinShr:
		width := bitsOf(lv.wt)
		rv2 := castIntWidthExact(fb, rv, width)
		reg := fb.newReg()
		instr := "shl"
		if op == ast.BinShr {
			if lv.wt.Signed() {
				instr = "ashr"
			} else {
				instr = "lshr"
			}
		}
		fb.emitf("%s = %s %s %s, %s", reg, instr, lv.irTy, lv.text, rv2.text)
		result := rvalue{reg, lv.irTy, lv.wt}
		return recastBinaryResult(fb, result, hint, pos)
	}

	width := bitsOf(lv.wt)
	if bitsOf(rv.wt) > width {
		width = bitsOf(rv.wt)
	}
	l2 := zextTo(fb, lv, width)
	r2 := zextTo(fb, rv, width)
	irty := fmtI(width)

	resultType := lv.wt
	if bitsOf(rv.wt) > bitsOf(lv.wt) {
		resultType = rv.wt
	}

	reg := fb.newReg()
	switch op {
	case ast.BinAdd:
		fb.emitf("%s = add %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinSub:
		fb.emitf("%s = sub %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinMul:
		fb.emitf("%s = mul %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinDiv:
		instr := "sdiv"
		if !resultType.Signed() {
			instr = "udiv"
		}
		fb.emitf("%s = %s %s %s, %s", reg, instr, irty, l2.text, r2.text)
	case ast.BinMod:
		instr := "srem"
		if !resultType.Signed() {
			instr = "urem"
		}
		fb.emitf("%s = %s %s %s, %s", reg, instr, irty, l2.text, r2.text)
	case ast.BinBitAnd:
		fb.emitf("%s = and %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinBitOr:
		fb.emitf("%s = or %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinBitXor:
		fb.emitf("%s = xor %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinLt, ast.BinGt, ast.BinLte, ast.BinGte, ast.BinEq, ast.BinNeq:
		fb.emitf("%s = icmp %s %s %s, %s", reg, intCmpPred(op, resultType.Signed()), irty, l2.text, r2.text)
		return rvalue{reg, "i1", types.Bool}
	default:
		panicf(errors.E7007, pos, "unsupported integer operator")
	}
	return recastBinaryResult(fb, rvalue{reg, irty, resultType}, hint, pos)
}

func intCmpPred(op ast.BinOp, signed bool) string {
	switch op {
	case ast.BinEq:
		return "eq"
	case ast.BinNeq:
		return "ne"
	}
	if signed {
		switch op {
		case ast.BinLt:
			return "slt"
		case ast.BinGt:
			return "sgt"
		case ast.BinLte:
			return "sle"
		case ast.BinGte:
			return "sge"
		}
	}
	switch op {
	case ast.BinLt:
		return "ult"
	case ast.BinGt:
		return "ugt"
	case ast.BinLte:
		return "ule"
	case ast.BinGte:
		return "uge"
	}
	return "eq"
}

func combineFloatFloat(fb *fnBuilder, op ast.BinOp, lv, rv rvalue, hint *types.WaveType, pos ast.Pos) rvalue {
	requireArithFloat(lv.wt, pos)
	requireArithFloat(rv.wt, pos)
	wider := lv.wt
	if rv.wt.Bits > lv.wt.Bits {
		wider = rv.wt
	}
	l2 := recastBinaryResult(fb, lv, wider, pos)
	r2 := recastBinaryResult(fb, rv, wider, pos)
	irty := lowerType(wider, flavorValue)

	reg := fb.newReg()
	switch op {
	case ast.BinAdd:
		fb.emitf("%s = fadd %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinSub:
		fb.emitf("%s = fsub %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinMul:
		fb.emitf("%s = fmul %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinDiv:
		fb.emitf("%s = fdiv %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinMod:
		fb.emitf("%s = frem %s %s, %s", reg, irty, l2.text, r2.text)
	case ast.BinLt, ast.BinGt, ast.BinLte, ast.BinGte, ast.BinEq, ast.BinNeq:
		fb.emitf("%s = fcmp %s %s %s, %s", reg, floatCmpPred(op), irty, l2.text, r2.text)
		return rvalue{reg, "i1", types.Bool}
	default:
		panicf(errors.E7007, pos, "unsupported float operator")
	}
	return recastBinaryResult(fb, rvalue{reg, irty, wider}, hint, pos)
}

func floatCmpPred(op ast.BinOp) string {
	switch op {
	case ast.BinLt:
		return "olt"
	case ast.BinGt:
		return "ogt"
	case ast.BinLte:
		return "ole"
	case ast.BinGte:
		return "oge"
	case ast.BinEq:
		return "oeq"
	case ast.BinNeq:
		return "one"
	}
	return "oeq"
}

func combinePointerPointer(fb *fnBuilder, op ast.BinOp, lv, rv rvalue, hint *types.WaveType, pos ast.Pos) rvalue {
	switch op {
	case ast.BinEq, ast.BinNeq:
		pred := "eq"
		if op == ast.BinNeq {
			pred = "ne"
		}
		reg := fb.newReg()
		fb.emitf("%s = icmp %s ptr %s, %s", reg, pred, lv.text, rv.text)
		return recastNoNarrow(fb, rvalue{reg, "i1", types.Bool}, hint, pos)
	case ast.BinSub:
		li := ptrToInt(fb, lv)
		ri := ptrToInt(fb, rv)
		reg := fb.newReg()
		fb.emitf("%s = sub i64 %s, %s", reg, li.text, ri.text)
		return recastBinaryResult(fb, rvalue{reg, "i64", types.Int(64)}, hint, pos)
	}
	panicf(errors.E7007, pos, "unsupported pointer operator")
	return rvalue{}
}

func ptrToInt(fb *fnBuilder, v rvalue) rvalue {
	reg := fb.newReg()
	fb.emitf("%s = ptrtoint ptr %s to i64", reg, v.text)
	return rvalue{reg, "i64", types.Int(64)}
}

func signedIntToFloat(fb *fnBuilder, v rvalue) rvalue {
	target := types.Float(64)
	reg := fb.newReg()
	fb.emitf("%s = sitofp %s %s to double", reg, v.irTy, v.text)
	return rvalue{reg, "double", target}
}

func pointerArith(fb *fnBuilder, ptrv, intv rvalue, pointee *types.WaveType, op ast.BinOp, pos ast.Pos) rvalue {
	idx := castIntWidthExact(fb, intv, 64)
	if op == ast.BinSub {
		reg := fb.newReg()
		fb.emitf("%s = sub i64 0, %s", reg, idx.text)
		idx = rvalue{reg, "i64", idx.wt}
	} else if op != ast.BinAdd {
		panicf(errors.E7007, pos, "unsupported pointer arithmetic operator")
	}
	reg := fb.newReg()
	fb.emitf("%s = getelementptr inbounds %s, ptr %s, i64 %s", reg, lowerType(pointee, flavorValue), ptrv.text, idx.text)
	return rvalue{reg, "ptr", ptrv.wt}
}

// recastBinaryResult casts v to hint permissively, including narrowing,
// matching how most binary-result casts behave.
func recastBinaryResult(fb *fnBuilder, v rvalue, hint *types.WaveType, pos ast.Pos) rvalue {
	if hint == nil || v.wt.Equal(hint) {
		return v
	}
	switch {
	case v.wt.IsInteger() && hint.IsInteger():
		sb, db := bitsOf(v.wt), hint.Bits
		if sb == db {
			return rvalue{v.text, v.irTy, hint}
		}
		reg := fb.newReg()
		if sb > db {
			fb.emitf("%s = trunc %s %s to i%d", reg, v.irTy, v.text, db)
		} else if hint.Signed() || v.wt.Signed() {
			fb.emitf("%s = sext %s %s to i%d", reg, v.irTy, v.text, db)
		} else {
			fb.emitf("%s = zext %s %s to i%d", reg, v.irTy, v.text, db)
		}
		return rvalue{reg, lowerType(hint, flavorValue), hint}
	case v.wt.IsFloat() && hint.IsFloat():
		if v.wt.Bits == hint.Bits {
			return rvalue{v.text, v.irTy, hint}
		}
		requireArithFloat(v.wt, pos)
		requireArithFloat(hint, pos)
		reg := fb.newReg()
		instr := "fpext"
		if hint.Bits < v.wt.Bits {
			instr = "fptrunc"
		}
		fb.emitf("%s = %s %s %s to %s", reg, instr, v.irTy, v.text, lowerType(hint, flavorValue))
		return rvalue{reg, lowerType(hint, flavorValue), hint}
	case v.wt.IsFloat() && hint.IsInteger():
		requireArithFloat(v.wt, pos)
		reg := fb.newReg()
		fb.emitf("%s = fptosi %s %s to %s", reg, v.irTy, v.text, lowerType(hint, flavorValue))
		return rvalue{reg, lowerType(hint, flavorValue), hint}
	case v.wt.IsInteger() && hint.IsFloat():
		requireArithFloat(hint, pos)
		reg := fb.newReg()
		fb.emitf("%s = sitofp %s %s to %s", reg, v.irTy, v.text, lowerType(hint, flavorValue))
		return rvalue{reg, lowerType(hint, flavorValue), hint}
	}
	return v
}

// recastNoNarrow behaves like recastBinaryResult but rejects narrowing
// integer casts, used for assignment/argument/field-coercion sites where
// an implicit narrowing is a compile error rather than a silent truncation.
func recastNoNarrow(fb *fnBuilder, v rvalue, hint *types.WaveType, pos ast.Pos) rvalue {
	if hint == nil || v.wt.Equal(hint) {
		return v
	}
	if v.wt.IsInteger() && hint.IsInteger() && bitsOf(v.wt) > hint.Bits {
		panicf(errors.E7004, pos, "implicit narrowing from %s to %s is not allowed", v.wt, hint)
	}
	return recastBinaryResult(fb, v, hint, pos)
}
