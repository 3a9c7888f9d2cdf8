package ir

import (
	"strconv"
	"strings"

	"github.com/wavelang/wavec/internal/abi"
	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/consteval"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/types"
)

// exprWaveType infers an expression's static WaveType without emitting any
// IR, used for binary-operand promotion hints, lvalue-type lookups and
// method-dispatch target resolution.
func exprWaveType(fb *fnBuilder, expr ast.Expr) *types.WaveType {
	switch x := expr.(type) {
	case *ast.Literal:
		switch x.Kind {
		case ast.LitInt:
			_, wt, _ := types.ParseIntLiteral(x.Text, fb.g.tgt.PointerBits)
			if wt != nil {
				return wt
			}
			return types.Int(32)
		case ast.LitFloat:
			return types.Float(64)
		case ast.LitString:
			return types.String
		case ast.LitChar:
			return types.Char
		case ast.LitByte:
			return types.Byte
		case ast.LitBool:
			return types.Bool
		}
	case *ast.Null:
		return types.Pointer(types.Void)
	case *ast.Variable:
		if v, ok := fb.lookupLocal(x.Name); ok {
			return v.wt
		}
		if gv, ok := fb.g.globals[x.Name]; ok {
			return gv.wt
		}
		if c, ok := fb.g.consts[x.Name]; ok {
			return c.Type
		}
		panicf(errors.E7001, x.Pos, "reference to undeclared variable %q", x.Name)
	case *ast.Grouped:
		return exprWaveType(fb, x.X)
	case *ast.AddressOf:
		return types.Pointer(exprWaveType(fb, x.X))
	case *ast.Deref:
		t := exprWaveType(fb, x.X)
		if t.Kind == types.KPointer {
			return t.Elem
		}
		if t.Kind == types.KString {
			return types.Byte
		}
		return t
	case *ast.Unary:
		if x.Op == ast.UnaryNot {
			return types.Bool
		}
		return exprWaveType(fb, x.X)
	case *ast.Binary:
		if x.Op == ast.BinAnd || x.Op == ast.BinOr || isComparisonOp(x.Op) {
			return types.Bool
		}
		return exprWaveType(fb, x.Left)
	case *ast.Index:
		t := exprWaveType(fb, x.Target)
		switch t.Kind {
		case types.KArray, types.KPointer:
			return t.Elem
		case types.KString:
			return types.Byte
		}
		return types.Int(32)
	case *ast.FieldAccess:
		t := exprWaveType(fb, x.Object)
		var structName string
		if t.Kind == types.KStruct {
			structName = t.StructName
		} else if t.Kind == types.KPointer && t.Elem.Kind == types.KStruct {
			structName = t.Elem.StructName
		}
		fields, ok := fb.g.env.StructFields(structName)
		if !ok {
			panicf(errors.E7002, x.Pos, "unknown struct %q", structName)
		}
		for _, f := range fields {
			if f.Name == x.Field {
				return f.Type
			}
		}
		panicf(errors.E7002, x.Pos, "struct %q has no field %q", structName, x.Field)
	case *ast.ArrayLiteral:
		elem := types.Int(32)
		if len(x.Elements) > 0 {
			elem = exprWaveType(fb, x.Elements[0])
		}
		return types.Array(elem, int64(len(x.Elements)))
	case *ast.StructLiteral:
		return types.StructRef(x.Name)
	case *ast.Cast:
		t, err := fb.g.env.Resolve(x.TargetType)
		if err != nil {
			panic(irPanic{err})
		}
		return t
	case *ast.MethodCall:
		return methodCallType(fb, x)
	case *ast.FunctionCall:
		if info, ok := fb.g.externInfo[x.Name]; ok {
			if info.retType != nil {
				return info.retType
			}
			return types.Void
		}
		if sig, ok := fb.g.funcSigs[x.Name]; ok {
			if sig.ret != nil {
				return sig.ret
			}
			return types.Void
		}
		return types.Int(32)
	case *ast.Assignment:
		return exprWaveType(fb, x.Target)
	case *ast.AssignOperation:
		return exprWaveType(fb, x.Target)
	case *ast.AsmBlock:
		return types.Int(32)
	}
	return types.Int(32)
}

func isComparisonOp(op ast.BinOp) bool {
	switch op {
	case ast.BinLt, ast.BinGt, ast.BinLte, ast.BinGte, ast.BinEq, ast.BinNeq:
		return true
	}
	return false
}

func methodCallType(fb *fnBuilder, mc *ast.MethodCall) *types.WaveType {
	objType := exprWaveType(fb, mc.Object)
	var structName string
	if objType.Kind == types.KStruct {
		structName = objType.StructName
	} else if objType.Kind == types.KPointer && objType.Elem.Kind == types.KStruct {
		structName = objType.Elem.StructName
	}
	if structName != "" {
		if sig, ok := fb.g.funcSigs[structName+"_"+mc.Name]; ok {
			if sig.ret != nil {
				return sig.ret
			}
			return types.Void
		}
	}
	if sig, ok := fb.g.funcSigs[mc.Name]; ok {
		if sig.ret != nil {
			return sig.ret
		}
		return types.Void
	}
	return types.Int(32)
}

func genExpr(fb *fnBuilder, expr ast.Expr, hint *types.WaveType) rvalue {
	switch x := expr.(type) {
	case *ast.Literal:
		return genLiteral(fb, x, hint)
	case *ast.Null:
		t := hint
		if t == nil {
			t = types.Pointer(types.Void)
		}
		return rvalue{"null", "ptr", t}
	case *ast.Variable:
		return genVariable(fb, x)
	case *ast.Grouped:
		return genExpr(fb, x.X, hint)
	case *ast.AddressOf:
		addr, wt := addrAndType(fb, x.X)
		return rvalue{addr, "ptr", types.Pointer(wt)}
	case *ast.Deref:
		addr, wt := addrAndType(fb, x)
		return fb.loadVar(addr, wt)
	case *ast.Unary:
		return genUnary(fb, x)
	case *ast.Binary:
		return genBinary(fb, x, hint)
	case *ast.Index:
		addr, wt := addrAndType(fb, x)
		return fb.loadVar(addr, wt)
	case *ast.FieldAccess:
		addr, wt := addrAndType(fb, x)
		return fb.loadVar(addr, wt)
	case *ast.ArrayLiteral:
		return genArrayLiteral(fb, x, hint)
	case *ast.StructLiteral:
		return genStructLiteral(fb, x, x.Pos)
	case *ast.Cast:
		xv := genExpr(fb, x.X, nil)
		target, err := fb.g.env.Resolve(x.TargetType)
		if err != nil {
			panic(irPanic{err})
		}
		return castValue(fb, xv, target, x.Pos)
	case *ast.Assignment:
		return doAssign(fb, x.Target, x.Value, x.Pos)
	case *ast.AssignOperation:
		return doAssignOp(fb, x.Target, x.Op, x.Value, x.Pos)
	case *ast.MethodCall:
		return genMethodCall(fb, x, hint)
	case *ast.FunctionCall:
		return genFunctionCall(fb, x, hint)
	case *ast.AsmBlock:
		return genAsmExpr(fb, x)
	}
	panicf(errors.E7007, expr.Position(), "unsupported expression form")
	return rvalue{}
}

func genLiteral(fb *fnBuilder, lit *ast.Literal, hint *types.WaveType) rvalue {
	switch lit.Kind {
	case ast.LitInt:
		v, suffix, err := types.ParseIntLiteral(lit.Text, fb.g.tgt.PointerBits)
		if err != nil {
			panicf(errors.E7007, lit.Pos, "invalid integer literal: %v", err)
		}
		t := suffix
		if t == nil {
			t = hint
		}
		if t == nil {
			t = types.Int(32)
		}
		if t.Kind == types.KFloat {
			return rvalue{formatFloatLiteral(float64(v)), lowerType(t, flavorValue), t}
		}
		return rvalue{strconv.FormatInt(v, 10), lowerType(t, flavorValue), t}
	case ast.LitFloat:
		t := hint
		if t == nil || t.Kind != types.KFloat {
			t = types.Float(64)
		}
		requireArithFloat(t, lit.Pos)
		return rvalue{formatFloatLiteral(lit.Value.(float64)), lowerType(t, flavorValue), t}
	case ast.LitString:
		ptr := fb.g.emitStringConstant(lit.Value.(string))
		return rvalue{ptr, "ptr", types.String}
	case ast.LitChar:
		return rvalue{strconv.Itoa(int(lit.Value.(rune))), "i8", types.Char}
	case ast.LitByte:
		return rvalue{strconv.Itoa(int(lit.Value.(byte))), "i8", types.Byte}
	case ast.LitBool:
		b := "0"
		if lit.Value.(bool) {
			b = "1"
		}
		return rvalue{b, "i1", types.Bool}
	}
	panicf(errors.E7007, lit.Pos, "unrecognized literal kind")
	return rvalue{}
}

func genVariable(fb *fnBuilder, v *ast.Variable) rvalue {
	if lv, ok := fb.lookupLocal(v.Name); ok {
		return fb.loadVar(lv.ptr, lv.wt)
	}
	if gv, ok := fb.g.globals[v.Name]; ok {
		return fb.loadVar(gv.ptr, gv.wt)
	}
	if c, ok := fb.g.consts[v.Name]; ok {
		return constToRvalue(fb.g, c)
	}
	panicf(errors.E7001, v.Pos, "reference to undeclared variable %q", v.Name)
	return rvalue{}
}

func constToRvalue(g *genCtx, v *consteval.Value) rvalue {
	text := renderConstValue(g, v)
	if v.Type.Kind == types.KStruct || v.Type.Kind == types.KArray {
		// Aggregate rvalues are addresses: the constant is materialized as a
		// private global and its address is returned.
		*g.strCounter++
		name := "@.const." + strconv.Itoa(*g.strCounter)
		g.mod.globals = append(g.mod.globals, name+" = private constant "+lowerType(v.Type, flavorValue)+" "+text)
		return rvalue{name, "ptr", v.Type}
	}
	return rvalue{text, lowerType(v.Type, flavorValue), v.Type}
}

func renderConstValue(g *genCtx, v *consteval.Value) string {
	switch v.Type.Kind {
	case types.KFloat:
		return formatFloatLiteral(v.Float)
	case types.KString:
		return g.emitStringConstant(v.Str)
	case types.KPointer:
		return "null"
	case types.KStruct:
		fields, _ := g.env.StructFields(v.Type.StructName)
		var parts []string
		for _, f := range fields {
			fv := v.Fields[f.Name]
			parts = append(parts, lowerType(fv.Type, flavorValue)+" "+renderConstValue(g, fv))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case types.KArray:
		var parts []string
		for _, e := range v.Elems {
			parts = append(parts, lowerType(e.Type, flavorValue)+" "+renderConstValue(g, e))
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	default:
		return strconv.FormatInt(v.Int, 10)
	}
}

func genUnary(fb *fnBuilder, u *ast.Unary) rvalue {
	xv := genExpr(fb, u.X, nil)
	switch u.Op {
	case ast.UnaryNeg:
		if xv.wt.IsFloat() {
			requireArithFloat(xv.wt, u.Pos)
			reg := fb.newReg()
			fb.emitf("%s = fneg %s %s", reg, xv.irTy, xv.text)
			return rvalue{reg, xv.irTy, xv.wt}
		}
		if !xv.wt.IsInteger() {
			panicf(errors.E7007, u.Pos, "unary '-' on non-numeric operand")
		}
		reg := fb.newReg()
		fb.emitf("%s = sub %s 0, %s", reg, xv.irTy, xv.text)
		return rvalue{reg, xv.irTy, xv.wt}
	case ast.UnaryNot:
		t := truthy(fb, xv)
		reg := fb.newReg()
		fb.emitf("%s = xor i1 %s, true", reg, t)
		return rvalue{reg, "i1", types.Bool}
	case ast.UnaryBitNot:
		if !xv.wt.IsInteger() {
			panicf(errors.E7007, u.Pos, "unary '~' on non-integer operand")
		}
		reg := fb.newReg()
		fb.emitf("%s = xor %s %s, -1", reg, xv.irTy, xv.text)
		return rvalue{reg, xv.irTy, xv.wt}
	}
	panicf(errors.E7007, u.Pos, "unsupported unary operator")
	return rvalue{}
}

func truthy(fb *fnBuilder, v rvalue) string {
	switch {
	case v.wt.Kind == types.KBool:
		return v.text
	case v.wt.IsInteger() || v.wt.Kind == types.KChar || v.wt.Kind == types.KByte:
		reg := fb.newReg()
		fb.emitf("%s = icmp ne %s %s, 0", reg, v.irTy, v.text)
		return reg
	case v.wt.IsFloat():
		reg := fb.newReg()
		fb.emitf("%s = fcmp one %s %s, 0.0", reg, v.irTy, v.text)
		return reg
	case v.wt.Kind == types.KPointer || v.wt.Kind == types.KString:
		reg := fb.newReg()
		fb.emitf("%s = icmp ne ptr %s, null", reg, v.text)
		return reg
	}
	return "0"
}

func castValue(fb *fnBuilder, v rvalue, target *types.WaveType, pos ast.Pos) rvalue {
	if v.wt.Equal(target) {
		return v
	}
	switch {
	case target.Kind == types.KPointer && v.wt.IsInteger():
		reg := fb.newReg()
		fb.emitf("%s = inttoptr %s %s to ptr", reg, v.irTy, v.text)
		return rvalue{reg, "ptr", target}
	case v.wt.Kind == types.KPointer && target.IsInteger():
		reg := fb.newReg()
		fb.emitf("%s = ptrtoint ptr %s to %s", reg, v.text, lowerType(target, flavorValue))
		return rvalue{reg, lowerType(target, flavorValue), target}
	case target.Kind == types.KPointer && v.wt.Kind == types.KPointer:
		return rvalue{v.text, "ptr", target}
	case target.IsInteger() && v.wt.IsInteger():
		return castIntExplicit(fb, v, target)
	case target.IsFloat() && v.wt.IsInteger():
		requireArithFloat(target, pos)
		reg := fb.newReg()
		fb.emitf("%s = sitofp %s %s to %s", reg, v.irTy, v.text, lowerType(target, flavorValue))
		return rvalue{reg, lowerType(target, flavorValue), target}
	case target.IsInteger() && v.wt.IsFloat():
		requireArithFloat(v.wt, pos)
		reg := fb.newReg()
		fb.emitf("%s = fptosi %s %s to %s", reg, v.irTy, v.text, lowerType(target, flavorValue))
		return rvalue{reg, lowerType(target, flavorValue), target}
	case target.IsFloat() && v.wt.IsFloat():
		requireArithFloat(target, pos)
		requireArithFloat(v.wt, pos)
		reg := fb.newReg()
		instr := "fpext"
		if target.Bits < v.wt.Bits {
			instr = "fptrunc"
		}
		fb.emitf("%s = %s %s %s to %s", reg, instr, v.irTy, v.text, lowerType(target, flavorValue))
		return rvalue{reg, lowerType(target, flavorValue), target}
	}
	panicf(errors.E7007, pos, "unsupported cast from %s to %s", v.wt, target)
	return rvalue{}
}

func castIntExplicit(fb *fnBuilder, v rvalue, target *types.WaveType) rvalue {
	sb, db := bitsOf(v.wt), target.Bits
	if sb == db {
		return rvalue{v.text, v.irTy, target}
	}
	reg := fb.newReg()
	if sb > db {
		fb.emitf("%s = trunc %s %s to i%d", reg, v.irTy, v.text, db)
	} else if target.Signed() || v.wt.Signed() {
		fb.emitf("%s = sext %s %s to i%d", reg, v.irTy, v.text, db)
	} else {
		fb.emitf("%s = zext %s %s to i%d", reg, v.irTy, v.text, db)
	}
	return rvalue{reg, lowerType(target, flavorValue), target}
}

func genArrayLiteral(fb *fnBuilder, al *ast.ArrayLiteral, hint *types.WaveType) rvalue {
	var elemType *types.WaveType
	if hint != nil && hint.Kind == types.KArray {
		elemType = hint.Elem
	}
	if elemType == nil && len(al.Elements) > 0 {
		elemType = exprWaveType(fb, al.Elements[0])
	}
	if elemType == nil {
		elemType = types.Int(32)
	}
	arrType := types.Array(elemType, int64(len(al.Elements)))
	slot := fb.allocaInEntry(lowerType(arrType, flavorValue))
	for i, el := range al.Elements {
		ev := genExpr(fb, el, elemType)
		ev = recastNoNarrow(fb, ev, elemType, al.Pos)
		gep := fb.newReg()
		fb.emitf("%s = getelementptr inbounds %s, ptr %s, i64 0, i64 %d", gep, lowerType(arrType, flavorValue), slot, i)
		fb.emitf("store %s %s, ptr %s", ev.irTy, ev.text, gep)
	}
	return rvalue{slot, "ptr", arrType}
}

func genStructLiteral(fb *fnBuilder, sl *ast.StructLiteral, pos ast.Pos) rvalue {
	fields, ok := fb.g.env.StructFields(sl.Name)
	if !ok {
		panicf(errors.E7002, pos, "unknown struct %q", sl.Name)
	}
	st := types.StructRef(sl.Name)
	slot := fb.allocaInEntry(lowerType(st, flavorValue))
	seen := map[string]bool{}

	named := false
	for _, fi := range sl.Fields {
		if fi.Name != "" {
			named = true
		}
	}

	assign := func(idx int, val ast.Expr) {
		fname := fields[idx].Name
		if seen[fname] {
			panicf(errors.E7009, pos, "duplicate field %q in struct literal", fname)
		}
		seen[fname] = true
		ev := genExpr(fb, val, fields[idx].Type)
		ev = recastNoNarrow(fb, ev, fields[idx].Type, pos)
		offset, err := abi.FieldOffset(sl.Name, fname, fb.g.env, fb.g.tgt)
		if err != nil {
			panic(irPanic{err})
		}
		gep := fb.newReg()
		fb.emitf("%s = getelementptr inbounds i8, ptr %s, i64 %d", gep, slot, offset)
		fb.emitf("store %s %s, ptr %s", ev.irTy, ev.text, gep)
	}

	if named {
		for _, fi := range sl.Fields {
			idx := -1
			for i, f := range fields {
				if f.Name == fi.Name {
					idx = i
					break
				}
			}
			if idx < 0 {
				panicf(errors.E7002, pos, "struct %q has no field %q", sl.Name, fi.Name)
			}
			assign(idx, fi.Value)
		}
	} else {
		if len(sl.Fields) > len(fields) {
			panicf(errors.E7009, pos, "too many initializers for struct %q", sl.Name)
		}
		for i, fi := range sl.Fields {
			assign(i, fi.Value)
		}
	}

	for _, f := range fields {
		if !seen[f.Name] {
			offset, err := abi.FieldOffset(sl.Name, f.Name, fb.g.env, fb.g.tgt)
			if err != nil {
				panic(irPanic{err})
			}
			gep := fb.newReg()
			fb.emitf("%s = getelementptr inbounds i8, ptr %s, i64 %d", gep, slot, offset)
			fb.emitf("store %s %s, ptr %s", lowerType(f.Type, flavorValue), zeroText(f.Type), gep)
		}
	}
	return rvalue{slot, "ptr", st}
}

// storeValue writes ev into slot. Aggregate targets copy through memcpy
// since ev.text is itself an address by convention; scalars use a plain
// store.
func storeValue(fb *fnBuilder, slot string, vt *types.WaveType, ev rvalue, pos ast.Pos) {
	if vt.Kind == types.KArray || vt.Kind == types.KStruct {
		size, err := abi.SizeOf(vt, fb.g.env, fb.g.tgt)
		if err != nil {
			panic(irPanic{err})
		}
		fb.g.usedMemcpy = true
		fb.emitf("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %d, i1 false)", slot, ev.text, size)
		return
	}
	fb.emitf("store %s %s, ptr %s", lowerType(vt, flavorValue), ev.text, slot)
}
