package ir

import (
	"github.com/wavelang/wavec/internal/abi"
	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/types"
)

// addrAndType resolves expr to an assignable storage address and the
// WaveType stored there. Only the lvalue-capable expression forms are
// handled; anything else is a compile error (expr is not a location).
func addrAndType(fb *fnBuilder, expr ast.Expr) (string, *types.WaveType) {
	switch x := expr.(type) {
	case *ast.Grouped:
		return addrAndType(fb, x.X)
	case *ast.Variable:
		if lv, ok := fb.lookupLocal(x.Name); ok {
			return lv.ptr, lv.wt
		}
		if gv, ok := fb.g.globals[x.Name]; ok {
			return gv.ptr, gv.wt
		}
		panicf(errors.E7001, x.Pos, "reference to undeclared variable %q", x.Name)
	case *ast.AddressOf:
		// &(&x) used as an lvalue collapses back to x's own address.
		return addrAndType(fb, x.X)
	case *ast.Deref:
		pv := genExpr(fb, x.X, nil)
		pointee := inferPointee(fb, x.X)
		return pv.text, pointee
	case *ast.FieldAccess:
		return fieldAddr(fb, x)
	case *ast.Index:
		return indexAddr(fb, x)
	}
	panicf(errors.E7002, expr.Position(), "expression is not an assignable location")
	return "", nil
}

func fieldAddr(fb *fnBuilder, x *ast.FieldAccess) (string, *types.WaveType) {
	objType := exprWaveType(fb, x.Object)

	var structName, basePtr string
	switch {
	case objType.Kind == types.KStruct:
		structName = objType.StructName
		basePtr, _ = addrAndType(fb, x.Object)
	case objType.Kind == types.KPointer && objType.Elem.Kind == types.KStruct:
		structName = objType.Elem.StructName
		ptrAddr, _ := addrAndType(fb, x.Object)
		reg := fb.newReg()
		fb.emitf("%s = load ptr, ptr %s", reg, ptrAddr)
		basePtr = reg
	default:
		panicf(errors.E7002, x.Pos, "field access on a non-struct type %s", objType)
	}

	idx, ok := fb.g.structFieldIndex[structName][x.Field]
	if !ok {
		panicf(errors.E7002, x.Pos, "struct %q has no field %q", structName, x.Field)
	}
	fields, _ := fb.g.env.StructFields(structName)
	fieldType := fields[idx].Type

	offset, err := abi.FieldOffset(structName, x.Field, fb.g.env, fb.g.tgt)
	if err != nil {
		panic(irPanic{err})
	}
	reg := fb.newReg()
	fb.emitf("%s = getelementptr inbounds i8, ptr %s, i64 %d", reg, basePtr, offset)
	return reg, fieldType
}

func indexAddr(fb *fnBuilder, x *ast.Index) (string, *types.WaveType) {
	targetType := exprWaveType(fb, x.Target)
	idxVal := genExpr(fb, x.Index, types.Isz(fb.g.tgt.PointerBits))
	idx64 := castIntWidthExact(fb, idxVal, 64)

	switch targetType.Kind {
	case types.KArray:
		baseAddr, _ := addrAndType(fb, x.Target)
		reg := fb.newReg()
		fb.emitf("%s = getelementptr inbounds %s, ptr %s, i64 0, i64 %s", reg, lowerType(targetType, flavorValue), baseAddr, idx64.text)
		return reg, targetType.Elem
	case types.KPointer:
		ptrAddr, _ := addrAndType(fb, x.Target)
		base := fb.newReg()
		fb.emitf("%s = load ptr, ptr %s", base, ptrAddr)
		pointee := targetType.Elem
		if pointee.Kind == types.KArray {
			reg := fb.newReg()
			fb.emitf("%s = getelementptr inbounds %s, ptr %s, i64 0, i64 %s", reg, lowerType(pointee, flavorValue), base, idx64.text)
			return reg, pointee.Elem
		}
		reg := fb.newReg()
		fb.emitf("%s = getelementptr inbounds %s, ptr %s, i64 %s", reg, lowerType(pointee, flavorValue), base, idx64.text)
		return reg, pointee
	case types.KString:
		strAddr, _ := addrAndType(fb, x.Target)
		base := fb.newReg()
		fb.emitf("%s = load ptr, ptr %s", base, strAddr)
		reg := fb.newReg()
		fb.emitf("%s = getelementptr inbounds i8, ptr %s, i64 %s", reg, base, idx64.text)
		return reg, types.Byte
	}
	panicf(errors.E7007, x.Pos, "index access on non-indexable type %s", targetType)
	return "", nil
}

// inferPointee determines a pointer expression's pointee type from its
// static form, falling back to byte when it cannot be determined (e.g. a
// pointer loaded through another pointer-to-pointer indirection).
func inferPointee(fb *fnBuilder, expr ast.Expr) *types.WaveType {
	switch x := expr.(type) {
	case *ast.Variable:
		if v, ok := fb.lookupLocal(x.Name); ok && v.wt.Kind == types.KPointer {
			return v.wt.Elem
		}
		if g, ok := fb.g.globals[x.Name]; ok && g.wt.Kind == types.KPointer {
			return g.wt.Elem
		}
	case *ast.AddressOf:
		return exprWaveType(fb, x.X)
	case *ast.Cast:
		if tt, err := fb.g.env.Resolve(x.TargetType); err == nil && tt.Kind == types.KPointer {
			return tt.Elem
		}
	case *ast.Grouped:
		return inferPointee(fb, x.X)
	}
	return types.Byte
}
