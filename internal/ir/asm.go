package ir

import (
	"strconv"
	"strings"

	"github.com/wavelang/wavec/internal/asmplan"
	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/target"
	"github.com/wavelang/wavec/internal/types"
)

func genAsmStmt(fb *fnBuilder, s *ast.AsmBlock) {
	genAsmBlock(fb, s)
}

func genAsmExpr(fb *fnBuilder, s *ast.AsmBlock) rvalue {
	return genAsmBlock(fb, s)
}

func genAsmBlock(fb *fnBuilder, s *ast.AsmBlock) rvalue {
	var outs, ins []asmplan.RegExpr
	for _, o := range s.Outputs {
		outs = append(outs, asmplan.RegExpr{Reg: o.Reg, Expr: o.Expr})
	}
	for _, in := range s.Inputs {
		ins = append(ins, asmplan.RegExpr{Reg: in.Reg, Expr: in.Expr})
	}

	plan, err := asmplan.Build(fb.g.tgt, s.Instructions, outs, ins, s.Clobbers, s.Pos)
	if err != nil {
		panic(irPanic{err})
	}

	var argTexts []string
	for _, in := range plan.Inputs {
		iv := genExpr(fb, in.Value, nil)
		if token, ok := constraintToken(in.Constraint); ok {
			bits := regBitsForToken(fb.g.tgt, token)
			if bits > 0 {
				iv = forceIntWidth(fb, iv, bits)
			}
		}
		argTexts = append(argTexts, iv.irTy+" "+iv.text)
	}

	var outTypes []*types.WaveType
	for _, o := range plan.Outputs {
		outTypes = append(outTypes, outputWaveType(fb, o))
	}

	var retIR string
	switch len(outTypes) {
	case 0:
		retIR = "void"
	case 1:
		retIR = lowerType(outTypes[0], flavorValue)
	default:
		var parts []string
		for _, t := range outTypes {
			parts = append(parts, lowerType(t, flavorValue))
		}
		retIR = "{ " + strings.Join(parts, ", ") + " }"
	}

	dialect := ""
	if !isArm64(fb.g.tgt) {
		dialect = " inteldialect"
	}

	constraints := plan.ConstraintString()
	call := "call " + retIR + " asm \"" + asmEscape(plan.AsmCode) + "\", \"" + constraints + "\"(" + strings.Join(argTexts, ", ") + ")" + dialect

	switch len(outTypes) {
	case 0:
		fb.emit(call)
		return rvalue{"0", "i32", types.Int(32)}
	case 1:
		reg := fb.newReg()
		fb.emitf("%s = %s", reg, call)
		result := rvalue{reg, retIR, outTypes[0]}
		writeAsmOutput(fb, plan.Outputs[0], result.text, result.wt)
		return result
	default:
		reg := fb.newReg()
		fb.emitf("%s = %s", reg, call)
		for i, o := range plan.Outputs {
			ev := fb.newReg()
			fb.emitf("%s = extractvalue %s %s, %d", ev, retIR, reg, i)
			writeAsmOutput(fb, o, ev, outTypes[i])
		}
		return rvalue{reg, retIR, outTypes[0]}
	}
}

func outputWaveType(fb *fnBuilder, o asmplan.Output) *types.WaveType {
	return exprWaveType(fb, o.Target)
}

func writeAsmOutput(fb *fnBuilder, o asmplan.Output, valText string, wt *types.WaveType) {
	addr, targetType := addrAndType(fb, o.Target)
	fb.emitf("store %s %s, ptr %s", lowerType(targetType, flavorValue), valText, addr)
}

func asmEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\22")
	s = strings.ReplaceAll(s, "\n", "\\0A")
	return s
}

func isArm64(tgt *target.Spec) bool {
	return strings.Contains(tgt.Name, "arm64")
}

var amd64RegWidth = map[string]int{
	"al": 8, "ah": 8, "bl": 8, "bh": 8, "cl": 8, "ch": 8, "dl": 8, "dh": 8,
	"sil": 8, "dil": 8, "bpl": 8, "spl": 8,
	"r8b": 8, "r9b": 8, "r10b": 8, "r11b": 8, "r12b": 8, "r13b": 8, "r14b": 8, "r15b": 8,
	"ax": 16, "bx": 16, "cx": 16, "dx": 16, "si": 16, "di": 16, "bp": 16, "sp": 16,
	"r8w": 16, "r9w": 16, "r10w": 16, "r11w": 16, "r12w": 16, "r13w": 16, "r14w": 16, "r15w": 16,
	"eax": 32, "ebx": 32, "ecx": 32, "edx": 32, "esi": 32, "edi": 32, "ebp": 32, "esp": 32,
	"r8d": 32, "r9d": 32, "r10d": 32, "r11d": 32, "r12d": 32, "r13d": 32, "r14d": 32, "r15d": 32,
	"rax": 64, "rbx": 64, "rcx": 64, "rdx": 64, "rsi": 64, "rdi": 64, "rbp": 64, "rsp": 64,
	"r8": 64, "r9": 64, "r10": 64, "r11": 64, "r12": 64, "r13": 64, "r14": 64, "r15": 64,
}

func regBitsForToken(tgt *target.Spec, token string) int {
	if isArm64(tgt) {
		if len(token) < 2 {
			return 0
		}
		if _, err := strconv.Atoi(token[1:]); err != nil {
			return 0
		}
		switch token[0] {
		case 'w':
			return 32
		case 'x':
			return 64
		}
		return 0
	}
	return amd64RegWidth[token]
}

// forceIntWidth narrows/widens v to an ASM operand's own register width,
// keyed to v's own signedness rather than a target WaveType.
func forceIntWidth(fb *fnBuilder, v rvalue, bits int) rvalue {
	if !v.wt.IsInteger() && v.wt.Kind != types.KBool && v.wt.Kind != types.KChar && v.wt.Kind != types.KByte {
		return v
	}
	sb := bitsOf(v.wt)
	if sb == 0 || sb == bits {
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
	return rvalue{reg, "i" + strconv.Itoa(bits), v.wt}
}

// constraintToken strips a "{reg}"-wrapped constraint string down to its
// bare register name.
func constraintToken(c string) (string, bool) {
	if strings.HasPrefix(c, "{") && strings.HasSuffix(c, "}") {
		return c[1 : len(c)-1], true
	}
	return "", false
}
