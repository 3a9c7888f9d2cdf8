package ir

import (
	"strconv"
	"strings"
)

func (m *genModule) render() string {
	var b strings.Builder

	for _, s := range m.structDefs {
		b.WriteString(s)
		b.WriteString("\n")
	}
	if len(m.structDefs) > 0 {
		b.WriteString("\n")
	}

	for _, g := range m.globals {
		b.WriteString(g)
		b.WriteString("\n")
	}
	if len(m.globals) > 0 {
		b.WriteString("\n")
	}

	for _, s := range m.stringLits {
		b.WriteString(s)
		b.WriteString("\n")
	}
	if len(m.stringLits) > 0 {
		b.WriteString("\n")
	}

	if m.usedMemcpy {
		b.WriteString("declare void @llvm.memcpy.p0.p0.i64(ptr, ptr, i64, i1)\n")
	}
	if m.usedPrintf {
		b.WriteString("declare i32 @printf(ptr, ...)\n")
	}
	if m.usedMemcpy || m.usedPrintf {
		b.WriteString("\n")
	}

	for i, fn := range m.funcs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fn.render())
	}

	return b.String()
}

func (fn *function) render() string {
	var b strings.Builder

	var params []string
	for _, p := range fn.params {
		text := p.irType
		if p.attr != "" {
			text += " " + p.attr
		}
		if p.name != "" {
			text += " %arg." + p.name
		}
		params = append(params, text)
	}
	if fn.variadic {
		params = append(params, "...")
	}
	sig := strings.Join(params, ", ")

	if fn.isDeclare {
		b.WriteString("declare " + fn.retIR + " @" + fn.name + "(" + sig + ")\n")
		return b.String()
	}

	b.WriteString("define " + fn.retIR + " @" + fn.name + "(" + sig + ") {\n")
	for _, blk := range fn.blocks {
		b.WriteString(blk.label)
		b.WriteString(":\n")
		for _, line := range blk.lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// emitStringConstant registers text as a global string literal and returns
// its global name. Strings are deduplicated by nothing more than insertion
// order; repeated literals simply create repeated globals, matching the
// simplicity of the rest of this generator's constant handling.
func (g *genCtx) emitStringConstant(text string) string {
	*g.strCounter++
	name := "@.str." + strconv.Itoa(*g.strCounter)

	var escaped strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
			escaped.WriteByte(c)
			continue
		}
		escaped.WriteString("\\")
		escaped.WriteString(hexByte(c))
	}
	escaped.WriteString("\\00")

	length := len(text) + 1
	g.mod.stringLits = append(g.mod.stringLits, name+" = private unnamed_addr constant ["+strconv.Itoa(length)+" x i8] c\""+escaped.String()+"\"")
	return name
}

const hexDigits = "0123456789ABCDEF"

func hexByte(c byte) string {
	return string([]byte{hexDigits[c>>4], hexDigits[c&0xf]})
}
