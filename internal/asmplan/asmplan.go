// Package asmplan implements the inline-assembly planner (spec §4.7): it
// normalizes user-written register/constraint tokens, builds the LLVM-style
// constraint string (outputs, then inputs, then clobbers), detects tied
// operands, and merges the conservative-kernel default clobber set with
// user-supplied clobbers. It is stateless: one Build call, one Plan, no
// persistent allocator state, matching the resource-discipline note in
// spec §5 that the planner owns no state across calls.
package asmplan

import (
	"fmt"
	"strings"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/target"
)

// RegExpr pairs a raw user register/constraint token with the expression it
// binds (an input value, or an output's assignment target).
type RegExpr struct {
	Reg  string
	Expr ast.Expr
}

// Output is one planned output operand.
type Output struct {
	RegRaw    string
	RegNorm   string
	PhysGroup string // "" for a constraint class such as "r"/"rm"/"m"
	Target    ast.Expr
}

// Input is one planned input operand.
type Input struct {
	Constraint string // "{rax}", "r", or a tied index "0", "1", ...
	PhysGroup  string // "" for a constraint class
	Value      ast.Expr
}

// Plan is the planner's output: an IR-ready inline-asm value.
type Plan struct {
	AsmCode  string
	Outputs  []Output
	Inputs   []Input
	Clobbers []string
}

// ConstraintString renders the LLVM-style constraint string: outputs
// first, then inputs, then clobbers, comma-separated.
func (p *Plan) ConstraintString() string {
	var parts []string
	for _, o := range p.Outputs {
		if o.PhysGroup != "" {
			parts = append(parts, fmt.Sprintf("={%s}", o.RegNorm))
		} else {
			parts = append(parts, "="+o.RegNorm)
		}
	}
	for _, in := range p.Inputs {
		parts = append(parts, in.Constraint)
	}
	parts = append(parts, p.Clobbers...)
	return strings.Join(parts, ",")
}

// Build plans one inline-asm block for tgt's register set. pos is used only
// to anchor diagnostics.
func Build(tgt *target.Spec, instructions []string, outputs, inputs []RegExpr, userClobbers []string, pos ast.Pos) (*Plan, *errors.Report) {
	asmCode := gccPercentToDollar(strings.Join(instructions, "\n"))

	usedOutPhys := map[string]bool{}
	outIndexByExactReg := map[string]int{}
	planOutputs := make([]Output, 0, len(outputs))

	for _, o := range outputs {
		norm, phys := classify(tgt, o.Reg)
		if phys != "" {
			if usedOutPhys[phys] {
				return nil, conflict(pos, errors.E8001, o.Reg, phys, "asm outputs")
			}
			usedOutPhys[phys] = true
			outIndexByExactReg[norm] = len(planOutputs)
		}
		planOutputs = append(planOutputs, Output{RegRaw: o.Reg, RegNorm: norm, PhysGroup: phys, Target: o.Expr})
	}

	usedInPhys := map[string]bool{}
	planInputs := make([]Input, 0, len(inputs))

	for _, in := range inputs {
		norm, phys := classify(tgt, in.Reg)
		if phys != "" {
			if usedInPhys[phys] {
				return nil, conflict(pos, errors.E8002, in.Reg, phys, "asm inputs")
			}
			usedInPhys[phys] = true

			if outIdx, tied := outIndexByExactReg[norm]; tied {
				planInputs = append(planInputs, Input{Constraint: fmt.Sprintf("%d", outIdx), PhysGroup: phys, Value: in.Expr})
				continue
			}
			planInputs = append(planInputs, Input{Constraint: fmt.Sprintf("{%s}", norm), PhysGroup: phys, Value: in.Expr})
			continue
		}
		planInputs = append(planInputs, Input{Constraint: norm, Value: in.Expr})
	}

	usedPhys := map[string]bool{}
	for g := range usedOutPhys {
		usedPhys[g] = true
	}
	for g := range usedInPhys {
		usedPhys[g] = true
	}

	defaultClobbers := buildDefaultClobbers(tgt, usedPhys, anyClassConstraint(outputs, inputs, tgt))
	clobbers, err := mergeClobbers(tgt, defaultClobbers, userClobbers, usedPhys, pos)
	if err != nil {
		return nil, err
	}

	return &Plan{AsmCode: asmCode, Outputs: planOutputs, Inputs: planInputs, Clobbers: clobbers}, nil
}

func anyClassConstraint(outputs, inputs []RegExpr, tgt *target.Spec) bool {
	for _, o := range outputs {
		if _, phys := classify(tgt, o.Reg); phys == "" {
			return true
		}
	}
	for _, in := range inputs {
		if _, phys := classify(tgt, in.Reg); phys == "" {
			return true
		}
	}
	return false
}

// classify normalizes a raw register/constraint token (trims, strips a
// leading '%' and surrounding '{}', lowercases) and reports its physical
// register group, or "" if it is a constraint class (e.g. "r", "rm", "m").
func classify(tgt *target.Spec, raw string) (norm, physGroup string) {
	norm = normalizeToken(raw)
	group := tgt.GPRGroup(norm)
	if group != norm {
		return norm, group
	}
	for _, g := range tgt.GPRs {
		if g == norm {
			return norm, norm
		}
	}
	return norm, ""
}

func normalizeToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "%")
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// gccPercentToDollar rewrites GCC-style "%0" numeric operand references to
// the backend's "$0" form, passing "%%" through as a literal '%'.
func gccPercentToDollar(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			b.WriteByte('%')
			i += 2
			continue
		}
		j := i + 1
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			b.WriteByte('$')
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				b.WriteByte(s[j])
				j++
			}
			i = j
			continue
		}
		b.WriteByte('%')
		i++
	}
	return b.String()
}

var reservedClobbers = map[string]string{
	"memory":  "~{memory}",
	"cc":      "~{flags}",
	"flags":   "~{flags}",
	"eflags":  "~{flags}",
	"rflags":  "~{flags}",
	"dirflag": "~{dirflag}",
	"fpsr":    "~{fpsr}",
}

// buildDefaultClobbers is the conservative-kernel default: always clobber
// memory and the flag registers; additionally clobber every unused GPR, but
// only when every operand names a concrete physical register (a class
// constraint like "r" means the allocator needs the rest of the GPRs free).
func buildDefaultClobbers(tgt *target.Spec, usedPhys map[string]bool, hasClassConstraint bool) []string {
	clobbers := []string{"~{memory}", "~{dirflag}", "~{fpsr}", "~{flags}"}
	if hasClassConstraint {
		return clobbers
	}
	for _, g := range tgt.GPRs {
		if !usedPhys[g] {
			clobbers = append(clobbers, fmt.Sprintf("~{%s}", g))
		}
	}
	return clobbers
}

func normalizeClobberItem(tgt *target.Spec, raw string, pos ast.Pos) (string, *errors.Report) {
	t := strings.TrimSpace(raw)
	inner := t
	if strings.HasPrefix(t, "~{") && strings.HasSuffix(t, "}") {
		inner = t[2 : len(t)-1]
	} else if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
		inner = t[1 : len(t)-1]
	}
	n := normalizeToken(inner)

	if canon, ok := reservedClobbers[n]; ok {
		return canon, nil
	}
	if group := tgt.GPRGroup(n); group != n {
		return fmt.Sprintf("~{%s}", group), nil
	}
	for _, g := range tgt.GPRs {
		if g == n {
			return fmt.Sprintf("~{%s}", n), nil
		}
	}
	return "", errors.New(errors.KindCompilationFail, errors.E8003, pos.File, pos.Line, pos.Column,
		fmt.Sprintf("invalid clobber token %q", raw))
}

// mergeClobbers appends the user's clobbers (normalized, deduplicated) to
// the default set, rejecting any clobber that names a register already
// bound to an input/output operand.
func mergeClobbers(tgt *target.Spec, base, userClobbers []string, usedPhys map[string]bool, pos ast.Pos) ([]string, *errors.Report) {
	seen := map[string]bool{}
	for _, c := range base {
		seen[c] = true
	}

	for _, raw := range userClobbers {
		c, err := normalizeClobberItem(tgt, raw, pos)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(c, "~{") && strings.HasSuffix(c, "}") {
			innerNorm := c[2 : len(c)-1]
			if usedPhys[innerNorm] {
				return nil, conflict(pos, errors.E8001, raw, innerNorm, "an input/output operand register")
			}
		}
		if !seen[c] {
			seen[c] = true
			base = append(base, c)
		}
	}
	return base, nil
}

func conflict(pos ast.Pos, code errors.Code, token, group, where string) *errors.Report {
	return errors.New(errors.KindCompilationFail, code, pos.File, pos.Line, pos.Column,
		fmt.Sprintf("register %q (group %q) collides with another operand in %s", token, group, where))
}
