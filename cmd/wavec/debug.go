package main

import (
	"fmt"
	"strings"

	"github.com/wavelang/wavec/internal/ast"
)

// debugWaveModes splits --debug-wave's comma-combination value into the
// individual dump modes it names. "all" expands to every known mode.
func debugWaveModes(raw string) map[string]bool {
	modes := map[string]bool{}
	for _, m := range strings.Split(raw, ",") {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if m == "all" {
			modes["tokens"] = true
			modes["ast"] = true
			modes["ir"] = true
			modes["mc"] = true
			modes["hex"] = true
			continue
		}
		modes[m] = true
	}
	return modes
}

// dumpDebugWave prints the requested intermediate stages to stderr ahead of
// a command's normal output. "mc" and "hex" name machine-code and hex-dump
// views of a backend this core does not have (object/executable emission
// is an external collaborator's job); requesting them prints a note
// instead of fabricating output.
func dumpDebugWave(modes map[string]bool, res *compileResult) {
	if modes["tokens"] {
		fmt.Fprintln(stderrOut, bold("-- tokens --"))
		for _, t := range res.tokens {
			fmt.Fprintf(stderrOut, "%-14s %q\n", t.Kind, t.Lexeme)
		}
	}
	if modes["ast"] {
		fmt.Fprintln(stderrOut, bold("-- ast --"))
		fmt.Fprintln(stderrOut, ast.PrintDecls(res.decls))
	}
	if modes["ir"] {
		fmt.Fprintln(stderrOut, bold("-- ir --"))
		fmt.Fprintln(stderrOut, res.ir)
	}
	if modes["mc"] {
		fmt.Fprintln(stderrOut, yellow("-- mc: no backend in this core, nothing to show --"))
	}
	if modes["hex"] {
		fmt.Fprintln(stderrOut, yellow("-- hex: no backend in this core, nothing to show --"))
	}
}
