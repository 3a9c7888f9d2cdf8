package errors

import (
	"fmt"
	"strings"
)

// Kind classifies a Report by the taxonomy in spec §7.
type Kind string

const (
	KindFileRead         Kind = "FileReadError"
	KindSyntax           Kind = "SyntaxError"
	KindUnterminatedStr  Kind = "UnterminatedString"
	KindInvalidString    Kind = "InvalidString"
	KindUnexpectedChar   Kind = "UnexpectedChar"
	KindInvalidNumber    Kind = "InvalidNumber"
	KindCompilationFail  Kind = "CompilationFailed"
	KindLinkingFailed    Kind = "LinkingFailed"
)

// Report is the canonical diagnostic type for the compiler core. Every
// phase (lexer, parser, import resolver, const evaluator, type resolver,
// ABI lowering, IR generator) reports failures as a *Report.
type Report struct {
	Kind       Kind
	Code       Code
	File       string
	Line       int
	Column     int
	Label      string // short hint printed under the source span
	Help       string
	Suggestion string
}

// Error implements the error interface.
func (r *Report) Error() string {
	return r.String()
}

// String renders the multi-line diagnostic spec §4.8/§7 describes:
// file:line:column, code, kind, label, then optional help/suggestion.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s [%s]\n", r.File, r.Line, r.Column, r.Kind, r.Code)
	if r.Label != "" {
		fmt.Fprintf(&b, "  %s\n", r.Label)
	}
	if r.Help != "" {
		fmt.Fprintf(&b, "  help: %s\n", r.Help)
	}
	if r.Suggestion != "" {
		fmt.Fprintf(&b, "  suggestion: %s\n", r.Suggestion)
	}
	return b.String()
}

// New builds a bare Report; use the With* helpers to attach optional fields.
func New(kind Kind, code Code, file string, line, column int, label string) *Report {
	return &Report{Kind: kind, Code: code, File: file, Line: line, Column: column, Label: label}
}

// WithHelp attaches a help line and returns the same Report for chaining.
func (r *Report) WithHelp(help string) *Report {
	r.Help = help
	return r
}

// WithSuggestion attaches a suggestion line and returns the same Report.
func (r *Report) WithSuggestion(suggestion string) *Report {
	r.Suggestion = suggestion
	return r
}
