// Package errors provides the structured diagnostic type shared by every
// phase of the compiler pipeline, and the phase-grouped error code table.
package errors

// Code is a stable error code string such as "E1001". Codes are grouped by
// the phase that raises them so a reader can tell at a glance which stage
// of the pipeline failed without reading the message.
type Code = string

const (
	// ============================================================
	// Lexer errors (E1xxx)
	// ============================================================

	// E1001 indicates an unrecognized byte/character in the source text.
	E1001 = "E1001"
	// E1002 indicates an unterminated block comment.
	E1002 = "E1002"
	// E1003 indicates an unterminated string literal.
	E1003 = "E1003"
	// E1004 indicates an invalid escape sequence inside a string or char literal.
	E1004 = "E1004"
	// E1005 indicates a char literal that does not contain exactly one code point.
	E1005 = "E1005"
	// E1006 indicates a malformed numeric literal (bad base prefix, no digits).
	// The parser also raises it for a float literal it cannot convert.
	E1006 = "E1006"

	// ============================================================
	// Parser errors (E2xxx)
	// ============================================================

	// E2001 indicates an unexpected token.
	E2001 = "E2001"
	// E2002 indicates a missing closing delimiter.
	E2002 = "E2002"
	// E2003 indicates a malformed type expression.
	E2003 = "E2003"
	// E2004 indicates an array literal whose length does not match its declared size.
	E2004 = "E2004"
	// E2005 indicates more than one wildcard arm in a match.
	E2005 = "E2005"

	// ============================================================
	// Import resolver errors (E3xxx)
	// ============================================================

	// E3001 indicates an imported file could not be read.
	E3001 = "E3001"
	// E3002 indicates an import cycle.
	E3002 = "E3002"

	// ============================================================
	// Type resolver errors (E4xxx)
	// ============================================================

	// E4001 indicates a type-alias or enum resolution cycle.
	E4001 = "E4001"
	// E4002 indicates reference to an undefined named type.
	E4002 = "E4002"

	// ============================================================
	// Const evaluator errors (E5xxx)
	// ============================================================

	// E5001 indicates a const declaration cycle (no progress in a round).
	E5001 = "E5001"
	// E5002 indicates an invalid constant expression.
	E5002 = "E5002"
	// E5003 indicates a const array literal whose length does not match its declared size.
	E5003 = "E5003"

	// ============================================================
	// ABI lowering errors (E6xxx)
	// ============================================================

	// E6001 indicates an ABI-unrepresentable type in an extern signature.
	E6001 = "E6001"

	// ============================================================
	// IR generation errors (E7xxx)
	// ============================================================

	// E7001 indicates reference to an undeclared variable.
	E7001 = "E7001"
	// E7002 indicates access to an unknown struct field.
	E7002 = "E7002"
	// E7003 indicates a non-void function falling off its end without a return.
	E7003 = "E7003"
	// E7004 indicates implicit narrowing of an integer argument or assignment.
	E7004 = "E7004"
	// E7005 indicates a non-integer match discriminant.
	E7005 = "E7005"
	// E7006 indicates a duplicate match-arm constant.
	E7006 = "E7006"
	// E7007 indicates an unsupported operator for the operand types.
	E7007 = "E7007"
	// E7008 indicates a method call whose target cannot be resolved.
	E7008 = "E7008"
	// E7009 indicates a duplicate struct field in a struct literal or declaration.
	// The parser raises it for a declaration; IR generation for a literal.
	E7009 = "E7009"

	// ============================================================
	// Inline-asm planner errors (E8xxx)
	// ============================================================

	// E8001 indicates two outputs collide on the same physical register
	// group, or a user clobber names a register bound to an input or output.
	E8001 = "E8001"
	// E8002 indicates two inputs collide on the same physical register group.
	E8002 = "E8002"
	// E8003 indicates an invalid register or clobber token.
	E8003 = "E8003"
)
