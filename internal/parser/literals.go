package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// parseIntLiteralValue parses the verbatim lexer text of an integer literal
// (optional 0x/0o/0b prefix, underscore digit separators, optional
// trailing `<i|u|f>NN` type suffix) into its numeric value. The parser
// needs this at parse time for array lengths, which the grammar requires
// to be known immediately (spec §4.2 "array literal length must match
// declared array size").
func parseIntLiteralValue(text string) (int64, error) {
	s := removeDigitSeparators(text)

	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		base = 8
		s = s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	}
	s = stripTypeSuffix(s, base)
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q: %w", text, err)
	}
	return int64(v), nil
}

// removeDigitSeparators strips every '_' used as a digit separator.
func removeDigitSeparators(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripTypeSuffix removes a trailing alphabetic type-suffix (e.g. "u8",
// "i32") that follows the numeric digits of s (already stripped of its
// base prefix), such as the "FFu8" left of "0xFFu8". It only strips when
// the trailing run looks like <i|u|f><digits>, so hex digit runs like "ff"
// are never mistaken for a suffix; in a base-16 literal 'f' is a digit,
// so there only i/u start a suffix and "f0" stays part of the value.
func stripTypeSuffix(s string, base int) string {
	i := len(s)
	for i > 0 && isDigit(s[i-1]) {
		i--
	}
	if i == 0 || i == len(s) {
		return s
	}
	if isTypeSuffixLetter(s[i-1]) && !(base == 16 && s[i-1] == 'f') {
		i--
		return s[:i]
	}
	return s
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isTypeSuffixLetter(c byte) bool { return c == 'i' || c == 'u' || c == 'f' }
