package types

import (
	"fmt"
	"strconv"
	"strings"
)

// intSuffixes maps an integer literal's optional trailing type suffix
// (e.g. the "u8" in "10_u8") to its bit width and signedness. isz/usz are
// handled separately since their width depends on the target.
var intSuffixes = map[string]struct {
	bits   int
	signed bool
}{
	"i8": {8, true}, "i16": {16, true}, "i32": {32, true}, "i64": {64, true},
	"i128": {128, true}, "i256": {256, true}, "i512": {512, true}, "i1024": {1024, true},
	"u8": {8, false}, "u16": {16, false}, "u32": {32, false}, "u64": {64, false},
	"u128": {128, false}, "u256": {256, false}, "u512": {512, false}, "u1024": {1024, false},
}

// ParseIntLiteral parses the verbatim text of an IntLiteral token (digit
// separators and an optional "_<suffix>" type suffix, any of the standard
// 0x/0b/0o base prefixes) into its numeric value and, when a suffix is
// present, the WaveType it names. When no suffix is present, wt is nil and
// the caller applies its own expected-type hint (falling back to the
// default i32 when there is none to apply).
func ParseIntLiteral(text string, pointerBits int) (value int64, wt *WaveType, err error) {
	parts := strings.Split(text, "_")
	digitParts := parts
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		switch last {
		case "isz":
			wt = Isz(pointerBits)
			digitParts = parts[:len(parts)-1]
		case "usz":
			wt = Usz(pointerBits)
			digitParts = parts[:len(parts)-1]
		default:
			if s, ok := intSuffixes[last]; ok {
				if s.signed {
					wt = Int(s.bits)
				} else {
					wt = Uint(s.bits)
				}
				digitParts = parts[:len(parts)-1]
			}
		}
	}

	digits := strings.Join(digitParts, "")
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B"):
		base, digits = 2, digits[2:]
	case strings.HasPrefix(digits, "0o") || strings.HasPrefix(digits, "0O"):
		base, digits = 8, digits[2:]
	}

	u, perr := strconv.ParseUint(digits, base, 64)
	if perr != nil {
		return 0, nil, fmt.Errorf("invalid integer literal %q: %w", text, perr)
	}
	return int64(u), wt, nil
}
