package scoring

import (
	"strings"
	"unicode/utf16"
)

// textLen measures s in UTF-16 code units, the unit every length rule is defined in.
func textLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// textLastIndex is strings.LastIndex measured in UTF-16 code units.
func textLastIndex(s, substr string) int {
	i := strings.LastIndex(s, substr)
	if i < 0 {
		return -1
	}
	return textLen(s[:i])
}

// isUpper reports whether s is unchanged by upper-casing. Strings without letters,
// including the empty string, count as upper-case.
func isUpper(s string) bool {
	return strings.ToUpper(s) == s
}

// leadingInt parses the leading integer of s the way a lenient form parser does:
// leading whitespace is skipped, an optional sign and a 0x prefix are honoured, and
// parsing stops at the first non-digit. ok is false when no digit was found.
func leadingInt(s string) (n int, ok bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	for _, c := range s {
		d := digitValue(c)
		if d < 0 || d >= base {
			break
		}
		n = n*base + d
		ok = true
	}
	if neg {
		n = -n
	}
	return n, ok
}

func digitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
