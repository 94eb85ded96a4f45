package guard

import (
	"strings"
	"unicode"
)

// DefaultLogValueLength caps user-controlled strings in log lines and audit
// records.
const DefaultLogValueLength = 200

// SanitizeLogValue makes a user-controlled string safe to embed in a log
// line or audit record: newlines and tabs are escaped so forged entries
// cannot split lines, remaining control characters are dropped, and the
// result is truncated with an ellipsis beyond maxLength.
func SanitizeLogValue(s string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultLogValueLength
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if unicode.IsControl(r) || r == 0x7f {
				continue
			}
			b.WriteRune(r)
		}
	}

	out := b.String()
	runes := []rune(out)
	if len(runes) > maxLength {
		out = string(runes[:maxLength]) + "..."
	}
	return out
}
