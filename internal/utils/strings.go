package utils

import (
	"strings"
	"unicode"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePhone keeps only digits and drops a leading 52 country code from
// 12-digit Mexican numbers.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) == 12 && strings.HasPrefix(out, "52") {
		out = out[2:]
	}
	return out
}

// ValidPhone reports whether a normalized phone has exactly 10 digits.
func ValidPhone(s string) bool {
	return len(s) == 10
}

// NormalizeSeat uppercases and trims a seat number; "" means unassigned.
func NormalizeSeat(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FirstNonEmpty returns the first non-blank value, trimmed.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
