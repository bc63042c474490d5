// Package normalize converts decorated upstream count fields into plain
// numbers. Upstream values arrive as strings like "2,000+", "14▲" or "-5▼"
// as often as they arrive as JSON numbers.
package normalize

import (
	"strconv"
	"strings"
)

// ParseCount extracts a signed integer from a decorated count string.
// Thousands separators, trend arrows and unit suffixes are stripped; a
// leading minus sign or a ▼ arrow marks the value negative. Returns def
// when the string carries no digits at all.
func ParseCount(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	negative := strings.HasPrefix(s, "-") || strings.Contains(s, "▼")

	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return def
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return def
	}
	if negative {
		return -n
	}
	return n
}

// ParseFloat is ParseCount for decimal values; it keeps a single decimal
// point in addition to digits.
func ParseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	negative := strings.HasPrefix(s, "-") || strings.Contains(s, "▼")

	var b strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot && b.Len() > 0:
			b.WriteRune(r)
			seenDot = true
		}
	}
	cleaned := strings.TrimSuffix(b.String(), ".")
	if cleaned == "" {
		return def
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return def
	}
	if negative {
		return -f
	}
	return f
}
