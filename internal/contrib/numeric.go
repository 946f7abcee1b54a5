package contrib

import (
	"strconv"
	"strings"
)

// ParseAmount extracts a decimal amount from a table cell. Source cells
// carry thousands separators, stray spaces, footnote markers and
// placeholder dashes; everything outside digits, dot and minus is dropped
// before parsing. Anything that does not reduce to a clean decimal is
// reported as missing, never as zero.
func ParseAmount(s string) (float64, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	switch clean {
	case "", ".", "-":
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// amount boxes a parsed cell, nil when missing.
func amount(cell string) *float64 {
	v, ok := ParseAmount(cell)
	if !ok {
		return nil
	}
	return &v
}
