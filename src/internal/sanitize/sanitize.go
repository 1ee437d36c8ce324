// Package sanitize cleans BibTeX field values for terminal display.
package sanitize

import (
	"strings"
)

// CleanString trims and removes ASCII control characters except tab/newline/
// carriage return up to max runes (if max <= 0, no truncation).
func CleanString(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || (r >= 0x20 && r != 0x7f) {
			b.WriteRune(r)
			if max > 0 && b.Len() >= max {
				break
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// accents are TeX accent commands whose argument should be kept as-is.
var accents = map[byte]bool{
	'"': true, '\'': true, '`': true, '^': true, '~': true, '=': true, '.': true,
	'u': true, 'v': true, 'H': true, 'c': true, 'k': true, 'b': true, 'd': true,
	'r': true, 't': true,
}

// StripTeX removes protective braces and common TeX accent/markup commands
// from a BibTeX value so titles and author names read cleanly in lists.
// It is lossy and intended for display only; raw field values stay untouched
// in the record.
func StripTeX(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{', '}':
			// protective grouping; drop
		case '~':
			b.WriteByte(' ')
		case '\\':
			if i+1 < len(s) {
				n := s[i+1]
				if accents[n] {
					i++ // drop the accent, keep its argument
					continue
				}
				if n == '&' || n == '%' || n == '_' || n == '#' || n == '$' {
					b.WriteByte(n)
					i++
					continue
				}
				// named command like \emph or \ss: skip the name
				j := i + 1
				for j < len(s) && isAlpha(s[j]) {
					j++
				}
				if j > i+1 {
					i = j - 1
					continue
				}
			}
		default:
			b.WriteByte(c)
		}
	}
	return CleanString(b.String(), 0)
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
