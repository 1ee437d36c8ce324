// Package stringsx holds small string helpers shared across packages.
package stringsx

import "strings"

// FirstNonEmpty returns the first value that is non-empty after trimming,
// or "" when all are blank. Used for field fallback chains.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
