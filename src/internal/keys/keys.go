// Package keys writes selected citation keys to the key-mode output file.
package keys

import (
	"fmt"
	"strings"

	"bibrarian/src/internal/fsx"
)

// DefaultDelimiter joins keys one per line. The delimiter is configurable
// because editor integrations differ in how they split the file.
const DefaultDelimiter = "\n"

// Join renders the key list with the given delimiter. A newline delimiter
// also terminates the last line, so a single key reads back as "key\n".
func Join(ks []string, delim string) string {
	if delim == "" {
		delim = DefaultDelimiter
	}
	out := strings.Join(ks, delim)
	if out != "" && delim == "\n" {
		out += "\n"
	}
	return out
}

// Write emits the keys to path atomically. An empty key list still creates
// the file: to the reading side an empty file means "nothing selected",
// while a missing file means the write never happened.
func Write(path string, ks []string, delim string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("keys: empty output path")
	}
	return fsx.AtomicWrite(path, []byte(Join(ks, delim)), 0o644)
}

// Split parses a key file's content back into tokens. A newline delimiter
// splits on any whitespace; other delimiters split exactly.
func Split(content, delim string) []string {
	if delim == "" || delim == "\n" {
		return strings.Fields(content)
	}
	var out []string
	for _, k := range strings.Split(content, delim) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
