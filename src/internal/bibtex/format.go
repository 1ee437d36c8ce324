package bibtex

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// fieldOrder fixes the position of well-known fields in formatted output.
// Unknown fields follow alphabetically.
var fieldOrder = map[string]int{
	"author": 0, "editor": 1, "title": 2, "booktitle": 3, "journal": 4,
	"volume": 5, "number": 6, "pages": 7, "publisher": 8, "address": 9,
	"edition": 10, "year": 11, "month": 12, "doi": 13, "isbn": 14,
	"url": 15, "note": 16,
}

// Format renders the record as a BibTeX block with one field per line.
func (r *Record) Format() string {
	fields := make([]Field, len(r.Fields))
	copy(fields, r.Fields)
	sort.SliceStable(fields, func(i, j int) bool {
		oi, iknown := fieldOrder[fields[i].Name]
		oj, jknown := fieldOrder[fields[j].Name]
		switch {
		case iknown && jknown:
			return oi < oj
		case iknown:
			return true
		case jknown:
			return false
		default:
			return fields[i].Name < fields[j].Name
		}
	})
	var b bytes.Buffer
	fmt.Fprintf(&b, "@%s{%s,\n", r.Type, r.Key)
	for _, f := range fields {
		v := strings.TrimSpace(f.Value)
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", f.Name, v)
	}
	b.WriteString("}\n")
	return b.String()
}

// FormatDatabase renders records sorted by type then key, separated by
// blank lines, suitable for writing a whole library file.
func FormatDatabase(recs []Record) []byte {
	sorted := make([]Record, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Key < sorted[j].Key
	})
	var b bytes.Buffer
	for i, r := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Format())
	}
	return b.Bytes()
}
