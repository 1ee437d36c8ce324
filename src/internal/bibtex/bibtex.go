// Package bibtex implements a small BibTeX codec: parsing .bib files into
// records and serializing records back deterministically.
package bibtex

import (
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Field is a single name/value pair inside a record. Order is preserved.
type Field struct {
	Name  string
	Value string
}

// Record is one @type{key, ...} entry from a BibTeX file.
type Record struct {
	Type   string
	Key    string
	Fields []Field
}

// Get returns the value of the named field (case-insensitive), or "".
func (r *Record) Get(name string) string {
	for _, f := range r.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Set replaces the named field or appends it when absent.
func (r *Record) Set(name, value string) {
	for i, f := range r.Fields {
		if strings.EqualFold(f.Name, name) {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: strings.ToLower(name), Value: value})
}

// ParseFile reads and parses a .bib file.
func ParseFile(path string) ([]Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	recs, err := Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Parse parses BibTeX source. @comment, @preamble and @string blocks are
// skipped; everything outside an @ block is ignored as prose.
func Parse(src string) ([]Record, error) {
	p := &parser{src: src}
	var recs []Record
	for {
		rec, ok, err := p.next()
		if err != nil {
			return recs, err
		}
		if !ok {
			return recs, nil
		}
		recs = append(recs, rec)
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) next() (Record, bool, error) {
	for p.pos < len(p.src) && p.src[p.pos] != '@' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return Record{}, false, nil
	}
	p.pos++ // consume '@'
	typ := strings.ToLower(p.ident())
	if typ == "" {
		return Record{}, false, fmt.Errorf("bibtex: missing entry type at offset %d", p.pos)
	}
	p.skipSpace()
	open, close_ := byte('{'), byte('}')
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		open, close_ = '(', ')'
	}
	if p.pos >= len(p.src) || p.src[p.pos] != open {
		return Record{}, false, fmt.Errorf("bibtex: expected '%c' after @%s", open, typ)
	}
	p.pos++
	switch typ {
	case "comment", "preamble", "string":
		if err := p.skipBalanced(open, close_); err != nil {
			return Record{}, false, err
		}
		return p.next()
	}
	p.skipSpace()
	key := p.until(',', close_)
	key = strings.TrimSpace(key)
	if key == "" {
		return Record{}, false, fmt.Errorf("bibtex: @%s entry has no citation key", typ)
	}
	rec := Record{Type: typ, Key: key}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return rec, false, fmt.Errorf("bibtex: unterminated @%s{%s", typ, key)
		}
		if p.src[p.pos] == close_ {
			p.pos++
			return rec, true, nil
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		name := strings.ToLower(p.ident())
		if name == "" {
			return rec, false, fmt.Errorf("bibtex: bad field in @%s{%s at offset %d", typ, key, p.pos)
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			return rec, false, fmt.Errorf("bibtex: missing '=' for field %q in %s", name, key)
		}
		p.pos++
		val, err := p.value(close_)
		if err != nil {
			return rec, false, fmt.Errorf("bibtex: field %q in %s: %w", name, key, err)
		}
		rec.Fields = append(rec.Fields, Field{Name: name, Value: val})
	}
}

// value reads a field value: {braced}, "quoted", or bare (number/macro).
// Concatenation with '#' joins the parts.
func (p *parser) value(close_ byte) (string, error) {
	var parts []string
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return "", fmt.Errorf("unterminated value")
		}
		switch c := p.src[p.pos]; {
		case c == '{':
			s, err := p.braced()
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		case c == '"':
			s, err := p.quoted()
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		default:
			start := p.pos
			for p.pos < len(p.src) {
				c := p.src[p.pos]
				if c == ',' || c == close_ || c == '#' || unicode.IsSpace(rune(c)) {
					break
				}
				p.pos++
			}
			parts = append(parts, p.src[start:p.pos])
		}
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '#' {
			p.pos++
			continue
		}
		return normalizeSpace(strings.Join(parts, "")), nil
	}
}

func (p *parser) braced() (string, error) {
	// caller ensured p.src[p.pos] == '{'
	p.pos++
	start := p.pos
	depth := 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		}
		p.pos++
	}
	return "", fmt.Errorf("unbalanced braces")
}

func (p *parser) quoted() (string, error) {
	p.pos++
	start := p.pos
	depth := 0 // braces protect quotes inside quoted values
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated quoted value")
}

func (p *parser) skipBalanced(open, close_ byte) error {
	depth := 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case open:
			depth++
		case close_:
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	return fmt.Errorf("bibtex: unbalanced block")
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '{' || c == '(' || c == '=' || c == ',' || c == '}' || c == ')' || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) until(stops ...byte) string {
	start := p.pos
	for p.pos < len(p.src) {
		for _, s := range stops {
			if p.src[p.pos] == s {
				out := p.src[start:p.pos]
				if p.src[p.pos] == ',' {
					p.pos++
				}
				return out
			}
		}
		p.pos++
	}
	return p.src[start:]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
