// Package schema defines the citation entry model shared by all repositories.
package schema

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"bibrarian/src/internal/bibtex"
	"bibrarian/src/internal/sanitize"
	"bibrarian/src/internal/stringsx"
)

// Entry is a single citation as shown in search results. Source identifies
// the repository it came from (a file path or a remote label). Record holds
// the full BibTeX data; for remote entries it stays nil until fetched.
type Entry struct {
	Key     string         `yaml:"key"`
	Type    string         `yaml:"type,omitempty"`
	Source  string         `yaml:"source"`
	Authors []string       `yaml:"authors"`
	Title   string         `yaml:"title"`
	Year    string         `yaml:"year,omitempty"`
	Venue   string         `yaml:"venue,omitempty"`
	URL     string         `yaml:"url,omitempty"`
	Record  *bibtex.Record `yaml:"-"`

	// RemoteID is the provider-side identifier needed to fetch the full
	// record lazily (the DBLP record path). Empty for local entries.
	RemoteID string `yaml:"-"`
}

const unknown = "Unknown"

// FromRecord builds a display entry from a parsed BibTeX record.
func FromRecord(rec *bibtex.Record, source string) Entry {
	e := Entry{
		Key:    rec.Key,
		Type:   rec.Type,
		Source: source,
		Title:  sanitize.StripTeX(rec.Get("title")),
		Year:   strings.TrimSpace(rec.Get("year")),
		URL:    strings.TrimSpace(rec.Get("url")),
		Record: rec,
	}
	e.Authors = SplitAuthors(rec.Get("author"))
	venue := stringsx.FirstNonEmpty(rec.Get("booktitle"), rec.Get("journal"))
	if venue == "" {
		if p := strings.TrimSpace(rec.Get("publisher")); p != "" {
			venue = "Publisher: " + p
		}
	}
	e.Venue = sanitize.StripTeX(venue)
	if e.Title == "" {
		e.Title = unknown
	}
	if e.Year == "" {
		e.Year = unknown
	}
	if e.Venue == "" {
		e.Venue = unknown
	}
	return e
}

// SplitAuthors splits a BibTeX author field on its "and" separator tokens
// and strips TeX markup from each name. Dangling separators and extra
// whitespace are dropped. An empty field yields ["Unknown"].
func SplitAuthors(field string) []string {
	var out []string
	var name []string
	flush := func() {
		if len(name) == 0 {
			return
		}
		if s := sanitize.StripTeX(strings.Join(name, " ")); s != "" {
			out = append(out, s)
		}
		name = name[:0]
	}
	for _, tok := range strings.Fields(field) {
		if tok == "and" {
			flush()
			continue
		}
		name = append(name, tok)
	}
	flush()
	if len(out) == 0 {
		return []string{unknown}
	}
	return out
}

// AbbrevAuthors renders a single author verbatim, otherwise "First et al".
func (e Entry) AbbrevAuthors() string {
	if len(e.Authors) == 0 {
		return unknown
	}
	if len(e.Authors) == 1 {
		return e.Authors[0]
	}
	return e.Authors[0] + " et al"
}

// UniqueKey disambiguates identical citation keys from different sources.
func (e Entry) UniqueKey() string {
	return e.Source + "::" + e.Key
}

// Match reports whether every keyword of at least 3 runes matches the title
// or some author, case-insensitively. Queries with no such keyword are
// trivial and match nothing.
func (e Entry) Match(keywords []string) bool {
	trivial := true
	title := strings.ToUpper(e.Title)
	for _, kw := range keywords {
		if len([]rune(kw)) < 3 {
			continue
		}
		trivial = false
		up := strings.ToUpper(kw)
		if strings.Contains(title, up) {
			continue
		}
		matched := false
		for _, a := range e.Authors {
			if strings.Contains(strings.ToUpper(a), up) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return !trivial
}

// DblpKey derives a citation key from a DBLP record path such as
// "conf/oopsla/Smith20": the basename plus the first four hex digits of the
// path's SHA-1, upper-cased, to keep keys short but collision-resistant.
func DblpKey(flatKey string) string {
	base := flatKey
	if i := strings.LastIndexByte(flatKey, '/'); i >= 0 {
		base = flatKey[i+1:]
	}
	sum := sha1.Sum([]byte(flatKey))
	return base + ":" + strings.ToUpper(hex.EncodeToString(sum[:])[:4])
}
