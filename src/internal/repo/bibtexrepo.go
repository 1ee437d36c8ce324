package repo

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"bibrarian/src/internal/bibtex"
	"bibrarian/src/internal/fsx"
	"bibrarian/src/internal/logging"
	"bibrarian/src/internal/schema"
)

// BibtexRepo serves entries parsed from local .bib files matching a glob
// expression. Entries are immutable after Load, so Search needs no locking
// beyond the load guard.
type BibtexRepo struct {
	glob string
	log  *slog.Logger

	mu      sync.Mutex
	files   []string
	entries []schema.Entry
}

// NewBibtexRepo creates a read-only repository over the glob expression.
// ~ and environment variables in the expression are expanded at Load time.
func NewBibtexRepo(glob string) *BibtexRepo {
	return &BibtexRepo{glob: glob}
}

func (r *BibtexRepo) Source() string { return r.glob }

func (r *BibtexRepo) Access() Access { return ReadOnly }

func (r *BibtexRepo) logger() *slog.Logger {
	if r.log != nil {
		return r.log
	}
	return logging.Nop()
}

// Files lists the matched paths; valid after Load.
func (r *BibtexRepo) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.files
}

// Entries returns all parsed entries; valid after Load.
func (r *BibtexRepo) Entries() []schema.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

// Load resolves the glob and parses every matching file. Files that fail to
// parse are logged and skipped rather than failing the whole repository; a
// glob with no match returns ErrNoFile.
func (r *BibtexRepo) Load(ctx context.Context) error {
	matches, err := filepath.Glob(fsx.ExpandPath(r.glob))
	if err != nil {
		return err
	}
	var files []string
	var entries []schema.Entry
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		recs, err := bibtex.ParseFile(path)
		if err != nil {
			r.logger().Warn("skipping unparsable bibtex file", "path", path, "err", err)
			continue
		}
		files = append(files, path)
		for i := range recs {
			entries = append(entries, schema.FromRecord(&recs[i], path))
		}
	}
	r.mu.Lock()
	r.files, r.entries = files, entries
	r.mu.Unlock()
	if len(matches) == 0 {
		return ErrNoFile
	}
	return nil
}

// Search filters loaded entries with the shared keyword match semantics.
func (r *BibtexRepo) Search(ctx context.Context, query string) ([]schema.Entry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	keywords := strings.Fields(query)
	var out []schema.Entry
	for _, e := range r.Entries() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if e.Match(keywords) {
			out = append(out, e)
		}
	}
	return out, nil
}
