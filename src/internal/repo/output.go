package repo

import (
	"context"
	"fmt"
	"path/filepath"

	"bibrarian/src/internal/bibtex"
	"bibrarian/src/internal/fsx"
	"bibrarian/src/internal/schema"
)

// OutputRepo is the read-write target library. It is searched like any
// local repository, and on write-and-quit the selected entries are merged
// into it. The glob must match at most one file; when it matches none the
// expression itself names the file to create.
type OutputRepo struct {
	BibtexRepo
	target string
}

func NewOutputRepo(glob string) *OutputRepo {
	return &OutputRepo{BibtexRepo: BibtexRepo{glob: glob}, target: ""}
}

func (r *OutputRepo) Access() Access { return ReadWrite }

// Load resolves the glob like BibtexRepo but enforces the single-target
// rule. ErrNoFile is not an error here: the file is created on first write.
func (r *OutputRepo) Load(ctx context.Context) error {
	err := r.BibtexRepo.Load(ctx)
	if err != nil && err != ErrNoFile {
		return err
	}
	files := r.Files()
	if len(files) > 1 {
		return fmt.Errorf("repo: output glob %q matches %d files, want one", r.glob, len(files))
	}
	if len(files) == 1 {
		r.target = files[0]
	} else {
		r.target = filepath.Clean(fsx.ExpandPath(r.glob))
	}
	return nil
}

// Target is the file the library is written to; valid after Load.
func (r *OutputRepo) Target() string { return r.target }

// Write merges the existing library with the selected entries and writes
// the result atomically. Selected entries override existing ones with the
// same citation key. Any selected entry whose BibTeX record is still
// missing (a remote entry whose fetch has not finished) aborts the write.
func (r *OutputRepo) Write(selected []schema.Entry) error {
	if r.target == "" {
		return fmt.Errorf("repo: output repository not loaded")
	}
	merged := map[string]bibtex.Record{}
	var order []string
	for _, e := range r.Entries() {
		if e.Record == nil {
			continue
		}
		if _, ok := merged[e.Key]; !ok {
			order = append(order, e.Key)
		}
		merged[e.Key] = *e.Record
	}
	for _, e := range selected {
		if e.Record == nil {
			return fmt.Errorf("repo: entry %s has no bibtex record yet; not writing", e.Key)
		}
		if _, ok := merged[e.Key]; !ok {
			order = append(order, e.Key)
		}
		merged[e.Key] = *e.Record
	}
	recs := make([]bibtex.Record, 0, len(order))
	for _, k := range order {
		recs = append(recs, merged[k])
	}
	return fsx.AtomicWrite(r.target, bibtex.FormatDatabase(recs), 0o644)
}
