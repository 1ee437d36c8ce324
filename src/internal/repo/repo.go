// Package repo defines bibliography repositories: local BibTeX files found
// by glob, the remote dblp.org search, and the read-write output library.
package repo

import (
	"context"
	"errors"
	"log/slog"

	"bibrarian/src/internal/config"
	"bibrarian/src/internal/schema"
)

// ErrNoFile reports that a repository's glob matched nothing. The TUI shows
// this as a distinct "no file" status instead of failing startup.
var ErrNoFile = errors.New("repo: glob matches no file")

// Access describes whether a repository may be written to.
type Access string

const (
	ReadOnly  Access = "ro"
	ReadWrite Access = "rw"
)

// Repo is a searchable source of citations. Load must be called before
// Search; both honor the context for cancellation.
type Repo interface {
	// Source is the identity shown in the UI (glob expression or remote host).
	Source() string
	Access() Access
	Load(ctx context.Context) error
	Search(ctx context.Context, query string) ([]schema.Entry, error)
}

// FromConfig builds the repo set in display order: read-only repos first,
// then writable ones, mirroring the configuration layout. The returned
// enabled flags carry each repo's configured initial state. The logger
// receives per-file load diagnostics; nil discards them.
func FromConfig(cfg *config.Config, log *slog.Logger) (repos []Repo, enabled []bool, err error) {
	for _, rc := range cfg.RORepos {
		r, err := build(rc, ReadOnly, log)
		if err != nil {
			return nil, nil, err
		}
		repos = append(repos, r)
		enabled = append(enabled, rc.IsEnabled())
	}
	for _, rc := range cfg.RWRepos {
		r, err := build(rc, ReadWrite, log)
		if err != nil {
			return nil, nil, err
		}
		repos = append(repos, r)
		enabled = append(enabled, rc.IsEnabled())
	}
	return repos, enabled, nil
}

func build(rc config.RepoConfig, access Access, log *slog.Logger) (Repo, error) {
	if rc.Remote != "" {
		return NewDblpRepo(), nil
	}
	if access == ReadWrite {
		r := NewOutputRepo(rc.Glob)
		r.log = log
		return r, nil
	}
	r := NewBibtexRepo(rc.Glob)
	r.log = log
	return r, nil
}

// Outputs filters the writable repositories.
func Outputs(repos []Repo) []*OutputRepo {
	var out []*OutputRepo
	for _, r := range repos {
		if o, ok := r.(*OutputRepo); ok {
			out = append(out, o)
		}
	}
	return out
}
