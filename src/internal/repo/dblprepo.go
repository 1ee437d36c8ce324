package repo

import (
	"context"

	"bibrarian/src/internal/dblp"
	"bibrarian/src/internal/schema"
)

// DblpRepo proxies the remote dblp.org search. There is nothing to load;
// every search is a live API call.
type DblpRepo struct{}

func NewDblpRepo() *DblpRepo { return &DblpRepo{} }

func (r *DblpRepo) Source() string { return dblp.Source }

func (r *DblpRepo) Access() Access { return ReadOnly }

func (r *DblpRepo) Load(ctx context.Context) error { return nil }

func (r *DblpRepo) Search(ctx context.Context, query string) ([]schema.Entry, error) {
	return dblp.Search(ctx, query)
}
