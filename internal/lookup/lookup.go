// Package lookup decides whether a lookup is served from the live catalog or
// the cache, and hides that choice behind one Coordinator contract.
package lookup

import (
	"context"

	"catalog-report/internal/cache"
	"catalog-report/internal/classify"
	"catalog-report/internal/entity"
)

// Fetcher returns the raw lookup body for name. Implemented by *catalog.Client.
type Fetcher interface {
	FetchByName(ctx context.Context, name string) ([]byte, error)
}

// Classifier turns a raw body into a typed result. Implemented by classify.JSON.
type Classifier interface {
	Classify(body []byte) classify.Result
}

// Coordinator is the lookup capability the facade depends on.
//
// Errors are returned only for structural problems with the argument
// (apperr.ErrInvalidValue); every network, parse or storage failure is
// reported through the Result kind instead.
type Coordinator interface {
	GetByName(ctx context.Context, name string) (classify.Result, error)
	IsCached(ctx context.Context, name string) bool
	GetByNameFromCache(ctx context.Context, name string) (classify.Result, error)
	ThumbnailPath(e *entity.Entity) (string, bool)
}

// Deps are the collaborators a coordinator may use. Any of them may be nil.
type Deps struct {
	Fetcher    Fetcher
	Classifier Classifier
	Store      cache.Store
}
