package lookup

import (
	"context"
	"errors"
	"fmt"

	"catalog-report/internal/apperr"
	"catalog-report/internal/cache"
	"catalog-report/internal/classify"
	"catalog-report/internal/entity"
	"catalog-report/internal/logging"
)

// Online serves lookups from the live catalog and records every successful
// live body in the cache.
type Online struct {
	fetcher    Fetcher
	classifier Classifier
	store      cache.Store
}

// NewOnline builds the live coordinator.
func NewOnline(deps Deps) *Online {
	return &Online{
		fetcher:    deps.Fetcher,
		classifier: deps.Classifier,
		store:      deps.Store,
	}
}

// GetByName fetches and classifies name. A Found body is inserted into the
// cache unconditionally, even if records for name already exist.
func (o *Online) GetByName(ctx context.Context, name string) (classify.Result, error) {
	if o.fetcher == nil || o.classifier == nil {
		logging.Logf(logging.Warning, "Lookup: no catalog client or classifier configured, skipping '%s'", name)
		return classify.Result{Kind: classify.TransportError, Message: "lookup source not configured"}, nil
	}

	body, err := o.fetcher.FetchByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidValue) || errors.Is(err, apperr.ErrMissingValue) {
			return classify.Result{}, err
		}
		return classify.Result{Kind: classify.TransportError, Message: err.Error()}, nil
	}

	res := o.classifier.Classify(body)
	if !res.OK() {
		logging.Logf(logging.Info, "Lookup: '%s' classified as %s", name, res.Kind)
		return res, nil
	}

	if o.store != nil {
		if err := o.store.Insert(ctx, name, body); err != nil {
			logging.Logf(logging.Warning, "Lookup: caching '%s' failed: %v", name, err)
		} else {
			logging.Logf(logging.Debug, "Lookup: cached live body for '%s'", name)
		}
	}
	return res, nil
}

// IsCached reports whether the cache holds a record for exactly name.
// Storage errors are logged and reported as a miss.
func (o *Online) IsCached(ctx context.Context, name string) bool {
	if o.store == nil {
		return false
	}
	ok, err := o.store.Exists(ctx, name)
	if err != nil {
		logging.Logf(logging.Warning, "Lookup: cache check for '%s' failed: %v", name, err)
		return false
	}
	return ok
}

// GetByNameFromCache re-classifies the oldest cached body for name, so the
// result is identical to a fresh parse of that body.
func (o *Online) GetByNameFromCache(ctx context.Context, name string) (classify.Result, error) {
	if o.store == nil || o.classifier == nil {
		return classify.Result{Kind: classify.NoMatch, Message: "cache not configured"}, nil
	}
	body, found, err := o.store.FirstMatch(ctx, name)
	if err != nil {
		logging.Logf(logging.Warning, "Lookup: cache read for '%s' failed: %v", name, err)
		return classify.Result{Kind: classify.TransportError, Message: fmt.Sprintf("cache read failed: %v", err)}, nil
	}
	if !found {
		return classify.Result{Kind: classify.NoMatch, Message: "no cached record"}, nil
	}
	res := o.classifier.Classify(body)
	logging.Logf(logging.Debug, "Lookup: '%s' loaded from cache as %s", name, res.Kind)
	return res, nil
}

// ThumbnailPath returns "{path}/standard_large.{extension}".
func (o *Online) ThumbnailPath(e *entity.Entity) (string, bool) {
	if !e.HasThumbnail() {
		return "", false
	}
	return e.Thumbnail.Path + "/standard_large." + e.Thumbnail.Extension, true
}
