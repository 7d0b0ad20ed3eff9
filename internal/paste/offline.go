package paste

import (
	"context"
	"fmt"

	"catalog-report/internal/apperr"
	"catalog-report/internal/entity"
)

// PlaceholderURL is what the offline publisher reports as its paste URL.
const PlaceholderURL = "https://pastebin.com/offline-placeholder"

// Offline accepts any report for a non-nil entity without a network call.
type Offline struct{}

// NewOffline returns a publisher that never leaves the process.
func NewOffline() *Offline {
	return &Offline{}
}

// Publish fails only when e is nil.
func (Offline) Publish(_ context.Context, e *entity.Entity, _ string) error {
	if e == nil {
		return fmt.Errorf("nothing to publish: %w", apperr.ErrMissingValue)
	}
	return nil
}

// LastURL always returns PlaceholderURL.
func (Offline) LastURL() (string, bool) {
	return PlaceholderURL, true
}
