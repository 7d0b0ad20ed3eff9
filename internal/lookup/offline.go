package lookup

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"catalog-report/internal/classify"
	"catalog-report/internal/entity"
)

//go:embed fixture/sample.json
var samplePayload []byte

// Offline answers every lookup with one bundled fixture entity. It never
// touches the network or the cache, whatever Deps it was given.
type Offline struct {
	once    sync.Once
	fixture classify.Result
}

// NewOffline builds the fixture coordinator. deps is accepted so both
// variants are constructed the same way; it is ignored.
func NewOffline(_ Deps) *Offline {
	return &Offline{}
}

func (o *Offline) load() classify.Result {
	o.once.Do(func() {
		// Same extraction rules as live bodies.
		o.fixture = classify.Classify(samplePayload)
		if !o.fixture.OK() {
			panic(fmt.Sprintf("bundled lookup fixture does not classify as found: %s", o.fixture.Kind))
		}
	})
	return o.fixture
}

// GetByName returns the fixture regardless of name.
func (o *Offline) GetByName(_ context.Context, _ string) (classify.Result, error) {
	return o.load(), nil
}

// IsCached is always false: the offline variant has no cache.
func (o *Offline) IsCached(_ context.Context, _ string) bool {
	return false
}

// GetByNameFromCache returns the fixture regardless of name.
func (o *Offline) GetByNameFromCache(_ context.Context, _ string) (classify.Result, error) {
	return o.load(), nil
}

// ThumbnailPath is always absent so callers fall back to a placeholder image.
func (o *Offline) ThumbnailPath(_ *entity.Entity) (string, bool) {
	return "", false
}
