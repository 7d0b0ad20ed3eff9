// Package facade is the single entry point for callers. It owns the current
// entity and report URL, the cache confirmation slot, and listener fan-out.
//
// A Facade is not safe for concurrent use. A listener that starts another
// lookup or publish from inside a notification re-enters on the same stack.
package facade

import (
	"context"
	"errors"
	"fmt"
	"io"

	"catalog-report/internal/apperr"
	"catalog-report/internal/classify"
	"catalog-report/internal/entity"
	"catalog-report/internal/logging"
	"catalog-report/internal/lookup"
	"catalog-report/internal/paste"
	"catalog-report/internal/report"
)

// ErrNoEntity is returned by PublishReport when nothing has been looked up.
var ErrNoEntity = errors.New("no current entity to publish")

type Facade struct {
	coord     lookup.Coordinator
	publisher paste.Publisher
	store     io.Closer

	state     State
	result    classify.Result
	current   *entity.Entity
	reportURL string
	listeners []Listener
}

// New builds a facade. store is the cache handle owned by the facade and
// closed by Close; it may be nil.
func New(coord lookup.Coordinator, publisher paste.Publisher, store io.Closer) *Facade {
	return &Facade{
		coord:     coord,
		publisher: publisher,
		store:     store,
		state:     Idle{},
	}
}

// Search runs the confirmation protocol for name:
//   - name is the one awaiting confirmation: force a live lookup.
//   - name is cached: return NeedsConfirmation and remember name.
//   - otherwise: live lookup.
func (f *Facade) Search(ctx context.Context, name string) (Outcome, error) {
	if err := apperr.RequireName(name); err != nil {
		return Searched, err
	}

	if st, ok := f.state.(AwaitingConfirmation); ok && st.Name == name {
		logging.Logf(logging.Info, "Facade: '%s' searched again, bypassing cache", name)
		return Searched, f.Lookup(ctx, name)
	}

	if f.coord.IsCached(ctx, name) {
		logging.Logf(logging.Info, "Facade: '%s' is cached, awaiting confirmation", name)
		f.state = AwaitingConfirmation{Name: name}
		return NeedsConfirmation, nil
	}

	return Searched, f.Lookup(ctx, name)
}

// Lookup clears the confirmation slot, performs a live lookup, replaces the
// current entity (with nil when nothing was found) and notifies listeners.
func (f *Facade) Lookup(ctx context.Context, name string) error {
	if err := apperr.RequireName(name); err != nil {
		return err
	}
	// The slot is cleared even if the coordinator rejects the name.
	f.state = Idle{}
	res, err := f.coord.GetByName(ctx, name)
	if err != nil {
		return err
	}
	f.setResult(res)
	return nil
}

// LoadFromCache clears the confirmation slot and loads name from the cache,
// whatever the slot held.
func (f *Facade) LoadFromCache(ctx context.Context, name string) error {
	if err := apperr.RequireName(name); err != nil {
		return err
	}
	f.state = Idle{}
	res, err := f.coord.GetByNameFromCache(ctx, name)
	if err != nil {
		return err
	}
	f.setResult(res)
	return nil
}

func (f *Facade) setResult(res classify.Result) {
	f.result = res
	f.current = nil
	if res.OK() {
		f.current = res.Entity
	}
	for _, l := range f.listeners {
		l.EntityUpdated(f)
	}
}

// PublishReport formats the current entity and publishes it. The stored URL is
// replaced with the publisher's result, or cleared on failure, and listeners
// are notified either way.
func (f *Facade) PublishReport(ctx context.Context) error {
	if f.current == nil {
		return ErrNoEntity
	}
	if f.publisher == nil {
		return fmt.Errorf("no publisher configured: %w", apperr.ErrMissingValue)
	}

	text, _ := report.Format(f.current)
	err := f.publisher.Publish(ctx, f.current, text)
	f.reportURL = ""
	if err == nil {
		f.reportURL, _ = f.publisher.LastURL()
	} else {
		logging.Logf(logging.Warning, "Facade: publishing '%s' failed: %v", f.current.Name, err)
	}

	for _, l := range f.listeners {
		l.ReportURLUpdated(f)
	}
	return err
}

// Entity returns the current entity, or nil.
func (f *Facade) Entity() *entity.Entity {
	return f.current
}

// Result returns the classification of the most recent lookup.
func (f *Facade) Result() classify.Result {
	return f.result
}

// ReportURL returns the last published report URL.
func (f *Facade) ReportURL() (string, bool) {
	return f.reportURL, f.reportURL != ""
}

// ThumbnailPath returns the large thumbnail URL of the current entity.
func (f *Facade) ThumbnailPath() (string, bool) {
	return f.coord.ThumbnailPath(f.current)
}

// State returns the confirmation slot.
func (f *Facade) State() State {
	return f.state
}

// AddListener registers l. Listeners cannot be removed.
func (f *Facade) AddListener(l Listener) {
	f.listeners = append(f.listeners, l)
}

// Close releases the cache store.
func (f *Facade) Close() error {
	if f.store == nil {
		return nil
	}
	return f.store.Close()
}
