package facade

import (
	"context"
	"errors"
	"testing"

	"catalog-report/internal/apperr"
	"catalog-report/internal/classify"
	"catalog-report/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockCoordinator struct {
	mock.Mock
}

func (m *mockCoordinator) GetByName(ctx context.Context, name string) (classify.Result, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(classify.Result), args.Error(1)
}

func (m *mockCoordinator) IsCached(ctx context.Context, name string) bool {
	return m.Called(ctx, name).Bool(0)
}

func (m *mockCoordinator) GetByNameFromCache(ctx context.Context, name string) (classify.Result, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(classify.Result), args.Error(1)
}

func (m *mockCoordinator) ThumbnailPath(e *entity.Entity) (string, bool) {
	args := m.Called(e)
	return args.String(0), args.Bool(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e *entity.Entity, report string) error {
	return m.Called(ctx, e, report).Error(0)
}

func (m *mockPublisher) LastURL() (string, bool) {
	args := m.Called()
	return args.String(0), args.Bool(1)
}

type mockCloser struct {
	mock.Mock
}

func (m *mockCloser) Close() error {
	return m.Called().Error(0)
}

// recorder is a listener that logs the order of notifications.
type recorder struct {
	id     string
	events *[]string
}

func (r recorder) EntityUpdated(*Facade)    { *r.events = append(*r.events, r.id+":entity") }
func (r recorder) ReportURLUpdated(*Facade) { *r.events = append(*r.events, r.id+":url") }

var (
	ctx  = context.Background()
	hulk = &entity.Entity{ID: 1009351, Name: "Hulk"}
	thor = &entity.Entity{ID: 1009664, Name: "Thor"}
)

func found(e *entity.Entity) classify.Result {
	return classify.Result{Kind: classify.Found, Entity: e}
}

func TestNameValidation(t *testing.T) {
	coord := &mockCoordinator{}
	f := New(coord, nil, nil)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := f.Search(ctx, name)
		assert.ErrorIs(t, err, apperr.ErrInvalidValue)
		assert.ErrorIs(t, f.Lookup(ctx, name), apperr.ErrInvalidValue)
		assert.ErrorIs(t, f.LoadFromCache(ctx, name), apperr.ErrInvalidValue)
	}
	coord.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	coord.AssertNotCalled(t, "IsCached", mock.Anything, mock.Anything)
	coord.AssertNotCalled(t, "GetByNameFromCache", mock.Anything, mock.Anything)
}

func TestSearch_NotCachedGoesLive(t *testing.T) {
	coord := &mockCoordinator{}
	coord.On("IsCached", ctx, "Hulk").Return(false).Once()
	coord.On("GetByName", ctx, "Hulk").Return(found(hulk), nil).Once()

	f := New(coord, nil, nil)
	var events []string
	f.AddListener(recorder{"a", &events})

	outcome, err := f.Search(ctx, "Hulk")
	require.NoError(t, err)
	assert.Equal(t, Searched, outcome)
	assert.Same(t, hulk, f.Entity())
	assert.Equal(t, Idle{}, f.State())
	assert.Equal(t, []string{"a:entity"}, events)
	coord.AssertExpectations(t)
}

func TestSearch_ConfirmationProtocol(t *testing.T) {
	coord := &mockCoordinator{}
	coord.On("IsCached", ctx, "Hulk").Return(true)
	coord.On("IsCached", ctx, "Thor").Return(true)
	coord.On("GetByName", ctx, "Hulk").Return(found(hulk), nil).Once()

	f := New(coord, nil, nil)
	var events []string
	f.AddListener(recorder{"a", &events})

	// Cached: offer the choice, touch nothing.
	outcome, err := f.Search(ctx, "Hulk")
	require.NoError(t, err)
	assert.Equal(t, NeedsConfirmation, outcome)
	assert.Equal(t, AwaitingConfirmation{Name: "Hulk"}, f.State())
	assert.Nil(t, f.Entity())
	assert.Empty(t, events)
	coord.AssertNotCalled(t, "GetByName", ctx, "Hulk")

	// Same name again: forced live lookup, slot cleared.
	outcome, err = f.Search(ctx, "Hulk")
	require.NoError(t, err)
	assert.Equal(t, Searched, outcome)
	assert.Same(t, hulk, f.Entity())
	assert.Equal(t, Idle{}, f.State())
	assert.Equal(t, []string{"a:entity"}, events)

	// Idle again, so a cached name asks for confirmation once more.
	outcome, err = f.Search(ctx, "Hulk")
	require.NoError(t, err)
	assert.Equal(t, NeedsConfirmation, outcome)

	// A different name resets the process.
	outcome, err = f.Search(ctx, "Thor")
	require.NoError(t, err)
	assert.Equal(t, NeedsConfirmation, outcome)
	assert.Equal(t, AwaitingConfirmation{Name: "Thor"}, f.State())
	coord.AssertNumberOfCalls(t, "GetByName", 1)
}

func TestSearch_DifferentUncachedNameClearsSlot(t *testing.T) {
	coord := &mockCoordinator{}
	coord.On("IsCached", ctx, "Hulk").Return(true)
	coord.On("IsCached", ctx, "Thor").Return(false)
	coord.On("GetByName", ctx, "Thor").Return(found(thor), nil).Once()

	f := New(coord, nil, nil)
	_, err := f.Search(ctx, "Hulk")
	require.NoError(t, err)
	require.Equal(t, AwaitingConfirmation{Name: "Hulk"}, f.State())

	outcome, err := f.Search(ctx, "Thor")
	require.NoError(t, err)
	assert.Equal(t, Searched, outcome)
	assert.Equal(t, Idle{}, f.State())
	assert.Same(t, thor, f.Entity())
}

func TestSearch_RejectedDifferentNameStillResetsSlot(t *testing.T) {
	coord := &mockCoordinator{}
	invalid := errors.Join(errors.New("name contains a space"), apperr.ErrInvalidValue)
	coord.On("IsCached", ctx, "Hulk").Return(true)
	coord.On("IsCached", ctx, "Iron Man").Return(false)
	coord.On("GetByName", ctx, "Iron Man").Return(classify.Result{}, invalid).Once()

	f := New(coord, nil, nil)
	outcome, err := f.Search(ctx, "Hulk")
	require.NoError(t, err)
	require.Equal(t, NeedsConfirmation, outcome)

	_, err = f.Search(ctx, "Iron Man")
	assert.ErrorIs(t, err, apperr.ErrInvalidValue)
	assert.Equal(t, Idle{}, f.State())

	// The earlier offer was reset, so Hulk is offered from cache again.
	outcome, err = f.Search(ctx, "Hulk")
	require.NoError(t, err)
	assert.Equal(t, NeedsConfirmation, outcome)
	assert.Equal(t, AwaitingConfirmation{Name: "Hulk"}, f.State())
	coord.AssertNotCalled(t, "GetByName", ctx, "Hulk")
}

func TestLoadFromCache_ErrorStillClearsSlot(t *testing.T) {
	coord := &mockCoordinator{}
	coord.On("IsCached", ctx, "Hulk").Return(true)
	coord.On("GetByNameFromCache", ctx, "Hulk").Return(classify.Result{}, apperr.ErrInvalidValue).Once()

	f := New(coord, nil, nil)
	_, err := f.Search(ctx, "Hulk")
	require.NoError(t, err)

	assert.ErrorIs(t, f.LoadFromCache(ctx, "Hulk"), apperr.ErrInvalidValue)
	assert.Equal(t, Idle{}, f.State())
}

func TestLoadFromCache(t *testing.T) {
	coord := &mockCoordinator{}
	coord.On("IsCached", ctx, "Hulk").Return(true)
	coord.On("GetByNameFromCache", ctx, "Hulk").Return(found(hulk), nil)

	f := New(coord, nil, nil)
	var events []string
	f.AddListener(recorder{"a", &events})

	_, err := f.Search(ctx, "Hulk")
	require.NoError(t, err)

	require.NoError(t, f.LoadFromCache(ctx, "Hulk"))
	assert.Same(t, hulk, f.Entity())
	assert.Equal(t, Idle{}, f.State())
	assert.Equal(t, []string{"a:entity"}, events)

	// Loading works without a pending confirmation too.
	require.NoError(t, f.LoadFromCache(ctx, "Hulk"))
	coord.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
}

func TestLookup_NotFoundReplacesEntity(t *testing.T) {
	coord := &mockCoordinator{}
	coord.On("GetByName", ctx, "Hulk").Return(found(hulk), nil).Once()
	coord.On("GetByName", ctx, "Nobody").Return(classify.Result{Kind: classify.NoMatch}, nil).Once()

	f := New(coord, nil, nil)
	var events []string
	f.AddListener(recorder{"a", &events})

	require.NoError(t, f.Lookup(ctx, "Hulk"))
	require.NoError(t, f.Lookup(ctx, "Nobody"))
	assert.Nil(t, f.Entity())
	assert.Equal(t, classify.NoMatch, f.Result().Kind)
	assert.Equal(t, []string{"a:entity", "a:entity"}, events)
}

func TestLookup_StructuralErrorPropagates(t *testing.T) {
	coord := &mockCoordinator{}
	invalid := errors.Join(errors.New("name contains a space"), apperr.ErrInvalidValue)
	coord.On("GetByName", ctx, "Iron Man").Return(classify.Result{}, invalid)

	f := New(coord, nil, nil)
	var events []string
	f.AddListener(recorder{"a", &events})

	assert.ErrorIs(t, f.Lookup(ctx, "Iron Man"), apperr.ErrInvalidValue)
	assert.Empty(t, events)
}

func TestListenersNotifiedInOrder(t *testing.T) {
	coord := &mockCoordinator{}
	coord.On("GetByName", ctx, "Hulk").Return(found(hulk), nil)
	pub := &mockPublisher{}
	pub.On("Publish", ctx, hulk, mock.AnythingOfType("string")).Return(nil)
	pub.On("LastURL").Return("https://pastebin.com/abc", true)

	f := New(coord, pub, nil)
	var events []string
	f.AddListener(recorder{"first", &events})
	f.AddListener(recorder{"second", &events})
	f.AddListener(ListenerFuncs{OnEntity: func(got *Facade) {
		assert.Same(t, f, got)
		assert.Same(t, hulk, got.Entity(), "state is updated before notification")
		events = append(events, "func:entity")
	}})

	require.NoError(t, f.Lookup(ctx, "Hulk"))
	require.NoError(t, f.PublishReport(ctx))

	assert.Equal(t, []string{
		"first:entity", "second:entity", "func:entity",
		"first:url", "second:url",
	}, events)
}

func TestPublishReport(t *testing.T) {
	t.Run("No Entity", func(t *testing.T) {
		pub := &mockPublisher{}
		f := New(&mockCoordinator{}, pub, nil)
		assert.ErrorIs(t, f.PublishReport(ctx), ErrNoEntity)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		_, ok := f.ReportURL()
		assert.False(t, ok)
	})

	t.Run("Success Stores URL", func(t *testing.T) {
		coord := &mockCoordinator{}
		coord.On("GetByName", ctx, "Hulk").Return(found(hulk), nil)
		pub := &mockPublisher{}
		pub.On("Publish", ctx, hulk, mock.MatchedBy(func(text string) bool {
			return len(text) > 0
		})).Return(nil)
		pub.On("LastURL").Return("https://pastebin.com/abc", true)

		f := New(coord, pub, nil)
		require.NoError(t, f.Lookup(ctx, "Hulk"))
		require.NoError(t, f.PublishReport(ctx))

		u, ok := f.ReportURL()
		assert.True(t, ok)
		assert.Equal(t, "https://pastebin.com/abc", u)
		pub.AssertExpectations(t)
	})

	t.Run("Failure Clears URL", func(t *testing.T) {
		coord := &mockCoordinator{}
		coord.On("GetByName", ctx, "Hulk").Return(found(hulk), nil)
		pub := &mockPublisher{}
		pub.On("Publish", ctx, hulk, mock.Anything).Return(nil).Once()
		pub.On("LastURL").Return("https://pastebin.com/abc", true).Once()
		pub.On("Publish", ctx, hulk, mock.Anything).Return(errors.New("status 500")).Once()

		f := New(coord, pub, nil)
		var events []string
		f.AddListener(recorder{"a", &events})

		require.NoError(t, f.Lookup(ctx, "Hulk"))
		require.NoError(t, f.PublishReport(ctx))
		assert.Error(t, f.PublishReport(ctx))

		_, ok := f.ReportURL()
		assert.False(t, ok)
		assert.Equal(t, []string{"a:entity", "a:url", "a:url"}, events)
	})
}

func TestThumbnailPath(t *testing.T) {
	coord := &mockCoordinator{}
	coord.On("GetByName", ctx, "Hulk").Return(found(hulk), nil)
	coord.On("ThumbnailPath", hulk).Return("http://img/hulk/standard_large.jpg", true)

	f := New(coord, nil, nil)
	require.NoError(t, f.Lookup(ctx, "Hulk"))
	path, ok := f.ThumbnailPath()
	assert.True(t, ok)
	assert.Equal(t, "http://img/hulk/standard_large.jpg", path)
}

func TestClose(t *testing.T) {
	closer := &mockCloser{}
	closer.On("Close").Return(nil).Once()
	f := New(&mockCoordinator{}, nil, closer)
	assert.NoError(t, f.Close())
	closer.AssertExpectations(t)

	assert.NoError(t, New(&mockCoordinator{}, nil, nil).Close())
}
