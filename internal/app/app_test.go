package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalog-report/internal/apperr"
	"catalog-report/internal/auth"
	"catalog-report/internal/cache"
	"catalog-report/internal/classify"
	"catalog-report/internal/config"
	"catalog-report/internal/facade"
	"catalog-report/internal/lookup"
	"catalog-report/internal/paste"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const hulkBody = `{"code":200,"status":"Ok","data":{"count":1,"results":[{"id":1009351,"name":"Hulk","description":"Green.","thumbnail":{"path":"http://img/hulk","extension":"jpg"}}]}}`

// --- Mocks ---

// mockConfigLoader allows controlling config loading results.
type mockConfigLoader struct {
	mock.Mock
}

func (m *mockConfigLoader) Load(filename string) (*config.Config, error) {
	args := m.Called(filename)
	cfg, _ := args.Get(0).(*config.Config)
	return cfg, args.Error(1)
}

// mockFacadeFactory returns whatever facade the test configured.
type mockFacadeFactory struct {
	mock.Mock
}

func (m *mockFacadeFactory) New(cfg *config.Config) (*facade.Facade, error) {
	args := m.Called(cfg)
	f, _ := args.Get(0).(*facade.Facade)
	return f, args.Error(1)
}

// stubFetcher serves one canned body and counts calls.
type stubFetcher struct {
	body  string
	calls int
}

func (s *stubFetcher) FetchByName(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return []byte(s.body), nil
}

// Helper to create a temporary config file
func createTempYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test_config.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

type harness struct {
	runner  *AppRunner
	loader  *mockConfigLoader
	factory *mockFacadeFactory
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

func newHarness(stdin string) *harness {
	h := &harness{
		loader:  new(mockConfigLoader),
		factory: new(mockFacadeFactory),
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
	}
	h.runner = NewAppRunnerWithOpts(AppRunnerOpts{
		ConfigLoader:  h.loader,
		FacadeFactory: h.factory,
		Stdin:         strings.NewReader(stdin),
		Stdout:        h.stdout,
		Stderr:        h.stderr,
	})
	return h
}

// onlineFacade builds a facade over a memory cache, optionally seeded with the Hulk body.
func onlineFacade(t *testing.T, seeded bool) (*facade.Facade, *stubFetcher) {
	t.Helper()
	store := cache.NewMemory()
	if seeded {
		require.NoError(t, store.Insert(context.Background(), "Hulk", []byte(hulkBody)))
	}
	fetcher := &stubFetcher{body: hulkBody}
	coord := lookup.NewOnline(lookup.Deps{Fetcher: fetcher, Classifier: classify.JSON{}, Store: store})
	return facade.New(coord, paste.NewOffline(), store), fetcher
}

// --- Tests ---

func TestAppRunner_Run_Help(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"Help Flag Long", []string{"--help"}},
		{"Help Flag Short", []string{"-help"}},
		{"No Args", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness("")
			err := h.runner.Run(tc.args)
			assert.NoError(t, err, "Running with help/no args should not produce an error")
			assert.Contains(t, h.stderr.String(), "Usage:")
			assert.Contains(t, h.stderr.String(), "-name string")
		})
	}
}

func TestAppRunner_Run_FlagErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"Invalid Flag", []string{"--invalid-flag"}},
		{"Flag Needs Argument", []string{"-config"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := newHarness("").runner.Run(tc.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUsage)
		})
	}
}

func TestAppRunner_Run_ConfigErrors(t *testing.T) {
	t.Run("Config Not Found", func(t *testing.T) {
		h := newHarness("")
		err := h.runner.Run([]string{"-config", "nonexistent.yaml", "-name", "Hulk"})
		assert.ErrorIs(t, err, ErrConfigNotFound)
		h.loader.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("Config Load Error", func(t *testing.T) {
		h := newHarness("")
		dummyFile := createTempYAML(t, "invalid yaml:")
		loadErr := errors.New("mock yaml parse error")
		h.loader.On("Load", dummyFile).Return(nil, loadErr).Once()

		err := h.runner.Run([]string{"-config", dummyFile, "-name", "Hulk"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), loadErr.Error())
		h.loader.AssertExpectations(t)
	})

	t.Run("Explicit Config Must Exist Even Offline", func(t *testing.T) {
		h := newHarness("")
		err := h.runner.Run([]string{"-offline", "-config", "nonexistent.yaml", "-name", "Hulk"})
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})
}

func TestAppRunner_Run_NameValidation(t *testing.T) {
	dummyFile := createTempYAML(t, "mode: online\n")

	t.Run("Absent Name", func(t *testing.T) {
		h := newHarness("")
		h.loader.On("Load", dummyFile).Return(config.Default(), nil).Once()
		err := h.runner.Run([]string{"-config", dummyFile})
		assert.ErrorIs(t, err, ErrMissingArgs)
		assert.ErrorIs(t, err, apperr.ErrMissingValue)
		h.factory.AssertNotCalled(t, "New", mock.Anything)
	})

	t.Run("Blank Name", func(t *testing.T) {
		h := newHarness("")
		f, fetcher := onlineFacade(t, false)
		h.loader.On("Load", dummyFile).Return(config.Default(), nil).Once()
		h.factory.On("New", mock.Anything).Return(f, nil).Once()
		err := h.runner.Run([]string{"-config", dummyFile, "-name", "  "})
		assert.ErrorIs(t, err, apperr.ErrInvalidValue)
		assert.Zero(t, fetcher.calls)
	})
}

func TestAppRunner_Run_Lookup(t *testing.T) {
	dummyFile := createTempYAML(t, "mode: online\n")

	testCases := []struct {
		name          string
		args          []string
		stdin         string
		seeded        bool
		expectFetches int
		expectPrompt  bool
	}{
		{"Not Cached Goes Live", []string{"-name", "Hulk"}, "", false, 1, false},
		{"Cached Prompt Accept", []string{"-name", "Hulk"}, "y\n", true, 0, true},
		{"Cached Prompt Empty Answer Accepts", []string{"-name", "Hulk"}, "\n", true, 0, true},
		{"Cached Prompt No Input Accepts", []string{"-name", "Hulk"}, "", true, 0, true},
		{"Cached Prompt Decline Forces Live", []string{"-name", "Hulk"}, "no\n", true, 1, true},
		{"Cached Yes Flag Skips Prompt", []string{"-name", "Hulk", "-yes"}, "", true, 0, false},
		{"Cache Flag", []string{"-name", "Hulk", "-cache"}, "", true, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(tc.stdin)
			f, fetcher := onlineFacade(t, tc.seeded)
			h.loader.On("Load", dummyFile).Return(config.Default(), nil).Once()
			h.factory.On("New", mock.Anything).Return(f, nil).Once()

			err := h.runner.Run(append([]string{"-config", dummyFile}, tc.args...))
			require.NoError(t, err)

			assert.Equal(t, tc.expectFetches, fetcher.calls)
			assert.Contains(t, h.stdout.String(), "Name: Hulk\n")
			assert.Contains(t, h.stdout.String(), "Thumbnail: http://img/hulk/standard_medium.jpg\n")
			if tc.expectPrompt {
				assert.Contains(t, h.stderr.String(), "Use the cached result?")
			} else {
				assert.NotContains(t, h.stderr.String(), "Use the cached result?")
			}
			h.factory.AssertExpectations(t)
		})
	}
}

func TestAppRunner_Run_NoResult(t *testing.T) {
	dummyFile := createTempYAML(t, "mode: online\n")
	h := newHarness("")
	fetcher := &stubFetcher{body: `{"code":200,"data":{"count":0,"results":[]}}`}
	coord := lookup.NewOnline(lookup.Deps{Fetcher: fetcher, Classifier: classify.JSON{}, Store: cache.NewMemory()})
	h.loader.On("Load", dummyFile).Return(config.Default(), nil).Once()
	h.factory.On("New", mock.Anything).Return(facade.New(coord, paste.NewOffline(), nil), nil).Once()

	err := h.runner.Run([]string{"-config", dummyFile, "-name", "Nobody"})
	assert.ErrorIs(t, err, ErrNoResult)
	assert.Contains(t, err.Error(), "no-match")
	assert.Empty(t, h.stdout.String())
}

func TestAppRunner_Run_OfflineWithoutConfig(t *testing.T) {
	h := NewAppRunnerWithOpts(AppRunnerOpts{
		Stdin:  strings.NewReader(""),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	stdout := h.stdout.(*bytes.Buffer)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(cwd) }()

	err = h.Run([]string{"-offline", "-name", "whatever", "-publish"})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Name: Spider-Man\n")
	assert.Contains(t, stdout.String(), paste.PlaceholderURL+"\n")
}

func TestAppRunner_Run_FactoryError(t *testing.T) {
	dummyFile := createTempYAML(t, "mode: online\n")
	h := newHarness("")
	h.loader.On("Load", dummyFile).Return(config.Default(), nil).Once()
	h.factory.On("New", mock.Anything).Return(nil, apperr.ErrMissingValue).Once()

	err := h.runner.Run([]string{"-config", dummyFile, "-name", "Hulk"})
	assert.ErrorIs(t, err, apperr.ErrMissingValue)
}

func TestDefaultFacadeFactory(t *testing.T) {
	validCreds := map[string]string{
		auth.CredLookupPublic:  "pub",
		auth.CredLookupPrivate: "priv",
		auth.CredPublishKey:    "dev",
	}

	testCases := []struct {
		name        string
		mutate      func(cfg *config.Config)
		expectError error
	}{
		{"Offline Needs No Credentials", func(cfg *config.Config) { cfg.Mode = config.ModeOffline }, nil},
		{"Online", func(cfg *config.Config) { cfg.Credentials = validCreds }, nil},
		{"Online Missing Credentials", func(cfg *config.Config) {}, apperr.ErrMissingValue},
		{"Online Empty Publish Key", func(cfg *config.Config) {
			cfg.Credentials = map[string]string{
				auth.CredLookupPublic:  "pub",
				auth.CredLookupPrivate: "priv",
				auth.CredPublishKey:    "",
			}
		}, apperr.ErrInvalidValue},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache = config.CacheConfig{Driver: config.DriverMemory}
			tc.mutate(cfg)

			f, err := (&defaultFacadeFactory{}).New(cfg)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, f)
			assert.NoError(t, f.Close())
		})
	}
}
