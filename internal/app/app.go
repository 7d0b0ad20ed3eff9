package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"catalog-report/internal/apperr"
	"catalog-report/internal/cache"
	"catalog-report/internal/catalog"
	"catalog-report/internal/classify"
	"catalog-report/internal/config"
	"catalog-report/internal/facade"
	"catalog-report/internal/httpclient"
	"catalog-report/internal/logging"
	"catalog-report/internal/lookup"
	"catalog-report/internal/paste"
	"catalog-report/internal/report"
)

// Define common errors for the application layer.
var (
	ErrUsage          = errors.New("usage error")
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrMissingArgs    = fmt.Errorf("missing required arguments: %w", apperr.ErrMissingValue)
	ErrNoResult       = errors.New("lookup returned no entity")
)

// --- Interfaces for Testability ---

// configLoader defines the interface for loading configuration.
type configLoader interface {
	Load(filename string) (*config.Config, error)
}

// facadeFactory builds the facade and everything behind it from a config.
type facadeFactory interface {
	New(cfg *config.Config) (*facade.Facade, error)
}

// --- Default Implementations ---

type defaultConfigLoader struct{}

func (l *defaultConfigLoader) Load(filename string) (*config.Config, error) {
	return config.LoadConfig(filename)
}

type defaultFacadeFactory struct{}

// New wires the variants selected by cfg.Mode. Offline runs need no
// credentials and never open the cache.
func (d *defaultFacadeFactory) New(cfg *config.Config) (*facade.Facade, error) {
	if cfg.Mode == config.ModeOffline {
		logging.Logf(logging.Info, "Offline mode: using the bundled sample entity")
		return facade.New(lookup.NewOffline(lookup.Deps{}), paste.NewOffline(), nil), nil
	}

	client, err := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Credentials, catalog.ClientOpts{
		Retry:             cfg.Retry,
		Timeout:           httpclient.Seconds(cfg.Catalog.TimeoutSeconds),
		TlsSkipVerify:     cfg.Catalog.TlsSkipVerify,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	publisher, err := paste.NewClient(cfg.Publish.URL, cfg.Credentials, paste.ClientOpts{
		Retry:         cfg.Retry,
		Timeout:       httpclient.Seconds(cfg.Publish.TimeoutSeconds),
		TlsSkipVerify: cfg.Publish.TlsSkipVerify,
	})
	if err != nil {
		return nil, err
	}

	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	coord := lookup.NewOnline(lookup.Deps{
		Fetcher:    client,
		Classifier: classify.JSON{},
		Store:      store,
	})
	return facade.New(coord, publisher, store), nil
}

// --- AppRunner ---

// AppRunner encapsulates the application's execution logic and dependencies.
type AppRunner struct {
	configLoader  configLoader
	facadeFactory facadeFactory
	stdin         io.Reader
	stdout        io.Writer
	stderr        io.Writer
}

// AppRunnerOpts allows configuring the AppRunner's dependencies.
type AppRunnerOpts struct {
	ConfigLoader  configLoader
	FacadeFactory facadeFactory
	Stdin         io.Reader
	Stdout        io.Writer
	Stderr        io.Writer
}

// NewAppRunner creates a new instance of the application runner with default dependencies.
func NewAppRunner() *AppRunner {
	return NewAppRunnerWithOpts(AppRunnerOpts{})
}

// NewAppRunnerWithOpts creates a new AppRunner allowing dependency injection.
func NewAppRunnerWithOpts(opts AppRunnerOpts) *AppRunner {
	a := &AppRunner{
		configLoader:  opts.ConfigLoader,
		facadeFactory: opts.FacadeFactory,
		stdin:         opts.Stdin,
		stdout:        opts.Stdout,
		stderr:        opts.Stderr,
	}
	if a.configLoader == nil {
		a.configLoader = &defaultConfigLoader{}
	}
	if a.facadeFactory == nil {
		a.facadeFactory = &defaultFacadeFactory{}
	}
	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	return a
}

// usageText defines the command-line help information.
const usageText = `Usage:
  catalog-report [options]

Options:
  -config string
        YAML configuration file (default "config.yaml")
  -name string
        Exact entity name to look up (required)
  -cache
        Load the entity from the local cache instead of the catalog
  -yes
        Use the cached result without asking when one exists
  -publish
        Publish the report and print the paste URL
  -offline
        Use the bundled sample entity; no network, no cache, no credentials
  -loglevel string
        Logging level (none, error, warn, info, debug) (default "info")
  -help
        Show help

Examples:
  Look up and print a report:
    catalog-report -config=config.yaml -name Hulk

  Publish the report of a cached entity:
    catalog-report -config=config.yaml -name Hulk -cache -publish

  Try it without credentials:
    catalog-report -offline -name anything
`

// Usage prints the command-line help information to the specified writer.
func (a *AppRunner) Usage(writer io.Writer) {
	fmt.Fprint(writer, usageText)
}

type runFlags struct {
	name    string
	cache   bool
	yes     bool
	publish bool
}

// Run parses command-line arguments, looks up the requested entity and prints
// its report, publishing it when asked.
func (a *AppRunner) Run(args []string) error {
	fs := flag.NewFlagSet("catalog-report", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Prevent flagset from printing errors/usage

	configFile := fs.String("config", "config.yaml", "YAML configuration file")
	name := fs.String("name", "", "Exact entity name to look up")
	fromCache := fs.Bool("cache", false, "Load from the local cache")
	yes := fs.Bool("yes", false, "Use the cached result without asking")
	publish := fs.Bool("publish", false, "Publish the report")
	offline := fs.Bool("offline", false, "Use the bundled sample entity")
	logLevelStr := fs.String("loglevel", "info", "Logging level (none, error, warn, info, debug)")
	helpFlag := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			a.Usage(a.stderr)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if *helpFlag || len(args) == 0 {
		a.Usage(a.stderr)
		return nil
	}

	logging.SetupLogging(*logLevelStr)

	cfg, err := a.loadConfig(*configFile, *offline && !isFlagSet(fs, "config"))
	if err != nil {
		return err
	}
	if *offline {
		cfg.Mode = config.ModeOffline
	}

	// Override log level from config if it wasn't explicitly set by flag
	if !isFlagSet(fs, "loglevel") && cfg.Logging.Level != "" {
		logging.SetupLogging(cfg.Logging.Level)
	}

	// A -name flag that was never given is absent; an empty one is invalid.
	if !isFlagSet(fs, "name") {
		logging.Logf(logging.Error, "Error: -name is required.")
		return ErrMissingArgs
	}

	f, err := a.facadeFactory.New(cfg)
	if err != nil {
		logging.Logf(logging.Error, "Setup failed: %v", err)
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Logf(logging.Warning, "Closing cache failed: %v", err)
		}
	}()
	f.AddListener(logListener{})

	return a.run(context.Background(), f, runFlags{
		name:    *name,
		cache:   *fromCache,
		yes:     *yes,
		publish: *publish,
	})
}

// loadConfig stats and loads configFile. When allowDefault is set a missing
// file is not an error and config.Default() is used instead.
func (a *AppRunner) loadConfig(configFile string, allowDefault bool) (*config.Config, error) {
	if _, err := os.Stat(configFile); err != nil {
		if os.IsNotExist(err) {
			if allowDefault {
				logging.Logf(logging.Debug, "No configuration file '%s', using defaults", configFile)
				return config.Default(), nil
			}
			// Use standard logger because logging level isn't fully configured yet
			log.Printf("[ERROR] Configuration file '%s' not found.", configFile)
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", configFile, err)
	}

	cfg, err := a.configLoader.Load(configFile)
	if err != nil {
		log.Printf("[ERROR] Error loading configuration '%s': %v", configFile, err)
		return nil, err
	}
	return cfg, nil
}

func (a *AppRunner) run(ctx context.Context, f *facade.Facade, rf runFlags) error {
	if rf.cache {
		if err := f.LoadFromCache(ctx, rf.name); err != nil {
			return err
		}
	} else {
		outcome, err := f.Search(ctx, rf.name)
		if err != nil {
			return err
		}
		if outcome == facade.NeedsConfirmation {
			if rf.yes || a.confirmCache(rf.name) {
				err = f.LoadFromCache(ctx, rf.name)
			} else {
				// Searching the same name again forces a live lookup.
				_, err = f.Search(ctx, rf.name)
			}
			if err != nil {
				return err
			}
		}
	}

	e := f.Entity()
	if e == nil {
		res := f.Result()
		logging.Logf(logging.Error, "No entity for '%s' (%s) %s", rf.name, res.Kind, res.Message)
		return fmt.Errorf("%w: '%s' (%s)", ErrNoResult, rf.name, res.Kind)
	}

	text, _ := report.Format(e)
	fmt.Fprint(a.stdout, text)
	if thumb, ok := f.ThumbnailPath(); ok {
		logging.Logf(logging.Info, "Thumbnail: %s", thumb)
	}

	if !rf.publish {
		return nil
	}
	if err := f.PublishReport(ctx); err != nil {
		logging.Logf(logging.Error, "Publishing the report failed: %v", err)
		return err
	}
	if u, ok := f.ReportURL(); ok {
		fmt.Fprintln(a.stdout, strings.TrimSpace(u))
	}
	return nil
}

// confirmCache asks whether the cached result should be used. Anything other
// than an explicit no, including end of input, means yes.
func (a *AppRunner) confirmCache(name string) bool {
	fmt.Fprintf(a.stderr, "'%s' is in the local cache. Use the cached result? [Y/n]: ", name)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "n", "no":
		return false
	default:
		return true
	}
}

// logListener reports facade notifications through the logger.
type logListener struct{}

func (logListener) EntityUpdated(f *facade.Facade) {
	if e := f.Entity(); e != nil {
		logging.Logf(logging.Info, "Loaded entity %d (%s)", e.ID, e.Name)
		return
	}
	logging.Logf(logging.Info, "Lookup finished without an entity (%s)", f.Result().Kind)
}

func (logListener) ReportURLUpdated(f *facade.Facade) {
	if u, ok := f.ReportURL(); ok {
		logging.Logf(logging.Info, "Report published at %s", u)
		return
	}
	logging.Logf(logging.Warning, "Report URL cleared after a failed publish")
}

// Helper to check if a specific flag was set
func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
