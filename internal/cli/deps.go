// Package cli provides the Cobra command tree and dependency wiring
// for the corpora CLI. This file defines the Dependencies struct
// (composition root) that wires the domain packages together.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/corpora-dev/corpora/internal/config"
	"github.com/corpora-dev/corpora/internal/downloader"
	"github.com/corpora-dev/corpora/internal/index"
	"github.com/corpora-dev/corpora/internal/resource"
	"github.com/corpora-dev/corpora/internal/ui"
)

// Dependencies holds the domain services used by CLI commands. It is
// the only place where concrete types are instantiated and wired
// together.
type Dependencies struct {
	Config     *config.Config
	Finder     *resource.Finder
	Loader     *resource.Loader
	Fetcher    index.Fetcher
	Downloader *downloader.Downloader
	Theme      *ui.Theme
	Headless   *ui.HeadlessManager
	Progress   ui.Progress
	Logger     *slog.Logger

	indexOnce sync.Once
	indexErr  error
	index     *index.Index
}

// deps is the global dependencies instance, initialized by InitDependencies.
var deps *Dependencies

// overrides carries command-line values that take precedence over the
// configuration file and environment.
type overrides struct {
	configPath string
	dataDir    string
	indexURL   string
	noColor    bool
	headless   bool
	quiet      bool
}

// InitDependencies loads the configuration and wires every service.
// It is called once from the root command's PersistentPreRunE.
func InitDependencies(o overrides) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.dataDir != "" {
		cfg.Data.Dir = o.dataDir
	}
	if o.indexURL != "" {
		cfg.Index.URL = o.indexURL
	}
	if o.noColor {
		cfg.UI.NoColor = true
	}
	if o.headless {
		cfg.UI.NonInteractive = true
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.UI.NoColor = true
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level, o.quiet),
	}))
	slog.SetDefault(logger)

	theme := ui.NewTheme(cfg.UI.NoColor)
	headless := ui.NewHeadlessManager()
	if cfg.UI.NonInteractive {
		headless.ForceHeadless(true)
	}

	client, err := index.NewHTTPClient(cfg.Index.Proxy, cfg.Index.Timeout())
	if err != nil {
		return err
	}
	fetcher := index.NewFetcher(cfg.Index.URL, client, cfg.Retry.Policy())
	finder := resource.NewFinder(cfg.SearchPaths(resource.DefaultPaths()))

	deps = &Dependencies{
		Config:     cfg,
		Finder:     finder,
		Loader:     resource.NewLoader(finder, client, logger),
		Fetcher:    fetcher,
		Downloader: downloader.New(fetcher, cfg.Data.Dir, logger),
		Theme:      theme,
		Headless:   headless,
		Progress:   ui.NewProgress(theme, headless),
		Logger:     logger,
	}
	return nil
}

// GetDeps returns the current Dependencies instance, nil before
// InitDependencies.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// EnsureIndex fetches and caches the package index. Commands share one
// fetch per process.
func (d *Dependencies) EnsureIndex(ctx context.Context) (*index.Index, error) {
	d.indexOnce.Do(func() {
		spin := d.Progress.Spinner("fetching package index")
		d.index, d.indexErr = d.Fetcher.FetchIndex(ctx)
		spin.Stop()
	})
	if d.indexErr != nil {
		return nil, fmt.Errorf("fetch package index: %w", d.indexErr)
	}
	return d.index, nil
}

func logLevel(name string, quiet bool) slog.Level {
	if quiet {
		return slog.LevelError
	}
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
