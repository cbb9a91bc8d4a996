// Package cli implements the thankstars command-line interface.
//
// The root command stars the GitHub repositories behind a project's
// dependencies; subcommands manage the token, preview discovery, list past
// runs and manage the registry cache.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, including
// per-ecosystem discovery, star queries and HTTP traffic.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/config"
	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/deps/ecosystems"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/history"
	"github.com/matzehuels/thankstars/pkg/integrations/github"
	"github.com/matzehuels/thankstars/pkg/pipeline"
	"github.com/matzehuels/thankstars/pkg/reconcile"
)

// appName is the binary name used in help text and hints.
const appName = "thankstars"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigDir overrides the configuration directory (tests).
	ConfigDir string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Configuration
// =============================================================================

func (c *CLI) manager() (*config.Manager, error) {
	if c.ConfigDir != "" {
		return config.NewManagerAt(c.ConfigDir), nil
	}
	return config.NewManager()
}

func (c *CLI) loadConfig() (*config.Manager, *config.Config, error) {
	m, err := c.manager()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := m.Load()
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

func errTokenMissing() error {
	return errs.New(errs.ErrCodeTokenMissing,
		"GitHub token not found. Run `%s auth --token <token>` or set GITHUB_TOKEN.", appName)
}

func newGitHubClient(cfg *config.Config) *github.Client {
	return github.NewClient(cfg.Token).WithBaseURL(cfg.APIBase)
}

// =============================================================================
// Runner Factory
// =============================================================================

// session owns the resources opened for one command: the registry cache
// and the history store.
type session struct {
	Runner *pipeline.Runner
	cache  cache.Cache
	store  history.Store
}

// Close releases the cache and history store.
func (s *session) Close() error {
	var first error
	if s.store != nil {
		first = s.store.Close()
	}
	if err := s.cache.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// newSession builds a pipeline runner from cfg. api may be nil for
// discovery-only commands; the history store is opened only when api is
// set and history is enabled.
func (c *CLI) newSession(ctx context.Context, cfg *config.Config, api reconcile.StarAPI, refresh bool) (*session, error) {
	logger := loggerFromContext(ctx)

	backend, err := newCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	reg := ecosystems.NewRegistry(deps.Options{
		Cache:    backend,
		CacheTTL: cfg.CacheTTL,
		Refresh:  refresh,
		Workers:  cfg.Workers,
		Logger:   logger,
	})

	s := &session{cache: backend}
	if api != nil && cfg.History.Enabled {
		store, err := history.Open(ctx, history.Options{
			Dir:      cfg.History.Dir,
			MongoURI: cfg.History.MongoURI,
			Database: cfg.History.Database,
		})
		if err != nil {
			// Runs still work without a history store.
			logger.Warn("history disabled", "err", err)
		} else {
			s.store = store
		}
	}

	s.Runner = pipeline.NewRunner(reg, api, s.store, logger)
	return s, nil
}

// newCache builds the registry cache: an in-memory LRU in front of Redis
// when cache.redis_url is set, otherwise in front of the file cache.
func newCache(ctx context.Context, cfg *config.Config, logger *log.Logger) (cache.Cache, error) {
	if cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}

	var back cache.Cache
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeConfig, err, "connect to cache.redis_url")
		}
		back = rc
	} else {
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			logger.Warn("file cache unavailable", "dir", cfg.Cache.Dir, "err", err)
			back = cache.NewNullCache()
		} else {
			back = fc
		}
	}

	front, err := cache.NewMemoryCache(cache.DefaultMemoryEntries)
	if err != nil {
		return back, nil
	}
	return cache.NewLayered(front, back, cfg.CacheTTL), nil
}
