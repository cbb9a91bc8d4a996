// Package config loads and persists thankstars settings.
//
// Settings are layered with viper, highest precedence first:
//
//   - environment: GITHUB_TOKEN for the token, THANKS_STARS_<KEY> for the
//     rest (nested keys use underscores, e.g. THANKS_STARS_CACHE_REDIS_URL)
//   - config.toml in the configuration directory
//   - built-in defaults
//
// The configuration directory is $THANKS_STARS_CONFIG_DIR, or
// "thanks-stars" under [os.UserConfigDir].
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	errs "github.com/matzehuels/thankstars/pkg/errors"
)

const (
	AppName   = "thanks-stars"
	FileName  = "config.toml"
	EnvPrefix = "THANKS_STARS"

	EnvConfigDir = "THANKS_STARS_CONFIG_DIR"
	EnvToken     = "GITHUB_TOKEN"

	DefaultAPIBase  = "https://api.github.com"
	DefaultCacheTTL = 24 * time.Hour
	DefaultWorkers  = 8
)

// Config is the merged view of every settings layer.
type Config struct {
	Token    string        `mapstructure:"token"`
	APIBase  string        `mapstructure:"api_base"`
	ClientID string        `mapstructure:"client_id"` // OAuth app used by the device flow
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Workers  int           `mapstructure:"workers"`
	Cache    CacheConfig   `mapstructure:"cache"`
	History  HistoryConfig `mapstructure:"history"`
}

// CacheConfig controls the registry response cache.
type CacheConfig struct {
	Disabled bool   `mapstructure:"disabled"`
	Dir      string `mapstructure:"dir"`       // file cache location
	RedisURL string `mapstructure:"redis_url"` // shared cache; replaces the file tier when set
}

// HistoryConfig controls where run records are kept.
type HistoryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Dir      string `mapstructure:"dir"`
	MongoURI string `mapstructure:"mongo_uri"`
	Database string `mapstructure:"database"`
}

// HasToken reports whether a GitHub token is configured in any layer.
func (c *Config) HasToken() bool {
	return strings.TrimSpace(c.Token) != ""
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeConfig, err, "unable to determine configuration directory")
	}
	return filepath.Join(base, AppName), nil
}

// CacheDir returns the default registry cache directory.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeConfig, err, "unable to determine cache directory")
	}
	return filepath.Join(base, AppName), nil
}

// Manager reads and writes config.toml in one directory.
type Manager struct {
	dir string
}

// NewManager returns a Manager for [Dir].
func NewManager() (*Manager, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Manager{dir: dir}, nil
}

// NewManagerAt returns a Manager rooted at dir.
func NewManagerAt(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the directory holding config.toml.
func (m *Manager) Dir() string { return m.dir }

// Path returns the config.toml path.
func (m *Manager) Path() string { return filepath.Join(m.dir, FileName) }

// Load merges defaults, config.toml (if present) and the environment.
func (m *Manager) Load() (*Config, error) {
	v := m.viper()

	if _, err := os.Stat(m.Path()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeConfig, err, "read %s", m.Path())
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "stat %s", m.Path())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "parse %s", m.Path())
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.APIBase = strings.TrimSuffix(strings.TrimSpace(cfg.APIBase), "/")
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = filepath.Join(m.dir, "history")
	}
	return &cfg, nil
}

func (m *Manager) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(m.Path())
	v.SetConfigType("toml")

	v.SetDefault("token", "")
	v.SetDefault("api_base", DefaultAPIBase)
	v.SetDefault("client_id", "")
	v.SetDefault("cache_ttl", DefaultCacheTTL)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.dir", "")
	v.SetDefault("history.mongo_uri", "")
	v.SetDefault("history.database", "thankstars")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("token", EnvToken, EnvPrefix+"_TOKEN")
	return v
}
