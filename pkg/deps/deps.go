package deps

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/discovery"
)

const (
	DefaultCacheTTL = 24 * time.Hour // Default registry cache duration
	DefaultWorkers  = 8              // Default concurrent registry lookups per ecosystem
)

// Options configures the discoverers built by an [Ecosystem].
type Options struct {
	Cache    cache.Cache   // Registry response cache (nil disables caching)
	CacheTTL time.Duration // Registry cache duration (default: 24h)
	Refresh  bool          // Bypass cached registry data
	Workers  int           // Concurrent registry lookups (default: 8)
	Logger   *log.Logger   // Debug logging (default: log.Default())
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Ecosystem describes one supported package manager: the framework it
// answers for, the registry it consults (empty for purely local
// discovery) and a constructor for its discoverer.
type Ecosystem struct {
	Framework discovery.Framework
	Registry  string
	New       func(opts Options) discovery.Discoverer
}

// Register adds the discoverers of ecosystems to reg.
func Register(reg *discovery.Registry, opts Options, ecosystems ...*Ecosystem) {
	opts = opts.WithDefaults()
	for _, e := range ecosystems {
		reg.Register(e.Framework, e.New(opts))
	}
}
