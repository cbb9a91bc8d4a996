package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thankstars/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Discovered 12 repositories (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports discovery, starring and HTTP traffic at debug level.
// It is installed globally under --verbose.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnDiscoverStart(_ context.Context, framework string) {
	h.logger.Debug("discovering", "framework", framework)
}

func (h logHooks) OnDiscoverComplete(_ context.Context, framework string, refs int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("discovery failed", "framework", framework, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("discovered", "framework", framework, "refs", refs, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnQuery(_ context.Context, owner, name string, starred bool, err error) {
	h.logger.Debug("star state", "repo", owner+"/"+name, "starred", starred, "err", err)
}

func (h logHooks) OnStar(_ context.Context, owner, name string, dryRun bool, err error) {
	h.logger.Debug("star", "repo", owner+"/"+name, "dry_run", dryRun, "err", err)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

// installLogHooks routes observability events to logger.
func installLogHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetDiscoveryHooks(h)
	observability.SetStarHooks(h)
	observability.SetHTTPHooks(h)
}

var (
	_ observability.DiscoveryHooks = logHooks{}
	_ observability.StarHooks      = logHooks{}
	_ observability.HTTPHooks      = logHooks{}
)
