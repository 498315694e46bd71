package platform

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/manual/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory   = "memory"
	AdapterDocument = "document"
	AdapterSQLite   = "sqlite"
)

// options holds the internal configuration for the manual service.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	adapter      string
	seed         *core.Catalog
	registerer   prometheus.Registerer
	eventBuffer  int
	debounce     time.Duration
	errorHandler func(error)
	forceTemp    bool
	devSafety    bool
}

// Option defines a functional option for configuring the service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   AdapterDocument,
		devSafety: true,
	}
}

func parseOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the service and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a test double).
// If provided, adapter selection is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name: "memory", "document" or "sqlite".
// Defaults to "document".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSeed replaces the built-in seed set.
func WithSeed(seed core.Catalog) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithMetrics registers operation metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithEventBuffer sets the capacity of the Watch channel.
// Zero means default (16).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithDebounce sets how long a burst of file changes must be quiet before
// Watch reports it. Zero means default (50ms).
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the Watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithForceTemp re-roots the store into a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the store is re-rooted into a temporary directory so a
// development run never touches real data.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
