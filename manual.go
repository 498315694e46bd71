package manual

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/manual/internal/platform"
	"github.com/aretw0/manual/pkg/core"
)

// --- Types ---

// Entry is a single process article.
type Entry = core.Entry

// Catalog is the ordered section-to-entries mapping returned by LoadAll.
type Catalog = core.Catalog

// Service is the process repository.
type Service = core.Service

// --- Adapters ---

const (
	AdapterMemory   = platform.AdapterMemory
	AdapterDocument = platform.AdapterDocument
	AdapterSQLite   = platform.AdapterSQLite
)

// --- Configuration ---

// Option defines a functional option for configuring the service.
type Option = platform.Option

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithSeed replaces the built-in seed set.
func WithSeed(seed Catalog) Option {
	return platform.WithSeed(seed)
}

// WithMetrics registers operation metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return platform.WithMetrics(reg)
}

// WithEventBuffer sets the capacity of the Watch channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithDebounce sets the Watch coalescing window.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithWatcherErrorHandler registers a callback for watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithForceTemp forces the store into a temporary directory.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the `go run` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a new Service.
func New(uri string, opts ...Option) (*Service, error) {
	return platform.New(uri, opts...)
}

// Init opens and initializes a repository explicitly.
func Init(uri string, opts ...Option) (core.Repository, error) {
	return platform.Init(uri, opts...)
}

// DefaultURI returns the store location used by an adapter when none is configured.
func DefaultURI(adapter string) string {
	return platform.DefaultURI(adapter)
}

// --- Safety & Utils ---

// ResolveStorePath determines the actual store path based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindProjectRoot looks upwards for a directory holding manual.yaml or .manual.
func FindProjectRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
