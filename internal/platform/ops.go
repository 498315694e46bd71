package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/manual/pkg/adapters/document"
	"github.com/aretw0/manual/pkg/adapters/memory"
	"github.com/aretw0/manual/pkg/adapters/sqlite"
	"github.com/aretw0/manual/pkg/core"
)

// DefaultURI returns the store location used when none is configured.
func DefaultURI(adapter string) string {
	switch adapter {
	case AdapterDocument:
		return "data/processes.json"
	case AdapterSQLite:
		return "data/processes.db"
	default:
		return ""
	}
}

// Init opens the configured store and initializes it, seeding a store that
// has never been written. The uri is adapter-specific: a document path for
// "document", a database path for "sqlite", ignored for "memory".
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := parseOptions(opts)

	repo, err := open(uri, o)
	if err != nil {
		return nil, err
	}

	seed := core.DefaultSeed()
	if o.seed != nil {
		seed = *o.seed
	}
	if err := repo.Initialize(context.Background(), seed); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

// open builds the repository without touching storage.
func open(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	adapter := strings.ToLower(strings.TrimSpace(o.adapter))
	if adapter == AdapterMemory {
		return memory.NewRepository(), nil
	}

	if strings.TrimSpace(uri) == "" {
		uri = DefaultURI(adapter)
	}
	path := uri
	if adapter != AdapterSQLite || uri != sqlite.MemoryPath {
		path = resolvePath(uri, o)
	}

	switch adapter {
	case AdapterDocument:
		return document.NewRepository(document.Config{
			Path:         path,
			Logger:       o.logger,
			EventBuffer:  o.eventBuffer,
			Debounce:     o.debounce,
			ErrorHandler: o.errorHandler,
		}), nil
	case AdapterSQLite:
		return sqlite.NewRepository(sqlite.Config{
			Path:   path,
			Logger: o.logger,
		})
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

func resolvePath(uri string, o *options) string {
	useTemp := o.forceTemp || (IsDevRun() && o.devSafety)
	resolved := ResolveStorePath(uri, useTemp)

	if o.logger != nil && resolved != uri {
		o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", uri, "resolved_path", resolved)
	}
	return resolved
}
