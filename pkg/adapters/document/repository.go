// Package document implements core.Repository on top of a single serialized
// document (JSON or YAML) holding the whole catalog.
//
// Every mutation rewrites the full document. Writes go to a temp file that is
// renamed over the target, so a crash leaves either the old or the new
// document on disk, never a truncated one. Writers inside one process are
// serialized by a mutex; concurrent writers in different processes are not
// coordinated and the last rename wins.
package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/manual/internal/atomicfile"
	"github.com/aretw0/manual/pkg/core"
)

// Config holds the configuration for the document repository.
type Config struct {
	Path   string       // e.g. "data/processes.json"
	Codec  Codec        // defaults to CodecFor(Path)
	Perm   os.FileMode  // defaults to 0644
	Logger *slog.Logger // optional

	EventBuffer  int           // Watch channel capacity, defaults to 16
	Debounce     time.Duration // Watch coalescing window, defaults to 50ms
	ErrorHandler func(error)   // receives watcher errors; optional
}

// Repository implements core.Repository on one document file.
type Repository struct {
	Path   string
	config Config
	codec  Codec

	// mu serializes every read-modify-write cycle.
	mu sync.Mutex

	stateMu       sync.RWMutex
	lastDigest    [sha256.Size]byte
	lastWrite     *time.Time
	writes        int
	watcherActive bool
}

// NewRepository creates a new document-backed repository.
// It performs no I/O until Initialize or the first operation.
func NewRepository(config Config) *Repository {
	config.Path = filepath.Clean(config.Path)
	if config.Codec == nil {
		config.Codec = CodecFor(config.Path)
	}
	if config.Perm == 0 {
		config.Perm = 0644
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 16
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		codec:  config.Codec,
	}
}

// Initialize creates the parent directory and, when the document does not
// exist yet (or is zero bytes), writes seed as its initial content.
// Entries without an identity, from the seed or a legacy document, get one here.
func (r *Repository) Initialize(ctx context.Context, seed core.Catalog) error {
	if err := os.MkdirAll(filepath.Dir(r.Path), 0755); err != nil {
		return core.Unavailable("create directory", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cat, exists, err := r.read()
	if err != nil {
		return err
	}
	if !exists {
		cat = seed
		r.debug("seeding new document", "path", r.Path, "sections", len(seed.Sections()))
	}

	cat, changed := assignIDs(cat)
	if exists && !changed {
		return nil
	}
	if exists {
		r.debug("assigned identities to legacy entries", "path", r.Path)
	}
	return r.write(cat)
}

// LoadAll reads and decodes the whole document.
func (r *Repository) LoadAll(ctx context.Context) (core.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Section returns one section of the document.
func (r *Repository) Section(ctx context.Context, section core.Section) ([]core.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cat, err := r.load()
	if err != nil {
		return nil, err
	}
	return cat.Entries(section), nil
}

// Insert appends an entry and rewrites the document.
func (r *Repository) Insert(ctx context.Context, e core.Entry) error {
	return r.mutate(func(cat *core.Catalog) error {
		cat.Append(e)
		return nil
	})
}

// Update replaces an entry and rewrites the document.
func (r *Repository) Update(ctx context.Context, e core.Entry) error {
	return r.mutate(func(cat *core.Catalog) error {
		if !cat.Replace(e) {
			return core.NotFound(e.Section, e.ID)
		}
		return nil
	})
}

// Delete removes an entry and rewrites the document.
func (r *Repository) Delete(ctx context.Context, section core.Section, id core.EntryID) error {
	return r.mutate(func(cat *core.Catalog) error {
		if !cat.Remove(section, id) {
			return core.NotFound(section, id)
		}
		return nil
	})
}

// Close is a no-op; no handle is held between operations.
func (r *Repository) Close() error {
	return nil
}

// mutate runs fn against the current document and writes the result.
// Nothing is written when fn fails.
func (r *Repository) mutate(fn func(cat *core.Catalog) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cat, err := r.load()
	if err != nil {
		return err
	}
	if err := fn(&cat); err != nil {
		return err
	}
	return r.write(cat)
}

// load reads the document and persists identities for any entry lacking one,
// so the ids handed out are stable across reads. Caller holds r.mu.
func (r *Repository) load() (core.Catalog, error) {
	cat, _, err := r.read()
	if err != nil {
		return core.Catalog{}, err
	}
	cat, changed := assignIDs(cat)
	if changed {
		if err := r.write(cat); err != nil {
			return core.Catalog{}, err
		}
	}
	return cat, nil
}

// read returns the decoded document and whether it exists.
// A missing or zero-byte file is reported as absent, not as an error.
func (r *Repository) read() (core.Catalog, bool, error) {
	data, err := os.ReadFile(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.NewCatalog(), false, nil
	}
	if err != nil {
		return core.Catalog{}, false, core.Unavailable("read "+r.Path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return core.NewCatalog(), false, nil
	}

	cat, err := r.codec.Decode(data)
	if err != nil {
		return core.Catalog{}, true, core.Unavailable("decode "+r.Path, err)
	}
	return cat, true, nil
}

func (r *Repository) write(cat core.Catalog) error {
	data, err := r.codec.Encode(cat)
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}

	if err := atomicfile.Write(r.Path, data, r.config.Perm); err != nil {
		return core.Unavailable("write "+r.Path, err)
	}

	now := time.Now()
	r.stateMu.Lock()
	r.lastDigest = sha256.Sum256(data)
	r.lastWrite = &now
	r.writes++
	r.stateMu.Unlock()

	r.debug("document written", "path", r.Path, "bytes", len(data))
	return nil
}

// assignIDs gives every entry without an identity a fresh one.
func assignIDs(cat core.Catalog) (core.Catalog, bool) {
	changed := false
	out := core.NewCatalog()
	for _, section := range cat.Sections() {
		out.AddSection(section)
		for _, e := range cat.Entries(section) {
			if e.ID == "" {
				e.ID = core.NewEntryID()
				changed = true
			}
			out.Append(e)
		}
	}
	return out, changed
}

func (r *Repository) debug(msg string, args ...any) {
	if r.config.Logger != nil {
		r.config.Logger.Debug(msg, args...)
	}
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
