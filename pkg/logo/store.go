// Package logo stores the single logo image shown next to the manual.
// It is independent of the process repository: one well-known file, PNG or
// JPEG only, replaced wholesale on every save.
package logo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/manual/internal/atomicfile"
	"github.com/aretw0/manual/pkg/core"
)

// DefaultPath is where the logo lives when no path is configured.
const DefaultPath = "data/logo.png"

// PlaceholderText is rendered by callers when no usable logo exists.
const PlaceholderText = "No logo uploaded"

// Image is a decoded logo.
type Image struct {
	Data   []byte
	Format string // "png" or "jpeg"
	Width  int
	Height int
}

// Store reads and writes the logo file.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a store on path. A nil logger discards output.
func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: filepath.Clean(path), logger: logger}
}

// Path returns the logo file location.
func (s *Store) Path() string {
	return s.path
}

// Save replaces the logo with data, which must be a PNG or JPEG image.
func (s *Store) Save(data []byte) error {
	if _, err := decode(data); err != nil {
		return fmt.Errorf("%w: logo: %w", core.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return core.Unavailable("create logo directory", err)
	}
	if err := atomicfile.Write(s.path, data, 0644); err != nil {
		return core.Unavailable("write logo", err)
	}
	s.logger.Debug("logo saved", "path", s.path, "bytes", len(data))
	return nil
}

// Load returns the current logo. It reports false, the "no logo" state,
// when the file is absent or cannot be read as a PNG or JPEG image.
func (s *Store) Load() (Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Image{}, false
	}
	if err != nil {
		s.logger.Warn("failed to read logo", "path", s.path, "error", err)
		return Image{}, false
	}

	img, err := decode(data)
	if err != nil {
		s.logger.Warn("unusable logo", "path", s.path, "error", err)
		return Image{}, false
	}
	return img, true
}

// Remove deletes the logo. Removing an absent logo is not an error.
func (s *Store) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.Unavailable("remove logo", err)
	}
	return nil
}

func decode(data []byte) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("not a PNG or JPEG image: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return Image{}, fmt.Errorf("unsupported image format %q", format)
	}
	return Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
