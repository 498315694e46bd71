package core

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Service is the process repository: the single entry point the UI layer
// talks to. It validates input, assigns identities and delegates persistence
// to a Repository.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	seed    Catalog
	metrics *metrics

	mu    sync.RWMutex
	ready bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service) error

// WithServiceLogger sets the logger for the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithSeed overrides the catalog materialized into a store that was never written.
func WithSeed(seed Catalog) ServiceOption {
	return func(s *Service) error {
		s.seed = seed.Clone()
		return nil
	}
}

// WithMetrics registers operation counters on reg.
func WithMetrics(reg prometheus.Registerer) ServiceOption {
	return func(s *Service) error {
		m, err := newMetrics(reg)
		if err != nil {
			return err
		}
		s.metrics = m
		return nil
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	s := &Service{
		repo:   repo,
		logger: slog.New(slog.DiscardHandler),
		seed:   DefaultSeed(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Repository exposes the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// Close releases the underlying storage.
func (s *Service) Close() error {
	return s.repo.Close()
}

// ensureReady initializes the store once. A failed attempt is retried on the next call.
func (s *Service) ensureReady(ctx context.Context) error {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if ready {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := s.repo.Initialize(ctx, s.seed); err != nil {
		return err
	}
	s.ready = true
	return nil
}

// LoadAll returns every section with its entries.
// A store that was never written comes back holding the seed set.
func (s *Service) LoadAll(ctx context.Context) (cat Catalog, err error) {
	defer func(begin time.Time) { s.metrics.observe("load_all", begin, err) }(time.Now())

	if err := s.ensureReady(ctx); err != nil {
		return Catalog{}, err
	}
	cat, err = s.repo.LoadAll(ctx)
	if err != nil {
		s.logger.Error("failed to load catalog", "error", err)
		return Catalog{}, err
	}
	return cat, nil
}

// Sections returns the section keys in display order.
func (s *Service) Sections(ctx context.Context) ([]Section, error) {
	cat, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Sections(), nil
}

// Get returns a single entry.
func (s *Service) Get(ctx context.Context, section Section, id EntryID) (Entry, error) {
	section = strings.TrimSpace(section)
	if err := s.ensureReady(ctx); err != nil {
		return Entry{}, err
	}
	entries, err := s.repo.Section(ctx, section)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, NotFound(section, id)
}

// Search yields the entries of a section whose title contains query,
// compared case-insensitively. A blank query (empty or only whitespace)
// yields every entry; any other query is matched as given.
//
// The sequence is lazy and restartable: each range re-reads the section.
// A storage failure is yielded once as the error value.
func (s *Service) Search(ctx context.Context, section Section, query string) iter.Seq2[Entry, error] {
	section = strings.TrimSpace(section)
	needle := strings.ToLower(query)
	if strings.TrimSpace(query) == "" {
		needle = ""
	}
	return func(yield func(Entry, error) bool) {
		begin := time.Now()
		err := s.ensureReady(ctx)
		var entries []Entry
		if err == nil {
			entries, err = s.repo.Section(ctx, section)
		}
		s.metrics.observe("search", begin, err)
		if err != nil {
			yield(Entry{}, err)
			return
		}
		for _, e := range entries {
			if needle != "" && !strings.Contains(strings.ToLower(e.Title), needle) {
				continue
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Add creates an entry at the end of section and persists it before returning.
func (s *Service) Add(ctx context.Context, section Section, title, content string) (e Entry, err error) {
	defer func(begin time.Time) { s.metrics.observe("add", begin, err) }(time.Now())

	e = Entry{
		ID:      NewEntryID(),
		Section: strings.TrimSpace(section),
		Title:   strings.TrimSpace(title),
		Content: content,
	}
	if err := validate(e); err != nil {
		return Entry{}, err
	}
	if err := s.ensureReady(ctx); err != nil {
		return Entry{}, err
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		s.logger.Error("failed to add entry", "section", e.Section, "error", err)
		return Entry{}, err
	}

	s.logger.Debug("entry added", "section", e.Section, "id", e.ID, "title", e.Title)
	return e, nil
}

// Update replaces the title and content of the entry identified by id.
func (s *Service) Update(ctx context.Context, section Section, id EntryID, title, content string) (err error) {
	defer func(begin time.Time) { s.metrics.observe("update", begin, err) }(time.Now())

	e := Entry{
		ID:      id,
		Section: strings.TrimSpace(section),
		Title:   strings.TrimSpace(title),
		Content: content,
	}
	if err := validate(e); err != nil {
		return err
	}
	if id == "" {
		return NotFound(e.Section, id)
	}
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return err
	}

	s.logger.Debug("entry updated", "section", e.Section, "id", id)
	return nil
}

// Delete removes the entry identified by id.
func (s *Service) Delete(ctx context.Context, section Section, id EntryID) (err error) {
	defer func(begin time.Time) { s.metrics.observe("delete", begin, err) }(time.Now())

	section = strings.TrimSpace(section)
	if id == "" {
		return NotFound(section, id)
	}
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, section, id); err != nil {
		return err
	}

	s.logger.Debug("entry deleted", "section", section, "id", id)
	return nil
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx)
}

func validate(e Entry) error {
	switch {
	case e.Section == "":
		return &ValidationError{Field: "section"}
	case e.Title == "":
		return &ValidationError{Field: "title"}
	case strings.TrimSpace(e.Content) == "":
		return &ValidationError{Field: "content"}
	}
	return nil
}

// Collect drains a search sequence into a slice, stopping at the first error.
func Collect(seq iter.Seq2[Entry, error]) ([]Entry, error) {
	var out []Entry
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
