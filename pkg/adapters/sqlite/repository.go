// Package sqlite implements core.Repository on a single SQLite table
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/aretw0/manual/pkg/adapters/sqlite/migrations"
	"github.com/aretw0/manual/pkg/core"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path   string // database file, or MemoryPath
	Logger *slog.Logger
}

// Repository stores entries in the process_entries table.
type Repository struct {
	Path   string
	db     *sql.DB
	config Config

	// mu serializes writers inside this process; SQLite serializes the rest.
	mu sync.Mutex

	stateMu    sync.RWMutex
	migrations []string
	ready      bool
}

// NewRepository prepares a repository. The database is opened lazily by
// database/sql; Initialize creates the file and applies the schema.
func NewRepository(config Config) (*Repository, error) {
	path := strings.TrimSpace(config.Path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != MemoryPath {
		path = filepath.Clean(path)
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: keeps ":memory:" a single database and avoids SQLITE_BUSY between our own writers.
	db.SetMaxOpenConns(1)

	config.Path = path
	return &Repository{Path: path, db: db, config: config}, nil
}

// Initialize creates the database file, applies migrations and seeds a store
// that has never been written.
func (r *Repository) Initialize(ctx context.Context, seed core.Catalog) error {
	if r.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(r.Path), 0755); err != nil {
			return core.Unavailable("create directory", err)
		}
	}
	if err := r.db.PingContext(ctx); err != nil {
		return core.Unavailable("ping sqlite db", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	skipped, err := countUnaddressableLegacyRows(ctx, r.db)
	if err != nil {
		return core.Unavailable("inspect legacy rows", err)
	}

	applied, err := applyMigrations(ctx, r.db, migrations.FS)
	if err != nil {
		return core.Unavailable("run migrations", err)
	}
	if skipped > 0 && r.config.Logger != nil {
		r.config.Logger.Warn("dropped legacy rows without section or title", "path", r.Path, "rows", skipped)
	}
	if len(applied) > 0 && r.config.Logger != nil {
		r.config.Logger.Debug("applied migrations", "path", r.Path, "files", applied)
	}

	if err := r.withTx(ctx, func(tx *sql.Tx) error {
		var marker string
		err := tx.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = 'initialized'`).Scan(&marker)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		for _, section := range seed.Sections() {
			for _, e := range seed.Entries(section) {
				if e.ID == "" {
					e.ID = core.NewEntryID()
				}
				if err := insertEntry(ctx, tx, e); err != nil {
					return err
				}
			}
		}
		if r.config.Logger != nil {
			r.config.Logger.Debug("seeded new database", "path", r.Path, "entries", seed.Len())
		}
		return markInitialized(ctx, tx, "seed")
	}); err != nil {
		return core.Unavailable("seed", err)
	}

	r.stateMu.Lock()
	r.migrations = append(r.migrations, applied...)
	r.ready = true
	r.stateMu.Unlock()
	return nil
}

// LoadAll reads every row. Sections come back in order of their oldest row.
func (r *Repository) LoadAll(ctx context.Context) (core.Catalog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.section, p.title, p.content
		  FROM process_entries p
		  JOIN (SELECT section, MIN(rowid) AS first FROM process_entries GROUP BY section) s
		    ON s.section = p.section
		 ORDER BY s.first, p.position`)
	if err != nil {
		return core.Catalog{}, core.Unavailable("load entries", err)
	}
	defer rows.Close()

	cat := core.NewCatalog()
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return core.Catalog{}, core.Unavailable("scan entry", err)
		}
		cat.Append(e)
	}
	if err := rows.Err(); err != nil {
		return core.Catalog{}, core.Unavailable("load entries", err)
	}
	return cat, nil
}

// Section reads the rows of one section in position order.
func (r *Repository) Section(ctx context.Context, section core.Section) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, section, title, content
		  FROM process_entries
		 WHERE section = ?
		 ORDER BY position`, section)
	if err != nil {
		return nil, core.Unavailable("load section", err)
	}
	defer rows.Close()

	entries := []core.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, core.Unavailable("scan entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Unavailable("load section", err)
	}
	return entries, nil
}

// Insert adds a row at the end of its section.
func (r *Repository) Insert(ctx context.Context, e core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertEntry(ctx, tx, e); err != nil {
			return err
		}
		return markInitialized(ctx, tx, "write")
	}); err != nil {
		return core.Unavailable("insert entry", err)
	}
	return nil
}

// Update rewrites title and content of the row matching (section, id).
func (r *Repository) Update(ctx context.Context, e core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`UPDATE process_entries SET title = ?, content = ? WHERE section = ? AND id = ?`,
		e.Title, e.Content, e.Section, string(e.ID),
	)
	if err != nil {
		return core.Unavailable("update entry", err)
	}
	return requireAffected(res, e.Section, e.ID)
}

// Delete removes the row matching (section, id).
func (r *Repository) Delete(ctx context.Context, section core.Section, id core.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM process_entries WHERE section = ? AND id = ?`,
		section, string(id),
	)
	if err != nil {
		return core.Unavailable("delete entry", err)
	}
	return requireAffected(res, section, id)
}

// Close releases the database handle.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEntry(ctx context.Context, tx *sql.Tx, e core.Entry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO process_entries (id, section, title, content, position)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM process_entries WHERE section = ?))`,
		string(e.ID), e.Section, e.Title, e.Content, e.Section,
	)
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", e.ID, err)
	}
	return nil
}

func markInitialized(ctx context.Context, tx *sql.Tx, how string) error {
	_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO store_meta (key, value) VALUES ('initialized', ?)`, how)
	if err != nil {
		return fmt.Errorf("mark initialized: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, section core.Section, id core.EntryID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.Unavailable("rows affected", err)
	}
	if n == 0 {
		return core.NotFound(section, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (core.Entry, error) {
	var (
		e  core.Entry
		id string
	)
	if err := row.Scan(&id, &e.Section, &e.Title, &e.Content); err != nil {
		return core.Entry{}, err
	}
	e.ID = core.EntryID(id)
	return e, nil
}

var _ core.Repository = (*Repository)(nil)
