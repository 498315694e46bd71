package core

import "context"

// Repository defines the storage contract for process entries.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (memory, document file, SQL).
//
// Every implementation must guarantee read-your-writes: a mutation that
// returned nil is visible to the next LoadAll or Section call.
type Repository interface {
	// Initialize ensures the underlying storage is ready (create file, schema migration).
	// If the store has never been written, seed is persisted as its initial content.
	Initialize(ctx context.Context, seed Catalog) error

	// LoadAll returns every section and its entries.
	LoadAll(ctx context.Context) (Catalog, error)

	// Section returns the entries of one section in order.
	// An unknown section yields an empty slice and no error.
	Section(ctx context.Context, section Section) ([]Entry, error)

	// Insert appends an entry to its section. The entry must carry an ID.
	Insert(ctx context.Context, e Entry) error

	// Update replaces the title and content of the entry addressed by (e.Section, e.ID).
	// It returns ErrNotFound when no such entry exists.
	Update(ctx context.Context, e Entry) error

	// Delete removes an entry. It returns ErrNotFound when no such entry exists.
	Delete(ctx context.Context, section Section, id EntryID) error

	// Close releases any resources held by the store.
	Close() error
}

// Watchable defines an interface for repositories that can report changes
// made to the backing store by other processes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
