// Package core holds the process entry domain, the storage port and the service built on it.
package core

import (
	"fmt"

	"github.com/google/uuid"
)

// Section is the grouping key of a process entry (e.g. "Discord").
// Sections are open strings; any non-empty key is accepted.
type Section = string

// EntryID is the durable identity of an entry.
// It is assigned once at creation and never derived from the title.
type EntryID string

// NewEntryID generates a fresh identifier.
func NewEntryID() EntryID {
	return EntryID(uuid.NewString())
}

// Entry is a single process article.
type Entry struct {
	ID      EntryID `json:"id"`
	Section Section `json:"section"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
}

// EventType represents the type of change observed in a store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to the backing store made outside the current process.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Path)
}
