package core

import (
	"slices"
	"strconv"
)

// Catalog is an ordered mapping from section to its ordered entries.
// Section order is first-insertion order; entry order is insertion order.
// A Catalog returned by a Repository is a snapshot owned by the caller.
type Catalog struct {
	order   []Section
	entries map[Section][]Entry
}

// NewCatalog returns an empty catalog.
func NewCatalog() Catalog {
	return Catalog{entries: make(map[Section][]Entry)}
}

// Sections returns the section keys in order.
func (c Catalog) Sections() []Section {
	return slices.Clone(c.order)
}

// Has reports whether the section is present (it may hold no entries).
func (c Catalog) Has(section Section) bool {
	_, ok := c.entries[section]
	return ok
}

// Entries returns a copy of the entries of a section, in order.
// An unknown section yields an empty slice.
func (c Catalog) Entries(section Section) []Entry {
	return slices.Clone(c.entries[section])
}

// Len returns the number of entries across all sections.
func (c Catalog) Len() int {
	n := 0
	for _, list := range c.entries {
		n += len(list)
	}
	return n
}

// AddSection registers a section without entries. It is a no-op if present.
func (c *Catalog) AddSection(section Section) {
	if c.entries == nil {
		c.entries = make(map[Section][]Entry)
	}
	if _, ok := c.entries[section]; ok {
		return
	}
	c.order = append(c.order, section)
	c.entries[section] = []Entry{}
}

// Append adds an entry at the end of its section, creating the section if needed.
func (c *Catalog) Append(e Entry) {
	c.AddSection(e.Section)
	c.entries[e.Section] = append(c.entries[e.Section], e)
}

// Find returns the entry with the given id in a section and its position.
func (c Catalog) Find(section Section, id EntryID) (Entry, int, bool) {
	for i, e := range c.entries[section] {
		if e.ID == id {
			return e, i, true
		}
	}
	return Entry{}, -1, false
}

// Replace swaps the stored entry that has e's section and id.
// It reports false, leaving the catalog untouched, when no such entry exists.
func (c *Catalog) Replace(e Entry) bool {
	_, i, ok := c.Find(e.Section, e.ID)
	if !ok {
		return false
	}
	c.entries[e.Section][i] = e
	return true
}

// Remove deletes an entry. The section stays registered even when it becomes empty.
func (c *Catalog) Remove(section Section, id EntryID) bool {
	_, i, ok := c.Find(section, id)
	if !ok {
		return false
	}
	c.entries[section] = slices.Delete(c.entries[section], i, i+1)
	return true
}

// Clone returns a deep copy.
func (c Catalog) Clone() Catalog {
	out := NewCatalog()
	for _, s := range c.order {
		out.AddSection(s)
		out.entries[s] = append(out.entries[s], c.entries[s]...)
	}
	return out
}

// DefaultSeed returns the built-in sections used when no persisted data exists.
// Seed entries carry no identity; the store assigns one when it materializes them.
func DefaultSeed() Catalog {
	seed := NewCatalog()
	layout := []struct {
		section Section
		count   int
	}{
		{"Discord", 3},
		{"Pre-Onboarding", 2},
		{"Program Proper", 1},
		{"Post-Program", 2},
	}
	for _, l := range layout {
		for i := 1; i <= l.count; i++ {
			seed.Append(Entry{
				Section: l.section,
				Title:   "Process " + strconv.Itoa(i),
				Content: "Content for process " + strconv.Itoa(i),
			})
		}
	}
	return seed
}

