// Package manual is the Composition Root for the process manual storage engine.
//
// It connects the core repository logic (Domain Layer) with the storage
// adapters (Persistence Layer) using the Hexagonal Architecture pattern.
//
// A manual is a set of sections ("Discord", "Pre-Onboarding", ...) each
// holding an ordered list of process entries with a title and a content body.
// Every entry carries a durable identity assigned at creation, so renaming a
// title or deleting a sibling never changes which entry an update addresses.
//
// Adapters:
//
//   - **memory**: process-lifetime store, nothing persisted.
//   - **document**: the whole manual in one JSON or YAML file, rewritten atomically.
//   - **sqlite**: one table in a SQLite database (pure Go driver), migrated on open.
//
// A store that has never been written starts with a built-in seed of four
// sections. A store emptied by deletes stays empty.
//
// Usage:
//
//	svc, err := manual.New("data/processes.json",
//		manual.WithAdapter(manual.AdapterDocument),
//		manual.WithLogger(logger),
//	)
//
//	entry, err := svc.Add(ctx, "Discord", "Onboarding call", "Join at 10am")
//	for e, err := range svc.Search(ctx, "Discord", "call") { ... }
package manual
