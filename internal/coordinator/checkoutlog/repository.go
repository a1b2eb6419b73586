package checkoutlog

import "context"

// Repository is the port for persisting audit entries. The orchestrator
// depends on this abstraction, not on SQLite directly; tests use an
// in-memory implementation and a nil repository disables the trail.
type Repository interface {
	// Append persists a new entry. The table is an append-only audit log,
	// never an upsert.
	Append(ctx context.Context, entry *Entry) error
}
