// Package sqlite provides a SQLite-backed implementation of
// checkoutlog.Repository.
//
// The audit database is separate from the checkout store so trail writes
// never contend with the single-writer checkout unit-of-work.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront-checkout/internal/coordinator/checkoutlog"

	// Register the pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- One checkout attempt produces multiple rows, one per transition.
    checkout_id     TEXT NOT NULL,

    state           TEXT NOT NULL,

    -- Filled in once the references exist; empty on earlier rows.
    order_number    TEXT NOT NULL DEFAULT '',
    transaction_ref TEXT NOT NULL DEFAULT '',

    error_message   TEXT NOT NULL DEFAULT '',

    -- W3C trace/span ids of the active OTel span, for trace correlation.
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',

    updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_logs_checkout_id ON checkout_logs(checkout_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace_id ON checkout_logs(trace_id);
`

// Repository is the SQLite implementation of checkoutlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the audit database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("checkoutlog: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checkoutlog: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Append inserts a new audit row. Safe for concurrent use.
func (r *Repository) Append(ctx context.Context, entry *checkoutlog.Entry) error {
	const q = `
		INSERT INTO checkout_logs
			(checkout_id, state, order_number, transaction_ref, error_message, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.CheckoutID,
		string(entry.State),
		entry.OrderNumber,
		entry.TransactionRef,
		entry.ErrorMessage,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("checkoutlog: append for %q: %w", entry.CheckoutID, err)
	}
	return nil
}

// Trail returns all entries for a checkout in transition order.
func (r *Repository) Trail(ctx context.Context, checkoutID string) ([]checkoutlog.Entry, error) {
	const q = `
		SELECT checkout_id, state, order_number, transaction_ref, error_message,
		       trace_id, span_id, updated_at
		FROM   checkout_logs
		WHERE  checkout_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("checkoutlog: trail for %q: %w", checkoutID, err)
	}
	defer rows.Close()

	var trail []checkoutlog.Entry
	for rows.Next() {
		var e checkoutlog.Entry
		var updatedAt string
		if err := rows.Scan(&e.CheckoutID, &e.State, &e.OrderNumber, &e.TransactionRef,
			&e.ErrorMessage, &e.TraceID, &e.SpanID, &updatedAt); err != nil {
			return nil, fmt.Errorf("checkoutlog: scan trail row: %w", err)
		}
		if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("checkoutlog: parse time %q: %w", updatedAt, err)
		}
		trail = append(trail, e)
	}
	return trail, rows.Err()
}
