// Package sqlite provides the SQLite-backed implementation of the checkout
// storage ports: orders, order items and the payment transaction ledger.
//
// WAL mode is enabled on Open so callback-driven status updates never block
// in-flight checkout reads. Uniqueness of order_number and transaction_ref
// lives in UNIQUE constraints here, not in application-level locks; the
// write path regenerates once on a constraint violation and then gives up
// with DuplicateReferenceError.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/refgen"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps Docker (Alpine) builds trivial.
	sqlite "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id               TEXT PRIMARY KEY,
    order_number     TEXT NOT NULL UNIQUE,
    user_id          TEXT NOT NULL,
    -- Money is stored as exact decimal strings, never floats.
    total_amount     TEXT NOT NULL,
    payment_method   TEXT NOT NULL,
    shipping_address TEXT NOT NULL,
    status           TEXT NOT NULL,
    created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    id          TEXT PRIMARY KEY,
    order_id    TEXT NOT NULL REFERENCES orders(id),
    product_id  TEXT NOT NULL,
    quantity    INTEGER NOT NULL,
    unit_price  TEXT NOT NULL,
    total_price TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS transactions (
    id               TEXT PRIMARY KEY,
    transaction_ref  TEXT NOT NULL UNIQUE,
    user_id          TEXT NOT NULL,
    amount           TEXT NOT NULL,
    transaction_type TEXT NOT NULL,
    payment_method   TEXT NOT NULL,
    payment_status   TEXT NOT NULL,
    payment_details  TEXT NOT NULL DEFAULT '{}',
    order_id         TEXT NOT NULL REFERENCES orders(id),
    created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_order_id ON transactions(order_id);
`

// ErrNotFound is returned when a lookup by id, number or reference matches
// no row.
var ErrNotFound = entity.ErrNotFound

// Store implements ports.CheckoutStore on a SQLite database.
type Store struct {
	db   *sql.DB
	refs refSource
}

var _ ports.CheckoutStore = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema.
//
//	store, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Store, error) {
	// _pragma query parameters configure each connection of the pure-Go
	// driver. busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db, refs: refgen.New()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Begin opens a checkout unit-of-work. The caller must Commit or Rollback;
// Rollback after Commit is a no-op, so `defer uow.Rollback()` is the
// expected usage.
func (s *Store) Begin(ctx context.Context) (ports.CheckoutUnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "begin unit-of-work", Err: err}
	}
	return &unitOfWork{tx: tx, refs: s.refs}, nil
}

// GetOrder loads an order and its items by row id.
func (s *Store) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return s.getOrder(ctx, "id", id)
}

// GetOrderByNumber loads an order and its items by its human-readable number.
func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*entity.Order, error) {
	return s.getOrder(ctx, "order_number", number)
}

func (s *Store) getOrder(ctx context.Context, column, key string) (*entity.Order, error) {
	q := fmt.Sprintf(`
		SELECT id, order_number, user_id, total_amount, payment_method,
		       shipping_address, status, created_at
		FROM   orders
		WHERE  %s = ?`, column)

	row := s.db.QueryRowContext(ctx, q, key)

	var o entity.Order
	var total, createdAt string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &total, &o.PaymentMethod,
		&o.ShippingAddress, &o.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &entity.PersistenceError{Op: "get order", Err: err}
	}

	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("sqlite: parse total_amount %q: %w", total, err)
	}
	if o.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}

	if o.Items, err = s.getItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) getItems(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	const q = `
		SELECT id, order_id, product_id, quantity, unit_price, total_price
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := s.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "get order items", Err: err}
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		var unit, total string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &unit, &total); err != nil {
			return nil, &entity.PersistenceError{Op: "scan order item", Err: err}
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, fmt.Errorf("sqlite: parse unit_price %q: %w", unit, err)
		}
		if it.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("sqlite: parse total_price %q: %w", total, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateOrderStatus mutates the only mutable order field.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return &entity.PersistenceError{Op: "update order status", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTransactionByRef loads a ledger row by its unique reference.
func (s *Store) GetTransactionByRef(ctx context.Context, ref string) (*entity.Transaction, error) {
	const q = `
		SELECT id, transaction_ref, user_id, amount, transaction_type,
		       payment_method, payment_status, payment_details, order_id, created_at
		FROM   transactions
		WHERE  transaction_ref = ?`

	return scanTransaction(s.db.QueryRowContext(ctx, q, ref))
}

// UpdateTransactionStatus applies a gateway-reported status under the
// ledger's terminal-state rule:
//
//   - repeating the stored terminal status is an idempotent no-op;
//   - moving from one terminal status to a different one fails with
//     LedgerConflictError and leaves the row untouched.
//
// A non-nil payload replaces payment_details so the latest gateway response
// is kept alongside the status.
func (s *Store) UpdateTransactionStatus(ctx context.Context, ref string, status entity.PaymentStatus, payload json.RawMessage) (*entity.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "begin status update", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		SELECT id, transaction_ref, user_id, amount, transaction_type,
		       payment_method, payment_status, payment_details, order_id, created_at
		FROM   transactions
		WHERE  transaction_ref = ?`

	current, err := scanTransaction(tx.QueryRowContext(ctx, q, ref))
	if err != nil {
		return nil, err
	}

	if current.PaymentStatus.IsTerminal() && current.PaymentStatus == status {
		return current, nil
	}
	if !entity.CanTransition(current.PaymentStatus, status) {
		return nil, &entity.LedgerConflictError{Ref: ref, From: current.PaymentStatus, To: status}
	}

	details := current.PaymentDetails
	if payload != nil {
		details = payload
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE transactions SET payment_status = ?, payment_details = ? WHERE transaction_ref = ?`,
		string(status), string(details), ref)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "update transaction status", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &entity.PersistenceError{Op: "commit status update", Err: err}
	}

	current.PaymentStatus = status
	current.PaymentDetails = details
	return current, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var t entity.Transaction
	var amount, details, createdAt string
	err := row.Scan(&t.ID, &t.TransactionRef, &t.UserID, &amount, &t.TransactionType,
		&t.PaymentMethod, &t.PaymentStatus, &details, &t.OrderID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &entity.PersistenceError{Op: "get transaction", Err: err}
	}

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("sqlite: parse amount %q: %w", amount, err)
	}
	t.PaymentDetails = json.RawMessage(details)
	if t.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// SQLITE_CONSTRAINT_UNIQUE — a UNIQUE constraint (order_number,
// transaction_ref) was violated.
const sqliteConstraintUnique = 2067

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqliteConstraintUnique
}
