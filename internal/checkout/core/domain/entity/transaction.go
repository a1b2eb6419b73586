package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsTerminal reports whether no further transition is permitted.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Transaction is the ledger record of one payment attempt. It references an
// order but does not own it; retried checkouts produce fresh transactions.
type Transaction struct {
	ID              string
	TransactionRef  string
	UserID          string
	Amount          decimal.Decimal
	TransactionType string
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	PaymentDetails  json.RawMessage
	OrderID         string
	CreatedAt       time.Time
}

// TransactionTypeSale is the only transaction type checkout records.
const TransactionTypeSale = "sale"

// CanTransition applies the ledger's terminal-state rule. Gateway callbacks
// can arrive more than once or out of order, so:
//
//   - pending → any status: allowed
//   - terminal → same terminal: allowed (idempotent no-op for the caller)
//   - terminal → different status: rejected
func CanTransition(from, to PaymentStatus) bool {
	if !from.IsTerminal() {
		return true
	}
	return from == to
}
