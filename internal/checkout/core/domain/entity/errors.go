package entity

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups that match no order or transaction.
var ErrNotFound = errors.New("not found")

// ValidationError covers bad or missing checkout input: empty cart, empty
// shipping address, non-positive quantities, unknown payment method.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// DuplicateReferenceError is returned when an order number or transaction
// reference still collides after the single regenerate-and-retry.
type DuplicateReferenceError struct {
	Ref string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("duplicate reference %q after retry", e.Ref)
}

// PersistenceError wraps a storage write that could not complete.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// GatewayError means the external payment processor declined the
// initialization or returned a malformed response. It is distinct from
// PersistenceError so callers can tell "your cart couldn't be saved" from
// "the payment provider rejected the request".
type GatewayError struct {
	Gateway string
	Reason  string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s rejected the request: %s", e.Gateway, e.Reason)
}

// LedgerConflictError is returned when a status update would move a
// transaction from one terminal status to a different one.
type LedgerConflictError struct {
	Ref  string
	From PaymentStatus
	To   PaymentStatus
}

func (e *LedgerConflictError) Error() string {
	return fmt.Sprintf("transaction %s is already %s, cannot move to %s", e.Ref, e.From, e.To)
}
