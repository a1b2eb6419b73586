// Package checkoutlog defines the domain types for the checkout audit trail.
//
// Every transition of the checkout state machine is appended as an immutable
// row, so operations can see exactly how far a checkout got (and why it
// rolled back) and jump from a row to the distributed trace via trace_id.
package checkoutlog

import "time"

// State is a checkout state-machine position at the time a row was written.
type State string

const (
	StateStarted             State = "STARTED"
	StateOrderPersisted      State = "ORDER_PERSISTED"
	StateTransactionRecorded State = "TRANSACTION_RECORDED"
	StateGatewayInitialized  State = "GATEWAY_INITIALIZED"
	StateCommitted           State = "COMMITTED"
	StateRolledBack          State = "ROLLED_BACK"
)

// Entry is a single row in the checkout_logs table.
type Entry struct {
	// CheckoutID identifies one checkout attempt across all of its rows.
	CheckoutID string

	// State is the machine position this row records.
	State State

	// OrderNumber and TransactionRef are filled in once the corresponding
	// references exist; earlier rows leave them empty.
	OrderNumber    string
	TransactionRef string

	// ErrorMessage carries the failure that caused a ROLLED_BACK row.
	ErrorMessage string

	// TraceID / SpanID come from the active OpenTelemetry span so the audit
	// row can be correlated with the request trace.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
