package checkoutlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// NewEntry builds an Entry stamped with the trace/span ids of the active
// OpenTelemetry span in ctx. Without an active span (unit tests) both ids
// stay empty.
func NewEntry(ctx context.Context, checkoutID string, state State) *Entry {
	entry := &Entry{
		CheckoutID: checkoutID,
		State:      state,
		UpdatedAt:  time.Now().UTC(),
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		entry.TraceID = sc.TraceID().String()
		entry.SpanID = sc.SpanID().String()
	}
	return entry
}
