// Package coordinator runs the checkout state machine:
//
//	Started → OrderPersisted → TransactionRecorded → GatewayInitialized → Committed
//
// with an error edge from every state to RolledBack. All storage writes
// happen inside one unit-of-work; the gateway is called while it is still
// open and the commit happens only after the gateway accepts the attempt.
// That deliberately leaves final payment confirmation to a later callback:
// the local transaction stays short-lived, and the callback collaborator is
// the only thing that moves an order out of pending.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/pricing"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/checkoutlog"
)

// Orchestrator sequences pricing, order creation, ledger recording and
// gateway initialization for one checkout attempt. It is synchronous: the
// caller gets the redirect (or confirmation) only after the unit-of-work
// resolved to commit or rollback.
type Orchestrator struct {
	store       ports.CheckoutStore
	cart        ports.CartService
	gateways    ports.GatewaySelector
	audit       checkoutlog.Repository // nil-safe: trail skipped if nil
	callbackURL string
}

var _ ports.CheckoutService = (*Orchestrator)(nil)

// NewOrchestrator wires the orchestrator. audit may be nil, in which case
// state transitions are not persisted to the audit trail.
func NewOrchestrator(
	store ports.CheckoutStore,
	cart ports.CartService,
	gateways ports.GatewaySelector,
	audit checkoutlog.Repository,
	callbackURL string,
) *Orchestrator {
	return &Orchestrator{
		store:       store,
		cart:        cart,
		gateways:    gateways,
		audit:       audit,
		callbackURL: callbackURL,
	}
}

// Checkout converts the user's cart into a durable order plus a pending
// ledger row, then hands off to the selected gateway. Any failure on any
// step rolls every write back; no partial state is ever visible.
func (o *Orchestrator) Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.CheckoutResult, error) {
	if req.UserID == "" {
		return nil, &entity.ValidationError{Reason: "user id is required"}
	}

	// Resolve the gateway once, before any persistence, so an unknown
	// payment method never leaves a trace.
	gw, err := o.gateways.ForMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	lines, err := o.cart.GetUserCart(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart for user %s: %w", req.UserID, err)
	}
	if len(lines) == 0 {
		return nil, &entity.ValidationError{Reason: "cart is empty, nothing to checkout"}
	}

	total := pricing.Total(lines)

	checkoutID := uuid.NewString()
	o.record(ctx, checkoutlog.NewEntry(ctx, checkoutID, checkoutlog.StateStarted))
	slog.InfoContext(ctx, "checkout started",
		"checkout_id", checkoutID, "user_id", req.UserID,
		"payment_method", req.PaymentMethod, "total", total.String())

	uow, err := o.store.Begin(ctx)
	if err != nil {
		return nil, o.rolledBack(ctx, checkoutID, err)
	}
	// Rollback after Commit is a no-op; this releases the scope on every
	// exit path, panics included.
	defer func() { _ = uow.Rollback() }()

	order, err := uow.CreateOrder(ctx, ports.OrderDraft{
		UserID:          req.UserID,
		Total:           total,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Lines:           lines,
	})
	if err != nil {
		return nil, o.rolledBack(ctx, checkoutID, err)
	}

	persisted := checkoutlog.NewEntry(ctx, checkoutID, checkoutlog.StateOrderPersisted)
	persisted.OrderNumber = order.OrderNumber
	o.record(ctx, persisted)

	txn, err := uow.RecordTransaction(ctx, ports.TransactionDraft{
		UserID:        req.UserID,
		Amount:        total,
		PaymentMethod: req.PaymentMethod,
		OrderID:       order.ID,
		Details:       initialDetails(order.ID, req.PaymentMethod),
	})
	if err != nil {
		return nil, o.rolledBack(ctx, checkoutID, err)
	}

	recorded := checkoutlog.NewEntry(ctx, checkoutID, checkoutlog.StateTransactionRecorded)
	recorded.OrderNumber = order.OrderNumber
	recorded.TransactionRef = txn.TransactionRef
	o.record(ctx, recorded)

	init, err := gw.Initialize(ctx, ports.InitializeRequest{
		Amount:         total,
		PayerEmail:     req.Email,
		TransactionRef: txn.TransactionRef,
		CallbackURL:    o.callbackURL,
		Metadata: map[string]any{
			"order_id": order.ID,
			"user_id":  req.UserID,
		},
	})
	if err != nil {
		return nil, o.rolledBack(ctx, checkoutID, err)
	}

	initialized := checkoutlog.NewEntry(ctx, checkoutID, checkoutlog.StateGatewayInitialized)
	initialized.OrderNumber = order.OrderNumber
	initialized.TransactionRef = txn.TransactionRef
	o.record(ctx, initialized)

	if err := uow.Commit(); err != nil {
		return nil, o.rolledBack(ctx, checkoutID, err)
	}
	o.record(ctx, checkoutlog.NewEntry(ctx, checkoutID, checkoutlog.StateCommitted))
	slog.InfoContext(ctx, "checkout committed",
		"checkout_id", checkoutID, "order_number", order.OrderNumber,
		"transaction_ref", txn.TransactionRef, "gateway", gw.Name())

	result := &entity.CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		RedirectURL: init.RedirectURL,
	}

	if req.PaymentMethod == entity.MethodCash {
		result.Confirmed = true
		// The order is already committed; a failed cart clear must not
		// undo the checkout.
		if err := o.cart.ClearCart(ctx, req.UserID); err != nil {
			slog.ErrorContext(ctx, "failed to clear cart after cash order",
				"checkout_id", checkoutID, "order_number", order.OrderNumber, "error", err)
		}
	}

	return result, nil
}

// rolledBack records the error edge and passes the step's error through
// unchanged; the deferred uow.Rollback performs the actual undo.
func (o *Orchestrator) rolledBack(ctx context.Context, checkoutID string, err error) error {
	slog.ErrorContext(ctx, "checkout rolled back", "checkout_id", checkoutID, "error", err)

	entry := checkoutlog.NewEntry(ctx, checkoutID, checkoutlog.StateRolledBack)
	entry.ErrorMessage = err.Error()
	o.record(ctx, entry)
	return err
}

func (o *Orchestrator) record(ctx context.Context, entry *checkoutlog.Entry) {
	if o.audit == nil {
		return
	}
	if err := o.audit.Append(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to append checkout audit entry",
			"checkout_id", entry.CheckoutID, "state", entry.State, "error", err)
	}
}

func initialDetails(orderID string, method entity.PaymentMethod) json.RawMessage {
	details := map[string]any{"order_id": orderID}
	if method == entity.MethodCash {
		details["cod"] = true
	}
	b, _ := json.Marshal(details)
	return b
}
