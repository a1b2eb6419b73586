package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/infra/httpx/middlewares"
)

// Handler exposes the checkout core over HTTP: the checkout entry point,
// the gateway callback and order lookup.
type Handler struct {
	checkout ports.CheckoutService
	store    ports.CheckoutStore
}

func NewHandler(checkout ports.CheckoutService, store ports.CheckoutStore) *Handler {
	return &Handler{checkout: checkout, store: store}
}

// Checkout runs the orchestrator for the authenticated user. On success the
// response carries either a redirect to the external payment page or the
// order confirmation for cash. On failure the cart is untouched, so the
// front can re-display the checkout form and let the user retry.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, email := middlewares.Identity(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	var dto CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	method, err := entity.ParsePaymentMethod(dto.PaymentMethod)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "checkout requested", "user_id", userID, "payment_method", method)

	result, err := h.checkout.Checkout(r.Context(), entity.CheckoutRequest{
		UserID:          userID,
		Email:           email,
		PaymentMethod:   method,
		ShippingAddress: dto.ShippingAddress,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		RedirectURL: result.RedirectURL,
		Confirmed:   result.Confirmed,
	})
}

// PaymentCallback receives gateway-originated status updates keyed by
// transaction_ref. Gateways redeliver, so repeats of a terminal status are
// accepted; conflicting terminal updates are rejected without altering
// stored state. A successful payment moves the linked order to paid, a
// failed one to failed.
func (h *Handler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var dto CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if dto.TransactionRef == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "transaction_ref is required")
		return
	}

	var status entity.PaymentStatus
	switch entity.PaymentStatus(dto.Status) {
	case entity.PaymentStatusSuccess, entity.PaymentStatusFailed:
		status = entity.PaymentStatus(dto.Status)
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "status must be success or failed")
		return
	}

	txn, err := h.store.UpdateTransactionStatus(r.Context(), dto.TransactionRef, status, dto.Payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	orderStatus := entity.OrderStatusFailed
	if status == entity.PaymentStatusSuccess {
		orderStatus = entity.OrderStatusPaid
	}
	if err := h.store.UpdateOrderStatus(r.Context(), txn.OrderID, orderStatus); err != nil {
		slog.ErrorContext(r.Context(), "failed to update order after callback",
			"transaction_ref", dto.TransactionRef, "order_id", txn.OrderID, "error", err)
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "payment callback applied",
		"transaction_ref", dto.TransactionRef, "payment_status", status, "order_id", txn.OrderID)

	writeJSON(w, http.StatusOK, CallbackResponse{
		TransactionRef: txn.TransactionRef,
		PaymentStatus:  string(txn.PaymentStatus),
	})
}

// GetOrderByNumber serves the order-success page data.
func (h *Handler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "order number is required")
		return
	}

	order, err := h.store.GetOrderByNumber(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func mapOrderToResponse(order *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderItemResponse{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.String(),
			TotalPrice: it.TotalPrice.String(),
		}
	}
	return OrderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		TotalAmount:     order.TotalAmount.String(),
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		Status:          string(order.Status),
		Items:           items,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
}

// writeDomainError maps the checkout error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		verr *entity.ValidationError
		gerr *entity.GatewayError
		derr *entity.DuplicateReferenceError
		cerr *entity.LedgerConflictError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_error", verr.Reason)
	case errors.As(err, &gerr):
		writeError(w, http.StatusBadGateway, "gateway_rejected", gerr.Error())
	case errors.As(err, &derr):
		writeError(w, http.StatusConflict, "duplicate_reference", derr.Error())
	case errors.As(err, &cerr):
		writeError(w, http.StatusConflict, "ledger_conflict", cerr.Error())
	case errors.Is(err, entity.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	default:
		writeError(w, http.StatusInternalServerError, "persistence_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
