package ports

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
)

// OrderDraft is the input to order creation. The total is frozen from the
// cart snapshot; the store never recomputes it.
type OrderDraft struct {
	UserID          string
	Total           decimal.Decimal
	PaymentMethod   entity.PaymentMethod
	ShippingAddress string
	Lines           []entity.CartLine
}

// TransactionDraft is the input to recording a pending payment attempt.
type TransactionDraft struct {
	UserID        string
	Amount        decimal.Decimal
	PaymentMethod entity.PaymentMethod
	OrderID       string
	Details       json.RawMessage
}

// OrderStore creates an order and all of its items as one atomic write.
type OrderStore interface {
	CreateOrder(ctx context.Context, draft OrderDraft) (*entity.Order, error)
}

// TransactionLedger records one payment attempt with status pending.
type TransactionLedger interface {
	RecordTransaction(ctx context.Context, draft TransactionDraft) (*entity.Transaction, error)
}

// CheckoutUnitOfWork is the scoped storage transaction spanning order,
// items and ledger writes. Rollback after Commit is a no-op, so callers
// defer Rollback unconditionally and the scope is released on every exit
// path, panics included.
type CheckoutUnitOfWork interface {
	OrderStore
	TransactionLedger
	Commit() error
	Rollback() error
}

// CheckoutStore opens unit-of-work scopes and answers reads/updates that
// happen outside any checkout scope (status lookups, gateway callbacks).
type CheckoutStore interface {
	Begin(ctx context.Context) (CheckoutUnitOfWork, error)

	GetOrder(ctx context.Context, id string) (*entity.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) error

	GetTransactionByRef(ctx context.Context, ref string) (*entity.Transaction, error)

	// UpdateTransactionStatus applies the terminal-state rule of the ledger:
	// repeating a terminal status is a no-op returning the stored row, while
	// moving between different terminal statuses fails with LedgerConflictError.
	UpdateTransactionStatus(ctx context.Context, ref string, status entity.PaymentStatus, payload json.RawMessage) (*entity.Transaction, error)
}

// CartService is the cart collaborator. Checkout reads a snapshot and, only
// after a committed cash order, clears it.
type CartService interface {
	GetUserCart(ctx context.Context, userID string) ([]entity.CartLine, error)
	ClearCart(ctx context.Context, userID string) error
}

// InitializeRequest is the single capability shared by every gateway variant.
type InitializeRequest struct {
	Amount         decimal.Decimal
	PayerEmail     string
	TransactionRef string
	CallbackURL    string
	Metadata       map[string]any
}

// Initialization is a normalized gateway acceptance. RedirectURL is empty
// for cash on delivery, where acceptance is immediate.
type Initialization struct {
	RedirectURL string
}

// PaymentGateway wraps one external payment processor. Rejections and
// malformed responses surface as *entity.GatewayError.
type PaymentGateway interface {
	Name() string
	Initialize(ctx context.Context, req InitializeRequest) (*Initialization, error)
}

// GatewaySelector resolves the gateway for a payment method once at entry.
type GatewaySelector interface {
	ForMethod(method entity.PaymentMethod) (PaymentGateway, error)
}

// CheckoutService is the port the HTTP layer depends on.
type CheckoutService interface {
	Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.CheckoutResult, error)
}
