package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
)

// unitOfWork wraps one sql.Tx spanning the whole checkout write scope:
// order, items and the pending ledger row either all commit or none do.
type unitOfWork struct {
	tx   *sql.Tx
	refs refSource
}

// refSource is the slice of refgen.Generator the unit-of-work needs.
// Tests substitute a deterministic source to force reference collisions.
type refSource interface {
	OrderNumber() string
	TransactionRef(method entity.PaymentMethod) string
}

var _ ports.CheckoutUnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return &entity.PersistenceError{Op: "commit unit-of-work", Err: err}
	}
	return nil
}

// Rollback undoes all writes in the scope. After a successful Commit it is
// a no-op, which is what makes `defer uow.Rollback()` a safe release on
// every exit path.
func (u *unitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return &entity.PersistenceError{Op: "rollback unit-of-work", Err: err}
	}
	return nil
}

// CreateOrder persists the order row and one item row per cart line. The
// order number is regenerated once on a UNIQUE violation; a second
// collision fails with DuplicateReferenceError. SQLite aborts only the
// failed statement, not the enclosing transaction, so the retry stays
// inside the same scope.
func (u *unitOfWork) CreateOrder(ctx context.Context, draft ports.OrderDraft) (*entity.Order, error) {
	if draft.ShippingAddress == "" {
		return nil, &entity.ValidationError{Reason: "shipping address is required"}
	}
	for _, line := range draft.Lines {
		if line.Quantity <= 0 {
			return nil, &entity.ValidationError{Reason: "item quantity must be positive"}
		}
	}

	order := &entity.Order{
		ID:              uuid.NewString(),
		UserID:          draft.UserID,
		TotalAmount:     draft.Total,
		PaymentMethod:   draft.PaymentMethod,
		ShippingAddress: draft.ShippingAddress,
		Status:          entity.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	const q = `
		INSERT INTO orders
			(id, order_number, user_id, total_amount, payment_method, shipping_address, status, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	for attempt := 0; ; attempt++ {
		order.OrderNumber = u.refs.OrderNumber()

		_, err := u.tx.ExecContext(ctx, q,
			order.ID,
			order.OrderNumber,
			order.UserID,
			order.TotalAmount.String(),
			string(order.PaymentMethod),
			order.ShippingAddress,
			string(order.Status),
			formatRFC3339(order.CreatedAt),
		)
		if err == nil {
			break
		}
		if isUniqueViolation(err) {
			if attempt == 0 {
				continue
			}
			return nil, &entity.DuplicateReferenceError{Ref: order.OrderNumber}
		}
		return nil, &entity.PersistenceError{Op: "insert order", Err: err}
	}

	const itemQ = `
		INSERT INTO order_items
			(id, order_id, product_id, quantity, unit_price, total_price)
		VALUES
			(?, ?, ?, ?, ?, ?)`

	for _, line := range draft.Lines {
		item := entity.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    order.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.Subtotal(),
		}

		_, err := u.tx.ExecContext(ctx, itemQ,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice.String(),
			item.TotalPrice.String(),
		)
		if err != nil {
			return nil, &entity.PersistenceError{Op: "insert order item", Err: err}
		}
		order.Items = append(order.Items, item)
	}

	return order, nil
}

// RecordTransaction inserts the pending ledger row for a payment attempt,
// with the same regenerate-once collision policy as order numbers.
func (u *unitOfWork) RecordTransaction(ctx context.Context, draft ports.TransactionDraft) (*entity.Transaction, error) {
	details := draft.Details
	if details == nil {
		details = []byte("{}")
	}

	txn := &entity.Transaction{
		ID:              uuid.NewString(),
		UserID:          draft.UserID,
		Amount:          draft.Amount,
		TransactionType: entity.TransactionTypeSale,
		PaymentMethod:   draft.PaymentMethod,
		PaymentStatus:   entity.PaymentStatusPending,
		PaymentDetails:  details,
		OrderID:         draft.OrderID,
		CreatedAt:       time.Now().UTC(),
	}

	const q = `
		INSERT INTO transactions
			(id, transaction_ref, user_id, amount, transaction_type, payment_method,
			 payment_status, payment_details, order_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for attempt := 0; ; attempt++ {
		txn.TransactionRef = u.refs.TransactionRef(draft.PaymentMethod)

		_, err := u.tx.ExecContext(ctx, q,
			txn.ID,
			txn.TransactionRef,
			txn.UserID,
			txn.Amount.String(),
			txn.TransactionType,
			string(txn.PaymentMethod),
			string(txn.PaymentStatus),
			string(txn.PaymentDetails),
			txn.OrderID,
			formatRFC3339(txn.CreatedAt),
		)
		if err == nil {
			return txn, nil
		}
		if isUniqueViolation(err) {
			if attempt == 0 {
				continue
			}
			return nil, &entity.DuplicateReferenceError{Ref: txn.TransactionRef}
		}
		return nil, &entity.PersistenceError{Op: "insert transaction", Err: err}
	}
}
