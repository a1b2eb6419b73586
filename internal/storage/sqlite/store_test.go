package sqlite

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
)

// stubRefs cycles through fixed references so collision handling can be
// exercised deterministically.
type stubRefs struct {
	orders []string
	txs    []string
	oi, ti int
}

func (s *stubRefs) OrderNumber() string {
	n := s.orders[s.oi%len(s.orders)]
	s.oi++
	return n
}

func (s *stubRefs) TransactionRef(entity.PaymentMethod) string {
	n := s.txs[s.ti%len(s.txs)]
	s.ti++
	return n
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testDraft() ports.OrderDraft {
	return ports.OrderDraft{
		UserID:          "user-1",
		Total:           decimal.RequireFromString("20.00"),
		PaymentMethod:   entity.MethodCash,
		ShippingAddress: "12 Harbour Road",
		Lines: []entity.CartLine{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
	}
}

func mustCheckout(t *testing.T, st *Store, draft ports.OrderDraft) (*entity.Order, *entity.Transaction) {
	t.Helper()
	ctx := context.Background()

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	order, err := uow.CreateOrder(ctx, draft)
	require.NoError(t, err)

	txn, err := uow.RecordTransaction(ctx, ports.TransactionDraft{
		UserID:        draft.UserID,
		Amount:        draft.Total,
		PaymentMethod: draft.PaymentMethod,
		OrderID:       order.ID,
	})
	require.NoError(t, err)

	require.NoError(t, uow.Commit())
	return order, txn
}

func TestCreateOrder_PersistsOrderAndItems(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	draft := ports.OrderDraft{
		UserID:          "user-1",
		Total:           decimal.RequireFromString("109.97"),
		PaymentMethod:   entity.MethodCard,
		ShippingAddress: "12 Harbour Road",
		Lines: []entity.CartLine{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: "prod-2", Quantity: 3, UnitPrice: decimal.RequireFromString("29.99")},
		},
	}

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	order, err := uow.CreateOrder(ctx, draft)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	stored, err := st.GetOrderByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
	assert.Equal(t, entity.MethodCard, stored.PaymentMethod)
	assert.True(t, stored.TotalAmount.Equal(draft.Total))
	require.Len(t, stored.Items, 2)

	sum := decimal.Zero
	for _, it := range stored.Items {
		sum = sum.Add(it.TotalPrice)
	}
	assert.True(t, sum.Equal(stored.TotalAmount), "sum of item totals must equal order total")
}

func TestCreateOrder_EmptyShippingAddress(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	draft := testDraft()
	draft.ShippingAddress = ""

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	_, err = uow.CreateOrder(ctx, draft)
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateOrder_NonPositiveQuantity(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	draft := testDraft()
	draft.Lines[0].Quantity = 0

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	_, err = uow.CreateOrder(ctx, draft)
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateOrder_CollisionRegeneratesOnce(t *testing.T) {
	st := openTestStore(t)
	st.refs = &stubRefs{
		orders: []string{"ORD20260830114501100", "ORD20260830114501100", "ORD20260830114501101"},
		txs:    []string{"CASH20260830114501100", "CASH20260830114501101"},
	}

	first, _ := mustCheckout(t, st, testDraft())
	assert.Equal(t, "ORD20260830114501100", first.OrderNumber)

	// The second checkout draws the same number, hits the UNIQUE constraint
	// and succeeds with the regenerated one.
	second, _ := mustCheckout(t, st, testDraft())
	assert.Equal(t, "ORD20260830114501101", second.OrderNumber)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
}

func TestCreateOrder_DuplicateAfterRetry(t *testing.T) {
	st := openTestStore(t)
	st.refs = &stubRefs{
		orders: []string{"ORD20260830114501100"},
		txs:    []string{"CASH20260830114501100"},
	}
	ctx := context.Background()

	mustCheckout(t, st, testDraft())

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	_, err = uow.CreateOrder(ctx, testDraft())
	var derr *entity.DuplicateReferenceError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "ORD20260830114501100", derr.Ref)
}

func TestRecordTransaction_Pending(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	order, txn := mustCheckout(t, st, testDraft())

	stored, err := st.GetTransactionByRef(ctx, txn.TransactionRef)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, stored.PaymentStatus)
	assert.Equal(t, entity.TransactionTypeSale, stored.TransactionType)
	assert.Equal(t, order.ID, stored.OrderID)
	assert.True(t, stored.Amount.Equal(order.TotalAmount))
	assert.JSONEq(t, "{}", string(stored.PaymentDetails))
}

func TestRollback_RemovesAllCheckoutWrites(t *testing.T) {
	st := openTestStore(t)
	st.refs = &stubRefs{
		orders: []string{"ORD20260830114501100", "ORD20260830114501200"},
		txs:    []string{"CASH20260830114501100"},
	}
	ctx := context.Background()

	// First checkout takes transaction ref CASH...100.
	mustCheckout(t, st, testDraft())

	// Second checkout: the order insert succeeds, then the ledger insert
	// keeps colliding. The whole unit-of-work must roll back.
	uow, err := st.Begin(ctx)
	require.NoError(t, err)

	order, err := uow.CreateOrder(ctx, testDraft())
	require.NoError(t, err)

	_, err = uow.RecordTransaction(ctx, ports.TransactionDraft{
		UserID:        "user-1",
		Amount:        order.TotalAmount,
		PaymentMethod: entity.MethodCash,
		OrderID:       order.ID,
	})
	var derr *entity.DuplicateReferenceError
	require.ErrorAs(t, err, &derr)
	require.NoError(t, uow.Rollback())

	// No order, no items.
	_, err = st.GetOrderByNumber(ctx, "ORD20260830114501200")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, st.db.QueryRow(
		`SELECT COUNT(*) FROM order_items WHERE order_id = ?`, order.ID).Scan(&count))
	assert.Zero(t, count)
}

func TestRollbackAfterCommit_IsNoOp(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	_, err = uow.CreateOrder(ctx, testDraft())
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	assert.NoError(t, uow.Rollback())
}

func TestUpdateTransactionStatus_Idempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, txn := mustCheckout(t, st, testDraft())
	payload := json.RawMessage(`{"gateway":"flutterwave","flw_ref":"FLW-123"}`)

	updated, err := st.UpdateTransactionStatus(ctx, txn.TransactionRef, entity.PaymentStatusSuccess, payload)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSuccess, updated.PaymentStatus)

	// Gateways redeliver callbacks; the repeat must be a silent no-op.
	again, err := st.UpdateTransactionStatus(ctx, txn.TransactionRef, entity.PaymentStatusSuccess, payload)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSuccess, again.PaymentStatus)

	stored, err := st.GetTransactionByRef(ctx, txn.TransactionRef)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSuccess, stored.PaymentStatus)
	assert.JSONEq(t, string(payload), string(stored.PaymentDetails))
}

func TestUpdateTransactionStatus_TerminalConflict(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, txn := mustCheckout(t, st, testDraft())

	_, err := st.UpdateTransactionStatus(ctx, txn.TransactionRef, entity.PaymentStatusSuccess, nil)
	require.NoError(t, err)

	_, err = st.UpdateTransactionStatus(ctx, txn.TransactionRef, entity.PaymentStatusFailed, nil)
	var cerr *entity.LedgerConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, entity.PaymentStatusSuccess, cerr.From)
	assert.Equal(t, entity.PaymentStatusFailed, cerr.To)

	stored, err := st.GetTransactionByRef(ctx, txn.TransactionRef)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSuccess, stored.PaymentStatus, "stored status must not change on conflict")
}

func TestUpdateTransactionStatus_UnknownRef(t *testing.T) {
	st := openTestStore(t)

	_, err := st.UpdateTransactionStatus(context.Background(), "TX000", entity.PaymentStatusSuccess, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	order, _ := mustCheckout(t, st, testDraft())

	require.NoError(t, st.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusPaid))

	stored, err := st.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, stored.Status)

	assert.ErrorIs(t, st.UpdateOrderStatus(ctx, "missing", entity.OrderStatusPaid), ErrNotFound)
}
