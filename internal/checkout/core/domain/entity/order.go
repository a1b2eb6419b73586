package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a read-only snapshot of one cart position at checkout time.
// The cart itself is owned by the cart collaborator; checkout never mutates it.
type CartLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity × unit price in exact decimal arithmetic.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the durable record of one checkout attempt. TotalAmount is frozen
// from the cart snapshot at creation; only Status changes afterwards.
type Order struct {
	ID              string
	OrderNumber     string
	UserID          string
	TotalAmount     decimal.Decimal
	PaymentMethod   PaymentMethod
	ShippingAddress string
	Status          OrderStatus
	Items           []OrderItem
	CreatedAt       time.Time
}

// OrderItem is one line of an order, written in the same unit-of-work as its
// parent. Invariant: Σ TotalPrice over an order's items == Order.TotalAmount.
type OrderItem struct {
	ID         string
	OrderID    string
	ProductID  string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}
