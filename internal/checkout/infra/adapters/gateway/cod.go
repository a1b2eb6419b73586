package gateway

import (
	"context"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
)

// CashOnDelivery is the no-network gateway variant: initialization is
// synonymous with acceptance, so it returns an empty redirect and never
// fails.
type CashOnDelivery struct{}

var _ ports.PaymentGateway = CashOnDelivery{}

func NewCashOnDelivery() CashOnDelivery { return CashOnDelivery{} }

func (CashOnDelivery) Name() string { return "cash_on_delivery" }

func (CashOnDelivery) Initialize(_ context.Context, _ ports.InitializeRequest) (*ports.Initialization, error) {
	return &ports.Initialization{}, nil
}
