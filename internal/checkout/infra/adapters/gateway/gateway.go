// Package gateway holds the payment gateway adapters. Each variant wraps
// one external processor's request/response shape and normalizes the
// outcome into ports.Initialization or *entity.GatewayError — nothing
// processor-specific leaks past this package.
package gateway

import (
	"net/http"
	"time"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
)

// Config is shared by the HTTP-backed adapters.
type Config struct {
	BaseURL   string
	SecretKey string

	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// Selector resolves the gateway for a payment method. Resolution happens
// once at checkout entry; an unknown method is a ValidationError raised
// before any persistence.
type Selector struct {
	card         ports.PaymentGateway
	mobileMoney  ports.PaymentGateway
	bankTransfer ports.PaymentGateway
	cash         ports.PaymentGateway
}

var _ ports.GatewaySelector = (*Selector)(nil)

func NewSelector(card, mobileMoney, bankTransfer, cash ports.PaymentGateway) *Selector {
	return &Selector{
		card:         card,
		mobileMoney:  mobileMoney,
		bankTransfer: bankTransfer,
		cash:         cash,
	}
}

func (s *Selector) ForMethod(method entity.PaymentMethod) (ports.PaymentGateway, error) {
	switch method {
	case entity.MethodCard:
		return s.card, nil
	case entity.MethodMobileMoney:
		return s.mobileMoney, nil
	case entity.MethodBankTransfer:
		return s.bankTransfer, nil
	case entity.MethodCash:
		return s.cash, nil
	default:
		return nil, &entity.ValidationError{Reason: "unknown payment method: " + string(method)}
	}
}
