package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
)

func TestSelector_ForMethod(t *testing.T) {
	card := NewFlutterwave(Config{BaseURL: "http://card"}, "NGN")
	momo := NewPaystack(Config{BaseURL: "http://ps"}, "mobile_money")
	bank := NewPaystack(Config{BaseURL: "http://ps"}, "bank_transfer")
	cash := NewCashOnDelivery()

	sel := NewSelector(card, momo, bank, cash)

	got, err := sel.ForMethod(entity.MethodCard)
	require.NoError(t, err)
	assert.Equal(t, "flutterwave", got.Name())

	got, err = sel.ForMethod(entity.MethodMobileMoney)
	require.NoError(t, err)
	assert.Equal(t, "paystack", got.Name())

	got, err = sel.ForMethod(entity.MethodBankTransfer)
	require.NoError(t, err)
	assert.Equal(t, "paystack", got.Name())

	got, err = sel.ForMethod(entity.MethodCash)
	require.NoError(t, err)
	assert.Equal(t, "cash_on_delivery", got.Name())
}

func TestSelector_UnknownMethod(t *testing.T) {
	sel := NewSelector(nil, nil, nil, NewCashOnDelivery())

	_, err := sel.ForMethod(entity.PaymentMethod("crypto"))
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCashOnDelivery_AcceptsImmediately(t *testing.T) {
	init, err := NewCashOnDelivery().Initialize(context.Background(), initReq())
	require.NoError(t, err)
	assert.Empty(t, init.RedirectURL)
}
