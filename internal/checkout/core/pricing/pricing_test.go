package pricing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
)

func TestTotal_EmptyCart(t *testing.T) {
	total := Total(nil)
	assert.True(t, total.IsZero())

	total = Total([]entity.CartLine{})
	assert.True(t, total.IsZero())
}

func TestTotal_SingleLine(t *testing.T) {
	lines := []entity.CartLine{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
	}

	total := Total(lines)
	assert.Equal(t, "20", total.String())
	assert.True(t, total.Equal(decimal.RequireFromString("20.00")))
}

func TestTotal_MixedPrecisionPrices(t *testing.T) {
	// 0.1 + 0.2 style cases that drift under binary floating point.
	lines := []entity.CartLine{
		{ProductID: "a", Quantity: 1, UnitPrice: decimal.RequireFromString("0.10")},
		{ProductID: "b", Quantity: 1, UnitPrice: decimal.RequireFromString("0.20")},
		{ProductID: "c", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
	}

	total := Total(lines)
	assert.True(t, total.Equal(decimal.RequireFromString("60.27")))
}

func TestTotal_RandomizedCarts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		n := 1 + rng.Intn(10)
		lines := make([]entity.CartLine, 0, n)
		want := decimal.Zero

		for j := 0; j < n; j++ {
			qty := 1 + rng.Intn(9)
			// Prices with two decimal places, up to 999.99.
			price := decimal.New(int64(rng.Intn(100000)), -2)
			lines = append(lines, entity.CartLine{
				ProductID: fmt.Sprintf("p%d", j),
				Quantity:  qty,
				UnitPrice: price,
			})
			want = want.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		}

		got := Total(lines)
		require.True(t, got.Equal(want), "cart %d: got %s want %s", i, got, want)
	}
}
