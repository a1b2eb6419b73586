// Package pricing sums a cart snapshot into an order total.
//
// All arithmetic uses shopspring/decimal so totals are exact: the stored
// Order.TotalAmount must equal the sum of line subtotals bit for bit, with
// no binary floating point drift.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
)

// Total returns Σ(quantity × unit price) over the lines. An empty cart
// totals zero; rejecting empty carts is the orchestrator's job.
func Total(lines []entity.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
