// Package refgen generates human-traceable order numbers and transaction
// references: a fixed prefix, a second-resolution timestamp and a 3-digit
// random suffix. Two checkouts in the same second can collide, so the store
// pairs this generator with a UNIQUE constraint and a regenerate-once policy.
package refgen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
)

const stampLayout = "20060102150405"

// Generator produces references. The clock and random source are injectable
// so tests can force same-second collisions deterministically.
type Generator struct {
	now  func() time.Time
	intn func(n int) int
}

func New() *Generator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Generator{now: time.Now, intn: rng.Intn}
}

// NewWith builds a Generator with a fixed clock and random source.
func NewWith(now func() time.Time, intn func(n int) int) *Generator {
	return &Generator{now: now, intn: intn}
}

// OrderNumber returns e.g. "ORD20260830114501342".
func (g *Generator) OrderNumber() string {
	return g.ref("ORD")
}

// TransactionRef returns e.g. "TX20260830114501342", or "CASH..." for
// cash on delivery.
func (g *Generator) TransactionRef(method entity.PaymentMethod) string {
	return g.ref(method.RefPrefix())
}

func (g *Generator) ref(prefix string) string {
	return fmt.Sprintf("%s%s%03d", prefix, g.now().UTC().Format(stampLayout), 100+g.intn(900))
}
