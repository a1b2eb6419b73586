package refgen

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	at := time.Date(2026, 8, 30, 11, 45, 1, 0, time.UTC)
	return func() time.Time { return at }
}

func TestOrderNumber_Format(t *testing.T) {
	g := NewWith(fixedClock(t), func(int) int { return 42 })

	assert.Equal(t, "ORD20260830114501142", g.OrderNumber())
}

func TestOrderNumber_MatchesPattern(t *testing.T) {
	g := New()

	assert.Regexp(t, regexp.MustCompile(`^ORD\d{14}\d{3}$`), g.OrderNumber())
}

func TestTransactionRef_PrefixPerMethod(t *testing.T) {
	g := NewWith(fixedClock(t), func(int) int { return 0 })

	assert.Equal(t, "TX20260830114501100", g.TransactionRef(entity.MethodCard))
	assert.Equal(t, "TX20260830114501100", g.TransactionRef(entity.MethodMobileMoney))
	assert.Equal(t, "TX20260830114501100", g.TransactionRef(entity.MethodBankTransfer))
	assert.Equal(t, "CASH20260830114501100", g.TransactionRef(entity.MethodCash))
}

func TestOrderNumber_SameSecondDifferentSuffix(t *testing.T) {
	suffixes := []int{7, 8}
	i := 0
	g := NewWith(fixedClock(t), func(int) int { n := suffixes[i]; i++; return n })

	first := g.OrderNumber()
	second := g.OrderNumber()
	assert.NotEqual(t, first, second)
}
