// Package cart adapts the cart collaborator. Carts live in Redis as JSON
// under "cart:<userID>"; checkout only reads a snapshot and, after a
// committed cash order, clears it.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
)

// storedLine is the wire shape the cart collaborator writes. Prices travel
// as decimal strings so no precision is lost through the cache.
type storedLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type RedisCart struct {
	client *redis.Client
}

var _ ports.CartService = (*RedisCart)(nil)

func NewRedisCart(client *redis.Client) *RedisCart {
	return &RedisCart{client: client}
}

// GetUserCart returns the user's cart snapshot. A missing key is an empty
// cart, not an error; the orchestrator decides what an empty cart means.
func (r *RedisCart) GetUserCart(ctx context.Context, userID string) ([]entity.CartLine, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: redis get failed: %w", err)
	}

	var stored []storedLine
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("cart: unmarshal cart failed: %w", err)
	}

	lines := make([]entity.CartLine, 0, len(stored))
	for _, s := range stored {
		price, err := decimal.NewFromString(s.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("cart: parse unit_price %q: %w", s.UnitPrice, err)
		}
		lines = append(lines, entity.CartLine{
			ProductID: s.ProductID,
			Quantity:  s.Quantity,
			UnitPrice: price,
		})
	}
	return lines, nil
}

func (r *RedisCart) ClearCart(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("cart: redis delete failed: %w", err)
	}
	return nil
}

func cartKey(userID string) string {
	return "cart:" + userID
}
