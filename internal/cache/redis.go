package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"storefront_back_end/internal/models"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache holds the shopping carts written by the storefront and a
// read-through copy of product stock counts.
type RedisCache struct {
	client   *redis.Client
	stockTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:   client,
		stockTTL: StockCacheTTL,
	}
}

// ClearCart removes the cart of the buyer identified by subject.
func (r *RedisCache) ClearCart(ctx context.Context, subject string) error {
	if err := r.client.Del(ctx, cartKey(subject)).Err(); err != nil {
		return fmt.Errorf("redis delete cart failed: %w", err)
	}
	return nil
}

// GetStocks returns the cached counts it has and the ids it does not.
func (r *RedisCache) GetStocks(ctx context.Context, ids []string) (map[string]int, []string, error) {
	if len(ids) == 0 {
		return map[string]int{}, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = stockKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, ids, fmt.Errorf("redis mget failed: %w", err)
	}

	found := make(map[string]int, len(ids))
	var missing []string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = n
	}
	return found, missing, nil
}

// GetStock returns ErrCacheMiss when the product is not cached.
func (r *RedisCache) GetStock(ctx context.Context, productID string) (int, error) {
	n, err := r.client.Get(ctx, stockKey(productID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return n, nil
}

func (r *RedisCache) SetStocks(ctx context.Context, stocks []models.ProductStock) error {
	if len(stocks) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for _, s := range stocks {
		jitter := time.Duration(rand.IntN(60)) * time.Second
		pipe.Set(ctx, stockKey(s.ID), s.Stock, r.stockTTL+jitter)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set stocks failed: %w", err)
	}
	return nil
}

func (r *RedisCache) InvalidateStocks(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = stockKey(id)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete stocks failed: %w", err)
	}
	return nil
}

// IncrementRateLimit bumps the counter for key and returns its value within
// the current window.
func (r *RedisCache) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// OrderHook clears the buyer's cart and drops the cached stock of every
// product in a freshly committed order.
type OrderHook struct {
	cache *RedisCache
}

func NewOrderHook(cache *RedisCache) *OrderHook {
	return &OrderHook{cache: cache}
}

func (h *OrderHook) Name() string { return "redis cache" }

func (h *OrderHook) OrderPlaced(ctx context.Context, placed *models.PlacedOrder) error {
	var errs []error
	if subject := placed.Customer.Subject(); subject != "" {
		if err := h.cache.ClearCart(ctx, subject); err != nil {
			errs = append(errs, err)
		} else {
			log.Printf("🧹 Cart cleared for %s", subject)
		}
	}

	ids := make([]string, 0, len(placed.Order.Items))
	for _, item := range placed.Order.Items {
		ids = append(ids, item.ProductID)
	}
	if err := h.cache.InvalidateStocks(ctx, ids...); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
