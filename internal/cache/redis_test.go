package cache

import (
	"context"
	"storefront_back_end/internal/models"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return NewRedisCache(client), mr, cleanup
}

func TestClearCart(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(cartKey("sub_123"), `{"items":[]}`)
	mr.Set(cartKey("sub_other"), `{"items":[]}`)

	require.NoError(t, cache.ClearCart(context.Background(), "sub_123"))
	assert.False(t, mr.Exists(cartKey("sub_123")))
	assert.True(t, mr.Exists(cartKey("sub_other")))
}

func TestClearCart_MissingIsNotAnError(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	assert.NoError(t, cache.ClearCart(context.Background(), "nobody"))
}

func TestStocks_SetGetInvalidate(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.SetStocks(ctx, []models.ProductStock{{ID: "p1", Stock: 10}, {ID: "p2", Stock: -1}}))
	assert.True(t, mr.TTL(stockKey("p1")) >= StockCacheTTL)

	found, missing, err := cache.GetStocks(ctx, []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 10, "p2": -1}, found)
	assert.Equal(t, []string{"p3"}, missing)

	require.NoError(t, cache.InvalidateStocks(ctx, "p1"))
	_, err = cache.GetStock(ctx, "p1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	n, err := cache.GetStock(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, -1, n)
}

func TestGetStocks_CorruptValueIsMiss(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(stockKey("p1"), "not-a-number")

	found, missing, err := cache.GetStocks(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, []string{"p1"}, missing)
}

func TestGetStocks_RedisDown(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	mr.Close()

	_, missing, err := cache.GetStocks(context.Background(), []string{"p1"})
	assert.Error(t, err)
	assert.Equal(t, []string{"p1"}, missing)
}

func TestIncrementRateLimit(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := cache.IncrementRateLimit(ctx, "rl:test", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}

	mr.FastForward(2 * time.Minute)
	n, err := cache.IncrementRateLimit(ctx, "rl:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOrderHook(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	subject := "sub_123"
	mr.Set(cartKey(subject), `{"items":[1]}`)
	require.NoError(t, cache.SetStocks(ctx, []models.ProductStock{{ID: "p1", Stock: 10}, {ID: "p9", Stock: 3}}))

	placed := &models.PlacedOrder{
		Customer: models.Customer{ClerkUserID: &subject},
		Order:    models.Order{Items: []models.OrderItem{{ProductID: "p1", Quantity: 2}}},
	}
	hook := NewOrderHook(cache)
	require.NoError(t, hook.OrderPlaced(ctx, placed))

	assert.False(t, mr.Exists(cartKey(subject)))
	assert.False(t, mr.Exists(stockKey("p1")))
	assert.True(t, mr.Exists(stockKey("p9")))
}
