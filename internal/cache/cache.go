package cache

import (
	"errors"
	"time"
)

const (
	CartKeyPrefix  = "cart:"
	StockKeyPrefix = "stock:"
	StockCacheTTL  = 10 * time.Minute
)

var ErrCacheMiss = errors.New("cache miss")

func cartKey(subject string) string {
	return CartKeyPrefix + subject
}

func stockKey(productID string) string {
	return StockKeyPrefix + productID
}
