package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	APIMaxRequests = 100
	APIWindow      = 1 * time.Minute
)

// RateCounter counts hits per key within a window.
type RateCounter interface {
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows limit requests per window for each subject, or client IP
// for anonymous callers. Counter failures let the request through.
func RateLimit(counter RateCounter, prefix string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := Subject(c)
		if who == "" {
			who = c.ClientIP()
		}

		n, err := counter.IncrementRateLimit(c.Request.Context(), prefix+":"+who, window)
		if err != nil {
			log.Printf("⚠️ Rate limiter unavailable: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, limit-n)))
		if n > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}
