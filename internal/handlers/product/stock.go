package product

import (
	"context"
	"log"
	"net/http"
	"storefront_back_end/internal/models"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type StockReader interface {
	GetProductStocks(ctx context.Context, ids []string) ([]models.ProductStock, error)
}

type StockCache interface {
	GetStocks(ctx context.Context, ids []string) (map[string]int, []string, error)
	SetStocks(ctx context.Context, stocks []models.ProductStock) error
}

type StockHandler struct {
	store StockReader
	cache StockCache
}

// NewStockHandler serves stock counts. cache may be nil.
func NewStockHandler(store StockReader, cache StockCache) *StockHandler {
	return &StockHandler{store: store, cache: cache}
}

// GetStock answers GET /api/products/stock?ids=a,b&ids=c.
func (h *StockHandler) GetStock(c *gin.Context) {
	ids := parseIDs(c.QueryArray("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusOK, []models.ProductStock{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result := make([]models.ProductStock, 0, len(ids))
	missing := ids
	if h.cache != nil {
		found, rest, err := h.cache.GetStocks(ctx, ids)
		if err != nil {
			log.Println("⚠️ Stock cache unavailable:", err)
		} else {
			for _, id := range ids {
				if n, ok := found[id]; ok {
					result = append(result, models.ProductStock{ID: id, Stock: n})
				}
			}
			missing = rest
		}
	}

	if len(missing) > 0 {
		stocks, err := h.store.GetProductStocks(ctx, missing)
		if err != nil {
			log.Println("❌ Stock query failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stock"})
			return
		}
		if h.cache != nil {
			if err := h.cache.SetStocks(ctx, stocks); err != nil {
				log.Println("⚠️ Stock cache not refreshed:", err)
			}
		}
		result = append(result, stocks...)
	}

	c.JSON(http.StatusOK, result)
}

// parseIDs accepts repeated and comma-separated values, trims them and
// drops empties and repeats.
func parseIDs(values []string) []string {
	seen := map[string]bool{}
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
