package checkout

import (
	"context"
	"log"
	"storefront_back_end/internal/models"
	"time"
)

const (
	hookTimeout = 10 * time.Second
	// hooksBudget caps the whole chain for one order.
	hooksBudget = 30 * time.Second
)

// Hook reacts to an order after it has been committed. Failures are logged
// and never change the webhook response.
type Hook interface {
	Name() string
	OrderPlaced(ctx context.Context, placed *models.PlacedOrder) error
}

func runHooks(ctx context.Context, hooks []Hook, placed *models.PlacedOrder) {
	// the order is durable; a finished request must not cut the hooks short
	base, cancel := context.WithTimeout(context.WithoutCancel(ctx), hooksBudget)
	defer cancel()
	for _, h := range hooks {
		hctx, hcancel := context.WithTimeout(base, hookTimeout)
		err := h.OrderPlaced(hctx, placed)
		hcancel()
		if err != nil {
			log.Printf("⚠️ %s failed for order %s: %v", h.Name(), placed.Order.OrderNumber, err)
		}
	}
}
