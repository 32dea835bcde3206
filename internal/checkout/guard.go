package checkout

import (
	"context"
	"fmt"
)

// Guard short-circuits redeliveries of a payment that already has an order.
// It is a fast path only; the unique constraint on the payment reference
// decides races.
type Guard struct {
	store OrderStore
}

func NewGuard(store OrderStore) *Guard {
	return &Guard{store: store}
}

func (g *Guard) AlreadyProcessed(ctx context.Context, paymentID string) (bool, error) {
	exists, err := g.store.OrderExistsByPaymentID(ctx, paymentID)
	if err != nil {
		return false, fmt.Errorf("%w: idempotency check: %w", ErrTransactionFailure, err)
	}
	return exists, nil
}
