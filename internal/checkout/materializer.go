package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/repository"
	"time"
)

const maxOrderNumberAttempts = 3

// Materializer writes the order, its items and the stock decrements in one
// transaction.
type Materializer struct {
	store       OrderStore
	orderNumber func() string
}

func NewMaterializer(store OrderStore) *Materializer {
	return &Materializer{
		store:       store,
		orderNumber: func() string { return NewOrderNumber(time.Now()) },
	}
}

// Materialize returns repository.ErrDuplicatePayment unchanged when another
// delivery already created the order. Every other failure wraps
// ErrTransactionFailure and leaves no trace in storage.
func (m *Materializer) Materialize(ctx context.Context, customer *models.Customer, p Purchase) (*models.Order, error) {
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("%w: order without items", ErrMalformedLineItems)
	}

	var lastErr error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order := &models.Order{
			OrderNumber:     m.orderNumber(),
			Total:           p.Total,
			Status:          models.OrderStatusPaid,
			StripePaymentID: p.PaymentID,
			CustomerID:      customer.ID,
			Items:           append([]models.OrderItem(nil), p.Items...),
		}

		err := m.store.CreateOrderWithStock(ctx, order)
		switch {
		case err == nil:
			return order, nil
		case errors.Is(err, repository.ErrDuplicatePayment):
			return nil, err
		case errors.Is(err, repository.ErrDuplicateOrderNumber):
			log.Printf("⚠️ Order number %s already taken (attempt %d/%d)", order.OrderNumber, attempt, maxOrderNumberAttempts)
			lastErr = err
			continue
		default:
			return nil, fmt.Errorf("%w: %w", ErrTransactionFailure, err)
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrTransactionFailure, lastErr)
}
