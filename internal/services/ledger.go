package services

import (
	"context"
	"fmt"
	"log"
	"storefront_back_end/internal/models"
	"time"

	"github.com/gocql/gocql"
)

const insertStockMovement = `INSERT INTO stock_movements
	(movement_id, product_id, type, quantity, reason, order_id, user_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// batchSession is the part of *gocql.Session the ledger writes through.
type batchSession interface {
	NewBatch(typ gocql.BatchType) *gocql.Batch
	ExecuteBatch(batch *gocql.Batch) error
}

// StockLedger records one sale movement per order line in ScyllaDB.
type StockLedger struct {
	session batchSession
}

func NewStockLedger(session *gocql.Session) *StockLedger {
	return &StockLedger{session: session}
}

func (l *StockLedger) Name() string { return "stock ledger" }

func (l *StockLedger) OrderPlaced(ctx context.Context, placed *models.PlacedOrder) error {
	movements := SaleMovements(placed, time.Now().UTC())
	if len(movements) == 0 {
		return nil
	}

	batch := l.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, m := range movements {
		batch.Query(insertStockMovement,
			m.ID, m.ProductID, m.Type, m.Quantity, m.Reason, m.OrderID, m.UserID, m.CreatedAt)
	}
	if err := l.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("write stock movements: %w", err)
	}
	log.Printf("📦 %d stock movements recorded for order %s", len(movements), placed.Order.OrderNumber)
	return nil
}

// SaleMovements turns every order line into a negative stock movement.
func SaleMovements(placed *models.PlacedOrder, at time.Time) []models.StockMovement {
	out := make([]models.StockMovement, 0, len(placed.Order.Items))
	for _, item := range placed.Order.Items {
		out = append(out, models.StockMovement{
			ID:        gocql.TimeUUID(),
			ProductID: item.ProductID,
			Type:      models.StockMovementSale,
			Quantity:  -item.Quantity,
			Reason:    "order " + placed.Order.OrderNumber,
			OrderID:   gocql.UUID(placed.Order.ID),
			UserID:    placed.Customer.Subject(),
			CreatedAt: at,
		})
	}
	return out
}
