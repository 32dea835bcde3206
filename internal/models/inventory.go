package models

import (
	"time"

	"github.com/gocql/gocql"
)

// StockMovementSale is the only movement type written by checkout.
const StockMovementSale = "sale"

// StockMovement is one row of the ScyllaDB stock ledger.
type StockMovement struct {
	ID        gocql.UUID `json:"id"`
	ProductID string     `json:"product_id"`
	Type      string     `json:"type"`
	Quantity  int        `json:"quantity"`
	Reason    string     `json:"reason"`
	OrderID   gocql.UUID `json:"order_id"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
}
