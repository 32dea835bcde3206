package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

// Orders are created as paid; the other statuses belong to fulfillment.
const (
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	StripePaymentID string          `json:"stripe_payment_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem keeps the price charged at purchase time so history survives
// catalog price changes.
type OrderItem struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// ItemCount sums item quantities.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// PlacedOrder is handed to post-commit hooks once the order is durable.
type PlacedOrder struct {
	Order    Order
	Customer Customer
}

// OrderSummary is one row of a customer's order history.
type OrderSummary struct {
	ID          uuid.UUID       `json:"_id"`
	OrderNumber string          `json:"orderNumber"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"createdAt"`
	ItemCount   int             `json:"itemCount"`
	ItemImages  []string        `json:"itemImages"`
	ItemNames   []string        `json:"itemNames"`
}

// OrderDetail is a single order as shown to its owner.
type OrderDetail struct {
	OrderNumber  string            `json:"orderNumber"`
	Status       OrderStatus       `json:"status"`
	Total        decimal.Decimal   `json:"total"`
	CreatedAt    time.Time         `json:"createdAt"`
	Email        string            `json:"email"`
	OwnerSubject string            `json:"-"`
	Items        []OrderDetailItem `json:"items"`
}

type OrderDetailItem struct {
	Key             string          `json:"_key"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
	Product         OrderProduct    `json:"product"`
}

type OrderProduct struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ImageURL *string `json:"imageUrl"`
}
