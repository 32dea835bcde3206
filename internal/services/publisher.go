package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"storefront_back_end/internal/models"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventTypeOrderCreated = "order.created"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OrderCreatedEvent is the payload published for every new order.
type OrderCreatedEvent struct {
	OrderID         string                 `json:"order_id"`
	OrderNumber     string                 `json:"order_number"`
	StripePaymentID string                 `json:"stripe_payment_id"`
	CustomerID      string                 `json:"customer_id"`
	CustomerEmail   string                 `json:"customer_email"`
	Total           decimal.Decimal        `json:"total"`
	Items           []OrderCreatedLineItem `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
}

type OrderCreatedLineItem struct {
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// OrderPublisher emits order.created messages keyed by payment reference so
// consumers see every message for one payment on the same partition.
type OrderPublisher struct {
	writer messageWriter
}

func NewOrderPublisher(writer *kafka.Writer) *OrderPublisher {
	return &OrderPublisher{writer: writer}
}

func (p *OrderPublisher) Name() string { return "order publisher" }

func (p *OrderPublisher) OrderPlaced(ctx context.Context, placed *models.PlacedOrder) error {
	order := placed.Order
	event := OrderCreatedEvent{
		OrderID:         order.ID.String(),
		OrderNumber:     order.OrderNumber,
		StripePaymentID: order.StripePaymentID,
		CustomerID:      placed.Customer.ID.String(),
		CustomerEmail:   placed.Customer.Email,
		Total:           order.Total,
		Items:           make([]OrderCreatedLineItem, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, OrderCreatedLineItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.StripePaymentID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderCreated)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", order.OrderNumber, err)
	}
	log.Printf("📣 %s published for order %s", EventTypeOrderCreated, order.OrderNumber)
	return nil
}
