package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"storefront_back_end/internal/customers"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/payments"
	"storefront_back_end/internal/repository"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
)

// OrderStore is the order part of the persistence collaborator.
type OrderStore interface {
	OrderExistsByPaymentID(ctx context.Context, paymentID string) (bool, error)
	CreateOrderWithStock(ctx context.Context, order *models.Order) error
}

// LineItemSource returns the processor's authoritative lines for a session.
type LineItemSource interface {
	ListLineItems(ctx context.Context, sessionID string) ([]payments.LineItem, error)
}

type CustomerResolver interface {
	Resolve(ctx context.Context, id customers.Identity) (*models.Customer, error)
}

// Dispatcher routes verified events. Only checkout completion creates
// orders; every other event type is acknowledged and ignored.
type Dispatcher struct {
	guard        *Guard
	resolver     CustomerResolver
	lineItems    LineItemSource
	materializer *Materializer
	hooks        []Hook
	pending      sync.WaitGroup
}

func NewDispatcher(store OrderStore, resolver CustomerResolver, lineItems LineItemSource, hooks ...Hook) *Dispatcher {
	return &Dispatcher{
		guard:        NewGuard(store),
		resolver:     resolver,
		lineItems:    lineItems,
		materializer: NewMaterializer(store),
		hooks:        hooks,
	}
}

// Handle returns an error only when the event should be redelivered.
func (d *Dispatcher) Handle(ctx context.Context, event stripe.Event) (Outcome, error) {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return d.handleCheckoutCompleted(ctx, event)
	default:
		log.Printf("ℹ️ Unhandled event type: %s", event.Type)
		return OutcomeIgnored, nil
	}
}

func (d *Dispatcher) handleCheckoutCompleted(ctx context.Context, event stripe.Event) (Outcome, error) {
	session, err := payments.DecodeCheckoutCompleted(event)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("event %s: %w", event.ID, err)
	}

	paymentID := session.PaymentIntentID
	if paymentID == "" {
		log.Printf("❌ Checkout session %s has no payment_intent", session.SessionID)
		return OutcomeIgnored, ErrMissingPaymentReference
	}

	done, err := d.guard.AlreadyProcessed(ctx, paymentID)
	if err != nil {
		return OutcomeIgnored, err
	}
	if done {
		log.Printf("🔁 Payment %s already has an order, skipping", paymentID)
		return OutcomeDuplicate, nil
	}

	id := customers.Identity{
		Subject: session.Metadata[payments.MetadataClerkUserID],
		Email:   session.Metadata[payments.MetadataUserEmail],
		Name:    session.CustomerName,
	}
	if id.Email == "" {
		id.Email = session.CustomerEmail
	}
	if id.Subject == "" && id.Email == "" {
		log.Printf("❌ Payment %s carries no buyer identity", paymentID)
		return OutcomeIgnored, ErrMissingIdentity
	}

	productIDs, quantities, err := parseCart(session.Metadata)
	if err != nil {
		log.Printf("❌ Payment %s: %v", paymentID, err)
		return OutcomeIgnored, err
	}

	lines, err := d.lineItems.ListLineItems(ctx, session.SessionID)
	if err != nil {
		log.Printf("❌ Line items for session %s unavailable: %v", session.SessionID, err)
		return OutcomeIgnored, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	items, err := buildItems(productIDs, quantities, lines)
	if err != nil {
		log.Printf("❌ Payment %s: %v", paymentID, err)
		return OutcomeIgnored, err
	}

	customer, err := d.resolver.Resolve(ctx, id)
	if err != nil {
		log.Printf("❌ Customer resolution failed for payment %s: %v", paymentID, err)
		return OutcomeIgnored, err
	}

	order, err := d.materializer.Materialize(ctx, customer, Purchase{
		PaymentID: paymentID,
		Total:     decimal.New(session.AmountTotal, -2),
		Items:     items,
	})
	if errors.Is(err, repository.ErrDuplicatePayment) {
		log.Printf("🔁 Payment %s lost the insert race, order already exists", paymentID)
		return OutcomeDuplicate, nil
	}
	if err != nil {
		log.Printf("❌ Order for payment %s rolled back: %v", paymentID, err)
		return OutcomeIgnored, err
	}

	log.Printf("✅ Order %s created for payment %s (%d items)", order.OrderNumber, paymentID, order.ItemCount())
	placed := &models.PlacedOrder{Order: *order, Customer: *customer}
	if len(d.hooks) > 0 {
		d.pending.Go(func() { runHooks(ctx, d.hooks, placed) })
	}
	return OutcomeCreated, nil
}

// Wait blocks until the hooks of every order handled so far have finished.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}
