package payments

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/customer"
)

// LineItem is one authoritative Stripe line item, amounts in cents.
type LineItem struct {
	ID          string
	Description string
	Quantity    int64
	AmountTotal int64
}

type GatewayConfig struct {
	SecretKey string
	Timeout   time.Duration
	// BaseURL overrides the Stripe API host, mostly for tests.
	BaseURL string
	// MaxRetries is handed to the Stripe backend. Zero disables retries.
	MaxRetries int64
}

// Gateway talks to the Stripe API with an explicitly constructed backend.
// Line-item reads go through a circuit breaker so a Stripe outage fails
// fast instead of piling up webhook handlers.
type Gateway struct {
	sessions  *session.Client
	customers *customer.Client
	breaker   *gobreaker.CircuitBreaker[[]LineItem]
	timeout   time.Duration
}

func NewGateway(cfg GatewayConfig) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	breaker := gobreaker.NewCircuitBreaker[[]LineItem](gobreaker.Settings{
		Name:        "stripe-line-items",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️ Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Gateway{
		sessions:  &session.Client{B: backend, Key: cfg.SecretKey},
		customers: &customer.Client{B: backend, Key: cfg.SecretKey},
		breaker:   breaker,
		timeout:   timeout,
	}
}

// ListLineItems returns every line item of the checkout session in the
// order Stripe lists them.
func (g *Gateway) ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	return g.breaker.Execute(func() ([]LineItem, error) {
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		params := &stripe.CheckoutSessionListLineItemsParams{
			Session: stripe.String(sessionID),
		}
		params.Context = ctx
		params.Limit = stripe.Int64(100)

		var items []LineItem
		iter := g.sessions.ListLineItems(params)
		for iter.Next() {
			li := iter.LineItem()
			items = append(items, LineItem{
				ID:          li.ID,
				Description: li.Description,
				Quantity:    li.Quantity,
				AmountTotal: li.AmountTotal,
			})
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("list line items for %s: %w", sessionID, err)
		}
		return items, nil
	})
}

// FindCustomerByEmail returns the id of the first Stripe customer with the
// given email, or "" when there is none.
func (g *Gateway) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := g.customers.List(params)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list stripe customers: %w", err)
	}
	return "", nil
}

// CreateCustomer creates a Stripe customer tagged with the auth subject.
func (g *Gateway) CreateCustomer(ctx context.Context, email, name, subject string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata(MetadataClerkUserID, subject)

	c, err := g.customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return c.ID, nil
}
