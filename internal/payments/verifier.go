package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnexpectedObject = errors.New("event does not carry a checkout session")
)

// Metadata keys written on the checkout session when it is created.
const (
	MetadataClerkUserID = "clerkUserId"
	MetadataUserEmail   = "userEmail"
	MetadataProductIDs  = "productIds"
	MetadataQuantities  = "quantities"
)

// Verifier checks that a webhook payload was signed by Stripe with the
// shared endpoint secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

// Verify validates the Stripe-Signature header against payload and returns
// the decoded event. Every failure wraps ErrInvalidSignature.
func (v *Verifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	if signature == "" {
		return stripe.Event{}, fmt.Errorf("%w: missing Stripe-Signature header", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// CheckoutCompleted is the part of a completed checkout session the order
// pipeline reads.
type CheckoutCompleted struct {
	EventID         string
	SessionID       string
	PaymentIntentID string
	AmountTotal     int64
	CustomerEmail   string
	CustomerName    string
	Metadata        map[string]string
}

// DecodeCheckoutCompleted unmarshals the checkout session carried by event.
func DecodeCheckoutCompleted(event stripe.Event) (*CheckoutCompleted, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, ErrUnexpectedObject
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if cs.ID == "" {
		return nil, ErrUnexpectedObject
	}

	out := &CheckoutCompleted{
		EventID:     event.ID,
		SessionID:   cs.ID,
		AmountTotal: cs.AmountTotal,
		Metadata:    cs.Metadata,
	}
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}
	if cs.CustomerDetails != nil {
		out.CustomerEmail = cs.CustomerDetails.Email
		out.CustomerName = cs.CustomerDetails.Name
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out, nil
}
