package payment

import (
	"context"
	"errors"
	"log"
	"net/http"
	"storefront_back_end/internal/checkout"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
)

const (
	maxBodyBytes   = int64(65536)
	archiveTimeout = 5 * time.Second
)

type EventVerifier interface {
	Verify(payload []byte, signature string) (stripe.Event, error)
}

type EventDispatcher interface {
	Handle(ctx context.Context, event stripe.Event) (checkout.Outcome, error)
}

type EventArchiver interface {
	Archive(ctx context.Context, eventID string, payload []byte) error
}

type WebhookHandler struct {
	verifier   EventVerifier
	dispatcher EventDispatcher
	archive    EventArchiver
}

// NewWebhookHandler builds the Stripe endpoint. archive may be nil.
func NewWebhookHandler(verifier EventVerifier, dispatcher EventDispatcher, archive EventArchiver) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, dispatcher: dispatcher, archive: archive}
}

// StripeWebhook answers 400 for payloads that fail verification, 500 when
// processing failed and Stripe should redeliver, 200 otherwise.
func (h *WebhookHandler) StripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Failed to read webhook payload:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	event, err := h.verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Println("❌ Stripe signature rejected:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}
	log.Printf("📥 Stripe event received: %s (%s)", event.Type, event.ID)

	ctx := c.Request.Context()
	if h.archive != nil && event.Type == stripe.EventTypeCheckoutSessionCompleted {
		actx, cancel := context.WithTimeout(ctx, archiveTimeout)
		if err := h.archive.Archive(actx, event.ID, payload); err != nil {
			log.Printf("⚠️ Event %s not archived: %v", event.ID, err)
		}
		cancel()
	}

	outcome, err := h.dispatcher.Handle(ctx, event)
	if err != nil {
		log.Printf("❌ Event %s failed, Stripe will retry: %v", event.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(err)})
		return
	}

	log.Printf("✅ Event %s handled: %s", event.ID, outcome)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, checkout.ErrMissingIdentity):
		return "missing customer identity"
	case errors.Is(err, checkout.ErrMalformedLineItems):
		return "malformed line items"
	case errors.Is(err, checkout.ErrUpstreamUnavailable):
		return "payment processor unavailable"
	case errors.Is(err, checkout.ErrMissingPaymentReference):
		return "missing payment reference"
	default:
		return "webhook handler failed"
	}
}
