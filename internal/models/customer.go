package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the identity anchor for orders. ClerkUserID is the external-auth
// subject and stays nil until an authenticated identity is linked.
type Customer struct {
	ID               uuid.UUID `json:"id"`
	ClerkUserID      *string   `json:"clerk_user_id,omitempty"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Subject returns the linked external-auth subject or "".
func (c *Customer) Subject() string {
	if c == nil || c.ClerkUserID == nil {
		return ""
	}
	return *c.ClerkUserID
}
