package customers

import (
	"context"
	"errors"
	"fmt"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/repository"
)

// Directory is the payment processor's customer registry.
type Directory interface {
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CreateCustomer(ctx context.Context, email, name, subject string) (string, error)
}

type SyncResult struct {
	StripeCustomerID string `json:"stripeCustomerId"`
	CustomerID       string `json:"customerId"`
}

// Syncer keeps the local customer and the processor customer for an
// authenticated buyer in step.
type Syncer struct {
	store     Store
	directory Directory
}

func NewSyncer(store Store, directory Directory) *Syncer {
	return &Syncer{store: store, directory: directory}
}

func (s *Syncer) Sync(ctx context.Context, id Identity) (*SyncResult, error) {
	if id.Email == "" || id.Subject == "" {
		return nil, ErrMissingIdentity
	}
	name := DisplayName(id.Name, id.Email)

	existing, err := s.store.GetCustomerByEmail(ctx, id.Email)
	if err != nil && !errors.Is(err, repository.ErrCustomerNotFound) {
		return nil, fmt.Errorf("find customer by email: %w", err)
	}
	if existing != nil && existing.StripeCustomerID != nil {
		return &SyncResult{StripeCustomerID: *existing.StripeCustomerID, CustomerID: existing.ID.String()}, nil
	}

	stripeID, err := s.directory.FindCustomerByEmail(ctx, id.Email)
	if err != nil {
		return nil, err
	}
	if stripeID == "" {
		stripeID, err = s.directory.CreateCustomer(ctx, id.Email, name, id.Subject)
		if err != nil {
			return nil, err
		}
	}

	if existing != nil {
		if err := s.store.UpdateCustomerStripeID(ctx, existing.ID, stripeID); err != nil {
			return nil, fmt.Errorf("store stripe customer id: %w", err)
		}
		if existing.Subject() != id.Subject {
			if err := s.store.UpdateCustomerClerkUserID(ctx, existing.ID, id.Subject); err != nil {
				return nil, fmt.Errorf("link subject to customer: %w", err)
			}
		}
		return &SyncResult{StripeCustomerID: stripeID, CustomerID: existing.ID.String()}, nil
	}

	subject := id.Subject
	c := &models.Customer{
		ClerkUserID:      &subject,
		Email:            id.Email,
		Name:             name,
		StripeCustomerID: &stripeID,
	}
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &SyncResult{StripeCustomerID: stripeID, CustomerID: c.ID.String()}, nil
}
