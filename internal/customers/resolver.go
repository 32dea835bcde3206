package customers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/repository"
	"strings"

	"github.com/google/uuid"
)

var ErrMissingIdentity = errors.New("event carries neither an auth subject nor an email")

// Store is the customer part of the persistence collaborator.
type Store interface {
	GetCustomerBySubject(ctx context.Context, subject string) (*models.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomerClerkUserID(ctx context.Context, customerID uuid.UUID, subject string) error
	UpdateCustomerStripeID(ctx context.Context, customerID uuid.UUID, stripeCustomerID string) error
}

// Identity is what an event or a session knows about the buyer.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// DisplayName picks the processor-provided name, then the local part of
// the email, then a generic fallback.
func DisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	if email != "" {
		return email
	}
	return "Customer"
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the one customer for id, creating it or linking the auth
// subject to an email-only record when needed.
func (r *Resolver) Resolve(ctx context.Context, id Identity) (*models.Customer, error) {
	if id.Subject == "" && id.Email == "" {
		return nil, ErrMissingIdentity
	}

	c, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if c == nil {
		c, err = r.create(ctx, id)
		if errors.Is(err, repository.ErrDuplicateCustomer) {
			// lost a concurrent create for the same buyer
			c, err = r.lookup(ctx, id)
			if err == nil && c == nil {
				err = fmt.Errorf("customer vanished after duplicate insert: %w", repository.ErrCustomerNotFound)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if id.Subject != "" && c.Subject() != id.Subject {
		if err := r.store.UpdateCustomerClerkUserID(ctx, c.ID, id.Subject); err != nil {
			return nil, fmt.Errorf("link subject to customer %s: %w", c.ID, err)
		}
		subject := id.Subject
		c.ClerkUserID = &subject
		log.Printf("🔗 Customer %s linked to subject %s", c.ID, id.Subject)
	}
	return c, nil
}

func (r *Resolver) lookup(ctx context.Context, id Identity) (*models.Customer, error) {
	if id.Subject != "" {
		c, err := r.store.GetCustomerBySubject(ctx, id.Subject)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, fmt.Errorf("find customer by subject: %w", err)
		}
	}
	if id.Email != "" {
		c, err := r.store.GetCustomerByEmail(ctx, id.Email)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, fmt.Errorf("find customer by email: %w", err)
		}
	}
	return nil, nil
}

func (r *Resolver) create(ctx context.Context, id Identity) (*models.Customer, error) {
	guest := uuid.NewString()

	subject := id.Subject
	if subject == "" {
		subject = "guest-" + guest
	}
	email := id.Email
	if email == "" {
		email = "guest-" + guest + "@example.com"
	}

	c := &models.Customer{
		ClerkUserID: &subject,
		Email:       email,
		Name:        DisplayName(id.Name, id.Email),
	}
	if err := r.store.CreateCustomer(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateCustomer) {
			return nil, err
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	log.Printf("✅ Customer %s created for %s", c.ID, email)
	return c, nil
}
