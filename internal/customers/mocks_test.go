package customers

import (
	"context"
	"errors"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/repository"
	"sync"

	"github.com/google/uuid"
)

// memStore implements Store in memory with the same uniqueness rules as
// the customers table.
type memStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*models.Customer
	creates   int
	updates   int
	failGet   error
}

func newMemStore(seed ...*models.Customer) *memStore {
	s := &memStore{customers: map[uuid.UUID]*models.Customer{}}
	for _, c := range seed {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		cp := *c
		s.customers[c.ID] = &cp
	}
	return s
}

func (s *memStore) GetCustomerBySubject(_ context.Context, subject string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	for _, c := range s.customers {
		if c.Subject() == subject {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (s *memStore) GetCustomerByEmail(_ context.Context, email string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	for _, c := range s.customers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (s *memStore) CreateCustomer(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.customers {
		if existing.Email == c.Email || (c.ClerkUserID != nil && existing.Subject() == *c.ClerkUserID) {
			return repository.ErrDuplicateCustomer
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	s.customers[c.ID] = &cp
	s.creates++
	return nil
}

func (s *memStore) UpdateCustomerClerkUserID(_ context.Context, id uuid.UUID, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return repository.ErrCustomerNotFound
	}
	c.ClerkUserID = &subject
	s.updates++
	return nil
}

func (s *memStore) UpdateCustomerStripeID(_ context.Context, id uuid.UUID, stripeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return repository.ErrCustomerNotFound
	}
	c.StripeCustomerID = &stripeID
	s.updates++
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.customers)
}

// mockDirectory implements Directory.
type mockDirectory struct {
	existing  map[string]string
	created   []string
	createErr error
}

func (d *mockDirectory) FindCustomerByEmail(_ context.Context, email string) (string, error) {
	return d.existing[email], nil
}

func (d *mockDirectory) CreateCustomer(_ context.Context, email, _, _ string) (string, error) {
	if d.createErr != nil {
		return "", d.createErr
	}
	d.created = append(d.created, email)
	return "cus_created_" + email, nil
}

var errBoom = errors.New("boom")
