package checkout

import (
	"context"
	"encoding/json"
	"storefront_back_end/internal/customers"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/payments"
	"storefront_back_end/internal/repository"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
)

// memOrderStore mirrors the transactional contract of the Postgres
// repository: the whole order is applied or nothing is.
type memOrderStore struct {
	mu        sync.Mutex
	stock     map[string]int
	orders    map[string]*models.Order
	numbers   map[string]bool
	mutations int
	failWith  error
}

func newMemOrderStore(stock map[string]int) *memOrderStore {
	return &memOrderStore{
		stock:   stock,
		orders:  map[string]*models.Order{},
		numbers: map[string]bool{},
	}
}

func (s *memOrderStore) OrderExistsByPaymentID(_ context.Context, paymentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.orders[paymentID]
	return ok, nil
}

func (s *memOrderStore) CreateOrderWithStock(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.orders[order.StripePaymentID]; ok {
		return repository.ErrDuplicatePayment
	}
	if s.numbers[order.OrderNumber] {
		return repository.ErrDuplicateOrderNumber
	}
	for _, item := range order.Items {
		if _, ok := s.stock[item.ProductID]; !ok {
			return repository.ErrProductNotFound
		}
	}
	for _, item := range order.Items {
		s.stock[item.ProductID] -= item.Quantity
	}
	order.ID = uuid.New()
	cp := *order
	s.orders[order.StripePaymentID] = &cp
	s.numbers[order.OrderNumber] = true
	s.mutations++
	return nil
}

func (s *memOrderStore) stockOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[id]
}

func (s *memOrderStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type mockLineItems struct {
	mu    sync.Mutex
	lines []payments.LineItem
	err   error
	calls int
}

func (m *mockLineItems) ListLineItems(_ context.Context, _ string) ([]payments.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.lines, nil
}

type mockResolver struct {
	mu       sync.Mutex
	customer *models.Customer
	err      error
	seen     []customers.Identity
}

func (m *mockResolver) Resolve(_ context.Context, id customers.Identity) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, id)
	if m.err != nil {
		return nil, m.err
	}
	cp := *m.customer
	return &cp, nil
}

func (m *mockResolver) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

type recordingHook struct {
	mu     sync.Mutex
	name   string
	placed []*models.PlacedOrder
	err    error
}

func (h *recordingHook) Name() string { return h.name }

func (h *recordingHook) OrderPlaced(_ context.Context, placed *models.PlacedOrder) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.placed = append(h.placed, placed)
	return h.err
}

func (h *recordingHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.placed)
}

// blockingHook holds OrderPlaced until release is closed.
type blockingHook struct {
	started chan struct{}
	release chan struct{}
	ctxErr  error
}

func newBlockingHook() *blockingHook {
	return &blockingHook{started: make(chan struct{}), release: make(chan struct{})}
}

func (h *blockingHook) Name() string { return "blocking" }

func (h *blockingHook) OrderPlaced(ctx context.Context, _ *models.PlacedOrder) error {
	close(h.started)
	<-h.release
	h.ctxErr = ctx.Err()
	return nil
}

func scenarioMetadata() map[string]string {
	return map[string]string{
		payments.MetadataClerkUserID: "sub_123",
		payments.MetadataUserEmail:   "a@example.com",
		payments.MetadataProductIDs:  "p1,p2",
		payments.MetadataQuantities:  "2,1",
	}
}

func scenarioLines() []payments.LineItem {
	return []payments.LineItem{
		{ID: "li_1", Quantity: 2, AmountTotal: 4000},
		{ID: "li_2", Quantity: 1, AmountTotal: 1500},
	}
}

// checkoutEvent builds a checkout.session.completed event. An empty
// paymentID leaves payment_intent null.
func checkoutEvent(t *testing.T, paymentID string, metadata map[string]string) stripe.Event {
	t.Helper()
	session := map[string]any{
		"id":           "cs_test_1",
		"object":       "checkout.session",
		"amount_total": 5500,
		"metadata":     metadata,
		"customer_details": map[string]any{
			"email": "details@example.com",
			"name":  "Ada Buyer",
		},
	}
	if paymentID != "" {
		session["payment_intent"] = paymentID
	}
	raw, err := json.Marshal(session)
	require.NoError(t, err)
	return stripe.Event{
		ID:   "evt_" + paymentID,
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}
