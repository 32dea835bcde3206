package checkout

import (
	"context"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/repository"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPurchase(paymentID string) Purchase {
	return Purchase{
		PaymentID: paymentID,
		Total:     decimal.RequireFromString("40.00"),
		Items: []models.OrderItem{
			{ProductID: "p1", Quantity: 2, PriceAtPurchase: decimal.RequireFromString("40.00")},
		},
	}
}

func sequence(values ...string) func() string {
	i := 0
	return func() string {
		v := values[i%len(values)]
		i++
		return v
	}
}

func TestMaterialize_RetriesOrderNumberCollision(t *testing.T) {
	store := newMemOrderStore(map[string]int{"p1": 10})
	store.numbers["ORD-TAKEN-0000"] = true
	m := NewMaterializer(store)
	m.orderNumber = sequence("ORD-TAKEN-0000", "ORD-FRESH-0001")

	order, err := m.Materialize(context.Background(), &models.Customer{ID: uuid.New()}, testPurchase("pi_010"))
	require.NoError(t, err)
	assert.Equal(t, "ORD-FRESH-0001", order.OrderNumber)
	assert.Equal(t, 8, store.stockOf("p1"))
}

func TestMaterialize_GivesUpAfterMaxAttempts(t *testing.T) {
	store := newMemOrderStore(map[string]int{"p1": 10})
	store.numbers["ORD-TAKEN-0000"] = true
	m := NewMaterializer(store)
	m.orderNumber = sequence("ORD-TAKEN-0000")

	_, err := m.Materialize(context.Background(), &models.Customer{ID: uuid.New()}, testPurchase("pi_011"))
	assert.ErrorIs(t, err, ErrTransactionFailure)
	assert.ErrorIs(t, err, repository.ErrDuplicateOrderNumber)
	assert.Equal(t, 10, store.stockOf("p1"))
}

func TestMaterialize_DuplicatePaymentPassesThrough(t *testing.T) {
	store := newMemOrderStore(map[string]int{"p1": 10})
	m := NewMaterializer(store)
	customer := &models.Customer{ID: uuid.New()}

	_, err := m.Materialize(context.Background(), customer, testPurchase("pi_012"))
	require.NoError(t, err)

	_, err = m.Materialize(context.Background(), customer, testPurchase("pi_012"))
	assert.ErrorIs(t, err, repository.ErrDuplicatePayment)
	assert.NotErrorIs(t, err, ErrTransactionFailure)
	assert.Equal(t, 8, store.stockOf("p1"))
}

func TestNewOrderNumber(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	n := NewOrderNumber(now)
	assert.Regexp(t, `^ORD-LOYW3V28-[0-9A-Z]{4}$`, n)
}
