package customers

import (
	"context"
	"storefront_back_end/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_ExistingWithStripeID(t *testing.T) {
	existing := &models.Customer{Email: "a@example.com", StripeCustomerID: strPtr("cus_known")}
	store := newMemStore(existing)
	dir := &mockDirectory{}
	s := NewSyncer(store, dir)

	res, err := s.Sync(context.Background(), Identity{Subject: "sub_1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "cus_known", res.StripeCustomerID)
	assert.Equal(t, existing.ID.String(), res.CustomerID)
	assert.Empty(t, dir.created)
	assert.Zero(t, store.updates)
}

func TestSync_ExistingLocalFoundInStripe(t *testing.T) {
	existing := &models.Customer{Email: "a@example.com"}
	store := newMemStore(existing)
	dir := &mockDirectory{existing: map[string]string{"a@example.com": "cus_remote"}}
	s := NewSyncer(store, dir)

	res, err := s.Sync(context.Background(), Identity{Subject: "sub_1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "cus_remote", res.StripeCustomerID)
	assert.Empty(t, dir.created)

	stored, err := store.GetCustomerBySubject(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, stored.ID)
	require.NotNil(t, stored.StripeCustomerID)
	assert.Equal(t, "cus_remote", *stored.StripeCustomerID)
}

func TestSync_NewEverywhere(t *testing.T) {
	store := newMemStore()
	dir := &mockDirectory{}
	s := NewSyncer(store, dir)

	res, err := s.Sync(context.Background(), Identity{Subject: "sub_2", Email: "b@example.com", Name: "Bea"})
	require.NoError(t, err)
	assert.Equal(t, "cus_created_b@example.com", res.StripeCustomerID)
	assert.Equal(t, []string{"b@example.com"}, dir.created)
	assert.Equal(t, 1, store.count())
}

func TestSync_DirectoryFailure(t *testing.T) {
	store := newMemStore()
	dir := &mockDirectory{createErr: errBoom}
	s := NewSyncer(store, dir)

	_, err := s.Sync(context.Background(), Identity{Subject: "sub_3", Email: "c@example.com"})
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, store.count())
}

func TestSync_RequiresEmailAndSubject(t *testing.T) {
	s := NewSyncer(newMemStore(), &mockDirectory{})

	_, err := s.Sync(context.Background(), Identity{Subject: "sub_4"})
	assert.ErrorIs(t, err, ErrMissingIdentity)
}
