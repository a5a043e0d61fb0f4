package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/notification"
)

type mockNotificationRepo struct {
	createFunc       func(ctx context.Context, n *notification.Notification) error
	listBySellerFunc func(ctx context.Context, sellerID uuid.UUID) ([]notification.Notification, error)
	setReadFunc      func(ctx context.Context, id, sellerID uuid.UUID, read bool) error
	deleteFunc       func(ctx context.Context, id, sellerID uuid.UUID) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	return m.createFunc(ctx, n)
}

func (m *mockNotificationRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]notification.Notification, error) {
	return m.listBySellerFunc(ctx, sellerID)
}

func (m *mockNotificationRepo) SetRead(ctx context.Context, id, sellerID uuid.UUID, read bool) error {
	return m.setReadFunc(ctx, id, sellerID, read)
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id, sellerID uuid.UUID) error {
	return m.deleteFunc(ctx, id, sellerID)
}

type mockSellerLookup struct {
	sellers map[uuid.UUID]uuid.UUID
	failFor map[uuid.UUID]bool
}

func (m *mockSellerLookup) GetSellerID(_ context.Context, productID uuid.UUID) (uuid.UUID, error) {
	if m.failFor[productID] {
		return uuid.Nil, errors.New("lookup failed")
	}
	sellerID, ok := m.sellers[productID]
	if !ok {
		return uuid.Nil, errors.New("no such product")
	}
	return sellerID, nil
}

func newID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func TestFanout_OneNotificationPerDistinctSeller(t *testing.T) {
	sellerA := newID(t)
	sellerB := newID(t)
	p1 := newID(t)
	p2 := newID(t)
	p3 := newID(t)

	lookup := &mockSellerLookup{sellers: map[uuid.UUID]uuid.UUID{
		p1: sellerA,
		p2: sellerA, // same seller owns two lines
		p3: sellerB,
	}}

	var created []*notification.Notification
	repo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, n *notification.Notification) error {
			created = append(created, n)
			return nil
		},
	}

	orderID := newID(t)
	customerID := newID(t)
	fanout := notification.NewFanout(repo, lookup)

	fanout.OrderPlaced(context.Background(), orderID, customerID, []cart.Line{
		{ProductID: p1, Quantity: 1},
		{ProductID: p2, Quantity: 2},
		{ProductID: p3, Quantity: 1},
	})

	require.Len(t, created, 2)

	assert.Equal(t, sellerA, created[0].SellerID)
	assert.Equal(t, p1, created[0].Metadata.ProductID, "representative product is the seller's first line")
	assert.Equal(t, orderID, created[0].Metadata.OrderID)
	assert.Equal(t, customerID, created[0].Metadata.CustomerID)
	assert.Equal(t, notification.TypeNewOrder, created[0].Type)
	assert.False(t, created[0].IsRead)

	assert.Equal(t, sellerB, created[1].SellerID)
	assert.Equal(t, p3, created[1].Metadata.ProductID)
}

func TestFanout_LookupFailureSkipsLine(t *testing.T) {
	sellerA := newID(t)
	p1 := newID(t)
	p2 := newID(t)

	lookup := &mockSellerLookup{
		sellers: map[uuid.UUID]uuid.UUID{p1: sellerA},
		failFor: map[uuid.UUID]bool{p2: true},
	}

	var created []*notification.Notification
	repo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, n *notification.Notification) error {
			created = append(created, n)
			return nil
		},
	}

	fanout := notification.NewFanout(repo, lookup)
	fanout.OrderPlaced(context.Background(), newID(t), newID(t), []cart.Line{
		{ProductID: p2, Quantity: 1},
		{ProductID: p1, Quantity: 1},
	})

	require.Len(t, created, 1)
	assert.Equal(t, sellerA, created[0].SellerID)
}

func TestFanout_CreateFailureDoesNotStopOtherSellers(t *testing.T) {
	sellerA := newID(t)
	sellerB := newID(t)
	p1 := newID(t)
	p2 := newID(t)

	lookup := &mockSellerLookup{sellers: map[uuid.UUID]uuid.UUID{
		p1: sellerA,
		p2: sellerB,
	}}

	var created []uuid.UUID
	repo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, n *notification.Notification) error {
			if n.SellerID == sellerA {
				return errors.New("insert failed")
			}
			created = append(created, n.SellerID)
			return nil
		},
	}

	fanout := notification.NewFanout(repo, lookup)

	// Must not panic and must still notify the second seller.
	fanout.OrderPlaced(context.Background(), newID(t), newID(t), []cart.Line{
		{ProductID: p1, Quantity: 1},
		{ProductID: p2, Quantity: 1},
	})

	assert.Equal(t, []uuid.UUID{sellerB}, created)
}
