package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

type mockOrderRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) (uuid.UUID, error)
	createItemsFunc  func(ctx context.Context, orderID uuid.UUID, items []order.OrderItem) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	getByUserIDFunc  func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus, shippedDate *time.Time) error
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) (uuid.UUID, error) {
	return m.createFunc(ctx, o)
}

func (m *mockOrderRepository) CreateItems(ctx context.Context, orderID uuid.UUID, items []order.OrderItem) error {
	return m.createItemsFunc(ctx, orderID, items)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.getByUserIDFunc(ctx, userID)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus, shippedDate *time.Time) error {
	return m.updateStatusFunc(ctx, orderID, newStatus, shippedDate)
}

type mockRestorer struct {
	restored map[uuid.UUID]int
}

func (m *mockRestorer) Restore(_ context.Context, productID uuid.UUID, quantity int) {
	if m.restored == nil {
		m.restored = make(map[uuid.UUID]int)
	}
	m.restored[productID] += quantity
}

func newID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func TestService_UpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name      string
		current   order.OrderStatus
		next      order.OrderStatus
		wantErrIs error
	}{
		{name: "pending_to_processing", current: order.StatusPending, next: order.StatusProcessing},
		{name: "pending_to_confirmed", current: order.StatusPending, next: order.StatusConfirmed},
		{name: "processing_to_shipped", current: order.StatusProcessing, next: order.StatusShipped},
		{name: "shipped_to_in_transit", current: order.StatusShipped, next: order.StatusInTransit},
		{name: "in_transit_to_out_for_delivery", current: order.StatusInTransit, next: order.StatusOutForDelivery},
		{name: "out_for_delivery_to_delivered", current: order.StatusOutForDelivery, next: order.StatusDelivered},
		{name: "delivered_to_refunded", current: order.StatusDelivered, next: order.StatusRefunded},
		{name: "pending_to_delivered_rejected", current: order.StatusPending, next: order.StatusDelivered, wantErrIs: order.ErrInvalidStatusTransition},
		{name: "shipped_to_cancelled_rejected", current: order.StatusShipped, next: order.StatusCancelled, wantErrIs: order.ErrInvalidStatusTransition},
		{name: "cancelled_is_terminal", current: order.StatusCancelled, next: order.StatusProcessing, wantErrIs: order.ErrInvalidStatusTransition},
		{name: "refunded_is_terminal", current: order.StatusRefunded, next: order.StatusPending, wantErrIs: order.ErrInvalidStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderID := newID(t)

			var updatedTo *order.OrderStatus
			repo := &mockOrderRepository{
				getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
					return &order.Order{ID: orderID, Status: tt.current}, nil
				},
				updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus, shippedDate *time.Time) error {
					updatedTo = &newStatus
					return nil
				},
			}
			svc := order.NewService(repo, &mockRestorer{})

			err := svc.UpdateStatus(context.Background(), orderID, tt.next)

			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, updatedTo)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, updatedTo)
				assert.Equal(t, tt.next, *updatedTo)
			}
		})
	}
}

func TestService_UpdateStatusStampsShippedDate(t *testing.T) {
	orderID := newID(t)

	var gotShipped *time.Time
	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusConfirmed}, nil
		},
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus, shippedDate *time.Time) error {
			gotShipped = shippedDate
			return nil
		},
	}
	svc := order.NewService(repo, &mockRestorer{})

	require.NoError(t, svc.UpdateStatus(context.Background(), orderID, order.StatusShipped))
	require.NotNil(t, gotShipped)
	assert.WithinDuration(t, time.Now().UTC(), *gotShipped, time.Minute)
}

func TestService_UpdateStatusSameStatusIsNoop(t *testing.T) {
	orderID := newID(t)

	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusPending}, nil
		},
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus, shippedDate *time.Time) error {
			t.Fatal("update must not be called when status is unchanged")
			return nil
		},
	}
	svc := order.NewService(repo, &mockRestorer{})

	assert.NoError(t, svc.UpdateStatus(context.Background(), orderID, order.StatusPending))
}

func TestService_CancelRestoresStockPerItem(t *testing.T) {
	orderID := newID(t)
	p1 := newID(t)
	p2 := newID(t)

	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{
				ID:     orderID,
				Status: order.StatusPending,
				OrderItems: []order.OrderItem{
					{ProductID: p1, Quantity: 2},
					{ProductID: p2, Quantity: 5},
				},
			}, nil
		},
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus, shippedDate *time.Time) error {
			assert.Equal(t, order.StatusCancelled, newStatus)
			return nil
		},
	}
	restorer := &mockRestorer{}
	svc := order.NewService(repo, restorer)

	require.NoError(t, svc.Cancel(context.Background(), orderID))

	assert.Equal(t, 2, restorer.restored[p1])
	assert.Equal(t, 5, restorer.restored[p2])
}

func TestService_CancelRejectedAfterShipment(t *testing.T) {
	orderID := newID(t)

	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusShipped}, nil
		},
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus, shippedDate *time.Time) error {
			t.Fatal("update must not be called for an invalid transition")
			return nil
		},
	}
	restorer := &mockRestorer{}
	svc := order.NewService(repo, restorer)

	err := svc.Cancel(context.Background(), orderID)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	assert.Empty(t, restorer.restored)
}

func TestService_CancelAlreadyCancelled(t *testing.T) {
	orderID := newID(t)

	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusCancelled}, nil
		},
	}
	svc := order.NewService(repo, &mockRestorer{})

	assert.ErrorIs(t, svc.Cancel(context.Background(), orderID), order.ErrAlreadyCancelled)
}

func TestService_GetByIDNotFound(t *testing.T) {
	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return nil, order.ErrOrderNotFound
		},
	}
	svc := order.NewService(repo, &mockRestorer{})

	_, err := svc.GetByID(context.Background(), newID(t))
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestService_GetByUserIDWrapsRepositoryError(t *testing.T) {
	repoErr := errors.New("connection reset")
	repo := &mockOrderRepository{
		getByUserIDFunc: func(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
			return nil, repoErr
		},
	}
	svc := order.NewService(repo, &mockRestorer{})

	_, err := svc.GetByUserID(context.Background(), newID(t))
	assert.ErrorIs(t, err, repoErr)
}
