package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// allowedTransitions is the full lifecycle an order can take. Cancellation is
// only possible before the order ships; delivered orders can still be
// refunded. Cancelled and refunded are terminal.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusProcessing: true,
		StatusConfirmed:  true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusConfirmed: true,
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusInTransit: true,
		StatusDelivered: true,
	},
	StatusInTransit: {
		StatusOutForDelivery: true,
		StatusDelivered:      true,
	},
	StatusOutForDelivery: {
		StatusDelivered: true,
	},
	StatusDelivered: {
		StatusRefunded: true,
	},
	StatusCancelled: {},
	StatusRefunded:  {},
}

var (
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrAlreadyCancelled        = errors.New("order is already cancelled")
)

// StockRestorer puts quantity back on a product. Restoration is best-effort
// compensation and must not fail the caller.
type StockRestorer interface {
	Restore(ctx context.Context, productID uuid.UUID, quantity int)
}

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) error
	Cancel(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo  Repository
	stock StockRestorer
}

func NewService(repo Repository, stock StockRestorer) Service {
	return &service{repo: repo, stock: stock}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) error {
	currentOrder, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if currentOrder.Status == newStatus {
		log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).Msg("service: order status already set, no update needed")
		return nil
	}

	if !allowedTransitions[currentOrder.Status][newStatus] {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", currentOrder.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, currentOrder.Status, newStatus)
	}

	var shippedDate *time.Time
	if newStatus == StatusShipped {
		now := time.Now().UTC()
		shippedDate = &now
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus, shippedDate); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", currentOrder.Status).Stringer("new_status", newStatus).Msg("service: order status updated")
	return nil
}

// Cancel soft-cancels the order and puts each item's quantity back on stock.
// The restoration is compensation only: any part of it failing leaves the
// order cancelled and is logged, never surfaced.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID) error {
	currentOrder, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for cancellation")
		return fmt.Errorf("service: failed to get order for cancellation: %w", err)
	}

	if currentOrder.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	if !allowedTransitions[currentOrder.Status][StatusCancelled] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, currentOrder.Status, StatusCancelled)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, StatusCancelled, nil); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to cancel order")
		return fmt.Errorf("service: failed to cancel order: %w", err)
	}

	for _, item := range currentOrder.OrderItems {
		s.stock.Restore(ctx, item.ProductID, item.Quantity)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", currentOrder.Status).Msg("service: order cancelled, stock restoration issued")
	return nil
}
