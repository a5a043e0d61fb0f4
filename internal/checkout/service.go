package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/inventory"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

var (
	ErrCheckoutInProgress = errors.New("checkout: another checkout is already in progress")
	ErrInvalidInput       = errors.New("checkout: invalid input")
)

// StockKeeper is the slice of the inventory gateway checkout needs.
type StockKeeper interface {
	ValidateAvailability(ctx context.Context, lines []cart.Line) inventory.Result
	DecrementMany(ctx context.Context, lines []cart.Line)
}

// OrderWriter persists the order header and its items as two separate calls.
type OrderWriter interface {
	Create(ctx context.Context, o *order.Order) (uuid.UUID, error)
	CreateItems(ctx context.Context, orderID uuid.UUID, items []order.OrderItem) error
}

// Notifier fans out seller notifications, best-effort.
type Notifier interface {
	OrderPlaced(ctx context.Context, orderID, customerID uuid.UUID, lines []cart.Line)
}

// Request carries the recipient details for one checkout.
type Request struct {
	Address        string
	RecipientName  string
	RecipientPhone string
	Note           string
}

// Result is returned on a completed checkout.
type Result struct {
	OrderID uuid.UUID         `json:"order_id"`
	Items   []order.OrderItem `json:"items"`
	Total   float64           `json:"total"`
}

// Service runs the order submission sequence. The backing tables offer no
// cross-table transaction, so the sequence is ordered by failure domain:
// guards first, then the two hard inserts, then the best-effort side effects.
// Only the guards and the inserts can fail the call; stock bookkeeping and
// notifications never do.
type Service struct {
	authProvider auth.Provider
	stock        StockKeeper
	orders       OrderWriter
	notifier     Notifier

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewService(authProvider auth.Provider, stock StockKeeper, orders OrderWriter, notifier Notifier) *Service {
	return &Service{
		authProvider: authProvider,
		stock:        stock,
		orders:       orders,
		notifier:     notifier,
		inFlight:     make(map[uuid.UUID]struct{}),
	}
}

// Checkout consumes the active buy-now slot if set, otherwise the full cart.
// On success the consumed source is cleared and the other left untouched.
// A second call for the same user while one is running is rejected
// immediately, never queued.
func (s *Service) Checkout(ctx context.Context, store *cart.Store, req Request) (*Result, error) {
	userID, err := s.authProvider.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if !s.acquire(userID) {
		return nil, ErrCheckoutInProgress
	}
	defer s.release(userID)

	req.Address = strings.TrimSpace(req.Address)
	req.RecipientName = strings.TrimSpace(req.RecipientName)
	req.RecipientPhone = strings.TrimSpace(req.RecipientPhone)
	req.Note = strings.TrimSpace(req.Note)

	switch {
	case req.Address == "":
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	case req.RecipientName == "":
		return nil, fmt.Errorf("%w: recipient name is required", ErrInvalidInput)
	case req.RecipientPhone == "":
		return nil, fmt.Errorf("%w: recipient phone is required", ErrInvalidInput)
	}

	// The source is chosen once, here, and never re-evaluated mid-flow.
	snap := store.Snapshot()
	var lines []cart.Line
	fromBuyNow := snap.BuyNowActive && snap.BuyNow != nil
	if fromBuyNow {
		lines = []cart.Line{*snap.BuyNow}
	} else {
		lines = snap.Lines
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: nothing to check out", ErrInvalidInput)
	}

	// Advisory only: shortages are logged and the flow continues.
	if check := s.stock.ValidateAvailability(ctx, lines); !check.Valid {
		log.Warn().
			Stringer("user_id", userID).
			Strs("shortages", check.Errors).
			Msg("checkout: stock shortages detected, proceeding anyway")
	}

	var total float64
	for _, line := range lines {
		total += line.Total()
	}

	o := &order.Order{
		UserID:         userID,
		Status:         order.StatusPending,
		TotalAmount:    total,
		Address:        req.Address,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		Note:           req.Note,
	}

	orderID, err := s.orders.Create(ctx, o)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("checkout: failed to create order")
		return nil, fmt.Errorf("checkout: failed to create order: %w", err)
	}

	items := make([]order.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, order.OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	if err := s.orders.CreateItems(ctx, orderID, items); err != nil {
		// The header from the previous step stays behind with no items.
		// There is no compensation or retry for this; the orphan is left
		// for operators to reconcile.
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("user_id", userID).Msg("checkout: order items failed after header insert, order left without items")
		return nil, fmt.Errorf("checkout: failed to create order items for order %s: %w", orderID, err)
	}

	// From here on the order is placed; nothing below can fail the call.
	s.stock.DecrementMany(ctx, lines)
	s.notifier.OrderPlaced(ctx, orderID, userID, lines)

	if fromBuyNow {
		store.ClearBuyNow()
	} else {
		store.Clear()
	}

	log.Info().
		Stringer("order_id", orderID).
		Stringer("user_id", userID).
		Float64("total", total).
		Int("items", len(items)).
		Bool("buy_now", fromBuyNow).
		Msg("checkout: order placed")

	return &Result{OrderID: orderID, Items: items, Total: total}, nil
}

func (s *Service) acquire(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.inFlight[userID]; exists {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *Service) release(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}
