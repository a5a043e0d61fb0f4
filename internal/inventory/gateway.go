package inventory

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/product"
)

// Result aggregates the advisory availability check. Valid is false when any
// shortage message was collected; the caller decides what to do with it.
type Result struct {
	Valid  bool
	Errors []string
}

// Gateway bridges cart lines and the authoritative per-product stock counts.
// Decrement and restore are independent read-modify-write cycles per product:
// there is no reservation, version stamp or lock, so concurrent writers can
// lose updates. That mirrors the stock bookkeeping contract this service has
// always had; callers treat every write here as best-effort.
type Gateway struct {
	products product.Repository
}

func NewGateway(products product.Repository) *Gateway {
	return &Gateway{products: products}
}

// ValidateAvailability checks each line against current stock. A failed fetch
// skips the line (unknown stock is not a shortage). The check warns, it does
// not gate: callers proceed regardless of the result.
func (g *Gateway) ValidateAvailability(ctx context.Context, lines []cart.Line) Result {
	result := Result{Valid: true}

	for _, line := range lines {
		available, err := g.products.GetQuantity(ctx, line.ProductID)
		if err != nil {
			log.Warn().Err(err).Stringer("product_id", line.ProductID).Msg("inventory: stock check skipped, fetch failed")
			continue
		}

		if available < line.Quantity {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"%s: only %d of %d in stock", line.Name, available, line.Quantity))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// DecrementMany writes back max(0, current-requested) for each line. Lines
// are processed independently; a failure on one is logged and the rest are
// still processed.
func (g *Gateway) DecrementMany(ctx context.Context, lines []cart.Line) {
	for _, line := range lines {
		current, err := g.products.GetQuantity(ctx, line.ProductID)
		if err != nil {
			log.Error().Err(err).Stringer("product_id", line.ProductID).Msg("inventory: decrement skipped, failed to read quantity")
			continue
		}

		next := current - line.Quantity
		if next < 0 {
			next = 0
		}

		if err := g.products.SetQuantity(ctx, line.ProductID, next); err != nil {
			log.Error().Err(err).Stringer("product_id", line.ProductID).Int("quantity", next).Msg("inventory: failed to write decremented quantity")
		}
	}
}

// Restore adds the quantity back, best-effort. Used as compensation on order
// cancellation; failures are logged, never raised.
func (g *Gateway) Restore(ctx context.Context, productID uuid.UUID, quantity int) {
	current, err := g.products.GetQuantity(ctx, productID)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("inventory: restore skipped, failed to read quantity")
		return
	}

	if err := g.products.SetQuantity(ctx, productID, current+quantity); err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Int("quantity", quantity).Msg("inventory: failed to restore quantity")
	}
}

// GetQuantity is a point read for UI stock badges.
func (g *Gateway) GetQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	return g.products.GetQuantity(ctx, productID)
}

// CanSatisfy reports whether current stock covers the requested quantity.
func (g *Gateway) CanSatisfy(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	available, err := g.products.GetQuantity(ctx, productID)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}
