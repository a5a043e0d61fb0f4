package notification

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/cart"
)

// SellerLookup resolves the seller owning a product.
type SellerLookup interface {
	GetSellerID(ctx context.Context, productID uuid.UUID) (uuid.UUID, error)
}

// Fanout emits one notification per distinct seller touched by an order.
// Everything here is best-effort: lookup failures skip the line, insert
// failures are logged, and nothing propagates to the caller. Emission is not
// idempotent; callers must not retry it.
type Fanout struct {
	repo     Repository
	products SellerLookup
}

func NewFanout(repo Repository, products SellerLookup) *Fanout {
	return &Fanout{repo: repo, products: products}
}

// OrderPlaced notifies the distinct sellers owning the order's lines. A
// seller with several lines in the order gets exactly one notification,
// carrying one representative product.
func (f *Fanout) OrderPlaced(ctx context.Context, orderID, customerID uuid.UUID, lines []cart.Line) {
	type sellerContext struct {
		productID uuid.UUID
		lineCount int
	}

	sellers := make(map[uuid.UUID]*sellerContext)
	var sellerOrder []uuid.UUID

	for _, line := range lines {
		sellerID, err := f.products.GetSellerID(ctx, line.ProductID)
		if err != nil {
			log.Warn().Err(err).Stringer("product_id", line.ProductID).Stringer("order_id", orderID).Msg("notification: seller lookup failed, skipping line")
			continue
		}

		if sc, ok := sellers[sellerID]; ok {
			sc.lineCount++
			continue
		}
		sellers[sellerID] = &sellerContext{productID: line.ProductID, lineCount: 1}
		sellerOrder = append(sellerOrder, sellerID)
	}

	for _, sellerID := range sellerOrder {
		sc := sellers[sellerID]

		n := &Notification{
			SellerID: sellerID,
			Title:    "New order received",
			Content:  fmt.Sprintf("You have a new order with %d of your products.", sc.lineCount),
			Type:     TypeNewOrder,
			Metadata: Metadata{
				OrderID:    orderID,
				ProductID:  sc.productID,
				CustomerID: customerID,
			},
		}

		if err := f.repo.Create(ctx, n); err != nil {
			log.Error().Err(err).Stringer("seller_id", sellerID).Stringer("order_id", orderID).Msg("notification: failed to create seller notification")
		}
	}
}
