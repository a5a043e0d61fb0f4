package notification

import (
	"time"

	"github.com/gofrs/uuid"
)

const TypeNewOrder = "new_order"

// Metadata ties a notification back to the order that produced it. ProductID
// is one representative product of the seller's lines in that order.
type Metadata struct {
	OrderID    uuid.UUID `json:"order_id"`
	ProductID  uuid.UUID `json:"product_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

type Notification struct {
	ID        uuid.UUID `json:"id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
