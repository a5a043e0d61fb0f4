package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusProcessing     OrderStatus = "processing"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusShipped        OrderStatus = "shipped"
	StatusInTransit      OrderStatus = "in_transit"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusRefunded       OrderStatus = "refunded"
)

func (os OrderStatus) String() string {
	return string(os)
}

type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	Status         OrderStatus `json:"status"`
	OrderItems     []OrderItem `json:"order_items"`
	TotalAmount    float64     `json:"total_amount"`
	Address        string      `json:"address"`
	RecipientName  string      `json:"recipient_name"`
	RecipientPhone string      `json:"recipient_phone"`
	Note           string      `json:"note,omitempty"`
	ShippedDate    *time.Time  `json:"shipped_date,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
