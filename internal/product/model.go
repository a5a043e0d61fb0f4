package product

import (
	"time"

	"github.com/gofrs/uuid"
)

type Product struct {
	ID        uuid.UUID `json:"id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
