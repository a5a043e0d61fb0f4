package cart

import (
	"fmt"

	"github.com/gofrs/uuid"
)

// Line is one pending purchase entry. Two lines are the same entry only when
// both the product and the size variant match.
type Line struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	UnitPrice    float64   `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	ImageRef     string    `json:"image_ref,omitempty"`
	OptionsLabel string    `json:"options_label,omitempty"`
	SizeML       *int      `json:"size_ml,omitempty"`
}

// Key is the merge identity of the line: product id plus size variant.
func (l Line) Key() string {
	if l.SizeML == nil {
		return l.ProductID.String()
	}
	return fmt.Sprintf("%s#%d", l.ProductID, *l.SizeML)
}

// Total is unit price times quantity.
func (l Line) Total() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// State is the durable shape of a cart: the ordered lines plus the buy-now
// slot. Both can hold data at once; checkout consumes exactly one of them.
type State struct {
	Lines        []Line `json:"lines"`
	BuyNow       *Line  `json:"buy_now,omitempty"`
	BuyNowActive bool   `json:"buy_now_active"`
}

// Snapshot is an immutable read of the cart handed to subscribers and to
// checkout. Mutating a snapshot has no effect on the store.
type Snapshot struct {
	Lines        []Line
	BuyNow       *Line
	BuyNowActive bool
}

// Total sums unit price times quantity over the cart lines.
func (s Snapshot) Total() float64 {
	var total float64
	for _, l := range s.Lines {
		total += l.Total()
	}
	return total
}

// ItemCount sums the per-line quantities.
func (s Snapshot) ItemCount() int {
	var count int
	for _, l := range s.Lines {
		count += l.Quantity
	}
	return count
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
