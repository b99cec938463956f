package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingID        = errors.New("line item id is required")
	ErrNegativePrice    = errors.New("line item price must be >= 0")
	ErrNonPositiveQty   = errors.New("line item quantity must be > 0")
	ErrDuplicateLineIDs = errors.New("line item ids must be unique")
)

// CartLineItem is one row of a cart: an artwork reference plus a purchase quantity.
type CartLineItem struct {
	ID       ID              `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (it CartLineItem) Validate() error {
	if it.ID.IsZero() {
		return ErrMissingID
	}
	if it.Price.IsNegative() {
		return fmt.Errorf("%w (id=%s)", ErrNegativePrice, it.ID)
	}
	if it.Quantity <= 0 {
		return fmt.Errorf("%w (id=%s)", ErrNonPositiveQty, it.ID)
	}
	return nil
}

// ValidateLineItems checks every item and rejects repeated ids; the image table
// and per-line totals are both keyed by id.
func ValidateLineItems(items []CartLineItem) error {
	seen := make(map[ID]struct{}, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("cartItems[%d]: %w", i, err)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("cartItems[%d]: %w (id=%s)", i, ErrDuplicateLineIDs, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// DistinctIDs returns the item ids in first-seen order.
func DistinctIDs(items []CartLineItem) []ID {
	out := make([]ID, 0, len(items))
	seen := make(map[ID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it.ID)
	}
	return out
}
