package domain

// ImageHandle is a key into the local handle store. The empty handle means
// "no image resolved; render the fallback".
type ImageHandle string

func (h ImageHandle) IsZero() bool { return h == "" }

// OrderSummaryState is the view-local state of a mounted order summary.
// Totals are derived from LineItems alone; Images only affects presentation.
type OrderSummaryState struct {
	OrderNumber string             `json:"orderNumber"`
	LineItems   []CartLineItem     `json:"lineItems"`
	Images      map[ID]ImageHandle `json:"images"`
}
