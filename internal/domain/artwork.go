package domain

import "github.com/shopspring/decimal"

// ArtworkRecord is a single catalog entry as returned by GET /api/artworks/{id}.
type ArtworkRecord struct {
	ID          ID              `json:"id"`
	Title       string          `json:"title"`
	Artist      string          `json:"artist"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}
