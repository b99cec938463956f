package summary

import (
	"github.com/yungbote/artsfront/internal/domain"
)

// Row is one rendered line of the summary table.
type Row struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
	ImageURL  string `json:"imageUrl"`
	// Fallback is true when no image resolved for the row.
	Fallback bool `json:"fallback"`
}

// View is what the summary page and its JSON variant render.
type View struct {
	ID          string    `json:"id"`
	State       ViewState `json:"state"`
	OrderNumber string    `json:"orderNumber"`
	Empty       bool      `json:"empty"`
	Rows        []Row     `json:"rows"`
	GrandTotal  string    `json:"grandTotal"`
}

// BuildView flattens a snapshot into display rows. Ids without a handle use
// fallbackURL; imageURL turns a handle into a fetchable URL.
func BuildView(snap Snapshot, imageURL func(domain.ImageHandle) string, fallbackURL string) View {
	v := View{
		ID:          snap.ID,
		State:       snap.State,
		OrderNumber: snap.Summary.OrderNumber,
		Empty:       len(snap.Summary.LineItems) == 0,
		Rows:        make([]Row, 0, len(snap.Summary.LineItems)),
		GrandTotal:  FormatMoney(snap.Totals.Grand),
	}
	perLine := snap.Totals.PerLine()
	for _, it := range snap.Summary.LineItems {
		row := Row{
			ID:        it.ID.String(),
			Title:     it.Title,
			Price:     FormatMoney(it.Price),
			Quantity:  it.Quantity,
			LineTotal: FormatMoney(perLine[it.ID]),
			ImageURL:  fallbackURL,
			Fallback:  true,
		}
		if h, ok := snap.Summary.Images[it.ID]; ok && !h.IsZero() && imageURL != nil {
			row.ImageURL = imageURL(h)
			row.Fallback = false
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}
