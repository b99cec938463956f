package summary

import (
	"github.com/shopspring/decimal"

	"github.com/yungbote/artsfront/internal/domain"
)

const moneyPlaces = 2

// LineTotal is price × quantity for one line item, rounded to cents.
type LineTotal struct {
	ID     domain.ID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// Totals are derived from the line items alone and never depend on image
// resolution. Grand is the sum of the rounded line totals, so it always equals
// what a reader adds up from the displayed rows.
type Totals struct {
	Lines []LineTotal     `json:"lines"`
	Grand decimal.Decimal `json:"grand"`
}

func LineAmount(it domain.CartLineItem) decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(moneyPlaces)
}

func ComputeTotals(items []domain.CartLineItem) Totals {
	out := Totals{
		Lines: make([]LineTotal, 0, len(items)),
		Grand: decimal.Zero,
	}
	for _, it := range items {
		amt := LineAmount(it)
		out.Lines = append(out.Lines, LineTotal{ID: it.ID, Amount: amt})
		out.Grand = out.Grand.Add(amt)
	}
	out.Grand = out.Grand.Round(moneyPlaces)
	return out
}

func (t Totals) PerLine() map[domain.ID]decimal.Decimal {
	out := make(map[domain.ID]decimal.Decimal, len(t.Lines))
	for _, l := range t.Lines {
		out[l.ID] = l.Amount
	}
	return out
}

// FormatMoney renders an amount with exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}
