package quotation

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ytf-quote/internal/catalog"
	"github.com/noah-isme/ytf-quote/internal/discount"
	"github.com/noah-isme/ytf-quote/internal/pricing"
)

// Totals groups the derived amounts of a quotation.
type Totals struct {
	Subtotal pricing.Money   `json:"subtotal"`
	Discount discount.Result `json:"discount"`
	Total    pricing.Money   `json:"total"`
}

// ExternalLine is a line item as handed over by an upstream parser. Amount may hold any
// decoded JSON value.
type ExternalLine struct {
	Family      string `json:"typefaceFamily"`
	Variant     string `json:"typefaceVariant"`
	LicenseType string `json:"licenseType"`
	Usage       string `json:"usage"`
	Amount      any    `json:"amount"`
}

// Aggregate recomputes subtotal, discount and total from the full item list.
func Aggregate(items []LineItem, size catalog.BusinessSizeID) Totals {
	return aggregateWith(discount.Engine{}, items, size)
}

// AggregateExternal totals upstream lines, coercing malformed and negative amounts to zero.
func AggregateExternal(lines []ExternalLine, size catalog.BusinessSizeID) Totals {
	items := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		amount := pricing.Coerce(line.Amount)
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		items = append(items, LineItem{
			Family:      line.Family,
			Variant:     line.Variant,
			LicenseType: catalog.LicenseTypeID(line.LicenseType),
			Usage:       line.Usage,
			Amount:      amount,
		})
	}
	return Aggregate(items, size)
}

func aggregateWith(engine discount.Engine, items []LineItem, size catalog.BusinessSizeID) Totals {
	lines := make([]discount.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, discount.Item{
			Family:      it.Family,
			Variant:     it.Variant,
			LicenseType: it.LicenseType,
			Amount:      it.Amount,
		})
	}
	res := engine.Compute(lines, size)
	return Totals{
		Subtotal: res.Subtotal,
		Discount: res,
		Total:    res.Subtotal.Sub(res.Amount),
	}
}

func (q Quotation) withTotals(t Totals) Quotation {
	q.Subtotal = t.Subtotal
	q.Discount = t.Discount
	q.Total = t.Total
	return q
}
