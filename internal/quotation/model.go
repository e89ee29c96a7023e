package quotation

import (
	"slices"

	"github.com/google/uuid"

	"github.com/noah-isme/ytf-quote/internal/catalog"
	"github.com/noah-isme/ytf-quote/internal/discount"
	"github.com/noah-isme/ytf-quote/internal/pricing"
)

// LineItem is one licensed style on a quotation.
type LineItem struct {
	ID          uuid.UUID             `json:"id"`
	Family      string                `json:"typefaceFamily"`
	Variant     string                `json:"typefaceVariant"`
	Typeface    string                `json:"typeface"`
	LanguageCut string                `json:"languageCut"`
	BasePrice   pricing.Money         `json:"basePrice"`
	LicenseType catalog.LicenseTypeID `json:"licenseType"`
	Usage       string                `json:"usage"`
	Amount      pricing.Money         `json:"amount"`
}

// BillingAddress is the invoicing address printed on the document.
type BillingAddress struct {
	CompanyName string `json:"companyName"`
	Street      string `json:"street"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// Client identifies the licensee. None of these fields affect pricing.
type Client struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Address string         `json:"address"`
	Billing BillingAddress `json:"billingAddress"`
}

// Quotation is a priced set of line items for one client and business size.
// Subtotal, Discount and Total are derived from Items and BusinessSize.
type Quotation struct {
	ID           uuid.UUID              `json:"id"`
	Number       string                 `json:"quotationNumber"`
	Date         string                 `json:"quotationDate"`
	Client       Client                 `json:"client"`
	BusinessSize catalog.BusinessSizeID `json:"businessSize"`
	Items        []LineItem             `json:"items"`
	Subtotal     pricing.Money          `json:"subtotal"`
	Discount     discount.Result        `json:"discount"`
	Total        pricing.Money          `json:"total"`
}

// Clone returns a deep copy that shares no item storage with q.
func (q Quotation) Clone() Quotation {
	q.Items = slices.Clone(q.Items)
	return q
}

// Item finds a line item by id.
func (q Quotation) Item(id uuid.UUID) (LineItem, bool) {
	idx := q.indexOf(id)
	if idx < 0 {
		return LineItem{}, false
	}
	return q.Items[idx], true
}

func (q Quotation) indexOf(id uuid.UUID) int {
	for i, it := range q.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func label(family, variant string) string {
	return family + " " + variant
}
