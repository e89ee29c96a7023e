package quotation

import (
	"github.com/google/uuid"

	"github.com/noah-isme/ytf-quote/internal/catalog"
	"github.com/noah-isme/ytf-quote/internal/pricing"
)

// SnapshotLine is a line item resolved for display.
type SnapshotLine struct {
	ID              uuid.UUID             `json:"id"`
	Typeface        string                `json:"typeface"`
	Family          string                `json:"typefaceFamily"`
	Variant         string                `json:"typefaceVariant"`
	LanguageCut     string                `json:"languageCut"`
	LicenseType     catalog.LicenseTypeID `json:"licenseType"`
	LicenseTypeName string                `json:"licenseTypeName"`
	Usage           string                `json:"usage"`
	UsageName       string                `json:"usageName"`
	Amount          pricing.Money         `json:"amount"`
}

// SnapshotSize is the business size block printed on documents.
type SnapshotSize struct {
	ID          catalog.BusinessSizeID `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
}

// SnapshotDiscount is the bundle discount as shown to the client.
type SnapshotDiscount struct {
	Percentage int           `json:"percentage"`
	Amount     pricing.Money `json:"amount"`
	Breakdown  string        `json:"breakdown,omitempty"`
}

// Snapshot is the read-only view of a quotation handed to rendering layers.
// Amounts are raw numbers; formatting is left to the renderer.
type Snapshot struct {
	ID           uuid.UUID        `json:"id"`
	Number       string           `json:"quotationNumber"`
	Date         string           `json:"quotationDate"`
	Client       Client           `json:"client"`
	BusinessSize SnapshotSize     `json:"businessSize"`
	Items        []SnapshotLine   `json:"items"`
	Subtotal     pricing.Money    `json:"subtotal"`
	Discount     SnapshotDiscount `json:"discount"`
	Total        pricing.Money    `json:"total"`
}

// NewSnapshot resolves display names for q against the catalog.
func NewSnapshot(c *catalog.Catalog, q Quotation) Snapshot {
	if c == nil {
		c = catalog.Default()
	}
	snap := Snapshot{
		ID:       q.ID,
		Number:   q.Number,
		Date:     q.Date,
		Client:   q.Client,
		Items:    make([]SnapshotLine, 0, len(q.Items)),
		Subtotal: q.Subtotal,
		Discount: SnapshotDiscount{
			Percentage: q.Discount.Percentage,
			Amount:     q.Discount.Amount,
			Breakdown:  q.Discount.Breakdown(),
		},
		Total: q.Total,
	}
	snap.BusinessSize = SnapshotSize{ID: q.BusinessSize}
	if size, ok := c.BusinessSize(q.BusinessSize); ok {
		snap.BusinessSize.Name = size.Name
		snap.BusinessSize.Description = size.Description
	}
	for _, it := range q.Items {
		line := SnapshotLine{
			ID:          it.ID,
			Typeface:    it.Typeface,
			Family:      it.Family,
			Variant:     it.Variant,
			LanguageCut: it.LanguageCut,
			LicenseType: it.LicenseType,
			Usage:       it.Usage,
			UsageName:   usageName(c, it.LicenseType, it.Usage),
			Amount:      it.Amount,
		}
		if lt, ok := c.LicenseType(it.LicenseType); ok {
			line.LicenseTypeName = lt.Name
		} else {
			line.LicenseTypeName = string(it.LicenseType)
		}
		snap.Items = append(snap.Items, line)
	}
	return snap
}

func usageName(c *catalog.Catalog, license catalog.LicenseTypeID, usage string) string {
	if usage == "" || usage == catalog.NonCommercialUsage {
		return usage
	}
	set, ok := c.UsageSetFor(license)
	if !ok {
		return usage
	}
	if opt, ok := c.UsageOption(set, usage); ok {
		return opt.Name
	}
	return usage
}
