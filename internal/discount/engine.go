package discount

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ytf-quote/internal/catalog"
	"github.com/noah-isme/ytf-quote/internal/pricing"
)

// Item is the subset of a line item the bundle discount looks at.
type Item struct {
	Family      string
	Variant     string
	LicenseType catalog.LicenseTypeID
	Amount      pricing.Money
}

// Result describes the bundle discount applied to a quotation.
type Result struct {
	Percentage         int           `json:"percentage"`
	Amount             pricing.Money `json:"amount"`
	Subtotal           pricing.Money `json:"subtotal"`
	UniqueStyles       int           `json:"uniqueStyles"`
	UniqueLicenseTypes int           `json:"uniqueLicenseTypes"`
	StylePercent       int           `json:"stylePercent"`
	LicensePercent     int           `json:"licensePercent"`
	Capped             bool          `json:"capped"`
}

// Breakdown renders the tiers that contributed to the discount.
func (r Result) Breakdown() string {
	if r.Percentage == 0 {
		return ""
	}
	parts := make([]string, 0, 2)
	if r.StylePercent > 0 {
		parts = append(parts, fmt.Sprintf("%d%% style discount", r.StylePercent))
	}
	if r.LicensePercent > 0 {
		parts = append(parts, fmt.Sprintf("%d%% license type discount", r.LicensePercent))
	}
	out := strings.Join(parts, " + ")
	if r.Capped {
		out += fmt.Sprintf(" (capped at %d%%)", r.Percentage)
	}
	return out
}

// Engine computes bundle discounts using the caps of a catalog.
type Engine struct {
	Catalog *catalog.Catalog
}

// Compute applies the bundle discount rules with the default catalog.
func Compute(items []Item, size catalog.BusinessSizeID) Result {
	return Engine{}.Compute(items, size)
}

// Compute determines the bundle discount for the items at the given business size.
// Individuals never receive a discount. Otherwise the discount applies once the items span
// at least two styles or two license types, and is capped per business size.
func (e Engine) Compute(items []Item, size catalog.BusinessSizeID) Result {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
	}
	result := Result{Amount: decimal.Zero, Subtotal: subtotal}
	if size == catalog.SizeIndividual {
		return result
	}

	result.UniqueStyles = uniqueStyles(items)
	result.UniqueLicenseTypes = uniqueLicenseTypes(items)
	if result.UniqueStyles < 2 && result.UniqueLicenseTypes < 2 {
		return result
	}

	result.StylePercent = StyleTier(result.UniqueStyles)
	result.LicensePercent = LicenseTier(result.UniqueLicenseTypes)
	percent := result.StylePercent + result.LicensePercent
	limit := e.catalog().DiscountCap(size)
	if percent > limit {
		percent = limit
		result.Capped = true
	}
	if percent < 0 {
		percent = 0
	}
	result.Percentage = percent
	result.Amount = AmountFor(subtotal, percent)
	return result
}

// StyleTier maps a distinct style count to its discount percentage.
func StyleTier(styles int) int {
	switch {
	case styles >= 4:
		return 20
	case styles == 3:
		return 15
	case styles == 2:
		return 10
	default:
		return 0
	}
}

// LicenseTier maps a distinct license type count to its discount percentage.
func LicenseTier(licenses int) int {
	switch {
	case licenses >= 3:
		return 10
	case licenses == 2:
		return 5
	default:
		return 0
	}
}

// AmountFor rounds subtotal*percent/100 to the nearest whole currency unit.
func AmountFor(subtotal pricing.Money, percent int) pricing.Money {
	if percent <= 0 {
		return decimal.Zero
	}
	return subtotal.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(0)
}

func (e Engine) catalog() *catalog.Catalog {
	if e.Catalog == nil {
		return catalog.Default()
	}
	return e.Catalog
}

type style struct {
	family  string
	variant string
}

func uniqueStyles(items []Item) int {
	seen := make(map[style]struct{}, len(items))
	for _, it := range items {
		seen[style{family: it.Family, variant: it.Variant}] = struct{}{}
	}
	return len(seen)
}

func uniqueLicenseTypes(items []Item) int {
	seen := make(map[catalog.LicenseTypeID]struct{}, len(items))
	for _, it := range items {
		seen[it.LicenseType] = struct{}{}
	}
	return len(seen)
}
