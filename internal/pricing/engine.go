package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ytf-quote/internal/catalog"
)

// Money represents a monetary value in whole currency units.
type Money = decimal.Decimal

// Multiplier is the outcome of a license multiplier lookup.
type Multiplier struct {
	Value   Money
	Set     catalog.UsageSetID
	Matched bool
}

// UnknownUsageFunc is called when a usage id is missing from the set that should price it.
type UnknownUsageFunc func(license catalog.LicenseTypeID, usage string)

// Calculator prices line items against a catalog.
type Calculator struct {
	Catalog        *catalog.Catalog
	OnUnknownUsage UnknownUsageFunc
}

var defaultCalculator = Calculator{}

// CategoryOf classifies a family, defaulting to Sans.
func CategoryOf(family string) catalog.Category {
	return defaultCalculator.CategoryOf(family)
}

// BaseLicensePrice returns the tier price for a category, or zero for unknown tiers.
func BaseLicensePrice(category catalog.Category, size catalog.BusinessSizeID) Money {
	return defaultCalculator.BaseLicensePrice(category, size)
}

// LicenseMultiplier returns the multiplier applied to the base price for a license and usage.
func LicenseMultiplier(license catalog.LicenseTypeID, usage string) Money {
	return defaultCalculator.LicenseMultiplier(license, usage)
}

// ResolveMultiplier is LicenseMultiplier with lookup details.
func ResolveMultiplier(license catalog.LicenseTypeID, usage string) Multiplier {
	return defaultCalculator.ResolveMultiplier(license, usage)
}

// ItemPrice computes the price of a single line item.
func ItemPrice(family string, size catalog.BusinessSizeID, license catalog.LicenseTypeID, usage string) Money {
	return defaultCalculator.ItemPrice(family, size, license, usage)
}

func (c Calculator) catalog() *catalog.Catalog {
	if c.Catalog == nil {
		return catalog.Default()
	}
	return c.Catalog
}

// CategoryOf classifies a family, defaulting to Sans.
func (c Calculator) CategoryOf(family string) catalog.Category {
	return c.catalog().CategoryOf(family)
}

// BaseLicensePrice returns the tier price for a category, or zero for unknown tiers.
func (c Calculator) BaseLicensePrice(category catalog.Category, size catalog.BusinessSizeID) Money {
	return c.catalog().BaseLicensePrice(category, size)
}

// LicenseMultiplier returns 1 for desktop and web, the business usage multiplier for logo,
// and the usage tier multiplier for the remaining license types. Unknown usage ids price at 1.
func (c Calculator) LicenseMultiplier(license catalog.LicenseTypeID, usage string) Money {
	return c.ResolveMultiplier(license, usage).Value
}

// ResolveMultiplier performs the multiplier lookup and reports whether the usage id matched.
func (c Calculator) ResolveMultiplier(license catalog.LicenseTypeID, usage string) Multiplier {
	one := decimal.NewFromInt(1)
	switch license {
	case catalog.LicenseDesktop, catalog.LicenseWeb:
		return Multiplier{Value: one, Matched: true}
	}
	cat := c.catalog()
	set, ok := cat.UsageSetFor(license)
	if !ok {
		return Multiplier{Value: one}
	}
	opt, ok := cat.UsageOption(set, usage)
	if !ok {
		if c.OnUnknownUsage != nil {
			c.OnUnknownUsage(license, usage)
		}
		return Multiplier{Value: one, Set: set}
	}
	return Multiplier{Value: opt.Multiplier, Set: set, Matched: true}
}

// ItemPrice computes the price of a single line item. Individuals pay the flat category fee
// regardless of license and usage.
func (c Calculator) ItemPrice(family string, size catalog.BusinessSizeID, license catalog.LicenseTypeID, usage string) Money {
	cat := c.catalog()
	category := cat.CategoryOf(family)
	if size == catalog.SizeIndividual {
		return cat.IndividualFee(category)
	}
	return cat.BaseLicensePrice(category, size).Mul(c.LicenseMultiplier(license, usage))
}

// Coerce converts an upstream amount into Money. Values that are not finite numbers become zero.
func Coerce(v any) Money {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case decimal.NullDecimal:
		if !n.Valid {
			return decimal.Zero
		}
		return n.Decimal
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return parsed
	default:
		return decimal.Zero
	}
}

// Sum adds amounts.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, amt := range amounts {
		total = total.Add(amt)
	}
	return total
}
