package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Category groups families into the two price bands used by the foundry.
type Category string

const (
	CategorySans  Category = "Sans"
	CategorySerif Category = "Serif"
)

// BusinessSizeID identifies a licensee tier.
type BusinessSizeID string

const (
	SizeIndividual BusinessSizeID = "individual"
	SizeXS         BusinessSizeID = "xs"
	SizeS          BusinessSizeID = "s"
	SizeM          BusinessSizeID = "m"
	SizeL          BusinessSizeID = "l"
	SizeXL         BusinessSizeID = "xl"
)

// LicenseTypeID identifies a usage channel.
type LicenseTypeID string

const (
	LicenseDesktop       LicenseTypeID = "desktop"
	LicenseWeb           LicenseTypeID = "web"
	LicenseLogo          LicenseTypeID = "logo"
	LicenseApp           LicenseTypeID = "app"
	LicenseBroadcast     LicenseTypeID = "broadcast"
	LicensePackaging     LicenseTypeID = "packaging"
	LicenseMerchandising LicenseTypeID = "merchandising"
	LicensePublishing    LicenseTypeID = "publishing"
)

// UsageSetID names one of the usage option tables.
type UsageSetID string

const (
	UsageSetBusiness  UsageSetID = "business"
	UsageSetApp       UsageSetID = "app"
	UsageSetBroadcast UsageSetID = "broadcast"
	UsageSetPackaging UsageSetID = "packaging"
)

// NonCommercialUsage is the usage label assigned to individual-tier licenses.
const NonCommercialUsage = "Non-commercial use"

// Typeface is a family offered by the foundry.
type Typeface struct {
	Family      string          `json:"family"`
	Variants    []string        `json:"variants"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	TotalStyles int             `json:"totalStyles"`
}

// FirstVariant returns the default style of the family.
func (t Typeface) FirstVariant() string {
	if len(t.Variants) == 0 {
		return ""
	}
	return t.Variants[0]
}

// HasVariant reports whether the family ships the given style.
func (t Typeface) HasVariant(variant string) bool {
	return slices.Contains(t.Variants, variant)
}

// BusinessSize describes a licensee tier.
type BusinessSize struct {
	ID            BusinessSizeID `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Multiplier    int            `json:"multiplier"`
	EmployeeCount string         `json:"employeeCount"`
}

// LicenseType describes a usage channel and whether its usage tier is picked by hand.
type LicenseType struct {
	ID                  LicenseTypeID `json:"id"`
	Name                string        `json:"name"`
	RequiresManualUsage bool          `json:"requiresManualUsage"`
}

// UsageOption is a tier inside a usage set. Its multiplier only applies within that set.
type UsageOption struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Catalog is the read-only reference data used for pricing. It has no write API.
type Catalog struct {
	typefaces     []Typeface
	sizes         []BusinessSize
	licenses      []LicenseType
	usage         map[UsageSetID][]UsageOption
	categories    map[string]Category
	basePrices    map[Category]map[BusinessSizeID]decimal.Decimal
	discountCaps  map[BusinessSizeID]int
	individualFee map[Category]decimal.Decimal
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide foundry catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = build()
	})
	return defaultCatalog
}

// ParseBusinessSize validates a business size identifier.
func ParseBusinessSize(value string) (BusinessSizeID, bool) {
	id := BusinessSizeID(strings.ToLower(strings.TrimSpace(value)))
	switch id {
	case SizeIndividual, SizeXS, SizeS, SizeM, SizeL, SizeXL:
		return id, true
	default:
		return "", false
	}
}

// ParseLicenseType validates a license type identifier.
func ParseLicenseType(value string) (LicenseTypeID, bool) {
	id := LicenseTypeID(strings.ToLower(strings.TrimSpace(value)))
	switch id {
	case LicenseDesktop, LicenseWeb, LicenseLogo, LicenseApp, LicenseBroadcast,
		LicensePackaging, LicenseMerchandising, LicensePublishing:
		return id, true
	default:
		return "", false
	}
}

// IsAutoUsage reports whether the license derives its usage from the business size.
func IsAutoUsage(id LicenseTypeID) bool {
	switch id {
	case LicenseDesktop, LicenseWeb, LicenseLogo:
		return true
	default:
		return false
	}
}

// Typefaces returns every family in catalog order.
func (c *Catalog) Typefaces() []Typeface {
	out := make([]Typeface, len(c.typefaces))
	for i, tf := range c.typefaces {
		out[i] = tf.clone()
	}
	return out
}

// Typeface looks up a family by its exact name.
func (c *Catalog) Typeface(family string) (Typeface, bool) {
	for _, tf := range c.typefaces {
		if tf.Family == family {
			return tf.clone(), true
		}
	}
	return Typeface{}, false
}

// FirstTypeface returns the first family in catalog order.
func (c *Catalog) FirstTypeface() Typeface {
	return c.typefaces[0].clone()
}

// BusinessSizes returns the tiers ordered from smallest to largest.
func (c *Catalog) BusinessSizes() []BusinessSize {
	return slices.Clone(c.sizes)
}

// BusinessSize looks up a tier by id.
func (c *Catalog) BusinessSize(id BusinessSizeID) (BusinessSize, bool) {
	for _, size := range c.sizes {
		if size.ID == id {
			return size, true
		}
	}
	return BusinessSize{}, false
}

// LicenseTypes returns every license type in catalog order.
func (c *Catalog) LicenseTypes() []LicenseType {
	return slices.Clone(c.licenses)
}

// LicenseType looks up a license type by id.
func (c *Catalog) LicenseType(id LicenseTypeID) (LicenseType, bool) {
	for _, lt := range c.licenses {
		if lt.ID == id {
			return lt, true
		}
	}
	return LicenseType{}, false
}

// AvailableLicenseTypes lists the license types a tier may purchase.
// Individuals are limited to desktop and web.
func (c *Catalog) AvailableLicenseTypes(size BusinessSizeID) []LicenseType {
	if size != SizeIndividual {
		return c.LicenseTypes()
	}
	out := make([]LicenseType, 0, 2)
	for _, lt := range c.licenses {
		if lt.ID == LicenseDesktop || lt.ID == LicenseWeb {
			out = append(out, lt)
		}
	}
	return out
}

// IsLicenseAvailable reports whether the license may be sold to the tier.
func (c *Catalog) IsLicenseAvailable(size BusinessSizeID, id LicenseTypeID) bool {
	for _, lt := range c.AvailableLicenseTypes(size) {
		if lt.ID == id {
			return true
		}
	}
	return false
}

// UsageSetFor maps a license type to the usage table that prices it.
func (c *Catalog) UsageSetFor(id LicenseTypeID) (UsageSetID, bool) {
	switch id {
	case LicenseDesktop, LicenseWeb, LicenseLogo:
		return UsageSetBusiness, true
	case LicenseApp:
		return UsageSetApp, true
	case LicenseBroadcast:
		return UsageSetBroadcast, true
	case LicensePackaging, LicenseMerchandising, LicensePublishing:
		return UsageSetPackaging, true
	default:
		return "", false
	}
}

// UsageOptions returns the options of a usage set.
func (c *Catalog) UsageOptions(set UsageSetID) []UsageOption {
	return slices.Clone(c.usage[set])
}

// UsageOptionsFor returns the usage options offered for a license type.
func (c *Catalog) UsageOptionsFor(id LicenseTypeID) []UsageOption {
	set, ok := c.UsageSetFor(id)
	if !ok {
		return nil
	}
	return c.UsageOptions(set)
}

// UsageOption looks up a usage id inside one set.
func (c *Catalog) UsageOption(set UsageSetID, id string) (UsageOption, bool) {
	for _, opt := range c.usage[set] {
		if opt.ID == id {
			return opt, true
		}
	}
	return UsageOption{}, false
}

// BusinessUsage is the usage value auto-assigned to desktop, web and logo licenses.
func (c *Catalog) BusinessUsage(size BusinessSizeID) string {
	if size == SizeIndividual {
		return NonCommercialUsage
	}
	return string(size)
}

// CategoryOf classifies a family, falling back to Sans for unknown names.
func (c *Catalog) CategoryOf(family string) Category {
	if cat, ok := c.categories[family]; ok {
		return cat
	}
	return CategorySans
}

// BaseLicensePrice returns the base price for a category and tier, or zero when the tier is unknown.
func (c *Catalog) BaseLicensePrice(category Category, size BusinessSizeID) decimal.Decimal {
	prices, ok := c.basePrices[category]
	if !ok {
		return decimal.Zero
	}
	price, ok := prices[size]
	if !ok {
		return decimal.Zero
	}
	return price
}

// IndividualFee is the flat price charged to individuals for a family in the category.
func (c *Catalog) IndividualFee(category Category) decimal.Decimal {
	if fee, ok := c.individualFee[category]; ok {
		return fee
	}
	return c.individualFee[CategorySans]
}

// DiscountCap is the maximum bundle discount percentage for a tier.
func (c *Catalog) DiscountCap(size BusinessSizeID) int {
	return c.discountCaps[size]
}

// LanguageCut is the display cut printed next to a style.
func LanguageCut(variant string) string {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return "Latin, Medium"
	}
	return "Latin, " + variant
}

func (t Typeface) clone() Typeface {
	t.Variants = slices.Clone(t.Variants)
	return t
}
