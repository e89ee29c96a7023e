package quotation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ytf-quote/internal/catalog"
	"github.com/noah-isme/ytf-quote/internal/discount"
	"github.com/noah-isme/ytf-quote/internal/pricing"
)

// Event is a change requested by the form layer.
type Event interface {
	Name() string
}

// AddItem appends a default line item.
type AddItem struct{}

// RemoveItem drops a line item unless it is the last one.
type RemoveItem struct {
	ItemID uuid.UUID
}

// ChangeTypefaceFamily switches an item to another family and resets its style.
type ChangeTypefaceFamily struct {
	ItemID uuid.UUID
	Family string
}

// ChangeVariant selects another style of the item's family.
type ChangeVariant struct {
	ItemID  uuid.UUID
	Variant string
}

// ChangeLicenseType switches an item's license type.
type ChangeLicenseType struct {
	ItemID      uuid.UUID
	LicenseType catalog.LicenseTypeID
}

// ChangeUsage selects the usage tier of a manual-usage license.
type ChangeUsage struct {
	ItemID uuid.UUID
	Usage  string
}

// ChangeBusinessSize moves the whole quotation to another tier.
type ChangeBusinessSize struct {
	Size catalog.BusinessSizeID
}

// ChangeClient replaces the client identity fields.
type ChangeClient struct {
	Client Client
}

func (AddItem) Name() string              { return "add_item" }
func (RemoveItem) Name() string           { return "remove_item" }
func (ChangeTypefaceFamily) Name() string { return "change_typeface_family" }
func (ChangeVariant) Name() string        { return "change_variant" }
func (ChangeLicenseType) Name() string    { return "change_license_type" }
func (ChangeUsage) Name() string          { return "change_usage" }
func (ChangeBusinessSize) Name() string   { return "change_business_size" }
func (ChangeClient) Name() string         { return "change_client" }

// Reducer reconciles a quotation after each event. It never mutates its input and never fails:
// unknown identifiers leave the quotation unchanged apart from a fresh recomputation of totals.
type Reducer struct {
	catalog    *catalog.Catalog
	calculator pricing.Calculator
	discounts  discount.Engine
	newID      func() uuid.UUID
}

// ReducerConfig groups Reducer dependencies.
type ReducerConfig struct {
	Catalog        *catalog.Catalog
	OnUnknownUsage pricing.UnknownUsageFunc
	NewID          func() uuid.UUID
}

// NewReducer constructs a Reducer.
func NewReducer(cfg ReducerConfig) *Reducer {
	c := cfg.Catalog
	if c == nil {
		c = catalog.Default()
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.New
	}
	return &Reducer{
		catalog:    c,
		calculator: pricing.Calculator{Catalog: c, OnUnknownUsage: cfg.OnUnknownUsage},
		discounts:  discount.Engine{Catalog: c},
		newID:      newID,
	}
}

// Catalog returns the reference data used by the reducer.
func (r *Reducer) Catalog() *catalog.Catalog {
	return r.catalog
}

// New returns a quotation for the tier holding a single default item.
// Unknown tiers fall back to individual.
func (r *Reducer) New(size catalog.BusinessSizeID) Quotation {
	if _, ok := r.catalog.BusinessSize(size); !ok {
		size = catalog.SizeIndividual
	}
	q := Quotation{
		ID:           r.newID(),
		BusinessSize: size,
		Subtotal:     decimal.Zero,
		Total:        decimal.Zero,
	}
	q.Items = []LineItem{r.defaultItem(size)}
	return r.recompute(q)
}

// Apply returns the quotation that results from ev.
func (r *Reducer) Apply(q Quotation, ev Event) Quotation {
	next := q.Clone()
	switch e := ev.(type) {
	case AddItem:
		next.Items = append(next.Items, r.defaultItem(next.BusinessSize))
	case RemoveItem:
		idx := next.indexOf(e.ItemID)
		if idx >= 0 && len(next.Items) > 1 {
			next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
		}
	case ChangeTypefaceFamily:
		next = r.updateItem(next, e.ItemID, func(it LineItem) LineItem {
			tf, ok := r.catalog.Typeface(e.Family)
			if !ok || len(tf.Variants) == 0 {
				return it
			}
			it.Family = tf.Family
			it.Variant = tf.FirstVariant()
			it.Typeface = label(it.Family, it.Variant)
			it.LanguageCut = catalog.LanguageCut(it.Variant)
			it.BasePrice = tf.BasePrice
			it.Amount = r.price(it, next.BusinessSize)
			return it
		})
	case ChangeVariant:
		next = r.updateItem(next, e.ItemID, func(it LineItem) LineItem {
			tf, ok := r.catalog.Typeface(it.Family)
			if !ok || !tf.HasVariant(e.Variant) {
				return it
			}
			it.Variant = e.Variant
			it.Typeface = label(it.Family, it.Variant)
			it.LanguageCut = catalog.LanguageCut(it.Variant)
			return it
		})
	case ChangeLicenseType:
		next = r.updateItem(next, e.ItemID, func(it LineItem) LineItem {
			if !r.catalog.IsLicenseAvailable(next.BusinessSize, e.LicenseType) {
				return it
			}
			it.LicenseType = e.LicenseType
			it.Usage = r.usageFor(e.LicenseType, next.BusinessSize)
			it.Amount = r.price(it, next.BusinessSize)
			return it
		})
	case ChangeUsage:
		next = r.updateItem(next, e.ItemID, func(it LineItem) LineItem {
			if catalog.IsAutoUsage(it.LicenseType) {
				return it
			}
			it.Usage = e.Usage
			it.Amount = r.price(it, next.BusinessSize)
			return it
		})
	case ChangeBusinessSize:
		if _, ok := r.catalog.BusinessSize(e.Size); ok {
			next.BusinessSize = e.Size
			for i, it := range next.Items {
				next.Items[i] = r.reconcileSize(it, e.Size)
			}
		}
	case ChangeClient:
		next.Client = e.Client
	}
	return r.recompute(next)
}

// ApplyAll folds events over q in order.
func (r *Reducer) ApplyAll(q Quotation, events ...Event) Quotation {
	for _, ev := range events {
		q = r.Apply(q, ev)
	}
	return q
}

// Price computes the amount of a single item at the given tier.
func (r *Reducer) Price(it LineItem, size catalog.BusinessSizeID) pricing.Money {
	return r.price(it, size)
}

func (r *Reducer) defaultItem(size catalog.BusinessSizeID) LineItem {
	tf := r.catalog.FirstTypeface()
	license := catalog.LicenseDesktop
	if available := r.catalog.AvailableLicenseTypes(size); len(available) > 0 {
		license = available[0].ID
	}
	it := LineItem{
		ID:          r.newID(),
		Family:      tf.Family,
		Variant:     tf.FirstVariant(),
		LanguageCut: catalog.LanguageCut(tf.FirstVariant()),
		BasePrice:   tf.BasePrice,
		LicenseType: license,
		Usage:       r.usageFor(license, size),
	}
	it.Typeface = label(it.Family, it.Variant)
	it.Amount = r.price(it, size)
	return it
}

func (r *Reducer) reconcileSize(it LineItem, size catalog.BusinessSizeID) LineItem {
	if !r.catalog.IsLicenseAvailable(size, it.LicenseType) {
		license := catalog.LicenseDesktop
		if available := r.catalog.AvailableLicenseTypes(size); len(available) > 0 {
			license = available[0].ID
		}
		it.LicenseType = license
		it.Usage = r.usageFor(license, size)
	} else if catalog.IsAutoUsage(it.LicenseType) {
		it.Usage = r.catalog.BusinessUsage(size)
	}
	it.Amount = r.price(it, size)
	return it
}

func (r *Reducer) usageFor(license catalog.LicenseTypeID, size catalog.BusinessSizeID) string {
	if catalog.IsAutoUsage(license) {
		return r.catalog.BusinessUsage(size)
	}
	return ""
}

func (r *Reducer) price(it LineItem, size catalog.BusinessSizeID) pricing.Money {
	return r.calculator.ItemPrice(it.Family, size, it.LicenseType, it.Usage)
}

func (r *Reducer) updateItem(q Quotation, id uuid.UUID, fn func(LineItem) LineItem) Quotation {
	idx := q.indexOf(id)
	if idx < 0 {
		return q
	}
	q.Items[idx] = fn(q.Items[idx])
	return q
}

func (r *Reducer) recompute(q Quotation) Quotation {
	return q.withTotals(aggregateWith(r.discounts, q.Items, q.BusinessSize))
}
