package quotation

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ytf-quote/internal/catalog"
)

func TestAggregateRecomputesFromItems(t *testing.T) {
	items := []LineItem{
		{Family: "YTF Millie", Variant: "Regular", LicenseType: catalog.LicenseDesktop, Amount: decimal.NewFromInt(270)},
		{Family: "YTF Millie", Variant: "Bold", LicenseType: catalog.LicenseDesktop, Amount: decimal.NewFromInt(270)},
	}
	totals := Aggregate(items, catalog.SizeS)
	requireMoney(t, 540, totals.Subtotal)
	require.Equal(t, 10, totals.Discount.Percentage)
	requireMoney(t, 54, totals.Discount.Amount)
	requireMoney(t, 486, totals.Total)
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil, catalog.SizeXL)
	requireMoney(t, 0, totals.Subtotal)
	requireMoney(t, 0, totals.Total)
	require.Equal(t, 0, totals.Discount.Percentage)
}

func TestAggregateExternalCoercesMalformedAmounts(t *testing.T) {
	lines := []ExternalLine{
		{Family: "YTF Eon A", Variant: "Regular", LicenseType: "desktop", Amount: "180"},
		{Family: "YTF Eon A", Variant: "Bold", LicenseType: "web", Amount: float64(180)},
		{Family: "YTF Eon B", Variant: "Bold", LicenseType: "web", Amount: "not-a-number"},
		{Family: "YTF Eon C", Variant: "Bold", LicenseType: "web", Amount: math.NaN()},
		{Family: "YTF Eon C", Variant: "Black", LicenseType: "web", Amount: nil},
		{Family: "YTF Eon C", Variant: "Medium", LicenseType: "web", Amount: map[string]any{"value": 1}},
	}
	totals := AggregateExternal(lines, catalog.SizeXS)
	requireMoney(t, 360, totals.Subtotal)
	require.Equal(t, 6, totals.Discount.UniqueStyles)
	require.Equal(t, 2, totals.Discount.UniqueLicenseTypes)
	require.Equal(t, 25, totals.Discount.Percentage)
	requireMoney(t, 90, totals.Discount.Amount)
	requireMoney(t, 270, totals.Total)
}

func TestAggregateExternalClampsNegativeAmounts(t *testing.T) {
	totals := AggregateExternal([]ExternalLine{
		{Family: "YTF Eon A", Variant: "Regular", LicenseType: "desktop", Amount: 180},
		{Family: "YTF Eon A", Variant: "Bold", LicenseType: "desktop", Amount: -2.5},
		{Family: "YTF Eon A", Variant: "Black", LicenseType: "desktop", Amount: "-100"},
	}, catalog.SizeXS)
	requireMoney(t, 180, totals.Subtotal)
	require.Equal(t, 15, totals.Discount.Percentage)
	requireMoney(t, 27, totals.Discount.Amount)
	requireMoney(t, 153, totals.Total)
	require.False(t, totals.Total.IsNegative())
}
