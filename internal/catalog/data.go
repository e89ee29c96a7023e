package catalog

import "github.com/shopspring/decimal"

func build() *Catalog {
	return &Catalog{
		typefaces: []Typeface{
			family("YTF Oldman", 90, "Thin", "Light", "Regular", "Medium", "Bold", "Black"),
			family("YTF Eon A", 90, "Regular", "Medium", "Bold", "Black"),
			family("YTF Eon B", 90, "Regular", "Medium", "Bold", "Black"),
			family("YTF Eon C", 90, "Regular", "Medium", "Bold", "Black"),
			family("YTF Xanh", 100, "Thin", "Light", "Regular", "Thin Italic", "Light Italic", "Regular Italic"),
			family("YTF Xanh Mono", 100, "Thin", "Light", "Regular", "Thin Italic", "Light Italic", "Regular Italic"),
			family("YTF Cafuné Sans", 90, "Air", "Thin", "UltraLight", "Light", "Book", "Medium", "Bold", "Heavy"),
			family("YTF Cafuné", 100,
				"Thin", "Light", "UltraLight", "Book", "Medium", "Bold", "Heavy",
				"Thin Italic", "Light Italic", "UltraLight Italic", "Book Italic", "Medium Italic", "Bold Italic", "Heavy Italic"),
			family("YTF Millie", 90,
				"Thin", "Light", "Regular", "Medium", "Bold", "Heavy", "Black",
				"Thin Italic", "Light Italic", "Regular Italic", "Medium Italic", "Bold Italic", "Heavy Italic", "Black Italic"),
			family("YTF Millie Mono", 90, "Light", "Regular", "Medium", "Bold", "Light Italic", "Regular Italic", "Medium Italic", "Bold Italic"),
			family("YTF Gióng", 100, "Roman", "Italic"),
		},
		sizes: []BusinessSize{
			{ID: SizeIndividual, Name: "Individual", Description: "For sole individuals only. No commercial use.", Multiplier: 1, EmployeeCount: "N/A"},
			{ID: SizeXS, Name: "XS — Business", Description: "For businesses with fewer than 20 employees", Multiplier: 2, EmployeeCount: "<20"},
			{ID: SizeS, Name: "S — Business", Description: "For businesses with fewer than 50 employees", Multiplier: 3, EmployeeCount: "<50"},
			{ID: SizeM, Name: "M — Business", Description: "For businesses with fewer than 150 employees", Multiplier: 5, EmployeeCount: "<150"},
			{ID: SizeL, Name: "L — Business", Description: "For businesses with fewer than 250 employees", Multiplier: 8, EmployeeCount: "<250"},
			{ID: SizeXL, Name: "XL — Business", Description: "For businesses with fewer than 500 employees", Multiplier: 10, EmployeeCount: "<500"},
		},
		licenses: []LicenseType{
			{ID: LicenseDesktop, Name: "Desktop"},
			{ID: LicenseWeb, Name: "Web"},
			{ID: LicenseLogo, Name: "Logo & Wordmark"},
			{ID: LicenseApp, Name: "App / Software", RequiresManualUsage: true},
			{ID: LicenseBroadcast, Name: "Broadcast", RequiresManualUsage: true},
			{ID: LicensePackaging, Name: "Packaging", RequiresManualUsage: true},
			{ID: LicenseMerchandising, Name: "Merchandising", RequiresManualUsage: true},
			{ID: LicensePublishing, Name: "Publishing", RequiresManualUsage: true},
		},
		usage: map[UsageSetID][]UsageOption{
			UsageSetBusiness: {
				option("xs", "XS — under 20 employees", "2"),
				option("s", "S — under 50 employees", "4"),
				option("m", "M — under 150 employees", "4"),
				option("l", "L — under 250 employees", "5"),
				option("xl", "XL — under 500 employees", "6"),
			},
			UsageSetApp: {
				option("5k", "Up to 5K users", "1.5"),
				option("10k", "Up to 10K users", "2"),
				option("100k", "Up to 100K users", "3"),
				option("500k", "Up to 500K users", "5"),
				option("1m", "Up to 1M users", "8"),
			},
			UsageSetBroadcast: {
				option("50k", "Under $50K", "1.5"),
				option("250k", "$50K–250K", "2.5"),
				option("750k", "$250K–750K", "4"),
				option("2m", "$750K–2M", "5"),
				option("2m+", "Over $2M", "8"),
			},
			UsageSetPackaging: {
				option("5k", "Under 5K units", "2"),
				option("50k", "Under 50K units", "5"),
				option("500k", "Under 500K units", "8"),
			},
		},
		categories: map[string]Category{
			"YTF Millie":      CategorySans,
			"YTF Millie Mono": CategorySans,
			"YTF Cafuné Sans": CategorySans,
			"YTF Eon A":       CategorySans,
			"YTF Eon B":       CategorySans,
			"YTF Eon C":       CategorySans,
			"YTF Oldman":      CategorySans,
			"YTF Gióng":       CategorySerif,
			"YTF Cafuné":      CategorySerif,
			"YTF Xanh":        CategorySerif,
			"YTF Xanh Mono":   CategorySerif,
		},
		basePrices: map[Category]map[BusinessSizeID]decimal.Decimal{
			CategorySans:  priceRow(90, 180, 270, 450, 720, 900),
			CategorySerif: priceRow(100, 200, 300, 500, 800, 1000),
		},
		discountCaps: map[BusinessSizeID]int{
			SizeIndividual: 0,
			SizeXS:         30,
			SizeS:          30,
			SizeM:          20,
			SizeL:          20,
			SizeXL:         10,
		},
		individualFee: map[Category]decimal.Decimal{
			CategorySans:  decimal.NewFromInt(90),
			CategorySerif: decimal.NewFromInt(100),
		},
	}
}

func family(name string, basePrice int64, variants ...string) Typeface {
	return Typeface{
		Family:      name,
		Variants:    variants,
		BasePrice:   decimal.NewFromInt(basePrice),
		TotalStyles: len(variants),
	}
}

func option(id, name, multiplier string) UsageOption {
	return UsageOption{ID: id, Name: name, Multiplier: decimal.RequireFromString(multiplier)}
}

func priceRow(individual, xs, s, m, l, xl int64) map[BusinessSizeID]decimal.Decimal {
	return map[BusinessSizeID]decimal.Decimal{
		SizeIndividual: decimal.NewFromInt(individual),
		SizeXS:         decimal.NewFromInt(xs),
		SizeS:          decimal.NewFromInt(s),
		SizeM:          decimal.NewFromInt(m),
		SizeL:          decimal.NewFromInt(l),
		SizeXL:         decimal.NewFromInt(xl),
	}
}
