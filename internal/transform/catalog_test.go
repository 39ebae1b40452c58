package transform

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnyapp/bunny-cli/internal/model"
	"github.com/bunnyapp/bunny-cli/internal/stripedata"
)

func upTo(n int64) *int64 { return &n }

func monthly() *stripedata.Recurring {
	return &stripedata.Recurring{Interval: "month", IntervalCount: 1, UsageType: "licensed"}
}

func catalogWith(prices ...stripedata.Price) *stripedata.Catalog {
	return &stripedata.Catalog{
		Products: []stripedata.Product{{ID: "prod_1", Name: "Pro", Active: true, Prices: prices}},
		Meters:   []stripedata.Meter{{ID: "mtr_1", DisplayName: "API calls", EventName: "api_calls"}},
		Features: []stripedata.Feature{{ID: "feat_1", Name: "SSO", LookupKey: "sso"}},
	}
}

func onlyPriceList(t *testing.T, doc model.ImportDocument) model.PriceList {
	t.Helper()
	require.Len(t, doc.Products, 1)
	require.Len(t, doc.Products[0].Plans, 1)
	require.Len(t, doc.Products[0].Plans[0].PriceLists, 1)
	return doc.Products[0].Plans[0].PriceLists[0]
}

func TestFromStripeCatalog_GraduatedTiers(t *testing.T) {
	cat := catalogWith(stripedata.Price{
		ID: "price_grad", Active: true, Currency: "usd", Type: "recurring",
		BillingScheme: "tiered", TiersMode: "graduated", Recurring: monthly(),
		Tiers: []stripedata.Tier{
			{UpTo: upTo(10), UnitAmount: 500},
			{UnitAmount: 300},
		},
	})

	doc, skips := FromStripeCatalog(cat, "plat_1", zerolog.Nop())
	assert.Empty(t, skips)

	pl := onlyPriceList(t, doc)
	assert.Equal(t, "USD", pl.CurrencyID)
	assert.Equal(t, "Pro Default", pl.Name)
	assert.Equal(t, 30, *pl.TrialLengthDays)
	assert.True(t, pl.TrialAllowed)

	c := pl.Charges[0]
	assert.Equal(t, "price_grad_charge", c.Code)
	assert.Equal(t, model.PricingModelTiered, c.PricingModel)
	assert.Equal(t, model.ChargeTypeRecurring, c.ChargeType)
	assert.Equal(t, model.Ptr(model.BillingPeriodMonthly), c.BillingPeriod)
	assert.Equal(t, UnitFeatureCode, *c.FeatureCode)
	assert.Equal(t, []model.PriceTier{
		{Starts: 1, Ends: 10, Price: strPtr("5.00")},
		{Starts: 11, Ends: model.InfiniteTierEnd, Price: strPtr("3.00")},
	}, c.Tiers)
	assert.Equal(t, 2, c.PriceDecimals)
	assert.Nil(t, c.Price)
}

func TestFromStripeCatalog_Features(t *testing.T) {
	doc, _ := FromStripeCatalog(catalogWith(), "plat_1", zerolog.Nop())

	p := doc.Products[0]
	assert.Equal(t, CatalogProductName, p.Name)
	assert.Equal(t, "plat_1", p.PlatformID)
	require.Len(t, p.Features, 3)
	assert.Equal(t, "sso", p.Features[0].Code)
	assert.Equal(t, model.FeatureKindBoolean, p.Features[0].Kind)
	assert.Equal(t, "api_calls", p.Features[1].Code)
	assert.Equal(t, model.FeatureKindQuantity, p.Features[1].Kind)
	assert.Equal(t, UnitFeatureCode, p.Features[2].Code)
	assert.True(t, p.Features[2].IsUnit)
}

func TestFromStripeCatalog_PerUnit(t *testing.T) {
	r := monthly()
	r.TrialPeriodDays = 14
	cat := catalogWith(stripedata.Price{
		ID: "price_pu", Active: true, Currency: "eur", Type: "recurring", Nickname: "Seats",
		BillingScheme: "per_unit", UnitAmountDecimal: "1250", Recurring: r,
	})

	doc, skips := FromStripeCatalog(cat, "plat_1", zerolog.Nop())
	assert.Empty(t, skips)

	pl := onlyPriceList(t, doc)
	assert.Equal(t, "Pro Seats", pl.Name)
	assert.Equal(t, 14, *pl.TrialLengthDays)

	c := pl.Charges[0]
	assert.Equal(t, "Seats", c.Name)
	assert.Equal(t, model.PricingModelVolume, c.PricingModel)
	assert.Equal(t, []model.PriceTier{{Starts: 1, Ends: model.InfiniteTierEnd, Price: strPtr("12.50")}}, c.Tiers)
	assert.Equal(t, "12.50", *c.Price)
	assert.Equal(t, 2, c.PriceDecimals)
}

func TestFromStripeCatalog_MeteredWithRoundUp(t *testing.T) {
	r := monthly()
	r.UsageType = "metered"
	r.Meter = "mtr_1"
	cat := catalogWith(stripedata.Price{
		ID: "price_m", Active: true, Currency: "usd", Type: "recurring",
		BillingScheme: "per_unit", UnitAmount: 2, UnitAmountDecimal: "2", Recurring: r,
		TransformQuantity: &stripedata.TransformQuantity{DivideBy: 1000, Round: "up"},
	})

	doc, skips := FromStripeCatalog(cat, "plat_1", zerolog.Nop())
	assert.Empty(t, skips)

	c := onlyPriceList(t, doc).Charges[0]
	assert.Equal(t, model.ChargeTypeUsage, c.ChargeType)
	assert.Equal(t, "api_calls", *c.FeatureCode)
	assert.Equal(t, "sum", *c.UsageCalculationType)
	assert.Equal(t, int64(1000), *c.RoundUpInterval)
}

func TestFromStripeCatalog_OneTimeFlat(t *testing.T) {
	cat := catalogWith(stripedata.Price{
		ID: "price_setup", Active: true, Currency: "usd", Type: "one_time",
		BillingScheme: "flat", UnitAmount: 9900,
	})

	doc, skips := FromStripeCatalog(cat, "plat_1", zerolog.Nop())
	assert.Empty(t, skips)

	pl := onlyPriceList(t, doc)
	assert.False(t, pl.TrialAllowed)
	c := pl.Charges[0]
	assert.Nil(t, c.BillingPeriod)
	assert.Equal(t, model.ChargeTypeOneTime, c.ChargeType)
	assert.Equal(t, "99.00", *c.Price)
	assert.Empty(t, c.Tiers)
}

func TestFromStripeCatalog_Skips(t *testing.T) {
	metered := monthly()
	metered.UsageType = "metered"
	metered.Meter = "mtr_missing"

	tests := []struct {
		name   string
		price  stripedata.Price
		reason string
	}{
		{
			name:   "daily interval",
			price:  stripedata.Price{Type: "recurring", BillingScheme: "per_unit", Recurring: &stripedata.Recurring{Interval: "day", IntervalCount: 1}},
			reason: ReasonUnsupportedPeriod,
		},
		{
			name:   "two months",
			price:  stripedata.Price{Type: "recurring", BillingScheme: "per_unit", Recurring: &stripedata.Recurring{Interval: "month", IntervalCount: 2}},
			reason: ReasonUnsupportedPeriod,
		},
		{
			name:   "two years",
			price:  stripedata.Price{Type: "recurring", BillingScheme: "per_unit", Recurring: &stripedata.Recurring{Interval: "year", IntervalCount: 2}},
			reason: ReasonUnsupportedPeriod,
		},
		{
			name:   "unknown scheme",
			price:  stripedata.Price{Type: "recurring", BillingScheme: "package", Recurring: monthly()},
			reason: ReasonUnsupportedScheme,
		},
		{
			name:   "one time volume",
			price:  stripedata.Price{Type: "one_time", BillingScheme: "per_unit", UnitAmount: 100},
			reason: ReasonOneTimeVolume,
		},
		{
			name:   "metered without meter",
			price:  stripedata.Price{Type: "recurring", BillingScheme: "per_unit", Recurring: metered},
			reason: ReasonNoMeter,
		},
		{
			name: "round up on licensed price",
			price: stripedata.Price{
				Type: "recurring", BillingScheme: "per_unit", Recurring: monthly(),
				TransformQuantity: &stripedata.TransformQuantity{DivideBy: 10, Round: "up"},
			},
			reason: ReasonRoundUp,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.price.ID = "price_x"
			tt.price.Active = true
			tt.price.Currency = "usd"

			doc, skips := FromStripeCatalog(catalogWith(tt.price), "plat_1", zerolog.Nop())
			require.Len(t, skips, 1)
			assert.Equal(t, Skip{Record: "Pro (price_x)", Reason: tt.reason}, skips[0])
			assert.Empty(t, doc.Products[0].Plans[0].PriceLists)
		})
	}
}

func TestFromStripeCatalog_InactiveIgnored(t *testing.T) {
	cat := catalogWith(stripedata.Price{ID: "price_old", Active: false, BillingScheme: "bogus"})
	cat.Products = append(cat.Products, stripedata.Product{ID: "prod_old", Name: "Legacy", Active: false})

	doc, skips := FromStripeCatalog(cat, "plat_1", zerolog.Nop())
	assert.Empty(t, skips)
	require.Len(t, doc.Products[0].Plans, 1)
	assert.Empty(t, doc.Products[0].Plans[0].PriceLists)
}

func TestStripeBillingPeriod(t *testing.T) {
	tests := []struct {
		interval string
		count    int64
		want     *model.BillingPeriod
		ok       bool
	}{
		{"month", 1, model.Ptr(model.BillingPeriodMonthly), true},
		{"month", 0, model.Ptr(model.BillingPeriodMonthly), true},
		{"month", 3, model.Ptr(model.BillingPeriodQuarterly), true},
		{"month", 6, model.Ptr(model.BillingPeriodSemiAnnual), true},
		{"month", 12, model.Ptr(model.BillingPeriodAnnual), true},
		{"year", 1, model.Ptr(model.BillingPeriodAnnual), true},
		{"month", 4, nil, false},
		{"week", 1, nil, false},
	}
	for _, tt := range tests {
		got, ok := StripeBillingPeriod(&stripedata.Recurring{Interval: tt.interval, IntervalCount: tt.count})
		assert.Equal(t, tt.ok, ok, "%s x%d", tt.interval, tt.count)
		assert.Equal(t, tt.want, got, "%s x%d", tt.interval, tt.count)
	}

	got, ok := StripeBillingPeriod(nil)
	assert.True(t, ok)
	assert.Nil(t, got)
}

func TestStripePricingModel(t *testing.T) {
	tests := []struct {
		scheme, mode string
		want         model.PricingModel
		ok           bool
	}{
		{"per_unit", "", model.PricingModelVolume, true},
		{"tiered", "graduated", model.PricingModelTiered, true},
		{"tiered", "volume", model.PricingModelVolume, true},
		{"flat", "", model.PricingModelFlat, true},
		{"package", "", "", false},
	}
	for _, tt := range tests {
		got, ok := StripePricingModel(tt.scheme, tt.mode)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.want, got)
	}
}
