package transform

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnyapp/bunny-cli/internal/model"
	"github.com/bunnyapp/bunny-cli/internal/platform"
)

func intPtr(n int) *int { return &n }

func TestInstanceBillingPeriod(t *testing.T) {
	tests := []struct {
		months *int
		charge *string
		want   *model.BillingPeriod
	}{
		{intPtr(1), nil, model.Ptr(model.BillingPeriodMonthly)},
		{intPtr(3), nil, model.Ptr(model.BillingPeriodQuarterly)},
		{intPtr(6), nil, model.Ptr(model.BillingPeriodSemiAnnual)},
		{intPtr(12), strPtr("MONTHLY"), model.Ptr(model.BillingPeriodAnnual)},
		{intPtr(2), strPtr("MONTHLY"), nil},
		{intPtr(24), nil, nil},
		{nil, strPtr("QUARTERLY"), model.Ptr(model.BillingPeriodQuarterly)},
		{intPtr(0), strPtr("ANNUAL"), model.Ptr(model.BillingPeriodAnnual)},
		{nil, nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InstanceBillingPeriod(tt.months, tt.charge))
	}
}

func sourceProduct() *platform.ProductGraph {
	var p platform.ProductGraph
	raw := `{
		"id": "p1", "name": "Analytics", "platformId": "",
		"features": [
			{"id": "f1", "code": "seats", "name": "Seats", "isUnit": true, "isVisible": true},
			{"id": "f2", "code": "sso", "name": "SSO", "isUnit": false}
		],
		"plans": [{
			"code": "starter", "name": "Starter", "isAvailableNow": true, "selfServiceBuy": true,
			"priceLists": [{
				"code": "starter_q", "name": "Quarterly", "currencyId": "USD", "periodMonths": 3,
				"trialLengthDays": 0, "trialExpirationAction": "",
				"charges": [
					{"code": "seats", "name": "Seats", "feature": {"code": "seats"},
					 "billingPeriod": "MONTHLY", "chargeType": "RECURRING", "pricingModel": "TIERED",
					 "quantityMin": 0, "priceDecimals": 2, "roundUpInterval": 0,
					 "priceListChargeTiers": [{"starts": 0, "price": "5.00"}, {"starts": 11, "price": 3}, {"starts": 51, "price": "2.5"}]},
					{"code": "base", "name": "Base", "chargeType": "RECURRING", "pricingModel": "FLAT",
					 "usageCalculationType": "SUM", "price": "49.99", "quantityMin": 2}
				]
			}]
		}]
	}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		panic(err)
	}
	return &p
}

func TestFromInstance(t *testing.T) {
	doc := FromInstance(sourceProduct(), "dest-platform")

	require.Len(t, doc.Products, 1)
	p := doc.Products[0]
	assert.Equal(t, "dest-platform", p.PlatformID)
	assert.Equal(t, model.FeatureKindQuantity, p.Features[0].Kind)
	assert.Equal(t, model.FeatureKindBoolean, p.Features[1].Kind)

	plan := p.Plans[0]
	assert.True(t, plan.Available)
	assert.Equal(t, "priced", plan.PricingStyle)

	pl := plan.PriceLists[0]
	assert.Nil(t, pl.TrialLengthDays)
	assert.Nil(t, pl.TrialExpirationAction)

	seats := pl.Charges[0]
	assert.Equal(t, model.Ptr(model.BillingPeriodQuarterly), seats.BillingPeriod)
	assert.Equal(t, model.ChargeTypeRecurring, seats.ChargeType)
	assert.Equal(t, model.PricingModelTiered, seats.PricingModel)
	assert.Equal(t, 1, seats.QuantityMin)
	assert.Equal(t, 1, seats.DefaultQuantity)
	assert.Nil(t, seats.RoundUpInterval)
	assert.Equal(t, "seats", *seats.FeatureCode)
	assert.Equal(t, []model.PriceTier{
		{Starts: 1, Ends: 10, Price: strPtr("5")},
		{Starts: 11, Ends: 50, Price: strPtr("3")},
		{Starts: 51, Ends: model.InfiniteTierEnd, Price: strPtr("2.5")},
	}, seats.Tiers)
	assert.Nil(t, seats.Price)

	base := pl.Charges[1]
	assert.Equal(t, "49.99", *base.Price)
	assert.Empty(t, base.Tiers)
	assert.Equal(t, 2, base.QuantityMin)
	assert.Equal(t, "sum", *base.UsageCalculationType)
}

func TestFromInstance_KeepsSourcePlatform(t *testing.T) {
	src := sourceProduct()
	src.PlatformID = "src-platform"
	doc := FromInstance(src, "dest-platform")
	assert.Equal(t, "src-platform", doc.Products[0].PlatformID)
}

func TestFromInstance_TierEndsProperty(t *testing.T) {
	starts := []int{1, 5, 20, 100}
	tiers := make([]platform.TierNode, len(starts))
	for i := range starts {
		tiers[i] = platform.TierNode{Starts: &starts[i], Price: decimal.NewFromInt(1)}
	}
	c := instanceCharge(platform.ChargeNode{Code: "x", Tiers: tiers}, nil)

	var ends []int
	for _, tier := range c.Tiers {
		ends = append(ends, tier.Ends)
	}
	assert.Equal(t, []int{4, 19, 99, model.InfiniteTierEnd}, ends)
}
