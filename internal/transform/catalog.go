package transform

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bunnyapp/bunny-cli/internal/id"
	"github.com/bunnyapp/bunny-cli/internal/model"
	"github.com/bunnyapp/bunny-cli/internal/stripedata"
)

const (
	// CatalogProductName names the single product a catalog migration creates.
	CatalogProductName = "Imported from Stripe"
	// UnitFeatureCode is the feature of every non-metered charge.
	UnitFeatureCode = "unit"

	defaultTrialDays      = 30
	planAvailableFrom     = "2024-01-01"
	planAvailableTo       = "2044-01-01"
	trialExpirationAction = "activate"
)

// Skip reasons for provider prices.
const (
	ReasonUnsupportedPeriod = "Unsupported billing period"
	ReasonUnsupportedScheme = "Unsupported billing scheme"
	ReasonOneTimeVolume     = "One time charges not supported for volume plans"
	ReasonNoMeter           = "Metered price has no matching meter"
	ReasonRoundUp           = "Round up not supported for recurring charges"
)

// FromStripeCatalog folds a provider catalog into one product: features from
// entitlement features and meters, one plan per active product and one
// price list per active price. Prices that cannot be represented are
// returned as skips.
func FromStripeCatalog(cat *stripedata.Catalog, platformID string, log zerolog.Logger) (model.ImportDocument, []Skip) {
	product := model.Product{
		Name:       CatalogProductName,
		PlatformID: platformID,
		Features:   catalogFeatures(cat),
		Plans:      []model.Plan{},
	}

	meterEvents := make(map[string]string, len(cat.Meters))
	for _, m := range cat.Meters {
		meterEvents[m.ID] = m.EventName
	}

	var skips []Skip
	for _, p := range cat.Products {
		if !p.Active {
			continue
		}
		plan := model.Plan{
			Code:              p.ID,
			Name:              p.Name,
			Description:       optional(p.Description),
			Available:         true,
			AvailableFrom:     model.Ptr(planAvailableFrom),
			AvailableTo:       model.Ptr(planAvailableTo),
			IsVisible:         true,
			SelfServiceBuy:    true,
			SelfServiceCancel: true,
			SelfServiceRenew:  true,
			PricingStyle:      "priced",
			PriceLists:        []model.PriceList{},
		}
		for _, price := range p.Prices {
			if !price.Active {
				continue
			}
			pl, reason := catalogPriceList(p, price, meterEvents)
			if reason != "" {
				skip := Skip{Record: fmt.Sprintf("%s (%s)", p.Name, price.ID), Reason: reason}
				log.Warn().Str("product", p.Name).Str("price", price.ID).Str("reason", reason).Msg("skipping price")
				skips = append(skips, skip)
				continue
			}
			plan.PriceLists = append(plan.PriceLists, pl)
		}
		product.Plans = append(product.Plans, plan)
	}

	return model.ImportDocument{Products: []model.Product{product}}, skips
}

func catalogFeatures(cat *stripedata.Catalog) []model.Feature {
	features := make([]model.Feature, 0, len(cat.Features)+len(cat.Meters)+1)
	feature := func(name, code string, kind model.FeatureKind) model.Feature {
		return model.Feature{
			Name:          name,
			Code:          code,
			IsUnit:        kind == model.FeatureKindQuantity,
			Kind:          kind,
			IsProvisioned: true,
			IsVisible:     true,
			Position:      1,
		}
	}
	for _, f := range cat.Features {
		features = append(features, feature(f.Name, f.LookupKey, model.FeatureKindBoolean))
	}
	for _, m := range cat.Meters {
		features = append(features, feature(m.DisplayName, m.EventName, model.FeatureKindQuantity))
	}
	return append(features, feature("Unit", UnitFeatureCode, model.FeatureKindQuantity))
}

// catalogPriceList maps one price, or returns why it cannot be mapped.
func catalogPriceList(p stripedata.Product, price stripedata.Price, meterEvents map[string]string) (model.PriceList, string) {
	period, ok := StripeBillingPeriod(price.Recurring)
	if !ok {
		return model.PriceList{}, ReasonUnsupportedPeriod
	}

	chargeType := model.ChargeTypeOneTime
	if price.Type == "recurring" {
		chargeType = model.ChargeTypeRecurring
		if price.Metered() {
			chargeType = model.ChargeTypeUsage
		}
	}

	pricingModel, ok := StripePricingModel(price.BillingScheme, price.TiersMode)
	if !ok {
		return model.PriceList{}, ReasonUnsupportedScheme
	}
	if pricingModel == model.PricingModelVolume && chargeType == model.ChargeTypeOneTime {
		return model.PriceList{}, ReasonOneTimeVolume
	}

	featureCode := UnitFeatureCode
	if price.Metered() {
		event, found := meterEvents[price.Recurring.Meter]
		if price.Recurring.Meter == "" || !found || event == "" {
			return model.PriceList{}, ReasonNoMeter
		}
		featureCode = event
	}

	charge := model.Charge{
		Code:            id.ChargeCode(price.ID),
		Name:            firstNonEmpty(price.Nickname, p.Name),
		FeatureCode:     &featureCode,
		BillingPeriod:   period,
		ChargeType:      chargeType,
		PricingModel:    pricingModel,
		QuantityMin:     1,
		DefaultQuantity: 1,
	}
	if price.Metered() {
		charge.UsageCalculationType = model.Ptr("sum")
	}

	if tq := price.TransformQuantity; tq != nil && tq.Round == "up" {
		if !price.Metered() {
			return model.PriceList{}, ReasonRoundUp
		}
		charge.RoundUpInterval = model.Ptr(tq.DivideBy)
	}

	decimals := 0
	unitPrice := centsToDecimal(price.UnitAmount, price.UnitAmountDecimal)
	switch {
	case pricingModel.UsesTiers() && len(price.Tiers) > 0:
		charge.Tiers = make([]model.PriceTier, len(price.Tiers))
		for i, t := range price.Tiers {
			tier := model.PriceTier{Starts: 1, Ends: model.InfiniteTierEnd}
			if i > 0 && price.Tiers[i-1].UpTo != nil {
				tier.Starts = int(*price.Tiers[i-1].UpTo) + 1
			}
			if t.UpTo != nil {
				tier.Ends = int(*t.UpTo)
			}
			tier.Price = centsToDecimal(t.UnitAmount, t.UnitAmountDecimal)
			decimals = max(decimals, countDecimals(tier.Price))
			charge.Tiers[i] = tier
		}
	case pricingModel == model.PricingModelVolume:
		decimals = countDecimals(unitPrice)
		charge.Tiers = []model.PriceTier{{Starts: 1, Ends: model.InfiniteTierEnd, Price: unitPrice}}
		charge.Price = unitPrice
	default:
		charge.Price = unitPrice
	}
	charge.PriceDecimals = priceDecimals(decimals)

	trialDays := defaultTrialDays
	if price.Recurring != nil && price.Recurring.TrialPeriodDays > 0 {
		trialDays = int(price.Recurring.TrialPeriodDays)
	}
	return model.PriceList{
		Code:                  price.ID,
		Name:                  fmt.Sprintf("%s %s", p.Name, firstNonEmpty(price.Nickname, "Default")),
		IsVisible:             price.Active,
		CurrencyID:            strings.ToUpper(price.Currency),
		TrialAllowed:          price.Type != "one_time",
		TrialLengthDays:       &trialDays,
		TrialExpirationAction: model.Ptr(trialExpirationAction),
		Charges:               []model.Charge{charge},
	}, ""
}

// StripeBillingPeriod buckets a recurring interval by its length in months.
// A one-off price has no period; day and week intervals and lengths other
// than 1, 3, 6 or 12 months are unsupported.
func StripeBillingPeriod(r *stripedata.Recurring) (*model.BillingPeriod, bool) {
	if r == nil {
		return nil, true
	}
	count := r.IntervalCount
	if count <= 0 {
		count = 1
	}
	var months int64
	switch r.Interval {
	case "month":
		months = count
	case "year":
		months = 12 * count
	default:
		return nil, false
	}
	bp, ok := model.BillingPeriodFromMonths(int(months))
	if !ok {
		return nil, false
	}
	return &bp, true
}

// StripePricingModel infers a pricing model from a billing scheme.
func StripePricingModel(scheme, tiersMode string) (model.PricingModel, bool) {
	switch scheme {
	case "per_unit":
		return model.PricingModelVolume, true
	case "tiered":
		if tiersMode == "graduated" {
			return model.PricingModelTiered, true
		}
		return model.PricingModelVolume, true
	case "flat":
		return model.PricingModelFlat, true
	default:
		return "", false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
