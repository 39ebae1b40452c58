package transform

import (
	"strings"

	"github.com/bunnyapp/bunny-cli/internal/model"
	"github.com/bunnyapp/bunny-cli/internal/platform"
)

// FromInstance maps a product graph read from one instance onto an import
// document for another. platformID is used when the source product has none.
func FromInstance(p *platform.ProductGraph, platformID string) model.ImportDocument {
	product := model.Product{
		Name:                      p.Name,
		Description:               p.Description,
		InternalNotes:             p.InternalNotes,
		PlatformID:                p.PlatformID,
		ProductCategoryID:         p.ProductCategoryID,
		ShowProductNameOnLineItem: p.ShowProductNameOnLineItem,
		EverythingInPlus:          p.EverythingInPlus,
		Features:                  make([]model.Feature, 0, len(p.Features)),
		Plans:                     make([]model.Plan, 0, len(p.Plans)),
	}
	if product.PlatformID == "" {
		product.PlatformID = platformID
	}

	for _, f := range p.Features {
		kind := model.FeatureKindBoolean
		if f.IsUnit {
			kind = model.FeatureKindQuantity
		}
		product.Features = append(product.Features, model.Feature{
			ID:            optional(f.ID),
			Name:          f.Name,
			Code:          f.Code,
			Description:   f.Description,
			IsUnit:        f.IsUnit,
			Kind:          kind,
			IsProvisioned: f.IsProvisioned,
			IsVisible:     f.IsVisible,
			Position:      f.Position,
			UnitName:      f.UnitName,
		})
	}

	for _, pl := range p.Plans {
		plan := model.Plan{
			Code:               pl.Code,
			Name:               pl.Name,
			Description:        pl.Description,
			InternalNotes:      pl.InternalNotes,
			Available:          pl.IsAvailableNow,
			AvailableFrom:      pl.AvailableFrom,
			AvailableTo:        pl.AvailableTo,
			IsVisible:          pl.IsVisible,
			Addon:              pl.Addon,
			SelfServiceBuy:     pl.SelfServiceBuy,
			SelfServiceCancel:  pl.SelfServiceCancel,
			SelfServiceRenew:   pl.SelfServiceRenew,
			Position:           pl.Position,
			PricingDescription: pl.PricingDescription,
			PricingStyle:       "priced",
			ContactUsLabel:     pl.ContactUsLabel,
			ContactUsURL:       pl.ContactUsURL,
			PriceLists:         make([]model.PriceList, 0, len(pl.PriceLists)),
		}
		for _, pll := range pl.PriceLists {
			plan.PriceLists = append(plan.PriceLists, instancePriceList(pll))
		}
		product.Plans = append(product.Plans, plan)
	}

	return model.ImportDocument{Products: []model.Product{product}}
}

func instancePriceList(pl platform.PriceListNode) model.PriceList {
	out := model.PriceList{
		Code:                  pl.Code,
		Name:                  pl.Name,
		PriceDescription:      pl.PriceDescription,
		IsVisible:             pl.IsVisible,
		CurrencyID:            pl.CurrencyID,
		TrialAllowed:          pl.TrialAllowed,
		TrialLengthDays:       positive(pl.TrialLengthDays),
		TrialExpirationAction: nonEmpty(pl.TrialExpirationAction),
		SKU:                   nonEmpty(pl.SKU),
		Charges:               make([]model.Charge, 0, len(pl.Charges)),
	}
	for _, c := range pl.Charges {
		out.Charges = append(out.Charges, instanceCharge(c, pl.PeriodMonths))
	}
	return out
}

func instanceCharge(c platform.ChargeNode, periodMonths *int) model.Charge {
	out := model.Charge{
		Code:                    c.Code,
		Name:                    c.Name,
		AccountingCode:          nonEmpty(c.AccountingCode),
		TaxCode:                 nonEmpty(c.TaxCode),
		PriceDescription:        nonEmpty(c.PriceDescription),
		SpecificInvoiceLineText: nonEmpty(c.SpecificInvoiceLineText),
		FeatureID:               nonEmpty(c.FeatureID),
		BillingPeriod:           InstanceBillingPeriod(periodMonths, c.BillingPeriod),
		ChargeType:              model.ChargeType(lower(c.ChargeType)),
		PricingModel:            model.PricingModel(lower(c.PricingModel)),
		UsageCalculationType:    nonEmpty(lowerPtr(c.UsageCalculationType)),
		QuantityMin:             1,
		QuantityMax:             c.QuantityMax,
		DefaultQuantity:         1,
		SelfServiceQuantity:     c.SelfServiceQuantity,
		RecognitionPeriod:       nonEmpty(c.RecognitionPeriod),
		FeatureAddon:            c.FeatureAddon,
	}
	if c.Feature != nil && c.Feature.Code != "" {
		out.FeatureCode = &c.Feature.Code
	}
	if c.QuantityMin != nil && *c.QuantityMin != 0 {
		out.QuantityMin = *c.QuantityMin
	}
	if c.PriceDecimals != nil {
		out.PriceDecimals = *c.PriceDecimals
	}
	if c.RoundUpInterval != nil && *c.RoundUpInterval != 0 {
		out.RoundUpInterval = c.RoundUpInterval
	}

	if len(c.Tiers) > 0 {
		starts := make([]int, len(c.Tiers))
		prices := make([]*string, len(c.Tiers))
		for i, t := range c.Tiers {
			switch {
			case t.Starts != nil && *t.Starts > 0:
				starts[i] = *t.Starts
			case i == 0:
				starts[i] = 1
			default:
				starts[i] = starts[i-1] + 1
			}
			s := t.Price.String()
			prices[i] = &s
		}
		out.Tiers = buildTiers(starts, prices)
	} else if c.Price.Valid {
		s := c.Price.Decimal.String()
		out.Price = &s
	}
	return out
}

// InstanceBillingPeriod derives a charge's billing period. A price list
// period in months wins and is null when it has no bucket; otherwise the
// charge's own period is lowercased.
func InstanceBillingPeriod(periodMonths *int, chargePeriod *string) *model.BillingPeriod {
	if periodMonths != nil && *periodMonths != 0 {
		bp, ok := model.BillingPeriodFromMonths(*periodMonths)
		if !ok {
			return nil
		}
		return &bp
	}
	if chargePeriod == nil || *chargePeriod == "" {
		return nil
	}
	bp := model.BillingPeriod(strings.ToLower(*chargePeriod))
	return &bp
}

func lower(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(*s)
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	l := strings.ToLower(*s)
	return &l
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func positive(n *int) *int {
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}
