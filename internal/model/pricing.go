package model

import (
	"fmt"
	"strings"
)

// InfiniteTierEnd is the "ends" value of the open-ended last price tier.
const InfiniteTierEnd = 999999999

// BillingPeriod is how often a charge is billed.
type BillingPeriod string

const (
	BillingPeriodMonthly    BillingPeriod = "monthly"
	BillingPeriodQuarterly  BillingPeriod = "quarterly"
	BillingPeriodSemiAnnual BillingPeriod = "semi_annual"
	BillingPeriodAnnual     BillingPeriod = "annual"
	BillingPeriodNone       BillingPeriod = "none"
)

func (b BillingPeriod) String() string { return string(b) }

func (b BillingPeriod) IsValid() bool {
	switch b {
	case BillingPeriodMonthly, BillingPeriodQuarterly, BillingPeriodSemiAnnual, BillingPeriodAnnual, BillingPeriodNone:
		return true
	default:
		return false
	}
}

// BillingPeriodFromMonths maps a period length in months onto a billing period.
// Only 1, 3, 6 and 12 months are representable.
func BillingPeriodFromMonths(months int) (BillingPeriod, bool) {
	switch months {
	case 1:
		return BillingPeriodMonthly, true
	case 3:
		return BillingPeriodQuarterly, true
	case 6:
		return BillingPeriodSemiAnnual, true
	case 12:
		return BillingPeriodAnnual, true
	default:
		return "", false
	}
}

// ChargeType distinguishes recurring, metered and one-off charges.
type ChargeType string

const (
	ChargeTypeRecurring ChargeType = "recurring"
	ChargeTypeUsage     ChargeType = "usage"
	ChargeTypeOneTime   ChargeType = "one_time"
)

func (c ChargeType) String() string { return string(c) }

func (c ChargeType) IsValid() bool {
	switch c {
	case ChargeTypeRecurring, ChargeTypeUsage, ChargeTypeOneTime:
		return true
	default:
		return false
	}
}

// ParseChargeType parses a charge type, ignoring case and surrounding space.
func ParseChargeType(value string) (ChargeType, error) {
	c := ChargeType(strings.ToLower(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid charge type %q", value)
	}
	return c, nil
}

// PricingModel decides how a charge's quantity turns into a price.
type PricingModel string

const (
	PricingModelFlat   PricingModel = "flat"
	PricingModelVolume PricingModel = "volume"
	PricingModelTiered PricingModel = "tiered"
)

func (p PricingModel) String() string { return string(p) }

func (p PricingModel) IsValid() bool {
	switch p {
	case PricingModelFlat, PricingModelVolume, PricingModelTiered:
		return true
	default:
		return false
	}
}

// UsesTiers reports whether charges with this model are priced by tiers.
func (p PricingModel) UsesTiers() bool {
	return p == PricingModelVolume || p == PricingModelTiered
}
