// Package stripedata fetches a billing provider's catalog and subscriptions
// into plain snapshot types that are persisted for debugging and fed to the
// transformers.
package stripedata

import "time"

// Catalog is everything a product migration reads.
type Catalog struct {
	Products   []Product `json:"products"`
	Meters     []Meter   `json:"meters"`
	Features   []Feature `json:"features"`
	ExportedAt time.Time `json:"exported_at"`
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Active      bool    `json:"active"`
	Prices      []Price `json:"prices"`
}

// Price amounts are in minor units. UnitAmountDecimal, when set, is the
// precise minor-unit amount and wins over UnitAmount.
type Price struct {
	ID                string             `json:"id"`
	Active            bool               `json:"active"`
	Currency          string             `json:"currency"`
	Nickname          string             `json:"nickname,omitempty"`
	Type              string             `json:"type"`
	BillingScheme     string             `json:"billing_scheme"`
	TiersMode         string             `json:"tiers_mode,omitempty"`
	UnitAmount        int64              `json:"unit_amount,omitempty"`
	UnitAmountDecimal string             `json:"unit_amount_decimal,omitempty"`
	Recurring         *Recurring         `json:"recurring,omitempty"`
	TransformQuantity *TransformQuantity `json:"transform_quantity,omitempty"`
	Tiers             []Tier             `json:"tiers,omitempty"`
}

// Metered reports whether the price bills reported usage.
func (p Price) Metered() bool {
	return p.Recurring != nil && p.Recurring.UsageType == "metered"
}

type Recurring struct {
	Interval        string `json:"interval"`
	IntervalCount   int64  `json:"interval_count"`
	UsageType       string `json:"usage_type,omitempty"`
	Meter           string `json:"meter,omitempty"`
	TrialPeriodDays int64  `json:"trial_period_days,omitempty"`
}

type TransformQuantity struct {
	DivideBy int64  `json:"divide_by"`
	Round    string `json:"round"`
}

// Tier is one band of a tiered price. A nil UpTo is the open-ended last tier.
type Tier struct {
	UpTo              *int64 `json:"up_to"`
	UnitAmount        int64  `json:"unit_amount,omitempty"`
	UnitAmountDecimal string `json:"unit_amount_decimal,omitempty"`
}

// Meter is a usage aggregation; its event name becomes a quantity feature code.
type Meter struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	EventName   string `json:"event_name"`
	Status      string `json:"status"`
}

// Feature is an entitlement feature; it becomes a boolean feature.
type Feature struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LookupKey string `json:"lookup_key"`
	Active    bool   `json:"active"`
}

// SubscriptionSet is everything a subscription migration reads.
type SubscriptionSet struct {
	Subscriptions []Subscription `json:"subscriptions"`
	ExportedAt    time.Time      `json:"exported_at"`
}

// Subscription timestamps are Unix seconds; zero means unset.
type Subscription struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	Customer           *Customer `json:"customer,omitempty"`
	Items              []Item    `json:"items"`
	CancelAt           int64     `json:"cancel_at,omitempty"`
	TrialStart         int64     `json:"trial_start,omitempty"`
	TrialEnd           int64     `json:"trial_end,omitempty"`
	HasPercentDiscount bool      `json:"has_percent_discount,omitempty"`
	Schedule           *Schedule `json:"schedule,omitempty"`
}

type Item struct {
	ID                 string `json:"id"`
	PriceID            string `json:"price_id"`
	ProductID          string `json:"product_id,omitempty"`
	Quantity           int64  `json:"quantity"`
	CurrentPeriodStart int64  `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   int64  `json:"current_period_end,omitempty"`
}

type Customer struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
	TaxIDs  []string `json:"tax_ids,omitempty"`
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Schedule struct {
	ID     string  `json:"id"`
	Phases []Phase `json:"phases"`
}

type Phase struct {
	StartDate int64 `json:"start_date"`
	EndDate   int64 `json:"end_date"`
}
