package stripedata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/billing/meter"
	"github.com/stripe/stripe-go/v84/entitlements/feature"
	"github.com/stripe/stripe-go/v84/price"
	"github.com/stripe/stripe-go/v84/product"
	"github.com/stripe/stripe-go/v84/subscription"
)

const pageSize = 100

// Fetcher reads from the provider API with a single secret key.
type Fetcher struct {
	log  zerolog.Logger
	mode string
}

// NewFetcher validates key and installs it as the process-wide API key.
func NewFetcher(key string, log zerolog.Logger) (*Fetcher, error) {
	mode, err := ValidateKey(key)
	if err != nil {
		return nil, err
	}
	stripe.Key = strings.TrimSpace(key)
	log.Debug().Str("mode", mode).Msg("stripe client initialized")
	return &Fetcher{log: log, mode: mode}, nil
}

// Mode is "test" or "live".
func (f *Fetcher) Mode() string { return f.mode }

// Catalog fetches active products with their active prices, plus meters
// and entitlement features. Meter and feature failures only warn, since
// accounts without those products enabled reject the calls.
func (f *Fetcher) Catalog(ctx context.Context) (*Catalog, error) {
	cat := &Catalog{ExportedAt: time.Now().UTC()}

	params := &stripe.ProductListParams{Active: stripe.Bool(true)}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)
	it := product.List(params)
	for it.Next() {
		p := it.Product()
		prices, err := f.prices(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		cat.Products = append(cat.Products, Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Active:      p.Active,
			Prices:      prices,
		})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	meters, err := f.meters(ctx)
	if err != nil {
		f.log.Warn().Err(err).Msg("fetching meters")
	}
	cat.Meters = meters

	features, err := f.features(ctx)
	if err != nil {
		f.log.Warn().Err(err).Msg("fetching features")
	}
	cat.Features = features

	f.log.Debug().Int("products", len(cat.Products)).Int("meters", len(cat.Meters)).
		Int("features", len(cat.Features)).Msg("catalog fetched")
	return cat, nil
}

func (f *Fetcher) prices(ctx context.Context, productID string) ([]Price, error) {
	params := &stripe.PriceListParams{
		Active:  stripe.Bool(true),
		Product: stripe.String(productID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)
	params.AddExpand("data.tiers")

	var out []Price
	it := price.List(params)
	for it.Next() {
		out = append(out, FromStripePrice(it.Price()))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("listing prices for %s: %w", productID, err)
	}
	return out, nil
}

func (f *Fetcher) meters(ctx context.Context) ([]Meter, error) {
	params := &stripe.BillingMeterListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)

	var out []Meter
	it := meter.List(params)
	for it.Next() {
		m := it.BillingMeter()
		out = append(out, Meter{
			ID:          m.ID,
			DisplayName: m.DisplayName,
			EventName:   m.EventName,
			Status:      string(m.Status),
		})
	}
	return out, it.Err()
}

func (f *Fetcher) features(ctx context.Context) ([]Feature, error) {
	params := &stripe.EntitlementsFeatureListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)

	var out []Feature
	it := feature.List(params)
	for it.Next() {
		ef := it.EntitlementsFeature()
		out = append(out, Feature{
			ID:        ef.ID,
			Name:      ef.Name,
			LookupKey: ef.LookupKey,
			Active:    ef.Active,
		})
	}
	return out, it.Err()
}

// Subscriptions fetches active subscriptions with customer, items, schedule
// and discounts expanded.
func (f *Fetcher) Subscriptions(ctx context.Context) (*SubscriptionSet, error) {
	set := &SubscriptionSet{ExportedAt: time.Now().UTC()}

	it := subscription.List(subscriptionListParams(ctx))
	for it.Next() {
		set.Subscriptions = append(set.Subscriptions, FromStripeSubscription(it.Subscription()))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	f.log.Debug().Int("subscriptions", len(set.Subscriptions)).Msg("subscriptions fetched")
	return set, nil
}

func subscriptionListParams(ctx context.Context) *stripe.SubscriptionListParams {
	params := &stripe.SubscriptionListParams{Status: stripe.String("active")}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)
	params.AddExpand("data.customer")
	params.AddExpand("data.customer.tax_ids")
	params.AddExpand("data.items.data.price")
	params.AddExpand("data.schedule")
	params.AddExpand("data.discounts.source.coupon")
	return params
}

// FromStripePrice converts an API price to a snapshot.
func FromStripePrice(p *stripe.Price) Price {
	out := Price{
		ID:                p.ID,
		Active:            p.Active,
		Currency:          string(p.Currency),
		Nickname:          p.Nickname,
		Type:              string(p.Type),
		BillingScheme:     string(p.BillingScheme),
		TiersMode:         string(p.TiersMode),
		UnitAmount:        p.UnitAmount,
		UnitAmountDecimal: formatMinor(p.UnitAmountDecimal, p.BillingScheme == stripe.PriceBillingSchemePerUnit),
	}
	if r := p.Recurring; r != nil {
		out.Recurring = &Recurring{
			Interval:        string(r.Interval),
			IntervalCount:   r.IntervalCount,
			UsageType:       string(r.UsageType),
			Meter:           r.Meter,
			TrialPeriodDays: r.TrialPeriodDays,
		}
	}
	if tq := p.TransformQuantity; tq != nil {
		out.TransformQuantity = &TransformQuantity{DivideBy: tq.DivideBy, Round: string(tq.Round)}
	}
	for _, t := range p.Tiers {
		tier := Tier{UnitAmount: t.UnitAmount, UnitAmountDecimal: formatMinor(t.UnitAmountDecimal, false)}
		if t.UpTo != 0 {
			tier.UpTo = stripe.Int64(t.UpTo)
		}
		out.Tiers = append(out.Tiers, tier)
	}
	return out
}

// FromStripeSubscription converts an API subscription to a snapshot.
func FromStripeSubscription(s *stripe.Subscription) Subscription {
	out := Subscription{
		ID:                 s.ID,
		Status:             string(s.Status),
		CancelAt:           s.CancelAt,
		TrialStart:         s.TrialStart,
		TrialEnd:           s.TrialEnd,
		HasPercentDiscount: hasPercentDiscount(s.Discounts),
	}
	if c := s.Customer; c != nil && !c.Deleted {
		cust := &Customer{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
		if a := c.Address; a != nil {
			cust.Address = &Address{
				Line1:      a.Line1,
				City:       a.City,
				State:      a.State,
				PostalCode: a.PostalCode,
				Country:    a.Country,
			}
		}
		if c.TaxIDs != nil {
			for _, t := range c.TaxIDs.Data {
				cust.TaxIDs = append(cust.TaxIDs, t.Value)
			}
		}
		out.Customer = cust
	}
	if s.Items != nil {
		for _, it := range s.Items.Data {
			item := Item{
				ID:                 it.ID,
				Quantity:           it.Quantity,
				CurrentPeriodStart: it.CurrentPeriodStart,
				CurrentPeriodEnd:   it.CurrentPeriodEnd,
			}
			if it.Price != nil {
				item.PriceID = it.Price.ID
				if it.Price.Product != nil {
					item.ProductID = it.Price.Product.ID
				}
			}
			out.Items = append(out.Items, item)
		}
	}
	if sch := s.Schedule; sch != nil {
		schedule := &Schedule{ID: sch.ID}
		for _, ph := range sch.Phases {
			schedule.Phases = append(schedule.Phases, Phase{StartDate: ph.StartDate, EndDate: ph.EndDate})
		}
		out.Schedule = schedule
	}
	return out
}

// hasPercentDiscount reports whether any discount comes from a percentage
// coupon. A coupon that was not expanded cannot be inspected and counts as one.
func hasPercentDiscount(discounts []*stripe.Discount) bool {
	for _, d := range discounts {
		if d == nil || d.Source == nil || d.Source.Coupon == nil {
			continue
		}
		c := d.Source.Coupon
		if c.Object == "" || c.PercentOff != 0 {
			return true
		}
	}
	return false
}

// formatMinor renders a decimal minor-unit amount. Zero is rendered only when
// zeroIsPrice is set; otherwise it reads as an absent amount.
func formatMinor(v float64, zeroIsPrice bool) string {
	if v == 0 && !zeroIsPrice {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
