package transform

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bunnyapp/bunny-cli/internal/id"
	"github.com/bunnyapp/bunny-cli/internal/model"
	"github.com/bunnyapp/bunny-cli/internal/stripedata"
	"github.com/bunnyapp/bunny-cli/internal/subscription"
)

// Skip reasons for provider subscriptions.
const (
	ReasonActiveTrial      = "it has an active trial"
	ReasonPercentDiscount  = "it has a percentage discount"
	ReasonMultiPhase       = "it has a schedule with multiple phases"
	ReasonNonCancelPhase   = "it has a schedule with a single phase that isn't a cancellation"
	ReasonCustomerNotFound = "customer not found"
	ReasonInvalidDates     = "invalid dates"
)

// SubscriptionRecord is one subscription to create, with the provider
// subscription it came from.
type SubscriptionRecord struct {
	SourceID   string                        `json:"source_id"`
	Attributes *model.SubscriptionAttributes `json:"attributes"`
}

// FromStripeSubscriptions maps each item of each active subscription to a
// subscription record. now decides whether a trial is still running.
func FromStripeSubscriptions(set *stripedata.SubscriptionSet, now time.Time, log zerolog.Logger) ([]SubscriptionRecord, []Skip) {
	var (
		records []SubscriptionRecord
		skips   []Skip
	)
	skip := func(subID, reason string) {
		log.Warn().Str("subscription", subID).Str("reason", reason).Msg("skipping subscription")
		skips = append(skips, Skip{Record: subID, Reason: reason})
	}

	for _, s := range set.Subscriptions {
		if s.TrialStart != 0 && s.TrialEnd > now.Unix() {
			skip(s.ID, ReasonActiveTrial)
			continue
		}
		if s.HasPercentDiscount {
			skip(s.ID, ReasonPercentDiscount)
			continue
		}

		var scheduledEnd int64
		if s.Schedule != nil {
			if len(s.Schedule.Phases) != 1 {
				skip(s.ID, ReasonMultiPhase)
				continue
			}
			if s.CancelAt == 0 || s.CancelAt != s.Schedule.Phases[0].EndDate {
				skip(s.ID, ReasonNonCancelPhase)
				continue
			}
			scheduledEnd = s.CancelAt
		}

		if s.Customer == nil {
			skip(s.ID, ReasonCustomerNotFound)
			continue
		}

		for _, item := range s.Items {
			if item.PriceID == "" {
				continue
			}
			end := firstNonZero(scheduledEnd, s.CancelAt, item.CurrentPeriodEnd)
			if item.CurrentPeriodStart == 0 || end == 0 {
				skip(s.ID, ReasonInvalidDates)
				continue
			}
			records = append(records, SubscriptionRecord{
				SourceID:   s.ID,
				Attributes: stripeSubscription(s, item, unixDate(item.CurrentPeriodStart), unixDate(end)),
			})
		}
	}
	return records, skips
}

func stripeSubscription(s stripedata.Subscription, item stripedata.Item, start, end string) *model.SubscriptionAttributes {
	c := s.Customer
	first, last := SplitName(c.Name)
	account := &model.AccountInput{
		Code: c.ID,
		Name: c.Name,
		BillingContact: &model.ContactInput{
			FirstName: first,
			LastName:  last,
			Email:     c.Email,
			Phone:     c.Phone,
		},
	}
	if a := c.Address; a != nil {
		account.BillingStreet = a.Line1
		account.BillingCity = a.City
		account.BillingState = a.State
		account.BillingZip = a.PostalCode
		account.BillingCountry = a.Country
	}
	if len(c.TaxIDs) > 0 {
		account.TaxNumber = c.TaxIDs[0]
	}

	charge := model.ChargeOverride{
		Code:      id.ChargeCode(item.PriceID),
		StartDate: start,
		EndDate:   end,
	}
	if item.Quantity > 0 {
		charge.Quantity = model.Ptr(item.Quantity)
	}

	attrs := &model.SubscriptionAttributes{
		Account:          account,
		Tenant:           &model.TenantInput{Code: c.ID, Name: c.Name},
		PriceListCode:    item.PriceID,
		PriceListCharges: []model.ChargeOverride{charge},
		StartDate:        start,
		EndDate:          end,
		Evergreen:        s.CancelAt == 0,
	}
	if s.TrialStart != 0 {
		attrs.TrialStartDate = model.Ptr(unixDate(s.TrialStart))
	}
	return attrs
}

// SplitName splits a full name at the first space.
func SplitName(full string) (first, last string) {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func unixDate(sec int64) string {
	return subscription.FormatDate(time.Unix(sec, 0).UTC())
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
