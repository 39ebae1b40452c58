package transform

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnyapp/bunny-cli/internal/stripedata"
)

var migrationNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

const (
	jan1 = 1704067200 // 2024-01-01
	feb1 = 1706745600 // 2024-02-01
	dec1 = 1733011200 // 2024-12-01
)

func activeSubscription() stripedata.Subscription {
	return stripedata.Subscription{
		ID:     "sub_1",
		Status: "active",
		Customer: &stripedata.Customer{
			ID:      "cus_1",
			Name:    "Ada King Lovelace",
			Email:   "ada@example.com",
			Phone:   "+44 20 0000",
			Address: &stripedata.Address{Line1: "1 Main St", City: "London", PostalCode: "N1", Country: "GB"},
			TaxIDs:  []string{"GB123", "GB456"},
		},
		Items: []stripedata.Item{{
			ID: "si_1", PriceID: "price_1", Quantity: 3,
			CurrentPeriodStart: jan1, CurrentPeriodEnd: feb1,
		}},
	}
}

func TestFromStripeSubscriptions(t *testing.T) {
	set := &stripedata.SubscriptionSet{Subscriptions: []stripedata.Subscription{activeSubscription()}}

	records, skips := FromStripeSubscriptions(set, migrationNow, zerolog.Nop())
	assert.Empty(t, skips)
	require.Len(t, records, 1)
	assert.Equal(t, "sub_1", records[0].SourceID)

	got, err := json.Marshal(records[0].Attributes)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"account": {
			"code": "cus_1",
			"name": "Ada King Lovelace",
			"taxNumber": "GB123",
			"billingStreet": "1 Main St",
			"billingCity": "London",
			"billingZip": "N1",
			"billingCountry": "GB",
			"billingContact": {"firstName": "Ada", "lastName": "King Lovelace", "email": "ada@example.com", "phone": "+44 20 0000"}
		},
		"tenant": {"code": "cus_1", "name": "Ada King Lovelace"},
		"priceListCode": "price_1",
		"priceListCharges": [{"code": "price_1_charge", "quantity": 3, "startDate": "2024-01-01", "endDate": "2024-02-01"}],
		"startDate": "2024-01-01",
		"endDate": "2024-02-01",
		"evergreen": true,
		"trial": false
	}`, string(got))
}

func TestFromStripeSubscriptions_CancelAtEndsSubscription(t *testing.T) {
	s := activeSubscription()
	s.CancelAt = dec1
	s.TrialStart = jan1 - 86400
	s.TrialEnd = jan1

	records, skips := FromStripeSubscriptions(&stripedata.SubscriptionSet{Subscriptions: []stripedata.Subscription{s}}, migrationNow, zerolog.Nop())
	assert.Empty(t, skips)
	require.Len(t, records, 1)
	attrs := records[0].Attributes
	assert.Equal(t, "2024-12-01", attrs.EndDate)
	assert.False(t, attrs.Evergreen)
	assert.False(t, attrs.Trial)
	assert.Equal(t, "2023-12-31", *attrs.TrialStartDate)
}

func TestFromStripeSubscriptions_CancellationSchedule(t *testing.T) {
	s := activeSubscription()
	s.CancelAt = dec1
	s.Schedule = &stripedata.Schedule{ID: "sched_1", Phases: []stripedata.Phase{{StartDate: jan1, EndDate: dec1}}}

	records, skips := FromStripeSubscriptions(&stripedata.SubscriptionSet{Subscriptions: []stripedata.Subscription{s}}, migrationNow, zerolog.Nop())
	assert.Empty(t, skips)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-12-01", records[0].Attributes.EndDate)
}

func TestFromStripeSubscriptions_Skips(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *stripedata.Subscription)
		reason string
	}{
		{"active trial", func(s *stripedata.Subscription) {
			s.TrialStart = jan1
			s.TrialEnd = dec1
		}, ReasonActiveTrial},
		{"percentage discount", func(s *stripedata.Subscription) {
			s.HasPercentDiscount = true
		}, ReasonPercentDiscount},
		{"empty schedule", func(s *stripedata.Subscription) {
			s.Schedule = &stripedata.Schedule{ID: "sched"}
		}, ReasonMultiPhase},
		{"two phases", func(s *stripedata.Subscription) {
			s.Schedule = &stripedata.Schedule{Phases: []stripedata.Phase{{EndDate: feb1}, {EndDate: dec1}}}
		}, ReasonMultiPhase},
		{"phase is not a cancellation", func(s *stripedata.Subscription) {
			s.CancelAt = dec1
			s.Schedule = &stripedata.Schedule{Phases: []stripedata.Phase{{EndDate: feb1}}}
		}, ReasonNonCancelPhase},
		{"phase without cancel_at", func(s *stripedata.Subscription) {
			s.Schedule = &stripedata.Schedule{Phases: []stripedata.Phase{{EndDate: feb1}}}
		}, ReasonNonCancelPhase},
		{"missing customer", func(s *stripedata.Subscription) {
			s.Customer = nil
		}, ReasonCustomerNotFound},
		{"missing start", func(s *stripedata.Subscription) {
			s.Items[0].CurrentPeriodStart = 0
		}, ReasonInvalidDates},
		{"missing end", func(s *stripedata.Subscription) {
			s.Items[0].CurrentPeriodEnd = 0
		}, ReasonInvalidDates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := activeSubscription()
			tt.mutate(&s)

			records, skips := FromStripeSubscriptions(&stripedata.SubscriptionSet{Subscriptions: []stripedata.Subscription{s}}, migrationNow, zerolog.Nop())
			assert.Empty(t, records)
			assert.Equal(t, []Skip{{Record: "sub_1", Reason: tt.reason}}, skips)
		})
	}
}

func TestFromStripeSubscriptions_OneRecordPerItem(t *testing.T) {
	s := activeSubscription()
	s.Items = append(s.Items,
		stripedata.Item{ID: "si_2", PriceID: "price_2", CurrentPeriodStart: jan1, CurrentPeriodEnd: feb1},
		stripedata.Item{ID: "si_3"},
	)

	records, _ := FromStripeSubscriptions(&stripedata.SubscriptionSet{Subscriptions: []stripedata.Subscription{s}}, migrationNow, zerolog.Nop())
	require.Len(t, records, 2)
	assert.Equal(t, "price_2", records[1].Attributes.PriceListCode)
	assert.Nil(t, records[1].Attributes.PriceListCharges[0].Quantity)
}

func TestSplitName(t *testing.T) {
	tests := []struct{ in, first, last string }{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Ada King Lovelace", "Ada", "King Lovelace"},
		{"Cher", "Cher", ""},
		{"  ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
	}
}
