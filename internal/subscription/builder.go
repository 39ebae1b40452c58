// Package subscription rebuilds subscriptionCreate attributes from flat
// CSV rows with indexed charge, tier and discount columns.
package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/bunnyapp/bunny-cli/internal/importer"
	"github.com/bunnyapp/bunny-cli/internal/indexed"
	"github.com/bunnyapp/bunny-cli/internal/mapper"
	"github.com/bunnyapp/bunny-cli/internal/model"
)

// Source columns.
const (
	ColStartDate         = "Start Date"
	ColEndDate           = "End Date"
	ColPriceListCode     = "Price List Code"
	ColEvergreen         = "Evergreen"
	ColTenantCode        = "Tenant Code"
	ColTenantName        = "Tenant Name"
	ColTrialStartDate    = "Trial Start Date"
	ColAccountID         = "Account ID"
	ColAccountCode       = "Account Code"
	ColAccountName       = "Account Name"
	ColTaxNumber         = "Tax Number"
	ColAddressLine1      = "Address Line 1"
	ColCity              = "City"
	ColState             = "State"
	ColPostalCode        = "Postal Code"
	ColCountry           = "Country"
	ColContactFirstName  = "Billing Contact First Name"
	ColContactLastName   = "Billing Contact Last Name"
	ColContactEmail      = "Billing Contact Email"
	ColEmailsEnabled     = "Emails Enabled"
	ColNetPaymentDays    = "Net Payment Days"
	chargeGroup          = "Charge"
	discountGroup        = "Discount"
	sentinelNotFound     = "NOT_FOUND"
	sentinelDiscountReqd = "DISCOUNT_REQUIRED"
)

// ValidationError is one problem that rejects a row.
type ValidationError struct {
	Column      string
	Description string
}

func (e ValidationError) Error() string {
	if e.Column == "" {
		return e.Description
	}
	return fmt.Sprintf("%s: %s", e.Column, e.Description)
}

// Builder turns rows into subscription attributes. Accounts already created
// earlier in the run are referenced by id through Cache.
type Builder struct {
	Cache *AccountCache
	Now   func() time.Time
}

// NewBuilder returns a Builder with a fresh cache and the wall clock.
func NewBuilder() *Builder {
	return &Builder{Cache: NewAccountCache(), Now: time.Now}
}

// Build reconstructs one subscription. Any validation problem rejects the
// whole row; all problems are returned together.
func (b *Builder) Build(row importer.Row) (*model.SubscriptionAttributes, error) {
	var errs error
	fail := func(col, format string, args ...any) {
		errs = multierr.Append(errs, ValidationError{Column: col, Description: fmt.Sprintf(format, args...)})
	}

	attrs := &model.SubscriptionAttributes{
		PriceListCode:    row.Trimmed(ColPriceListCode),
		Evergreen:        mapper.ParseBool(row.Value(ColEvergreen)),
		PriceListCharges: []model.ChargeOverride{},
	}
	if attrs.PriceListCode == "" {
		fail(ColPriceListCode, "is required")
	}

	start, startErr := ParseDate(row.Value(ColStartDate))
	if startErr != nil {
		fail(ColStartDate, "%v", startErr)
	} else {
		attrs.StartDate = FormatDate(start)
	}

	if raw := row.Trimmed(ColEndDate); raw != "" || !attrs.Evergreen {
		end, err := ParseDate(raw)
		switch {
		case err != nil:
			fail(ColEndDate, "%v", err)
		case startErr == nil && end.Before(start):
			fail(ColEndDate, "end date is before start date")
		default:
			attrs.EndDate = FormatDate(end)
		}
	}

	if code, name := row.Trimmed(ColTenantCode), row.Trimmed(ColTenantName); code != "" || name != "" {
		attrs.Tenant = &model.TenantInput{Code: code, Name: name}
	}

	if raw := row.Trimmed(ColTrialStartDate); raw != "" && startErr == nil && start.After(b.now()) {
		trialStart, err := ParseDate(raw)
		if err != nil {
			fail(ColTrialStartDate, "%v", err)
		} else {
			attrs.Trial = true
			attrs.TrialStartDate = model.Ptr(FormatDate(trialStart))
		}
	}

	if id, ok := b.Cache.Lookup(row.Trimmed(ColAccountID)); ok {
		attrs.AccountID = id
	} else {
		attrs.Account = inlineAccount(row)
	}

	for g := range indexed.Groups(row, discountGroup) {
		d, err := buildDiscount(g)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		attrs.Discounts = append(attrs.Discounts, d)
	}

	codes := chargeCodeCounts(row)
	for g := range indexed.Groups(row, chargeGroup) {
		c, err := buildCharge(g, codes)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if excluded(c.Code) {
			continue
		}
		attrs.PriceListCharges = append(attrs.PriceListCharges, c)
	}

	if errs != nil {
		return nil, errs
	}
	return attrs, nil
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func inlineAccount(row importer.Row) *model.AccountInput {
	acct := &model.AccountInput{
		Code:           row.Trimmed(ColAccountCode),
		Name:           row.Trimmed(ColAccountName),
		TaxNumber:      row.Trimmed(ColTaxNumber),
		BillingStreet:  row.Trimmed(ColAddressLine1),
		BillingCity:    row.Trimmed(ColCity),
		BillingState:   row.Trimmed(ColState),
		BillingZip:     row.Trimmed(ColPostalCode),
		BillingCountry: row.Trimmed(ColCountry),
	}
	contact := model.ContactInput{
		FirstName: row.Trimmed(ColContactFirstName),
		LastName:  row.Trimmed(ColContactLastName),
		Email:     row.Trimmed(ColContactEmail),
	}
	if contact != (model.ContactInput{}) {
		acct.BillingContact = &contact
	}
	if raw := row.Trimmed(ColEmailsEnabled); raw != "" {
		acct.EmailsEnabled = model.Ptr(mapper.ParseBool(raw))
	}
	if n, ok := mapper.ParseInt(row.Value(ColNetPaymentDays)); ok {
		acct.NetPaymentDays = model.Ptr(int(n))
	}
	return acct
}

func buildDiscount(g indexed.Group) (model.DiscountInput, error) {
	var errs error
	d := model.DiscountInput{
		Code: strings.TrimSpace(g.Value("Code")),
		Name: strings.TrimSpace(g.Value("Name")),
	}
	amount, err := parseAmount(g.Value("Amount"))
	if err != nil {
		errs = multierr.Append(errs, ValidationError{Column: g.Column("Amount"), Description: err.Error()})
	}
	d.Price = model.NewAmount(amount.Abs())

	if q, ok := mapper.ParseInt(g.Value("Quantity")); ok {
		d.Quantity = model.Ptr(q)
	}
	for _, f := range []struct {
		field string
		dst   *string
	}{{"Start Date", &d.StartDate}, {"End Date", &d.EndDate}} {
		raw := strings.TrimSpace(g.Value(f.field))
		if raw == "" {
			continue
		}
		t, err := ParseDate(raw)
		if err != nil {
			errs = multierr.Append(errs, ValidationError{Column: g.Column(f.field), Description: err.Error()})
			continue
		}
		*f.dst = FormatDate(t)
	}
	return d, errs
}

func buildCharge(g indexed.Group, codes map[string]int) (model.ChargeOverride, error) {
	var errs error
	fail := func(field, desc string) {
		errs = multierr.Append(errs, ValidationError{Column: g.Column(field), Description: desc})
	}

	c := model.ChargeOverride{Code: strings.TrimSpace(g.Value("Code"))}

	amount, amountErr := parseAmount(g.Value("Amount"))
	if amountErr == nil && amount.IsNegative() {
		fail("Amount", "negative charge amount "+amount.String())
	}

	if codes[c.Code] > 1 {
		for _, f := range []struct {
			field string
			dst   *string
		}{{"Effective Start Date", &c.StartDate}, {"Effective End Date", &c.EndDate}} {
			t, err := ParseDate(g.Value(f.field))
			if err != nil {
				fail(f.field, "repeated charge code needs effective dates: "+err.Error())
				continue
			}
			*f.dst = FormatDate(t)
		}
	}

	if !strings.EqualFold(strings.TrimSpace(g.Value("Type")), string(model.ChargeTypeUsage)) {
		q, ok := mapper.ParseInt(g.Value("Quantity"))
		if !ok || q <= 0 {
			q = 1
		}
		c.Quantity = model.Ptr(q)
	}

	pm := model.PricingModel(strings.ToLower(strings.TrimSpace(g.Value("Price Model"))))
	if pm.UsesTiers() {
		for tier := range g.Tiers() {
			price, err := parseAmount(tier.Value("Price"))
			switch {
			case err != nil:
				fail("Tier "+fmt.Sprint(tier.Index)+" Price", err.Error())
			case price.IsNegative():
				fail("Tier "+fmt.Sprint(tier.Index)+" Price", "negative tier price "+price.String())
			default:
				c.PriceTiers = append(c.PriceTiers, model.TierPrice{Starts: tier.Start, Price: model.NewAmount(price)})
			}
		}
	} else {
		if amountErr != nil {
			fail("Amount", amountErr.Error())
		} else {
			c.Price = model.Ptr(model.NewAmount(amount))
		}
	}
	return c, errs
}

// chargeCodeCounts counts every non-empty "Charge * Code" value in the row,
// including groups past the first gap.
func chargeCodeCounts(row importer.Row) map[string]int {
	counts := make(map[string]int)
	for k, v := range row {
		if !strings.HasPrefix(k, chargeGroup+" ") || !strings.HasSuffix(k, " Code") {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			counts[v]++
		}
	}
	return counts
}

func excluded(code string) bool {
	return strings.HasPrefix(code, sentinelNotFound) || code == sentinelDiscountReqd
}

func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return d, nil
}

// Identifier names a subscription row in summaries and logs.
func Identifier(row importer.Row, n int) string {
	for _, col := range []string{ColAccountName, ColAccountCode, ColAccountID} {
		if v := row.Trimmed(col); v != "" {
			return v
		}
	}
	return fmt.Sprintf("Row %d", n)
}
