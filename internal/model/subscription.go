package model

import (
	"github.com/shopspring/decimal"
)

// Amount is a decimal encoded as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// SubscriptionAttributes is the input of the subscriptionCreate mutation.
type SubscriptionAttributes struct {
	AccountID        string           `json:"accountId,omitempty"`
	Account          *AccountInput    `json:"account,omitempty"`
	Tenant           *TenantInput     `json:"tenant,omitempty"`
	PriceListCode    string           `json:"priceListCode"`
	PriceListCharges []ChargeOverride `json:"priceListCharges"`
	Discounts        []DiscountInput  `json:"discounts,omitempty"`
	StartDate        string           `json:"startDate,omitempty"`
	EndDate          string           `json:"endDate,omitempty"`
	Evergreen        bool             `json:"evergreen"`
	Trial            bool             `json:"trial"`
	TrialStartDate   *string          `json:"trialStartDate,omitempty"`
}

// AccountInput creates an account inline with a subscription.
type AccountInput struct {
	Code            string        `json:"code,omitempty"`
	Name            string        `json:"name,omitempty"`
	TaxNumber       string        `json:"taxNumber,omitempty"`
	BillingStreet   string        `json:"billingStreet,omitempty"`
	BillingCity     string        `json:"billingCity,omitempty"`
	BillingState    string        `json:"billingState,omitempty"`
	BillingZip      string        `json:"billingZip,omitempty"`
	BillingCountry  string        `json:"billingCountry,omitempty"`
	ShippingStreet  string        `json:"shippingStreet,omitempty"`
	ShippingCity    string        `json:"shippingCity,omitempty"`
	ShippingState   string        `json:"shippingState,omitempty"`
	ShippingZip     string        `json:"shippingZip,omitempty"`
	ShippingCountry string        `json:"shippingCountry,omitempty"`
	BillingContact  *ContactInput `json:"billingContact,omitempty"`
	EmailsEnabled   *bool         `json:"emailsEnabled,omitempty"`
	NetPaymentDays  *int          `json:"netPaymentDays,omitempty"`
}

type ContactInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type TenantInput struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// ChargeOverride selects a price list charge and overrides its quantity,
// price or dates for one subscription.
type ChargeOverride struct {
	Code       string      `json:"code"`
	Quantity   *int64      `json:"quantity,omitempty"`
	Price      *Amount     `json:"price,omitempty"`
	PriceTiers []TierPrice `json:"priceTiers,omitempty"`
	StartDate  string      `json:"startDate,omitempty"`
	EndDate    string      `json:"endDate,omitempty"`
}

// TierPrice is a subscription-level tier override; ends are derived remotely.
type TierPrice struct {
	Starts int    `json:"starts"`
	Price  Amount `json:"price"`
}

type DiscountInput struct {
	Code      string `json:"code,omitempty"`
	Name      string `json:"name,omitempty"`
	Price     Amount `json:"price"`
	Quantity  *int64 `json:"quantity,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}
