package model

// ImportDocument is the payload of a product import: {"products": [...]}.
type ImportDocument struct {
	Products []Product `json:"products" validate:"required,min=1,dive"`
}

// Product is the root of the nested product import schema.
type Product struct {
	Name                      string    `json:"name" validate:"required"`
	Description               *string   `json:"description"`
	InternalNotes             *string   `json:"internal_notes"`
	PlatformID                string    `json:"platformId"`
	ProductCategoryID         *string   `json:"product_category_id"`
	ShowProductNameOnLineItem bool      `json:"show_product_name_on_line_item"`
	EverythingInPlus          bool      `json:"everything_in_plus"`
	Features                  []Feature `json:"features" validate:"dive"`
	Plans                     []Plan    `json:"plans" validate:"dive"`
}

// FeatureKind is the value shape of a feature.
type FeatureKind string

const (
	FeatureKindQuantity FeatureKind = "quantity"
	FeatureKindBoolean  FeatureKind = "boolean"
)

type Feature struct {
	ID            *string     `json:"id,omitempty"`
	Name          string      `json:"name" validate:"required"`
	Code          string      `json:"code" validate:"required"`
	Description   *string     `json:"description"`
	IsUnit        bool        `json:"is_unit"`
	Kind          FeatureKind `json:"kind" validate:"omitempty,oneof=quantity boolean"`
	IsProvisioned bool        `json:"is_provisioned"`
	IsVisible     bool        `json:"is_visible"`
	Position      int         `json:"position"`
	UnitName      *string     `json:"unit_name,omitempty"`
}

type Plan struct {
	Code                      string      `json:"code" validate:"required"`
	Name                      string      `json:"name" validate:"required"`
	Description               *string     `json:"description"`
	InternalNotes             *string     `json:"internal_notes"`
	Available                 bool        `json:"available"`
	AvailableFrom             *string     `json:"available_from"`
	AvailableTo               *string     `json:"available_to"`
	IsVisible                 bool        `json:"is_visible"`
	IncludeFeaturesFromPlanID *string     `json:"include_features_from_plan_id"`
	Addon                     bool        `json:"addon"`
	SelfServiceBuy            bool        `json:"self_service_buy"`
	SelfServiceCancel         bool        `json:"self_service_cancel"`
	SelfServiceRenew          bool        `json:"self_service_renew"`
	Position                  int         `json:"position"`
	PricingDescription        *string     `json:"pricing_description"`
	PricingStyle              string      `json:"pricing_style"`
	ContactUsLabel            *string     `json:"contact_us_label"`
	ContactUsURL              *string     `json:"contact_us_url"`
	PriceLists                []PriceList `json:"price_lists" validate:"dive"`
}

type PriceList struct {
	Code                  string   `json:"code" validate:"required"`
	Name                  string   `json:"name" validate:"required"`
	PriceDescription      *string  `json:"price_description"`
	IsVisible             bool     `json:"is_visible"`
	CurrencyID            string   `json:"currency_id" validate:"required"`
	TrialAllowed          bool     `json:"trial_allowed"`
	TrialLengthDays       *int     `json:"trial_length_days"`
	TrialExpirationAction *string  `json:"trial_expiration_action"`
	SKU                   *string  `json:"sku"`
	Charges               []Charge `json:"price_list_charges" validate:"dive"`
}

// Charge is a billable line of a price list. Price and Tiers are exclusive
// except for tierless volume charges, which carry both.
type Charge struct {
	Code                    string         `json:"code" validate:"required"`
	Name                    string         `json:"name"`
	AccountingCode          *string        `json:"accounting_code"`
	TaxCode                 *string        `json:"tax_code"`
	PriceDescription        *string        `json:"price_description"`
	SpecificInvoiceLineText *string        `json:"specific_invoice_line_text"`
	FeatureID               *string        `json:"feature_id"`
	FeatureCode             *string        `json:"feature_code"`
	BillingPeriod           *BillingPeriod `json:"billing_period"`
	ChargeType              ChargeType     `json:"charge_type" validate:"omitempty,oneof=recurring usage one_time"`
	PricingModel            PricingModel   `json:"pricing_model" validate:"omitempty,oneof=flat volume tiered"`
	UsageCalculationType    *string        `json:"usage_calculation_type"`
	QuantityMin             int            `json:"quantity_min"`
	QuantityMax             *int           `json:"quantity_max"`
	DefaultQuantity         int            `json:"default_quantity"`
	SelfServiceQuantity     bool           `json:"self_service_quantity"`
	RecognitionPeriod       *string        `json:"recognition_period"`
	Tiers                   []PriceTier    `json:"price_list_charge_tiers,omitempty" validate:"dive"`
	PriceDecimals           int            `json:"price_decimals"`
	FeatureAddon            bool           `json:"feature_addon"`
	RoundUpInterval         *int64         `json:"round_up_interval"`
	Price                   *string        `json:"price,omitempty"`
}

// PriceTier is one quantity band of a tiered or volume charge.
type PriceTier struct {
	Starts int     `json:"starts" validate:"min=1"`
	Ends   int     `json:"ends"`
	Price  *string `json:"price"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
