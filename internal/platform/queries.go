package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const platformsQuery = `query platforms {
  platforms { edges { node { id name code } } }
}`

const productsQuery = `query products ($first: Int) {
  products (first: $first) { edges { node { id code name description platformId } } }
}`

const productsPageQuery = `query products ($first: Int, $after: String) {
  products (first: $first, after: $after) {
    edges { node { id code name description platformId } }
    pageInfo { hasNextPage endCursor }
  }
}`

const productsPageSize = 100

const entitiesQuery = `query entities ($first: Int, $filter: String) {
  entities (first: $first, filter: $filter) {
    edges { node { id name brandColor accentColor emailTemplate topNavImageUrl } }
  }
}`

const productQuery = `query product ($id: ID, $code: String) {
  product (id: $id, code: $code) {
    id code name description internalNotes platformId productCategoryId
    showProductNameOnLineItem everythingInPlus
    features { id code name description isProvisioned isUnit isVisible position unitName }
    plans {
      code name description internalNotes addon availableFrom availableTo isAvailableNow isVisible
      position pricingDescription selfServiceBuy selfServiceCancel selfServiceRenew
      contactUsLabel contactUsUrl
      priceLists {
        code name priceDescription isVisible currencyId periodMonths sku
        trialAllowed trialLengthDays trialExpirationAction
        charges {
          code name accountingCode taxCode priceDescription specificInvoiceLineText
          featureId feature { code }
          billingPeriod chargeType pricingModel usageCalculationType
          quantityMin quantityMax selfServiceQuantity recognitionPeriod
          price priceDecimals featureAddon roundUpInterval
          priceListChargeTiers { starts price }
        }
      }
    }
  }
}`

type edges[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
}

func (e edges[T]) nodes() []T {
	out := make([]T, len(e.Edges))
	for i, edge := range e.Edges {
		out[i] = edge.Node
	}
	return out
}

func queryConnection[T any](ctx context.Context, c *Client, document, field string, variables any) ([]T, error) {
	conn, err := fetchConnection[T](ctx, c, document, field, variables)
	if err != nil {
		return nil, err
	}
	return conn.nodes(), nil
}

func fetchConnection[T any](ctx context.Context, c *Client, document, field string, variables any) (*edges[T], error) {
	data, err := c.Query(ctx, document, variables)
	if err != nil {
		return nil, err
	}
	var conn edges[T]
	ok, err := decodeField(data, field, &conn)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("unexpected response: no %s", field)
	}
	return &conn, nil
}

type Platform struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type ProductSummary struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PlatformID  string  `json:"platformId"`
}

type Entity struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	BrandColor     string `json:"brandColor"`
	AccentColor    string `json:"accentColor"`
	EmailTemplate  string `json:"emailTemplate"`
	TopNavImageURL string `json:"topNavImageUrl"`
}

// ErrNoPlatforms means the instance has no platform to import into.
var ErrNoPlatforms = errors.New("No platforms found in Bunny instance") //nolint:staticcheck // user-facing message

// Platforms lists the instance's platforms.
func (c *Client) Platforms(ctx context.Context) ([]Platform, error) {
	return queryConnection[Platform](ctx, c, platformsQuery, "platforms", nil)
}

// DefaultPlatform returns the first platform.
func (c *Client) DefaultPlatform(ctx context.Context) (Platform, error) {
	ps, err := c.Platforms(ctx)
	if err != nil {
		return Platform{}, fmt.Errorf("fetching platforms: %w", err)
	}
	if len(ps) == 0 {
		return Platform{}, ErrNoPlatforms
	}
	return ps[0], nil
}

// Products lists products.
func (c *Client) Products(ctx context.Context, first int) ([]ProductSummary, error) {
	return queryConnection[ProductSummary](ctx, c, productsQuery, "products", map[string]any{"first": first})
}

// AllProducts lists every product, following the connection cursor.
func (c *Client) AllProducts(ctx context.Context) ([]ProductSummary, error) {
	var out []ProductSummary
	vars := map[string]any{"first": productsPageSize}
	for {
		conn, err := fetchConnection[ProductSummary](ctx, c, productsPageQuery, "products", vars)
		if err != nil {
			return nil, err
		}
		out = append(out, conn.nodes()...)
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			return out, nil
		}
		vars = map[string]any{"first": productsPageSize, "after": conn.PageInfo.EndCursor}
	}
}

// Entities lists up to 100 entities.
func (c *Client) Entities(ctx context.Context) ([]Entity, error) {
	return queryConnection[Entity](ctx, c, entitiesQuery, "entities", map[string]any{"first": 100})
}

// Ping checks connectivity and credentials with a one-product query.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Products(ctx, 1)
	return err
}

// ProductGraph is a product with its full feature/plan/price list/charge tree.
type ProductGraph struct {
	ID                        string        `json:"id"`
	Code                      string        `json:"code"`
	Name                      string        `json:"name"`
	Description               *string       `json:"description"`
	InternalNotes             *string       `json:"internalNotes"`
	PlatformID                string        `json:"platformId"`
	ProductCategoryID         *string       `json:"productCategoryId"`
	ShowProductNameOnLineItem bool          `json:"showProductNameOnLineItem"`
	EverythingInPlus          bool          `json:"everythingInPlus"`
	Features                  []FeatureNode `json:"features"`
	Plans                     []PlanNode    `json:"plans"`
}

type FeatureNode struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	IsProvisioned bool    `json:"isProvisioned"`
	IsUnit        bool    `json:"isUnit"`
	IsVisible     bool    `json:"isVisible"`
	Position      int     `json:"position"`
	UnitName      *string `json:"unitName"`
}

type PlanNode struct {
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Description        *string         `json:"description"`
	InternalNotes      *string         `json:"internalNotes"`
	Addon              bool            `json:"addon"`
	AvailableFrom      *string         `json:"availableFrom"`
	AvailableTo        *string         `json:"availableTo"`
	IsAvailableNow     bool            `json:"isAvailableNow"`
	IsVisible          bool            `json:"isVisible"`
	Position           int             `json:"position"`
	PricingDescription *string         `json:"pricingDescription"`
	SelfServiceBuy     bool            `json:"selfServiceBuy"`
	SelfServiceCancel  bool            `json:"selfServiceCancel"`
	SelfServiceRenew   bool            `json:"selfServiceRenew"`
	ContactUsLabel     *string         `json:"contactUsLabel"`
	ContactUsURL       *string         `json:"contactUsUrl"`
	PriceLists         []PriceListNode `json:"priceLists"`
}

type PriceListNode struct {
	Code                  string       `json:"code"`
	Name                  string       `json:"name"`
	PriceDescription      *string      `json:"priceDescription"`
	IsVisible             bool         `json:"isVisible"`
	CurrencyID            string       `json:"currencyId"`
	PeriodMonths          *int         `json:"periodMonths"`
	SKU                   *string      `json:"sku"`
	TrialAllowed          bool         `json:"trialAllowed"`
	TrialLengthDays       *int         `json:"trialLengthDays"`
	TrialExpirationAction *string      `json:"trialExpirationAction"`
	Charges               []ChargeNode `json:"charges"`
}

type ChargeNode struct {
	Code                    string                 `json:"code"`
	Name                    string                 `json:"name"`
	AccountingCode          *string                `json:"accountingCode"`
	TaxCode                 *string                `json:"taxCode"`
	PriceDescription        *string                `json:"priceDescription"`
	SpecificInvoiceLineText *string                `json:"specificInvoiceLineText"`
	FeatureID               *string                `json:"featureId"`
	Feature                 *struct{ Code string } `json:"feature"`
	BillingPeriod           *string                `json:"billingPeriod"`
	ChargeType              *string                `json:"chargeType"`
	PricingModel            *string                `json:"pricingModel"`
	UsageCalculationType    *string                `json:"usageCalculationType"`
	QuantityMin             *int                   `json:"quantityMin"`
	QuantityMax             *int                   `json:"quantityMax"`
	SelfServiceQuantity     bool                   `json:"selfServiceQuantity"`
	RecognitionPeriod       *string                `json:"recognitionPeriod"`
	Price                   decimal.NullDecimal    `json:"price"`
	PriceDecimals           *int                   `json:"priceDecimals"`
	FeatureAddon            bool                   `json:"featureAddon"`
	RoundUpInterval         *int64                 `json:"roundUpInterval"`
	Tiers                   []TierNode             `json:"priceListChargeTiers"`
}

type TierNode struct {
	Starts *int            `json:"starts"`
	Price  decimal.Decimal `json:"price"`
}

// Product fetches one product graph by id or, when id is empty, by code.
func (c *Client) Product(ctx context.Context, id, code string) (*ProductGraph, error) {
	vars := map[string]any{}
	if id != "" {
		vars["id"] = id
	} else {
		vars["code"] = code
	}
	data, err := c.Query(ctx, productQuery, vars)
	if err != nil {
		return nil, err
	}
	var p ProductGraph
	ok, err := decodeField(data, "product", &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("product %s%s not found", id, code)
	}
	return &p, nil
}
