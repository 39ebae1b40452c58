package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bunnyapp/bunny-cli/internal/model"
)

const accountCreateMutation = `mutation accountCreate ($attributes: AccountAttributes!) {
  accountCreate (attributes: $attributes) {
    account { id code name }
    errors
  }
}`

const contactCreateMutation = `mutation contactCreate ($attributes: ContactAttributes!) {
  contactCreate (attributes: $attributes) {
    contact { id code firstName lastName fullName email accountId }
    errors
  }
}`

const subscriptionCreateMutation = `mutation subscriptionCreate ($attributes: SubscriptionAttributes!) {
  subscriptionCreate (attributes: $attributes) {
    subscription {
      id
      account { id name }
      startDate
      endDate
      trialStartDate
      state
      evergreen
      priceList { code name }
      tenant { id code name }
    }
    errors
  }
}`

const productImportMutation = `mutation productImport ($attributes: JSON!) {
  productImport (attributes: $attributes) {
    response
    errors
  }
}`

const recurringRevenueImportMutation = `mutation legacyRecurringRevenueImport ($source: String!) {
  legacyRecurringRevenueImport (source: $source) {
    errors
  }
}`

const entityUpdateMutation = `mutation entityUpdate ($id: ID!, $attributes: EntityAttributes!) {
  entityUpdate (id: $id, attributes: $attributes) {
    entity { id name brandColor accentColor }
    errors
  }
}`

type Account struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Contact struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	AccountID string `json:"accountId"`
}

type Subscription struct {
	ID        string  `json:"id"`
	Account   Account `json:"account"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	State     string  `json:"state"`
	Evergreen bool    `json:"evergreen"`
}

// ImportResponse is the free-form productImport response.
type ImportResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Raw     map[string]any `json:"-"`
}

func (r *ImportResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding import response: %w", err)
		}
		r.Message = s
		return nil
	}
	r.Raw = raw
	r.Status, _ = raw["status"].(string)
	r.Message, _ = raw["message"].(string)
	return nil
}

// EntityAttributes are the branding fields set by entityUpdate.
type EntityAttributes struct {
	BrandColor    string `json:"brandColor,omitempty"`
	AccentColor   string `json:"accentColor,omitempty"`
	EmailTemplate string `json:"emailTemplate,omitempty"`
}

// mutate runs a mutation and decodes its payload, collapsing GraphQL
// errors, a missing payload and payload errors into errors.
func mutate[P any](ctx context.Context, c *Client, document, field string, variables any) (*P, error) {
	data, err := c.Query(ctx, document, variables)
	if err != nil {
		return nil, err
	}
	var payload P
	ok, err := decodeField(data, field, &payload)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, MissingPayloadError{Field: field}
	}
	if pe, ok := any(&payload).(interface{ payloadErrors() PayloadErrors }); ok {
		if errs := pe.payloadErrors(); len(errs) > 0 {
			return nil, errs
		}
	}
	return &payload, nil
}

type payloadBase struct {
	Errors PayloadErrors `json:"errors"`
}

func (p *payloadBase) payloadErrors() PayloadErrors { return p.Errors }

type accountPayload struct {
	payloadBase
	Account *Account `json:"account"`
}

type contactPayload struct {
	payloadBase
	Contact *Contact `json:"contact"`
}

type subscriptionPayload struct {
	payloadBase
	Subscription *Subscription `json:"subscription"`
}

type productImportPayload struct {
	payloadBase
	Response *ImportResponse `json:"response"`
}

type entityPayload struct {
	payloadBase
	Entity *Entity `json:"entity"`
}

var errNoRecord = errors.New("mutation returned no record")

// CreateAccount runs accountCreate.
func (c *Client) CreateAccount(ctx context.Context, attrs model.AttributeSet) (*Account, error) {
	p, err := mutate[accountPayload](ctx, c, accountCreateMutation, "accountCreate", map[string]any{"attributes": attrs})
	if err != nil {
		return nil, err
	}
	if p.Account == nil {
		return nil, errNoRecord
	}
	return p.Account, nil
}

// CreateContact runs contactCreate.
func (c *Client) CreateContact(ctx context.Context, attrs model.AttributeSet) (*Contact, error) {
	p, err := mutate[contactPayload](ctx, c, contactCreateMutation, "contactCreate", map[string]any{"attributes": attrs})
	if err != nil {
		return nil, err
	}
	if p.Contact == nil {
		return nil, errNoRecord
	}
	return p.Contact, nil
}

// CreateSubscription runs subscriptionCreate.
func (c *Client) CreateSubscription(ctx context.Context, attrs *model.SubscriptionAttributes) (*Subscription, error) {
	p, err := mutate[subscriptionPayload](ctx, c, subscriptionCreateMutation, "subscriptionCreate", map[string]any{"attributes": attrs})
	if err != nil {
		return nil, err
	}
	if p.Subscription == nil {
		return nil, errNoRecord
	}
	return p.Subscription, nil
}

// ImportProducts runs productImport for doc.
func (c *Client) ImportProducts(ctx context.Context, doc model.ImportDocument) (*ImportResponse, error) {
	return c.importProducts(ctx, doc)
}

// ImportRawProduct runs productImport for one product sent exactly as given.
func (c *Client) ImportRawProduct(ctx context.Context, product json.RawMessage) (*ImportResponse, error) {
	return c.importProducts(ctx, map[string][]json.RawMessage{"products": {product}})
}

func (c *Client) importProducts(ctx context.Context, attrs any) (*ImportResponse, error) {
	p, err := mutate[productImportPayload](ctx, c, productImportMutation, "productImport", map[string]any{"attributes": attrs})
	if err != nil {
		return nil, err
	}
	if p.Response == nil {
		return &ImportResponse{}, nil
	}
	if p.Response.Status == "failed" {
		return nil, ImportFailedError{Message: p.Response.Message}
	}
	return p.Response, nil
}

// ImportRecurringRevenue sends a legacy MRR CSV verbatim.
func (c *Client) ImportRecurringRevenue(ctx context.Context, source string) error {
	_, err := mutate[payloadBase](ctx, c, recurringRevenueImportMutation, "legacyRecurringRevenueImport", map[string]any{"source": source})
	return err
}

// UpdateEntity runs entityUpdate.
func (c *Client) UpdateEntity(ctx context.Context, id string, attrs EntityAttributes) (*Entity, error) {
	p, err := mutate[entityPayload](ctx, c, entityUpdateMutation, "entityUpdate", map[string]any{"id": id, "attributes": attrs})
	if err != nil {
		return nil, err
	}
	return p.Entity, nil
}
