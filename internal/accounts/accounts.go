package accounts

import (
	"github.com/bunnyapp/bunny-cli/internal/mapper"
	"github.com/bunnyapp/bunny-cli/internal/model"
)

// Attributes are the accountCreate attributes accepted from a CSV.
var Attributes = []string{
	"code", "accountTypeId", "industryId", "employees", "annualRevenue", "name",
	"billingStreet", "billingCity", "billingState", "billingZip", "billingCountry", "billingContactId",
	"shippingStreet", "shippingCity", "shippingState", "shippingZip", "shippingCountry",
	"description", "phone", "fax", "website", "currencyId", "taxNumber", "groupId",
	"netPaymentDays", "draftInvoices", "newQuoteBuilder", "duns", "timezone", "ownerUserId",
	"ipAddress", "entityUseCode", "linkedinUrl", "invoiceTemplateId", "entityId",
	"emailsEnabled", "disableDunning", "consolidatedBilling",
}

var boolAttributes = []string{
	"draftInvoices", "newQuoteBuilder", "emailsEnabled", "disableDunning", "consolidatedBilling",
}

var intAttributes = []string{"employees", "annualRevenue", "netPaymentDays"}

// Schema matches account columns case-insensitively.
var Schema = mapper.NewSchema(mapper.MatchFold, Attributes, boolAttributes, intAttributes)

// Identifier names an account record in summaries.
func Identifier(attrs model.AttributeSet) string {
	if n := attrs.String("name"); n != "" {
		return n
	}
	if c := attrs.String("code"); c != "" {
		return c
	}
	return "Unknown"
}
