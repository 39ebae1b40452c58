package contacts

import (
	"fmt"
	"strings"

	"github.com/bunnyapp/bunny-cli/internal/mapper"
	"github.com/bunnyapp/bunny-cli/internal/model"
)

// Attributes are the contactCreate attributes accepted from a CSV.
var Attributes = []string{
	"code", "firstName", "lastName", "email", "salutation", "title", "phone", "mobile",
	"mailingStreet", "mailingCity", "mailingZip", "mailingState", "mailingCountry",
	"portalAccess", "description", "accountId", "accountCode", "campaignCode", "linkedinUrl",
}

// Schema matches contact columns exactly (after trimming).
var Schema = mapper.NewSchema(mapper.MatchExact, Attributes, []string{"portalAccess"}, nil)

const (
	ReasonMissingAccount   = "Missing required field - must have either accountId or accountCode"
	ReasonMissingFirstName = "Missing required field - firstName cannot be blank"
)

// Skipped is a contact row excluded before import.
type Skipped struct {
	Row        int
	Identifier string
	Reason     string
}

// Prepare applies the required-field rules. accountId takes precedence over
// accountCode when both are present.
func Prepare(recs []mapper.Record) (valid []mapper.Record, skipped []Skipped) {
	for _, rec := range recs {
		attrs := rec.Attributes
		switch {
		case !attrs.Has("accountId") && !attrs.Has("accountCode"):
			skipped = append(skipped, Skipped{Row: rec.Row, Identifier: RowIdentifier(rec), Reason: ReasonMissingAccount})
			continue
		case attrs.String("firstName") == "":
			skipped = append(skipped, Skipped{Row: rec.Row, Identifier: RowIdentifier(rec), Reason: ReasonMissingFirstName})
			continue
		}
		if attrs.Has("accountId") {
			delete(attrs, "accountCode")
		}
		valid = append(valid, rec)
	}
	return valid, skipped
}

// RowIdentifier names a contact row in the skipped list.
func RowIdentifier(rec mapper.Record) string {
	if e := rec.Attributes.String("email"); e != "" {
		return e
	}
	if n := fullName(rec.Attributes); n != "" {
		return n
	}
	return fmt.Sprintf("Row %d", rec.Row)
}

// Identifier names a submitted contact in the import summary.
func Identifier(attrs model.AttributeSet) string {
	if n := fullName(attrs); n != "" {
		return n
	}
	if e := attrs.String("email"); e != "" {
		return e
	}
	return "Unknown"
}

func fullName(attrs model.AttributeSet) string {
	return strings.TrimSpace(attrs.String("firstName") + " " + attrs.String("lastName"))
}
