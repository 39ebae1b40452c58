// Package id derives platform codes from foreign identifiers and names.
package id

import (
	"regexp"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// GenerateCode replaces every run of characters outside [a-zA-Z0-9] with a
// single underscore: "Pro Plan (EU)" -> "Pro_Plan_EU_".
func GenerateCode(name string) string {
	return nonAlnum.ReplaceAllString(name, "_")
}

// ChargeCode is the code of the single charge created for a foreign price.
// Catalog and subscription migrations must agree on it.
func ChargeCode(priceID string) string {
	return GenerateCode(priceID + "_charge")
}
