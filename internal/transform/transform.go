// Package transform maps foreign product and subscription graphs onto the
// platform's import schema.
package transform

import (
	"github.com/bunnyapp/bunny-cli/internal/indexed"
	"github.com/bunnyapp/bunny-cli/internal/model"
)

// Skip is a source record left out of the output on purpose.
type Skip struct {
	Record string
	Reason string
}

// buildTiers pairs starts with prices and derives each tier's end from the
// next tier's start.
func buildTiers(starts []int, prices []*string) []model.PriceTier {
	ends := indexed.TierEnds(starts, model.InfiniteTierEnd)
	tiers := make([]model.PriceTier, len(starts))
	for i := range starts {
		tiers[i] = model.PriceTier{Starts: starts[i], Ends: ends[i], Price: prices[i]}
	}
	return tiers
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
