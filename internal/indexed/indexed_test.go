package indexed

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnyapp/bunny-cli/internal/importer"
)

func TestGroups(t *testing.T) {
	row := importer.Row{
		"Charge 1 Code":   "A",
		"Charge 1 Amount": "1",
		"Charge 2 Code":   "B",
		"Charge 3 Code":   "",
		"Charge 4 Code":   "D",
	}

	groups := slices.Collect(Groups(row, "Charge"))
	require.Len(t, groups, 2, "iteration stops at the first empty code")
	assert.Equal(t, 1, groups[0].Index)
	assert.Equal(t, "1", groups[0].Value("Amount"))
	assert.Equal(t, "B", groups[1].Value("Code"))

	_, ok := groups[1].Field("Amount")
	assert.False(t, ok)
	assert.Equal(t, "Charge 2 Amount", groups[1].Column("Amount"))
}

func TestGroups_Empty(t *testing.T) {
	assert.Empty(t, slices.Collect(Groups(importer.Row{"Discount 2 Code": "X"}, "Discount")))
}

func TestGroups_EarlyBreak(t *testing.T) {
	row := importer.Row{"Charge 1 Code": "A", "Charge 2 Code": "B"}
	var seen []int
	for g := range Groups(row, "Charge") {
		seen = append(seen, g.Index)
		break
	}
	assert.Equal(t, []int{1}, seen)
}

func TestTiers(t *testing.T) {
	row := importer.Row{
		"Charge 1 Code":                 "SEATS",
		"Charge 1 Tier 0 Quantity From": "0",
		"Charge 1 Tier 0 Price":         "10",
		"Charge 1 Tier 1 Quantity From": "11",
		"Charge 1 Tier 1 Price":         "8",
		"Charge 1 Tier 2 Quantity From": "abc",
		"Charge 1 Tier 3 Quantity From": "50",
	}

	groups := slices.Collect(Groups(row, "Charge"))
	require.Len(t, groups, 1)
	tiers := slices.Collect(groups[0].Tiers())
	require.Len(t, tiers, 2)
	assert.Equal(t, 1, tiers[0].Start, "0 is normalized to 1")
	assert.Equal(t, "10", tiers[0].Value("Price"))
	assert.Equal(t, 11, tiers[1].Start)
	assert.Equal(t, "8", tiers[1].Value("Price"))
	assert.Equal(t, 1, tiers[1].Index)
}

func TestTiers_MissingStart(t *testing.T) {
	row := importer.Row{"Charge 1 Code": "X", "Charge 1 Tier 0 Price": "3"}
	for g := range Groups(row, "Charge") {
		assert.Empty(t, slices.Collect(g.Tiers()))
	}
}

func TestTierEnds(t *testing.T) {
	tests := []struct {
		starts []int
		want   []int
	}{
		{[]int{1}, []int{999999999}},
		{[]int{1, 11}, []int{10, 999999999}},
		{[]int{1, 5, 20, 100}, []int{4, 19, 99, 999999999}},
		{nil, []int{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierEnds(tt.starts, 999999999))
	}
}
