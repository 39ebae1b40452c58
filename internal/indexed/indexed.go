// Package indexed reads repeating column groups such as "Charge 2 Amount"
// and "Charge 2 Tier 0 Price" from a flat row.
package indexed

import (
	"iter"
	"strconv"

	"github.com/bunnyapp/bunny-cli/internal/importer"
)

// Group is the N-th occurrence of a named column group in a row.
type Group struct {
	row    importer.Row
	prefix string
	Index  int // 1-based
}

// Field returns "<name> <N> <field>" and whether the column is present.
func (g Group) Field(field string) (string, bool) {
	return g.row.Get(g.prefix + field)
}

// Value returns the field's raw value, or "".
func (g Group) Value(field string) string {
	v, _ := g.Field(field)
	return v
}

// Column returns the column name for field in this group.
func (g Group) Column(field string) string {
	return g.prefix + field
}

// Groups yields name 1, name 2, ... until the first group whose Code
// column is missing or empty.
func Groups(row importer.Row, name string) iter.Seq[Group] {
	return func(yield func(Group) bool) {
		for n := 1; ; n++ {
			g := Group{row: row, prefix: name + " " + strconv.Itoa(n) + " ", Index: n}
			if g.Value("Code") == "" {
				return
			}
			if !yield(g) {
				return
			}
		}
	}
}

// Tier is the M-th tier of a group. Start is its normalized "Quantity From".
type Tier struct {
	Group
	Start int
}

// Tiers yields the tiers of g from Tier 0 until the first one whose
// Quantity From is missing or not a non-negative integer. A start of 0
// is reported as 1.
func (g Group) Tiers() iter.Seq[Tier] {
	return func(yield func(Tier) bool) {
		for m := 0; ; m++ {
			t := Group{row: g.row, prefix: g.prefix + "Tier " + strconv.Itoa(m) + " ", Index: m}
			start, ok := tierStart(t.Value("Quantity From"))
			if !ok {
				return
			}
			if !yield(Tier{Group: t, Start: start}) {
				return
			}
		}
	}
}

func tierStart(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	if n == 0 {
		return 1, true
	}
	return n, true
}

// TierEnds derives each tier's end from the next tier's start. The last
// tier is open-ended and gets infinite.
func TierEnds(starts []int, infinite int) []int {
	ends := make([]int, len(starts))
	for i := range starts {
		if i == len(starts)-1 {
			ends[i] = infinite
			continue
		}
		ends[i] = starts[i+1] - 1
	}
	return ends
}
