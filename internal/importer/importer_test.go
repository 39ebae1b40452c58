package importer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVParser_Parse(t *testing.T) {
	f, err := os.Open("../../testdata/subscriptions.csv")
	require.NoError(t, err)
	defer f.Close()

	tbl, err := (&CSVParser{}).Parse(f)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Header, 43)

	first := tbl.Rows[0]
	assert.Equal(t, "PL_PRO", first.Value("Price List Code"))
	assert.Equal(t, " ada@example.com ", first.Value("Billing Contact Email"))
	assert.Equal(t, "ada@example.com", first.Trimmed("Billing Contact Email"))
	assert.Equal(t, "-1,000.00", first.Value("Discount 1 Amount"))

	// Second row is ragged: trailing columns are absent rather than empty.
	second := tbl.Rows[1]
	_, ok := second.Get("Charge 1 Effective Start Date")
	assert.False(t, ok)
	v, ok := second.Get("Tenant Code")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestCSVParser_HeaderVerbatim(t *testing.T) {
	in := "\ufeffName , code\nAcme,ACME,extra\n"
	tbl, err := (&CSVParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name ", " code"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, Row{"Name ": "Acme", " code": "ACME"}, tbl.Rows[0])
}

func TestCSVParser_Errors(t *testing.T) {
	_, err := (&CSVParser{}).Parse(strings.NewReader(""))
	assert.ErrorContains(t, err, "missing header")

	_, err = (&CSVParser{}).Parse(strings.NewReader("a,b\n1,x\"y\n"))
	assert.Error(t, err)
}

func TestCSVParser_Count(t *testing.T) {
	n, err := (&CSVParser{}).Count(strings.NewReader("a,b\n1,2\n3\n\n4,5\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = (&CSVParser{}).Count(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTable_Record(t *testing.T) {
	tbl := &Table{Header: []string{"a", "b", "c"}}
	assert.Equal(t, []string{"1", "", "3"}, tbl.Record(Row{"a": "1", "c": "3", "z": "9"}))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	p, err := r.ForPath("data/Accounts.CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", p.Format())

	p, err = r.ForPath("export.tsv")
	require.NoError(t, err)
	assert.Equal(t, "tsv", p.Format())

	_, err = r.ForPath("export.xlsx")
	assert.ErrorContains(t, err, "unsupported file type")

	assert.Panics(t, func() { r.Register(&CSVParser{}) })
}

func TestRegistry_ReadAndCountFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.tsv")
	require.NoError(t, os.WriteFile(path, []byte("firstName\temail\nAda\tada@example.com\nGrace\n"), 0o644))

	r := DefaultRegistry()
	tbl, err := r.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "ada@example.com", tbl.Rows[0].Value("email"))

	n, err := r.CountFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(tbl.Rows), n)

	_, err = r.ReadFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorContains(t, err, "opening")
}

func TestParseDocument(t *testing.T) {
	doc, err := ReadDocument("../../testdata/products.json")
	require.NoError(t, err)
	require.Len(t, doc.Products, 1)

	p := doc.Products[0]
	assert.Equal(t, "Analytics", p.Name)
	require.Len(t, p.Plans, 1)
	charges := p.Plans[0].PriceLists[0].Charges
	require.Len(t, charges, 1)
	require.Len(t, charges[0].Tiers, 2)
	assert.Equal(t, 999999999, charges[0].Tiers[1].Ends)
	assert.Equal(t, "3.00", *charges[0].Tiers[1].Price)
}

func TestParseDocument_KeepsProductsAsWritten(t *testing.T) {
	in := `{"products": [{
		"name": "Analytics",
		"product_category_code": "SAAS",
		"plans": [{"code": "p", "name": "P", "price_lists": [{"code": "l", "name": "L", "currency_id": "USD",
			"price_list_charges": [{"code": "c", "price": 10.5}]}]}]
	}]}`
	doc, err := ParseDocument(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, doc.Products, 1)

	p := doc.Products[0]
	assert.Equal(t, "Analytics", p.Name)
	assert.Equal(t, "10.5", *p.Plans[0].PriceLists[0].Charges[0].Price)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(p.Raw, &sent))
	assert.Equal(t, "SAAS", sent["product_category_code"])
	assert.NotContains(t, sent, "internal_notes")
	charge := sent["plans"].([]any)[0].(map[string]any)["price_lists"].([]any)[0].(map[string]any)["price_list_charges"].([]any)[0].(map[string]any)
	assert.Equal(t, 10.5, charge["price"])
	assert.NotContains(t, charge, "quantity_min")
	assert.NotContains(t, charge, "charge_type")
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"syntax", `{"products": [`, "decoding"},
		{"empty", `{"products": []}`, "invalid products document"},
		{"missing plan code", `{"products": [{"name": "X", "plans": [{"name": "P"}]}]}`, "invalid products document"},
		{"bad pricing model", `{"products": [{"name": "X", "plans": [{"code": "p", "name": "P", "price_lists": [{"code": "l", "name": "L", "currency_id": "USD", "price_list_charges": [{"code": "c", "pricing_model": "stairstep"}]}]}]}]}`, "invalid products document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(strings.NewReader(tt.in))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
