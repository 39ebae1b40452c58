package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnyapp/bunny-cli/internal/importer"
	"github.com/bunnyapp/bunny-cli/internal/model"
)

func TestSchema_AccountsFixture(t *testing.T) {
	tbl, err := importer.DefaultRegistry().ReadFile("../../testdata/accounts.csv")
	require.NoError(t, err)

	recs := Schema.Map(tbl)
	require.Len(t, recs, 3)

	assert.Equal(t, model.AttributeSet{
		"name":          "Acme Corp",
		"code":          "ACME",
		"employees":     int64(1200),
		"draftInvoices": true,
		"website":       "https://acme.test",
	}, recs[0].Attributes)

	assert.Equal(t, model.AttributeSet{
		"name":          "Globex",
		"code":          "GLX",
		"draftInvoices": false,
	}, recs[1].Attributes)

	assert.Equal(t, 4, recs[2].Row)
	assert.Equal(t, int64(15), recs[2].Attributes["employees"])
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "Acme", Identifier(model.AttributeSet{"name": "Acme", "code": "A"}))
	assert.Equal(t, "A", Identifier(model.AttributeSet{"code": "A"}))
	assert.Equal(t, "Unknown", Identifier(model.AttributeSet{}))
}
