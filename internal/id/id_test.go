package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"price_1Abc", "price_1Abc"},
		{"Pro Plan (EU)", "Pro_Plan_EU_"},
		{"a--b  c", "a_b_c"},
		{"émoji ✓ ok", "_moji_ok"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateCode(tt.input), "input: %q", tt.input)
	}
}

func TestChargeCode(t *testing.T) {
	assert.Equal(t, "price_123_charge", ChargeCode("price_123"))
	assert.Equal(t, "price_a_b_charge", ChargeCode("price.a-b"))
}
