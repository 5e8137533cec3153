package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already rounded", "10.50", "10.50"},
		{"truncates instead of rounding up", "10.999", "10.99"},
		{"truncates half cent", "0.125", "0.12"},
		{"negative truncates toward zero", "-1.239", "-1.23"},
		{"integer", "7", "7.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cents(decimal.RequireFromString(tt.input))
			assert.Equal(t, tt.want, got.StringFixed(MoneyPlaces))
		})
	}
}

func TestSumCents(t *testing.T) {
	got := SumCents(
		decimal.RequireFromString("0.333"),
		decimal.RequireFromString("0.333"),
		decimal.RequireFromString("0.333"),
	)
	assert.Equal(t, "0.99", got.StringFixed(MoneyPlaces))
	assert.True(t, SumCents().IsZero())
}
