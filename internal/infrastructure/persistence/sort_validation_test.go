package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"ASC", "ASC"},
		{"  asc  ", "ASC"},
		{"desc", "DESC"},
		{"ASC; DROP TABLE budgets;--", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "created_at", ValidateSortField("", BudgetSortFields, "created_at"))
	assert.Equal(t, "total_amount", ValidateSortField(" total_amount ", BudgetSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password", BudgetSortFields, "created_at"))

	for _, payload := range []string{
		"number; DROP TABLE budgets;--",
		"number' OR '1'='1",
		"(SELECT 1)",
	} {
		assert.Equal(t, "created_at", ValidateSortField(payload, BudgetSortFields, "created_at"), payload)
	}
}
