package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"7.5", "R$ 7,50"},
		{"81.3", "R$ 81,30"},
		{"999.999", "R$ 1.000,00"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.8", "R$ 1.234.567,80"},
		{"-15", "-R$ 15,00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBRL(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatDateLong(t *testing.T) {
	assert.Equal(t, "17 de outubro de 2026", FormatDateLong(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "03 de março de 2025", FormatDateLong(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/01/2026", FormatDate(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)))
}
