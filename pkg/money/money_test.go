package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromFloat(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     int64
		code     string
	}{
		{"simple decimal", 12.34, USD, 1234, USD},
		{"whole number", 100.00, EUR, 10000, EUR},
		{"negative", -50.99, USD, -5099, USD},
		{"half rounds away from zero", 12.345, USD, 1235, USD},
		{"negative half", -0.125, USD, -13, USD},
		{"zero decimal currency", 1500.6, "CLP", 1501, "CLP"},
		{"lowercase code", 7.5, " mxn ", 750, "MXN"},
		{"unknown code falls back", 1, "ZZZ", 100, USD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromFloat(tt.amount, tt.currency)
			require.NotNil(t, m.m)
			assert.Equal(t, tt.want, m.m.Amount())
			assert.Equal(t, tt.code, m.m.Currency().Code)
		})
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		contains string
	}{
		{"USD", 123.45, USD, "$"},
		{"EUR", 123.45, EUR, "€"},
		{"negative", -50, USD, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, NewFromFloat(tt.amount, tt.currency).Display(), tt.contains)
		})
	}

	var m *Money
	assert.Equal(t, "$0.00", m.Display())
}

func TestFixed2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{21, "21.00"},
		{10.5, "10.50"},
		{0.125, "0.13"},
		{-3.333, "-3.33"},
		{1234567.891, "1234567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fixed2(tt.in))
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"eur", true},
		{" MXN ", true},
		{USD, true},
		{"nope", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.code), tt.code)
	}
}
