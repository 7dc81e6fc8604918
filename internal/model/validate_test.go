package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  Bebidas \n", "Bebidas"},
		{"composes accents", "Cafe\u0301", "Caf\u00e9"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice(decimal.Zero))
	assert.NoError(t, ValidatePrice(decimal.RequireFromString("1.5")))

	err := ValidatePrice(decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "price")
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, ValidateRate("usdRate", decimal.NewFromInt(38)))
	assert.Error(t, ValidateRate("usdRate", decimal.Zero))
	assert.Error(t, ValidateRate("meterRate", decimal.NewFromInt(-2)))
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity(1))
	assert.Error(t, ValidateQuantity(0))
	assert.Error(t, ValidateQuantity(-3))
}

func TestNewOrderValidate(t *testing.T) {
	lat := 10.5
	badLat := 91.0
	badLon := -181.0

	tests := []struct {
		name  string
		order NewOrder
		field string
	}{
		{"valid", NewOrder{CustomerName: "Ana", Phone: "0414", Latitude: &lat}, ""},
		{"missing customer", NewOrder{Phone: "0414"}, "customerName"},
		{"missing phone", NewOrder{CustomerName: "Ana", Phone: " "}, "phone"},
		{"latitude out of range", NewOrder{CustomerName: "Ana", Phone: "1", Latitude: &badLat}, "latitude"},
		{"longitude out of range", NewOrder{CustomerName: "Ana", Phone: "1", Longitude: &badLon}, "longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestIsValidationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("add product: %w", &ValidationError{Field: "name", Message: "must not be empty"})
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("boom")))
}
