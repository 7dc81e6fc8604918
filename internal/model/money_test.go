package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotal_SumsQuantityTimesUnitPrice(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	}

	assert.True(t, Total(items).Equal(decimal.NewFromInt(25)), "got %s", Total(items))
}

func TestTotal_EmptyIsZero(t *testing.T) {
	assert.True(t, Total(nil).IsZero())
}

func TestTotal_KeepsDecimalPrecision(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("0.1")},
	}

	assert.Equal(t, "0.3", Total(items).String())
}

func TestConvert_MultipliesByUSDRate(t *testing.T) {
	rate := ExchangeRate{USDRate: decimal.NewFromInt(38), MeterRate: decimal.RequireFromString("0.9")}

	got := Convert(decimal.NewFromInt(10), rate)

	assert.Equal(t, "380", got.String())
}

func TestDecimalJSON_IsBareNumber(t *testing.T) {
	data, err := json.Marshal(ProductSummary{ID: 1, Name: "Agua", Price: decimal.RequireFromString("1.5")})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":1,"name":"Agua","price":1.5}`, string(data))
	assert.Contains(t, string(data), `"price":1.5`)
}

func TestLinesTotal_MatchesTotal(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	}
	lines := []OrderLine{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(10), Subtotal: Subtotal(2, decimal.NewFromInt(10))},
		{Quantity: 1, UnitPrice: decimal.NewFromInt(5), Subtotal: Subtotal(1, decimal.NewFromInt(5))},
	}

	assert.True(t, LinesTotal(lines).Equal(Total(items)))
}
