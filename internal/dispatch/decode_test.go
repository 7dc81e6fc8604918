package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ObjectArguments(t *testing.T) {
	req, err := Decode("add-product", json.RawMessage(`{"name":"Agua","price":1.5,"sectionId":1}`))
	require.NoError(t, err)

	p, ok := req.(AddProduct)
	require.True(t, ok)
	assert.Equal(t, "Agua", p.Name)
	assert.Equal(t, "1.5", p.Price.String())
	assert.Equal(t, int64(1), p.SectionID)
}

func TestDecode_BareValues(t *testing.T) {
	tests := []struct {
		op   string
		args string
		want Request
	}{
		{"add-section", `"Bebidas"`, AddSection{Name: "Bebidas"}},
		{"add-section", `{"name":"Bebidas"}`, AddSection{Name: "Bebidas"}},
		{"delete-section", `3`, DeleteSection{ID: 3}},
		{"delete-section", `{"id":3}`, DeleteSection{ID: 3}},
		{"delete-product", `4`, DeleteProduct{ID: 4}},
		{"get-order", `5`, GetOrder{ID: 5}},
		{"delete-order", `{"id":6}`, DeleteOrder{ID: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.op+" "+tt.args, func(t *testing.T) {
			got, err := Decode(tt.op, json.RawMessage(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_EmptyArgsGiveZeroRequest(t *testing.T) {
	for _, args := range []string{"", "null", "  "} {
		got, err := Decode("list-sections", json.RawMessage(args))
		require.NoError(t, err)
		assert.Equal(t, ListSections{}, got)
	}
}

func TestDecode_UnknownOperation(t *testing.T) {
	_, err := Decode("drop-database", nil)

	require.Error(t, err)
	assert.Equal(t, CodeUnknownOperation, CodeOf(err))
}

func TestDecode_BadArguments(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args string
	}{
		{"unknown field", "add-rate", `{"usdRate":38,"meterRate":1,"extra":true}`},
		{"wrong type", "delete-section", `"three"`},
		{"malformed", "add-product", `{"name":`},
		{"unknown field in id object", "delete-product", `{"productId":1}`},
		{"trailing data", "edit-section", `{"id":1,"name":"x"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.op, json.RawMessage(tt.args))
			require.Error(t, err)
			assert.Equal(t, CodeBadRequest, CodeOf(err))
		})
	}
}

func TestOperations_CoverEveryRequest(t *testing.T) {
	ops := Operations()

	assert.Len(t, ops, 17)
	assert.Contains(t, ops, "sections-with-products")
	assert.Contains(t, ops, "set-order-paid")
	assert.IsIncreasing(t, ops)
}
