package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/navegante/internal/model"
)

type fakeSelector struct {
	bodies  map[string]string
	err     error
	queried []string
}

func (f *fakeSelector) Select(_ context.Context, table, query string) ([]byte, error) {
	f.queried = append(f.queried, table+"?"+query)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.bodies[table]), nil
}

func TestCatalog_ListSections(t *testing.T) {
	sel := &fakeSelector{bodies: map[string]string{
		DefaultSectionsTable: `[{"id":1,"nombre":"Bebidas"},{"id":2,"name":" Postres "}]`,
	}}
	c := NewCatalog(sel, "", "")

	got, err := c.ListSections(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.Section{{ID: 1, Name: "Bebidas"}, {ID: 2, Name: "Postres"}}, got)
	assert.Equal(t, []string{"secciones_navegante?select=*&order=id.asc"}, sel.queried)
}

func TestCatalog_ListProducts(t *testing.T) {
	sel := &fakeSelector{bodies: map[string]string{
		"productos": `[
			{"id":1,"nombre":"Agua","precio":1.50,"seccion_id":1},
			{"id":2,"name":"Jugo","price":"2.25","section_id":1}
		]`,
	}}
	c := NewCatalog(sel, "", "productos")

	got, err := c.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Agua", got[0].Name)
	assert.Equal(t, "1.5", got[0].Price.String())
	assert.Equal(t, int64(1), got[0].SectionID)
	assert.Equal(t, "Jugo", got[1].Name)
	assert.Equal(t, "2.25", got[1].Price.String())
}

func TestCatalog_EmptyTables(t *testing.T) {
	sel := &fakeSelector{bodies: map[string]string{
		DefaultSectionsTable: `[]`,
		DefaultProductsTable: `[]`,
	}}
	c := NewCatalog(sel, "", "")

	sections, err := c.ListSections(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sections)
	assert.Empty(t, sections)

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCatalog_MalformedResponses(t *testing.T) {
	tests := map[string]string{
		"not json":     `<html>`,
		"not an array": `{"id":1}`,
		"bad price":    `[{"id":1,"nombre":"Agua","precio":"gratis","seccion_id":1}]`,
		"no price":     `[{"id":1,"nombre":"Agua","seccion_id":1}]`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewCatalog(&fakeSelector{bodies: map[string]string{DefaultProductsTable: body}}, "", "")
			_, err := c.ListProducts(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestCatalog_PropagatesClientError(t *testing.T) {
	boom := errors.New("connection refused")
	c := NewCatalog(&fakeSelector{err: boom}, "", "")

	_, err := c.ListSections(context.Background())

	assert.ErrorIs(t, err, boom)
}
