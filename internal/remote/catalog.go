package remote

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/roach88/navegante/internal/model"
)

// Default hosted table names.
const (
	DefaultSectionsTable = "secciones_navegante"
	DefaultProductsTable = "productos_navegante"
)

// Selector is the read capability Catalog needs.
type Selector interface {
	Select(ctx context.Context, table, query string) ([]byte, error)
}

// Catalog maps hosted rows onto the local model. It satisfies
// dispatch.CatalogSource.
type Catalog struct {
	client        Selector
	sectionsTable string
	productsTable string
}

// NewCatalog creates a Catalog. Empty table names use the defaults.
func NewCatalog(client Selector, sectionsTable, productsTable string) *Catalog {
	if sectionsTable == "" {
		sectionsTable = DefaultSectionsTable
	}
	if productsTable == "" {
		productsTable = DefaultProductsTable
	}
	return &Catalog{client: client, sectionsTable: sectionsTable, productsTable: productsTable}
}

// ListSections reads every hosted section ordered by id.
func (c *Catalog) ListSections(ctx context.Context) ([]model.Section, error) {
	body, err := c.client.Select(ctx, c.sectionsTable, "select=*&order=id.asc")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: invalid JSON response", c.sectionsTable)
	}
	rows := gjson.ParseBytes(body)
	if !rows.IsArray() {
		return nil, fmt.Errorf("%s: expected a JSON array", c.sectionsTable)
	}

	sections := make([]model.Section, 0, len(rows.Array()))
	for _, row := range rows.Array() {
		sections = append(sections, model.Section{
			ID:   row.Get("id").Int(),
			Name: model.NormalizeName(field(row, "nombre", "name").String()),
		})
	}
	return sections, nil
}

// ListProducts reads every hosted product ordered by id.
func (c *Catalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	body, err := c.client.Select(ctx, c.productsTable, "select=*&order=id.asc")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: invalid JSON response", c.productsTable)
	}
	rows := gjson.ParseBytes(body)
	if !rows.IsArray() {
		return nil, fmt.Errorf("%s: expected a JSON array", c.productsTable)
	}

	products := make([]model.Product, 0, len(rows.Array()))
	for i, row := range rows.Array() {
		// Raw keeps the exact digits for numbers; strings are unquoted.
		raw := field(row, "precio", "price")
		text := raw.Raw
		if raw.Type == gjson.String {
			text = raw.Str
		}
		price, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid price %q: %w", c.productsTable, i, raw.Raw, err)
		}
		products = append(products, model.Product{
			ID:        row.Get("id").Int(),
			Name:      model.NormalizeName(field(row, "nombre", "name").String()),
			Price:     price,
			SectionID: field(row, "seccion_id", "section_id").Int(),
		})
	}
	return products, nil
}

// field returns the first of keys present on row. Hosted tables use the
// Spanish column names; the English ones are accepted too.
func field(row gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := row.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}
