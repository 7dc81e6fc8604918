package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/navegante/internal/model"
)

// ProductRepo owns the products table.
type ProductRepo struct {
	q Querier
}

// EnsureSchema creates the products table if absent.
func (r *ProductRepo) EnsureSchema(ctx context.Context) error {
	return ensureTable(ctx, r.q, "002_products.sql")
}

// Insert adds a product and returns its generated id.
// The section must already exist; with foreign_keys=ON a dangling
// sectionID fails here, but callers are expected to check first.
func (r *ProductRepo) Insert(ctx context.Context, name string, price decimal.Decimal, sectionID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO products (name, price, section_id) VALUES (?, ?, ?)`,
		name, price, sectionID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert product: last insert id: %w", err)
	}
	return id, nil
}

// All returns every product in insertion order.
func (r *ProductRepo) All(ctx context.Context) ([]model.Product, error) {
	return r.list(ctx, `SELECT id, name, price, section_id FROM products ORDER BY id ASC`)
}

// BySection returns the products of one section in insertion order.
func (r *ProductRepo) BySection(ctx context.Context, sectionID int64) ([]model.Product, error) {
	return r.list(ctx,
		`SELECT id, name, price, section_id FROM products WHERE section_id = ? ORDER BY id ASC`,
		sectionID,
	)
}

// Get returns one product. Returns ErrNotFound if the id is absent.
func (r *ProductRepo) Get(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, price, section_id FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.SectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Delete removes one product and returns the number of rows removed.
func (r *ProductRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete product: %w", err)
	}
	return affected(res, "delete product")
}

// DeleteBySection removes every product of a section.
func (r *ProductRepo) DeleteBySection(ctx context.Context, sectionID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE section_id = ?`, sectionID)
	if err != nil {
		return 0, fmt.Errorf("delete products of section: %w", err)
	}
	return affected(res, "delete products of section")
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.SectionID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
