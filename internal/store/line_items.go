package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/navegante/internal/model"
)

// LineItemRepo owns the order_line_items junction table.
type LineItemRepo struct {
	q Querier
}

// EnsureSchema creates the order_line_items table if absent.
func (r *LineItemRepo) EnsureSchema(ctx context.Context) error {
	return ensureTable(ctx, r.q, "004_order_line_items.sql")
}

// Insert adds a line item and returns its generated id.
// unitPrice is the product price at the moment of insertion.
func (r *LineItemRepo) Insert(ctx context.Context, orderID, productID, quantity int64, unitPrice decimal.Decimal) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO order_line_items (order_id, product_id, quantity, unit_price)
		VALUES (?, ?, ?, ?)
	`, orderID, productID, quantity, unitPrice)
	if err != nil {
		return 0, fmt.Errorf("insert line item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert line item: last insert id: %w", err)
	}
	return id, nil
}

// All returns every line item in insertion order.
func (r *LineItemRepo) All(ctx context.Context) ([]model.LineItem, error) {
	return r.list(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_line_items
		ORDER BY id ASC
	`)
}

// ByOrder returns the line items of one order in insertion order.
func (r *LineItemRepo) ByOrder(ctx context.Context, orderID int64) ([]model.LineItem, error) {
	return r.list(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_line_items
		WHERE order_id = ?
		ORDER BY id ASC
	`, orderID)
}

// LinesByOrder returns the line items of one order joined with product names.
func (r *LineItemRepo) LinesByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT li.id, li.product_id, p.name, li.quantity, li.unit_price
		FROM order_line_items li
		JOIN products p ON p.id = li.product_id
		WHERE li.order_id = ?
		ORDER BY li.id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	lines := []model.OrderLine{}
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		l.Subtotal = model.Subtotal(l.Quantity, l.UnitPrice)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}

// DeleteByOrder removes every line item of an order.
func (r *LineItemRepo) DeleteByOrder(ctx context.Context, orderID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM order_line_items WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete line items of order: %w", err)
	}
	return affected(res, "delete line items of order")
}

// CountByProduct returns how many line items reference a product.
func (r *LineItemRepo) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_line_items WHERE product_id = ?`, productID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count line items by product: %w", err)
	}
	return n, nil
}

// CountBySection returns how many line items reference any product of a section.
func (r *LineItemRepo) CountBySection(ctx context.Context, sectionID int64) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM order_line_items li
		JOIN products p ON p.id = li.product_id
		WHERE p.section_id = ?
	`, sectionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count line items by section: %w", err)
	}
	return n, nil
}

func (r *LineItemRepo) list(ctx context.Context, query string, args ...any) ([]model.LineItem, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	items := []model.LineItem{}
	for rows.Next() {
		var li model.LineItem
		if err := rows.Scan(&li.ID, &li.OrderID, &li.ProductID, &li.Quantity, &li.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}
	return items, nil
}
