package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/navegante/internal/model"
)

// OrderRepo owns the orders table.
type OrderRepo struct {
	q Querier
}

const orderColumns = `id, customer_name, phone, placed_at, paid, reference_code, customization, longitude, latitude`

// EnsureSchema creates the orders table if absent.
func (r *OrderRepo) EnsureSchema(ctx context.Context) error {
	return ensureTable(ctx, r.q, "003_orders.sql")
}

// Insert adds an order header and returns its generated id.
// o.Date is stored as given (UTC); callers fill in the creation time.
func (r *OrderRepo) Insert(ctx context.Context, o model.NewOrder) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO orders
		(customer_name, phone, placed_at, paid, reference_code, customization, longitude, latitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.CustomerName,
		o.Phone,
		o.Date.UTC(),
		o.Paid,
		nullString(o.ReferenceCode),
		nullString(o.Customization),
		nullFloat(o.Longitude),
		nullFloat(o.Latitude),
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert order: last insert id: %w", err)
	}
	return id, nil
}

// All returns every order in insertion order.
func (r *OrderRepo) All(ctx context.Context) ([]model.Order, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// Get returns one order. Returns ErrNotFound if the id is absent.
func (r *OrderRepo) Get(ctx context.Context, id int64) (model.Order, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return o, err
}

// SetPaid updates the payment flag and returns the number of rows changed.
func (r *OrderRepo) SetPaid(ctx context.Context, id int64, paid bool) (int64, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE orders SET paid = ? WHERE id = ?`, paid, id)
	if err != nil {
		return 0, fmt.Errorf("set order paid: %w", err)
	}
	return affected(res, "set order paid")
}

// Delete removes the order row only. Callers delete its line items first.
func (r *OrderRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete order: %w", err)
	}
	return affected(res, "delete order")
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (model.Order, error) {
	var (
		o           model.Order
		ref, custom sql.NullString
		lon, lat    sql.NullFloat64
	)
	err := s.Scan(&o.ID, &o.CustomerName, &o.Phone, &o.Date, &o.Paid, &ref, &custom, &lon, &lat)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, err
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("scan order: %w", err)
	}
	o.Date = o.Date.UTC()
	o.ReferenceCode = stringPtr(ref)
	o.Customization = stringPtr(custom)
	o.Longitude = floatPtr(lon)
	o.Latitude = floatPtr(lat)
	return o, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
