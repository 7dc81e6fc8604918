package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/navegante/internal/model"
)

// RateRepo owns the append-only exchange_rates table.
// There is no update or delete; a new rate is a new row.
type RateRepo struct {
	q Querier
}

// EnsureSchema creates the exchange_rates table if absent.
func (r *RateRepo) EnsureSchema(ctx context.Context) error {
	return ensureTable(ctx, r.q, "005_exchange_rates.sql")
}

// Insert appends a rate snapshot and returns its generated id.
func (r *RateRepo) Insert(ctx context.Context, usdRate, meterRate decimal.Decimal) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO exchange_rates (usd_rate, meter_rate) VALUES (?, ?)`,
		usdRate, meterRate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert rate: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert rate: last insert id: %w", err)
	}
	return id, nil
}

// All returns the full rate history in insertion order.
func (r *RateRepo) All(ctx context.Context) ([]model.ExchangeRate, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, usd_rate, meter_rate FROM exchange_rates ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	rates := []model.ExchangeRate{}
	for rows.Next() {
		var rate model.ExchangeRate
		if err := rows.Scan(&rate.ID, &rate.USDRate, &rate.MeterRate); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}
	return rates, nil
}

// Latest returns the most recently inserted rate.
// found is false when no rate has been recorded yet.
func (r *RateRepo) Latest(ctx context.Context) (rate model.ExchangeRate, found bool, err error) {
	err = r.q.QueryRowContext(ctx,
		`SELECT id, usd_rate, meter_rate FROM exchange_rates ORDER BY id DESC LIMIT 1`,
	).Scan(&rate.ID, &rate.USDRate, &rate.MeterRate)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExchangeRate{}, false, nil
	}
	if err != nil {
		return model.ExchangeRate{}, false, fmt.Errorf("latest rate: %w", err)
	}
	return rate, true, nil
}
