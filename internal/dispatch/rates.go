package dispatch

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/roach88/navegante/internal/model"
)

// GetCurrentRate returns the most recently added rate, or nil if none exists.
func (d *Dispatcher) GetCurrentRate(ctx context.Context) (*model.ExchangeRate, error) {
	rate, found, err := d.store.Rates.Latest(ctx)
	if err != nil {
		return nil, storeFailure(OpGetCurrentRate, err)
	}
	if !found {
		return nil, nil
	}
	return &rate, nil
}

// AddRate appends a rate snapshot and returns its id.
func (d *Dispatcher) AddRate(ctx context.Context, req AddRate) (int64, error) {
	if err := model.ValidateRate("usdRate", req.USDRate); err != nil {
		return 0, invalid(OpAddRate, err)
	}
	if err := model.ValidateRate("meterRate", req.MeterRate); err != nil {
		return 0, invalid(OpAddRate, err)
	}
	id, err := d.store.Rates.Insert(ctx, req.USDRate, req.MeterRate)
	if err != nil {
		return 0, storeFailure(OpAddRate, err)
	}
	d.logger.Info("rate added", "id", id, "usd_rate", req.USDRate.String())
	return id, nil
}

// ListRates returns the rate history in insertion order.
func (d *Dispatcher) ListRates(ctx context.Context) ([]model.ExchangeRate, error) {
	rates, err := d.store.Rates.All(ctx)
	if err != nil {
		return nil, storeFailure(OpListRates, err)
	}
	return rates, nil
}

// Convert converts amount with the current rate. Returns nil if no rate exists.
func (d *Dispatcher) Convert(ctx context.Context, amount decimal.Decimal) (*model.Conversion, error) {
	if amount.IsNegative() {
		return nil, invalidf(OpConvert, "amount", "must be >= 0, got %s", amount)
	}
	rate, found, err := d.store.Rates.Latest(ctx)
	if err != nil {
		return nil, storeFailure(OpConvert, err)
	}
	if !found {
		return nil, nil
	}
	return &model.Conversion{
		Amount:    amount,
		USDRate:   rate.USDRate,
		Converted: model.Convert(amount, rate),
	}, nil
}
