package dispatch

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roach88/navegante/internal/model"
	"github.com/roach88/navegante/internal/store"
	"github.com/roach88/navegante/internal/testutil"
)

// newTestDispatcher opens a fresh store and wraps it with a step clock.
func newTestDispatcher(t *testing.T, opts ...Option) (*Dispatcher, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	opts = append([]Option{WithClock(testutil.NewStepClock(time.Time{}, time.Minute))}, opts...)
	return New(st, opts...), st
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustDispatch(t *testing.T, d *Dispatcher, req Request) any {
	t.Helper()
	result, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err, "dispatch %s", req.Op())
	return result
}

func mustID(t *testing.T, d *Dispatcher, req Request) int64 {
	t.Helper()
	id, ok := mustDispatch(t, d, req).(int64)
	require.True(t, ok, "%s did not return an id", req.Op())
	return id
}

func sections(t *testing.T, d *Dispatcher) []model.Section {
	t.Helper()
	return mustDispatch(t, d, ListSections{}).([]model.Section)
}

func products(t *testing.T, d *Dispatcher) []model.Product {
	t.Helper()
	return mustDispatch(t, d, ListProducts{}).([]model.Product)
}
