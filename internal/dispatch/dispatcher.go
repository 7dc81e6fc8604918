package dispatch

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/navegante/internal/model"
	"github.com/roach88/navegante/internal/store"
)

// CatalogSource is an alternate read-only origin for the two raw listings.
type CatalogSource interface {
	ListSections(ctx context.Context) ([]model.Section, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// Clock supplies the creation time of orders.
type Clock interface {
	Now() time.Time
}

// Observer receives one call per dispatched operation.
// status is "ok" or the failure Code.
type Observer interface {
	ObserveOperation(op string, status string, elapsed time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Dispatcher executes typed requests against the store.
type Dispatcher struct {
	store    *store.Store
	source   CatalogSource
	clock    Clock
	logger   *slog.Logger
	observer Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCatalogSource serves list-sections and list-products from src.
func WithCatalogSource(src CatalogSource) Option {
	return func(d *Dispatcher) { d.source = src }
}

// WithClock overrides the order creation clock (for testing).
func WithClock(c Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithObserver registers a per-operation observer, typically metrics.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// New creates a Dispatcher over st.
func New(st *store.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  st,
		clock:  systemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type requestIDKey struct{}

// WithRequestID attaches a correlation id that appears in dispatcher logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Dispatch executes req and returns its result.
//
// Results by request type:
//   - listings: slices (never nil)
//   - add-*: the new int64 id
//   - get-current-rate, get-order, convert: a pointer, nil when there is nothing to return
//   - edit/delete/set-paid: nil
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (any, error) {
	start := time.Now()
	op := req.Op()
	logger := d.logger.With("op", string(op))
	if id := RequestID(ctx); id != "" {
		logger = logger.With("request_id", id)
	}

	logger.Debug("dispatching operation")
	result, err := d.dispatch(ctx, req)

	status := "ok"
	if err != nil {
		status = string(CodeOf(err))
		logger.Error("operation failed", "code", status, "error", err)
	} else {
		logger.Debug("operation completed", "elapsed", time.Since(start))
	}
	if d.observer != nil {
		d.observer.ObserveOperation(string(op), status, time.Since(start))
	}
	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) (any, error) {
	switch r := req.(type) {
	case ListSections:
		return d.ListSections(ctx)
	case ListProducts:
		return d.ListProducts(ctx)
	case SectionsWithProducts:
		return d.SectionsWithProducts(ctx)
	case AddSection:
		return d.AddSection(ctx, r.Name)
	case EditSection:
		return nil, d.EditSection(ctx, r.ID, r.Name)
	case DeleteSection:
		return nil, d.DeleteSection(ctx, r.ID)
	case AddProduct:
		return d.AddProduct(ctx, r)
	case DeleteProduct:
		return nil, d.DeleteProduct(ctx, r.ID)
	case GetCurrentRate:
		return d.GetCurrentRate(ctx)
	case AddRate:
		return d.AddRate(ctx, r)
	case ListRates:
		return d.ListRates(ctx)
	case SetOrderPaid:
		return nil, d.SetOrderPaid(ctx, r.OrderID, r.Paid)
	case AddOrder:
		return d.AddOrder(ctx, r)
	case ListOrders:
		return d.ListOrders(ctx)
	case GetOrder:
		return d.GetOrder(ctx, r.ID)
	case DeleteOrder:
		return nil, d.DeleteOrder(ctx, r.ID)
	case Convert:
		return d.Convert(ctx, r.Amount)
	default:
		return nil, &Error{Code: CodeUnknownOperation, Op: req.Op(), Message: "unhandled request type"}
	}
}
