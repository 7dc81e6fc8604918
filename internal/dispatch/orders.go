package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/navegante/internal/model"
	"github.com/roach88/navegante/internal/store"
)

// AddOrder creates an order and its line items in one transaction and
// returns the order id. Each line captures the product's current price.
// A missing date defaults to the dispatcher clock.
func (d *Dispatcher) AddOrder(ctx context.Context, req AddOrder) (int64, error) {
	order := model.NewOrder{
		CustomerName:  model.NormalizeName(req.CustomerName),
		Phone:         model.NormalizeName(req.Phone),
		Date:          d.clock.Now(),
		Paid:          req.Paid,
		ReferenceCode: req.ReferenceCode,
		Customization: req.Customization,
		Longitude:     req.Longitude,
		Latitude:      req.Latitude,
	}
	if req.Date != nil && !req.Date.IsZero() {
		order.Date = *req.Date
	}
	if err := order.Validate(); err != nil {
		return 0, invalid(OpAddOrder, err)
	}
	if len(req.Items) == 0 {
		return 0, invalidf(OpAddOrder, "items", "an order needs at least one line item")
	}
	for i, item := range req.Items {
		if err := model.ValidateQuantity(item.Quantity); err != nil {
			return 0, invalidf(OpAddOrder, fmt.Sprintf("items[%d].quantity", i), "must be >= 1, got %d", item.Quantity)
		}
	}

	var orderID int64
	err := d.store.WithTx(ctx, func(r store.Repos) error {
		var err error
		if orderID, err = r.Orders.Insert(ctx, order); err != nil {
			return err
		}
		for i, item := range req.Items {
			product, err := r.Products.Get(ctx, item.ProductID)
			if errors.Is(err, store.ErrNotFound) {
				return invalidf(OpAddOrder, fmt.Sprintf("items[%d].productId", i), "product %d does not exist", item.ProductID)
			}
			if err != nil {
				return err
			}
			if _, err := r.LineItems.Insert(ctx, orderID, product.ID, item.Quantity, product.Price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, storeFailure(OpAddOrder, err)
	}
	d.logger.Info("order added", "id", orderID, "lines", len(req.Items))
	return orderID, nil
}

// ListOrders returns every order with its derived total.
func (d *Dispatcher) ListOrders(ctx context.Context) ([]model.OrderSummary, error) {
	orders, err := d.store.Orders.All(ctx)
	if err != nil {
		return nil, storeFailure(OpListOrders, err)
	}
	items, err := d.store.LineItems.All(ctx)
	if err != nil {
		return nil, storeFailure(OpListOrders, err)
	}

	byOrder := make(map[int64][]model.LineItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	summaries := make([]model.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, model.OrderSummary{Order: o, Total: model.Total(byOrder[o.ID])})
	}
	return summaries, nil
}

// GetOrder returns one order with its lines, total and, when a rate exists,
// the total converted with the current rate. Returns nil for an absent id.
func (d *Dispatcher) GetOrder(ctx context.Context, id int64) (*model.OrderDetail, error) {
	order, err := d.store.Orders.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure(OpGetOrder, err)
	}
	lines, err := d.store.LineItems.LinesByOrder(ctx, id)
	if err != nil {
		return nil, storeFailure(OpGetOrder, err)
	}

	detail := &model.OrderDetail{Order: order, Items: lines, Total: model.LinesTotal(lines)}

	rate, found, err := d.store.Rates.Latest(ctx)
	if err != nil {
		return nil, storeFailure(OpGetOrder, err)
	}
	if found {
		converted := model.Convert(detail.Total, rate)
		detail.ConvertedTotal = &converted
	}
	return detail, nil
}

// SetOrderPaid sets the payment flag. An absent id is a no-op.
func (d *Dispatcher) SetOrderPaid(ctx context.Context, orderID int64, paid bool) error {
	n, err := d.store.Orders.SetPaid(ctx, orderID, paid)
	if err != nil {
		return storeFailure(OpSetOrderPaid, err)
	}
	if n == 0 {
		d.logger.Debug("set-order-paid: no such order", "id", orderID)
		return nil
	}
	d.logger.Info("order payment updated", "id", orderID, "paid", paid)
	return nil
}

// DeleteOrder deletes an order and its line items in one transaction.
// An absent id is a no-op.
func (d *Dispatcher) DeleteOrder(ctx context.Context, id int64) error {
	err := d.store.WithTx(ctx, func(r store.Repos) error {
		if _, err := r.LineItems.DeleteByOrder(ctx, id); err != nil {
			return err
		}
		_, err := r.Orders.Delete(ctx, id)
		return err
	})
	if err != nil {
		return storeFailure(OpDeleteOrder, err)
	}
	return nil
}
