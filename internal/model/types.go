package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Section is a named grouping of products.
type Section struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a sellable item. SectionID is fixed at creation time.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	SectionID int64           `json:"sectionId"`
}

// Order is a customer purchase record. Its total is derived from line items.
type Order struct {
	ID            int64     `json:"id"`
	CustomerName  string    `json:"customerName"`
	Phone         string    `json:"phone"`
	Date          time.Time `json:"date"`
	Paid          bool      `json:"paid"`
	ReferenceCode *string   `json:"referenceCode,omitempty"`
	Customization *string   `json:"customization,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
}

// LineItem attaches a quantity of a product to an order.
//
// UnitPrice is a snapshot of the product price when the line was inserted,
// so later price edits do not rewrite historical totals.
type LineItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ExchangeRate is an immutable rate snapshot. Rows are append-only.
type ExchangeRate struct {
	ID        int64           `json:"id"`
	USDRate   decimal.Decimal `json:"usdRate"`
	MeterRate decimal.Decimal `json:"meterRate"`
}

// ProductSummary is the product shape nested under a section listing.
type ProductSummary struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// SectionWithProducts is one entry of the sections-with-products listing.
type SectionWithProducts struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Products []ProductSummary `json:"products"`
}

// NewOrder holds the fields supplied when an order is created.
// A zero Date means "now" and is filled in by the caller's clock.
type NewOrder struct {
	CustomerName  string
	Phone         string
	Date          time.Time
	Paid          bool
	ReferenceCode *string
	Customization *string
	Longitude     *float64
	Latitude      *float64
}

// NewLineItem is a requested (product, quantity) pair on order creation.
type NewLineItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// OrderLine is a line item joined with its product name.
type OrderLine struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDetail is an order with its lines and derived totals.
// ConvertedTotal is nil when no exchange rate has been recorded.
type OrderDetail struct {
	Order          Order            `json:"order"`
	Items          []OrderLine      `json:"items"`
	Total          decimal.Decimal  `json:"total"`
	ConvertedTotal *decimal.Decimal `json:"convertedTotal,omitempty"`
}

// OrderSummary is one entry of the order listing.
type OrderSummary struct {
	Order Order           `json:"order"`
	Total decimal.Decimal `json:"total"`
}

// Conversion is the result of converting an amount with the current rate.
type Conversion struct {
	Amount    decimal.Decimal `json:"amount"`
	USDRate   decimal.Decimal `json:"usdRate"`
	Converted decimal.Decimal `json:"converted"`
}
