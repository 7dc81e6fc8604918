package dispatch

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/navegante/internal/model"
)

// Op is the wire name of an operation.
type Op string

const (
	OpListSections         Op = "list-sections"
	OpListProducts         Op = "list-products"
	OpSectionsWithProducts Op = "sections-with-products"
	OpAddSection           Op = "add-section"
	OpEditSection          Op = "edit-section"
	OpDeleteSection        Op = "delete-section"
	OpAddProduct           Op = "add-product"
	OpDeleteProduct        Op = "delete-product"
	OpGetCurrentRate       Op = "get-current-rate"
	OpAddRate              Op = "add-rate"
	OpListRates            Op = "list-rates"
	OpSetOrderPaid         Op = "set-order-paid"
	OpAddOrder             Op = "add-order"
	OpListOrders           Op = "list-orders"
	OpGetOrder             Op = "get-order"
	OpDeleteOrder          Op = "delete-order"
	OpConvert              Op = "convert"
)

// Request is one operation with its arguments.
// The set of implementations is closed: only this package defines them.
type Request interface {
	Op() Op
	isRequest()
}

// ListSections reads every section.
type ListSections struct{}

// ListProducts reads every product.
type ListProducts struct{}

// SectionsWithProducts reads each section with its products nested.
type SectionsWithProducts struct{}

// AddSection creates a section. Result: new id.
type AddSection struct {
	Name string `json:"name"`
}

// EditSection renames a section.
type EditSection struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DeleteSection removes a section and its products.
type DeleteSection struct {
	ID int64 `json:"id"`
}

// AddProduct creates a product in an existing section. Result: new id.
type AddProduct struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	SectionID int64           `json:"sectionId"`
}

// DeleteProduct removes one product.
type DeleteProduct struct {
	ID int64 `json:"id"`
}

// GetCurrentRate reads the latest exchange rate, or nothing.
type GetCurrentRate struct{}

// AddRate appends an exchange rate snapshot. Result: new id.
type AddRate struct {
	USDRate   decimal.Decimal `json:"usdRate"`
	MeterRate decimal.Decimal `json:"meterRate"`
}

// ListRates reads the full rate history.
type ListRates struct{}

// SetOrderPaid toggles the payment flag of an order.
type SetOrderPaid struct {
	OrderID int64 `json:"orderId"`
	Paid    bool  `json:"paid"`
}

// AddOrder creates an order with its line items. Result: new id.
type AddOrder struct {
	CustomerName  string              `json:"customerName"`
	Phone         string              `json:"phone"`
	Date          *time.Time          `json:"date,omitempty"`
	Paid          bool                `json:"paid,omitempty"`
	ReferenceCode *string             `json:"referenceCode,omitempty"`
	Customization *string             `json:"customization,omitempty"`
	Longitude     *float64            `json:"longitude,omitempty"`
	Latitude      *float64            `json:"latitude,omitempty"`
	Items         []model.NewLineItem `json:"items"`
}

// ListOrders reads every order with its derived total.
type ListOrders struct{}

// GetOrder reads one order with lines and totals, or nothing.
type GetOrder struct {
	ID int64 `json:"id"`
}

// DeleteOrder removes an order and its line items.
type DeleteOrder struct {
	ID int64 `json:"id"`
}

// Convert converts an amount with the current rate.
type Convert struct {
	Amount decimal.Decimal `json:"amount"`
}

func (ListSections) Op() Op         { return OpListSections }
func (ListProducts) Op() Op         { return OpListProducts }
func (SectionsWithProducts) Op() Op { return OpSectionsWithProducts }
func (AddSection) Op() Op           { return OpAddSection }
func (EditSection) Op() Op          { return OpEditSection }
func (DeleteSection) Op() Op        { return OpDeleteSection }
func (AddProduct) Op() Op           { return OpAddProduct }
func (DeleteProduct) Op() Op        { return OpDeleteProduct }
func (GetCurrentRate) Op() Op       { return OpGetCurrentRate }
func (AddRate) Op() Op              { return OpAddRate }
func (ListRates) Op() Op            { return OpListRates }
func (SetOrderPaid) Op() Op         { return OpSetOrderPaid }
func (AddOrder) Op() Op             { return OpAddOrder }
func (ListOrders) Op() Op           { return OpListOrders }
func (GetOrder) Op() Op             { return OpGetOrder }
func (DeleteOrder) Op() Op          { return OpDeleteOrder }
func (Convert) Op() Op              { return OpConvert }

func (ListSections) isRequest()         {}
func (ListProducts) isRequest()         {}
func (SectionsWithProducts) isRequest() {}
func (AddSection) isRequest()           {}
func (EditSection) isRequest()          {}
func (DeleteSection) isRequest()        {}
func (AddProduct) isRequest()           {}
func (DeleteProduct) isRequest()        {}
func (GetCurrentRate) isRequest()       {}
func (AddRate) isRequest()              {}
func (ListRates) isRequest()            {}
func (SetOrderPaid) isRequest()         {}
func (AddOrder) isRequest()             {}
func (ListOrders) isRequest()           {}
func (GetOrder) isRequest()             {}
func (DeleteOrder) isRequest()          {}
func (Convert) isRequest()              {}
