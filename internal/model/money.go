package model

import "github.com/shopspring/decimal"

func init() {
	// The UI reads prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Subtotal returns quantity × unitPrice.
func Subtotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// Total returns Σ(quantity × unitPrice) over items. An empty order totals zero.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(Subtotal(item.Quantity, item.UnitPrice))
	}
	return total
}

// Convert expresses amount in the secondary currency using rate.USDRate.
func Convert(amount decimal.Decimal, rate ExchangeRate) decimal.Decimal {
	return amount.Mul(rate.USDRate)
}

// LinesTotal returns the sum of line subtotals.
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return total
}
