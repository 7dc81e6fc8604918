// Package model defines the catalog and order entities shared by the store,
// the dispatcher and the transports.
//
// This package imports nothing internal. Prices, rates and totals are
// shopspring decimals; they marshal to JSON as bare numbers so the UI sees
// 1.5 rather than "1.5".
//
// Key rules:
//   - Order totals are derived from line items, never stored
//   - Line items carry the unit price captured when they were inserted
//   - The current exchange rate is the most recently inserted snapshot
//   - All JSON tags use camelCase, matching the UI contract
package model
