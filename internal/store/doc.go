// Package store provides SQLite-backed durable storage for the catalog and
// order data.
//
// The store holds five tables:
//   - sections: named product groupings
//   - products: priced items, each in one section
//   - orders: customer purchase records
//   - order_line_items: (order, product, quantity, unit price) junction rows
//   - exchange_rates: append-only currency rate snapshots
//
// # Repositories
//
// Each table is owned by one repository (SectionRepo, ProductRepo, OrderRepo,
// LineItemRepo, RateRepo). A repository creates its own table and exposes
// typed reads and writes. The same repository types run against the pooled
// connection or against a transaction opened by Store.WithTx.
//
// # Ordering
//
// Listings return rows in insertion order: ORDER BY id ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Backstop for references the dispatcher already checks
//
// Cascades (section → products, order → line items) are issued explicitly by
// callers inside WithTx. The schema declares no ON DELETE actions.
package store
