package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Schema version tracking:
// 0 - Initial tables
// 1 - Added lookup indexes on products.section_id and order_line_items
// 2 - Money columns rebuilt from REAL to decimal TEXT
const currentSchemaVersion = 2

// ErrNotFound is returned by single-row reads when no row matches.
var ErrNotFound = errors.New("not found")

// Querier is the subset of *sql.DB and *sql.Tx used by the repositories.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repos groups one repository per table, all bound to the same Querier.
type Repos struct {
	Sections  *SectionRepo
	Products  *ProductRepo
	Orders    *OrderRepo
	LineItems *LineItemRepo
	Rates     *RateRepo
}

func newRepos(q Querier) Repos {
	return Repos{
		Sections:  &SectionRepo{q: q},
		Products:  &ProductRepo{q: q},
		Orders:    &OrderRepo{q: q},
		LineItems: &LineItemRepo{q: q},
		Rates:     &RateRepo{q: q},
	}
}

// Store provides durable storage for the catalog.
// The embedded Repos run directly against the connection pool.
type Store struct {
	Repos
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas, creates missing tables and runs migrations.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// This also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s := New(db)
	ctx := context.Background()
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// New wraps an already configured connection without touching the schema.
func New(db *sql.DB) *Store {
	return &Store{Repos: newRepos(db), db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates every table that does not exist yet, parents first.
func (s *Store) EnsureSchema(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"sections", s.Sections.EnsureSchema},
		{"products", s.Products.EnsureSchema},
		{"orders", s.Orders.EnsureSchema},
		{"order_line_items", s.LineItems.EnsureSchema},
		{"exchange_rates", s.Rates.EnsureSchema},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s: %w", step.name, err)
		}
	}
	return nil
}

// WithTx runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise,
// including when fn panics.
func (s *Store) WithTx(ctx context.Context, fn func(r Repos) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(newRepos(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SchemaVersion returns the migration level recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(ctx, db); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := migrateToV2(ctx, db); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the lookup indexes used by the per-section and per-order reads.
func migrateToV1(ctx context.Context, db Querier) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_products_section ON products(section_id)`,
		`CREATE INDEX IF NOT EXISTS idx_line_items_order ON order_line_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_line_items_product ON order_line_items(product_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

// moneyTables lists the tables whose money columns moved from REAL to TEXT
// in v2, with the column list used to copy rows across.
var moneyTables = []struct {
	table, file, money, columns string
}{
	{"products", "002_products.sql", "price", "id, name, CAST(price AS TEXT), section_id"},
	{"order_line_items", "004_order_line_items.sql", "unit_price", "id, order_id, product_id, quantity, CAST(unit_price AS TEXT)"},
	{"exchange_rates", "005_exchange_rates.sql", "usd_rate", "id, CAST(usd_rate AS TEXT), CAST(meter_rate AS TEXT)"},
}

// migrateToV2 rebuilds tables created with REAL money columns so their
// values are stored as decimal text. Tables created by EnsureSchema with
// the current DDL are left alone.
//
// Foreign keys are switched off for the rebuild and back on afterwards;
// the pool holds a single connection so the pragma covers the transaction.
func migrateToV2(ctx context.Context, db *sql.DB) error {
	var stale []int
	for i, mt := range moneyTables {
		declared, err := columnType(ctx, db, mt.table, mt.money)
		if err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
		if strings.EqualFold(declared, "REAL") {
			stale = append(stale, i)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	defer db.ExecContext(ctx, "PRAGMA foreign_keys = ON")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate to v2: begin: %w", err)
	}
	defer tx.Rollback()

	for _, i := range stale {
		if err := rebuildTable(ctx, tx, moneyTables[i].table, moneyTables[i].file, moneyTables[i].columns); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}
	// Dropping the old tables dropped their v1 indexes.
	if err := migrateToV1(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v2: commit: %w", err)
	}
	return nil
}

// rebuildTable recreates table from its current DDL and copies the rows.
func rebuildTable(ctx context.Context, tx *sql.Tx, table, file, columns string) error {
	ddl, err := schemaFS.ReadFile("schema/" + file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	tmp := table + "_v2"
	create := strings.Replace(string(ddl),
		"CREATE TABLE IF NOT EXISTS "+table+" (",
		"CREATE TABLE "+tmp+" (", 1)

	stmts := []string{
		create,
		fmt.Sprintf("INSERT INTO %s SELECT %s FROM %s", tmp, columns, table),
		fmt.Sprintf("DROP TABLE %s", table),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tmp, table),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("rebuild %s: %w", table, err)
		}
	}
	return nil
}

// columnType returns the declared type of table.column.
func columnType(ctx context.Context, q Querier, table, column string) (string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return "", fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, kind string
			notNull    int
			dflt       sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &kind, &notNull, &dflt, &pk); err != nil {
			return "", fmt.Errorf("table_info %s: %w", table, err)
		}
		if name == column {
			return kind, nil
		}
	}
	return "", rows.Err()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// ensureTable executes the embedded DDL file for one table.
func ensureTable(ctx context.Context, q Querier, file string) error {
	ddl, err := schemaFS.ReadFile("schema/" + file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if _, err := q.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("exec %s: %w", file, err)
	}
	return nil
}

// affected returns RowsAffected, wrapping the error with op.
func affected(res sql.Result, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n, nil
}
