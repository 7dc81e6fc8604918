package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

// createTestStore opens a fresh database file in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustSection inserts a section and fails the test on error.
func mustSection(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.Sections.Insert(context.Background(), name)
	if err != nil {
		t.Fatalf("insert section %q: %v", name, err)
	}
	return id
}

// mustProduct inserts a product and fails the test on error.
func mustProduct(t *testing.T, s *Store, name, price string, sectionID int64) int64 {
	t.Helper()
	id, err := s.Products.Insert(context.Background(), name, decimal.RequireFromString(price), sectionID)
	if err != nil {
		t.Fatalf("insert product %q: %v", name, err)
	}
	return id
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
