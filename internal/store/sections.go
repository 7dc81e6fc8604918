package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/navegante/internal/model"
)

// SectionRepo owns the sections table.
type SectionRepo struct {
	q Querier
}

// EnsureSchema creates the sections table if absent.
func (r *SectionRepo) EnsureSchema(ctx context.Context) error {
	return ensureTable(ctx, r.q, "001_sections.sql")
}

// Insert adds a section and returns its generated id.
func (r *SectionRepo) Insert(ctx context.Context, name string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `INSERT INTO sections (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert section: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert section: last insert id: %w", err)
	}
	return id, nil
}

// All returns every section in insertion order.
// Returns an empty slice (not nil) when the table is empty.
func (r *SectionRepo) All(ctx context.Context) ([]model.Section, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM sections ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	sections := []model.Section{}
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}
	return sections, nil
}

// Get returns one section. Returns ErrNotFound if the id is absent.
func (r *SectionRepo) Get(ctx context.Context, id int64) (model.Section, error) {
	var s model.Section
	err := r.q.QueryRowContext(ctx, `SELECT id, name FROM sections WHERE id = ?`, id).Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Section{}, fmt.Errorf("section %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Section{}, fmt.Errorf("get section: %w", err)
	}
	return s, nil
}

// Exists reports whether a section with id exists.
func (r *SectionRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM sections WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("check section: %w", err)
	}
	return count > 0, nil
}

// Rename sets the section name and returns the number of rows changed.
func (r *SectionRepo) Rename(ctx context.Context, id int64, name string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE sections SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return 0, fmt.Errorf("rename section: %w", err)
	}
	return affected(res, "rename section")
}

// Delete removes the section row only. Callers delete its products first.
func (r *SectionRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete section: %w", err)
	}
	return affected(res, "delete section")
}
