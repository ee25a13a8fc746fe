package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/store"
)

// categoryColumns is the ordered list of columns selected in category
// queries. Must match the scan order in scanCategory.
const categoryColumns = `id, name, slug, created_at`

// scanCategory scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Category.
func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c         domain.Category
		createdAt string
	)

	if err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &createdAt); err != nil {
		return nil, err
	}

	var err error
	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.listCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
}

// ListSelectableCategories returns the categories an admin can assign to a
// profile, which excludes the "all" pseudo-category.
func (s *Store) ListSelectableCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.listCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE slug != ? ORDER BY name ASC`,
		domain.SlugAll)
}

func (s *Store) listCategories(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryBySlug retrieves a category by its slug.
// Returns store.ErrNotFound if no category matches.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
