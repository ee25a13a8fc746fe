package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile
// queries. Must match the scan order in scanProfile.
const profileColumns = `id, name, description, cover_image, created_at, featured`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Profile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var (
		p           domain.Profile
		description sql.NullString
		coverImage  sql.NullString
		createdAt   string
		featured    int
	)

	err := scanner.Scan(&p.ID, &p.Name, &description, &coverImage, &createdAt, &featured)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.CoverImage = coverImage.String
	p.Featured = featured != 0

	return &p, nil
}

// CreateProfile inserts a new profile and assigns its generated id.
func (s *Store) CreateProfile(ctx context.Context, p *domain.Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (name, description, cover_image, created_at, featured)
		VALUES (?, ?, ?, ?, ?)`,
		p.Name,
		nullString(p.Description),
		nullString(p.CoverImage),
		formatTime(p.CreatedAt),
		boolToInt(p.Featured),
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("profile last insert id: %w", err)
	}
	return nil
}

// UpdateProfile updates the mutable fields of an existing profile.
// Returns store.ErrNotFound if the profile does not exist.
func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET name = ?, description = ?, featured = ?
		WHERE id = ?`,
		p.Name,
		nullString(p.Description),
		boolToInt(p.Featured),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetProfile retrieves a profile by id.
// Returns store.ErrNotFound if the profile does not exist.
func (s *Store) GetProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProfiles returns all profiles, newest-created first.
func (s *Store) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ListProfileSummaries returns profiles annotated with aggregated category
// names/slugs and a media count, newest-created first. A non-empty slug
// other than "all" restricts the result to profiles having at least one
// association with that category; the annotations still cover the full
// category set of each matching profile.
func (s *Store) ListProfileSummaries(ctx context.Context, categorySlug string) ([]*domain.ProfileSummary, error) {
	query := `
		SELECT p.id, p.name, p.description, p.cover_image, p.created_at, p.featured,
		       COALESCE(GROUP_CONCAT(c.name), '') AS category_names,
		       COALESCE(GROUP_CONCAT(c.slug), '') AS category_slugs,
		       (SELECT COUNT(*) FROM media m WHERE m.profile_id = p.id) AS media_count
		FROM profiles p
		LEFT JOIN profile_categories pc ON pc.profile_id = p.id
		LEFT JOIN categories c ON c.id = pc.category_id`

	var args []any
	if categorySlug != "" && categorySlug != domain.SlugAll {
		query += `
		WHERE p.id IN (
			SELECT pc2.profile_id
			FROM profile_categories pc2
			JOIN categories c2 ON c2.id = pc2.category_id
			WHERE c2.slug = ?
		)`
		args = append(args, categorySlug)
	}

	query += `
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query profile summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.ProfileSummary
	for rows.Next() {
		var (
			sum         domain.ProfileSummary
			description sql.NullString
			coverImage  sql.NullString
			createdAt   string
			featured    int
		)
		err := rows.Scan(
			&sum.ID, &sum.Name, &description, &coverImage, &createdAt, &featured,
			&sum.CategoryNames, &sum.CategorySlugs, &sum.MediaCount,
		)
		if err != nil {
			return nil, err
		}
		sum.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		sum.Description = description.String
		sum.CoverImage = coverImage.String
		sum.Featured = featured != 0

		summaries = append(summaries, &sum)
	}
	return summaries, rows.Err()
}

// GetProfileCategoryNames returns the comma-joined category names of a
// profile, "" if it has none.
func (s *Store) GetProfileCategoryNames(ctx context.Context, profileID int64) (string, error) {
	var names string
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(GROUP_CONCAT(c.name), '')
		FROM profile_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.profile_id = ?`,
		profileID).Scan(&names)
	if err != nil {
		return "", fmt.Errorf("query profile category names: %w", err)
	}
	return names, nil
}

// GetProfileCategoryIDs returns the ids of the categories associated with
// a profile.
func (s *Store) GetProfileCategoryIDs(ctx context.Context, profileID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id FROM profile_categories WHERE profile_id = ?`,
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetProfileCategories replaces all category associations for a profile in
// a single transaction. It deletes existing profile_categories rows for
// the profile, then inserts the new set.
func (s *Store) SetProfileCategories(ctx context.Context, profileID int64, categoryIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM profile_categories WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("delete profile_categories: %w", err)
	}

	for _, categoryID := range categoryIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profile_categories (profile_id, category_id)
			VALUES (?, ?)`,
			profileID, categoryID)
		if err != nil {
			return fmt.Errorf("insert profile_categories: %w", err)
		}
	}

	return tx.Commit()
}

// NextProfileID returns the lowest profile id strictly greater than the
// given one, wrapping to the lowest id overall when none exists. Returns
// store.ErrNotFound only when there are no profiles at all.
func (s *Store) NextProfileID(ctx context.Context, id int64) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM profiles WHERE id > ? ORDER BY id ASC LIMIT 1`, id).Scan(&next)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	// Wrap around to the first profile.
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM profiles ORDER BY id ASC LIMIT 1`).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

// SetProfileCoverIfEmpty assigns a cover image only when the profile has
// none yet. The conditional UPDATE makes concurrent first-image uploads
// race-safe: exactly one wins. Returns true when the cover was assigned.
func (s *Store) SetProfileCoverIfEmpty(ctx context.Context, profileID int64, coverPath string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET cover_image = ?
		WHERE id = ? AND (cover_image IS NULL OR cover_image = '')`,
		coverPath, profileID)
	if err != nil {
		return false, fmt.Errorf("set profile cover: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
