package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mansionapp/mansion-server/internal/domain"
)

// mediaColumns is the ordered list of columns selected in media queries.
// Must match the scan order in scanMedia.
const mediaColumns = `id, profile_id, filename, media_type, file_path, blur_hash, created_at`

// scanMedia scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Media.
func scanMedia(scanner interface{ Scan(dest ...any) error }) (*domain.Media, error) {
	var (
		m         domain.Media
		mediaType string
		blurHash  sql.NullString
		createdAt string
	)

	err := scanner.Scan(&m.ID, &m.ProfileID, &m.Filename, &mediaType, &m.FilePath, &blurHash, &createdAt)
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.MediaType = domain.MediaType(mediaType)
	m.BlurHash = blurHash.String

	return &m, nil
}

// CreateMedia inserts a media row and assigns its generated id.
func (s *Store) CreateMedia(ctx context.Context, m *domain.Media) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO media (profile_id, filename, media_type, file_path, blur_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ProfileID,
		m.Filename,
		string(m.MediaType),
		m.FilePath,
		nullString(m.BlurHash),
		formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}

	m.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("media last insert id: %w", err)
	}
	return nil
}

// ListProfileMedia returns all media for a profile, oldest-created first.
func (s *Store) ListProfileMedia(ctx context.Context, profileID int64) ([]*domain.Media, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE profile_id = ? ORDER BY created_at ASC, id ASC`,
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []*domain.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// CountProfileMedia returns the number of media rows for a profile.
func (s *Store) CountProfileMedia(ctx context.Context, profileID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media WHERE profile_id = ?`, profileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return count, nil
}
