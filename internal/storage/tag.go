package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pricewatch/backend/internal/domain"
)

// CreateTag inserts a tag and returns it with its assigned id.
func (s *Store) CreateTag(ctx context.Context, name string, email *string) (*domain.Tag, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO tags (name, email) VALUES (?, ?)", name, email)
	if err != nil {
		return nil, fmt.Errorf("inserting tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading tag id: %w", err)
	}
	return s.GetTag(ctx, id)
}

// ListTags returns all tags, most recently created first.
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, created_at FROM tags ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// GetTag returns the tag with the given id, or ErrTagNotFound.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, created_at FROM tags WHERE id = ?", id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTag(row rowScanner) (*domain.Tag, error) {
	var t domain.Tag
	var created time.Time
	if err := row.Scan(&t.ID, &t.Name, &t.Email, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning tag: %w", err)
	}
	t.CreatedAt = created
	return &t, nil
}
