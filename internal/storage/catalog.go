package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/domain"
)

// UpsertItems inserts or updates items by SKU. A supplied barcode also
// seeds the barcode link table; an empty barcode leaves any existing link
// untouched.
func (s *Store) UpsertItems(ctx context.Context, items []domain.ItemUpsert) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (sku, name, price) VALUES (?, ?, ?)
			ON CONFLICT (sku) DO UPDATE SET name = excluded.name, price = excluded.price`,
			it.SKU, it.Name, it.Price.String(),
		); err != nil {
			return 0, fmt.Errorf("upserting item %q: %w", it.SKU, err)
		}

		if it.Barcode != "" {
			var itemID int64
			if err := tx.QueryRowContext(ctx, "SELECT id FROM items WHERE sku = ?", it.SKU).Scan(&itemID); err != nil {
				return 0, fmt.Errorf("resolving item %q: %w", it.SKU, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO barcode_links (item_id, barcode) VALUES (?, ?)
				ON CONFLICT (item_id) DO UPDATE SET barcode = excluded.barcode`,
				itemID, it.Barcode,
			); err != nil {
				return 0, fmt.Errorf("linking barcode for item %q: %w", it.SKU, err)
			}
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing upsert: %w", err)
	}
	return count, nil
}

// ListItems returns items newest-first, capped at 1000.
func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, name, price, created_at
		FROM items ORDER BY id DESC LIMIT 1000`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		var price string
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &price, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parsing price for item %d: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItem returns the item with the given id, or ErrItemNotFound.
func (s *Store) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, sku, name, price, created_at FROM items WHERE id = ?", id)

	var it domain.Item
	var price string
	if err := row.Scan(&it.ID, &it.SKU, &it.Name, &price, &it.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	var err error
	if it.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parsing price for item %d: %w", it.ID, err)
	}
	return &it, nil
}

// UpsertCompetitorItems inserts or updates competitor listings by
// (competitor, sku).
func (s *Store) UpsertCompetitorItems(ctx context.Context, competitor string, items []domain.CompetitorItemUpsert) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO competitor_items (competitor_name, sku, name, barcode, price, url)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (competitor_name, sku) DO UPDATE SET
				name = excluded.name, barcode = excluded.barcode,
				price = excluded.price, url = excluded.url`,
			competitor, it.SKU, it.Name, nullableString(it.Barcode), it.Price.String(), it.URL,
		); err != nil {
			return 0, fmt.Errorf("upserting competitor item %q: %w", it.SKU, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing upsert: %w", err)
	}
	return count, nil
}

// ListCompetitorItems returns all listings for one competitor.
func (s *Store) ListCompetitorItems(ctx context.Context, competitor string) ([]domain.CompetitorItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, competitor_name, sku, name, COALESCE(barcode, ''), price, url
		FROM competitor_items WHERE competitor_name = ? ORDER BY id ASC`, competitor)
	if err != nil {
		return nil, fmt.Errorf("listing competitor items: %w", err)
	}
	defer rows.Close()

	var items []domain.CompetitorItem
	for rows.Next() {
		ci, err := scanCompetitorItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ci)
	}
	return items, rows.Err()
}

// BarcodeLinks returns the item -> internal barcode map as rows.
func (s *Store) BarcodeLinks(ctx context.Context) ([]domain.BarcodeLink, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT item_id, barcode FROM barcode_links ORDER BY item_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing barcode links: %w", err)
	}
	defer rows.Close()

	var links []domain.BarcodeLink
	for rows.Next() {
		var l domain.BarcodeLink
		if err := rows.Scan(&l.ItemID, &l.Barcode); err != nil {
			return nil, fmt.Errorf("scanning barcode link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// CompetitorItemByBarcode finds the listing for one competitor carrying
// the exact barcode. Returns ErrCompetitorItemNotFound when absent.
// When several listings share the barcode the lowest id wins: the pick
// is deterministic, so repeating a manual match resolves the same way
// every time.
func (s *Store) CompetitorItemByBarcode(ctx context.Context, competitor, barcode string) (*domain.CompetitorItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, competitor_name, sku, name, COALESCE(barcode, ''), price, url
		FROM competitor_items
		WHERE competitor_name = ? AND barcode = ?
		ORDER BY id ASC LIMIT 1`, competitor, barcode)

	ci, err := scanCompetitorItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCompetitorItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return ci, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompetitorItem(row rowScanner) (*domain.CompetitorItem, error) {
	var ci domain.CompetitorItem
	var price string
	if err := row.Scan(&ci.ID, &ci.CompetitorName, &ci.SKU, &ci.Name, &ci.Barcode, &price, &ci.URL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning competitor item: %w", err)
	}
	var err error
	if ci.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parsing price for competitor item %d: %w", ci.ID, err)
	}
	return &ci, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
