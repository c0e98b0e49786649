package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/domain"
)

// ListMatches returns all matches for one competitor.
func (s *Store) ListMatches(ctx context.Context, competitor string) ([]domain.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, competitor_name, competitor_item_id, barcode, source, approved
		FROM matches WHERE competitor_name = ? ORDER BY item_id ASC`, competitor)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ItemID, &m.CompetitorName, &m.CompetitorItemID, &m.Barcode, &m.Source, &m.Approved); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// UpsertMatch writes the single active match for (item, competitor),
// replacing any prior one.
func (s *Store) UpsertMatch(ctx context.Context, m domain.Match) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (item_id, competitor_name, competitor_item_id, barcode, source, approved)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (item_id, competitor_name) DO UPDATE SET
			competitor_item_id = excluded.competitor_item_id,
			barcode = excluded.barcode,
			source = excluded.source,
			approved = excluded.approved`,
		m.ItemID, m.CompetitorName, m.CompetitorItemID, m.Barcode, string(m.Source), m.Approved,
	); err != nil {
		return fmt.Errorf("upserting match for item %d: %w", m.ItemID, err)
	}
	return nil
}

// MatchSnapshot returns one row per item, left-joined with its current
// match for the competitor and the linked listing. The whole projection
// runs as a single query, so it observes one consistent snapshot. The
// barcode shown is the one stored on the match (what the link was made
// on), not the listing's current barcode, so the view stays in step with
// what the auto pass compares against.
func (s *Store) MatchSnapshot(ctx context.Context, competitor string) ([]domain.MatchView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.sku, m.barcode, ci.url, COALESCE(m.approved, 0)
		FROM items i
		LEFT JOIN matches m ON m.item_id = i.id AND m.competitor_name = ?
		LEFT JOIN competitor_items ci ON ci.id = m.competitor_item_id
		ORDER BY i.id ASC`, competitor)
	if err != nil {
		return nil, fmt.Errorf("building match view: %w", err)
	}
	defer rows.Close()

	var views []domain.MatchView
	for rows.Next() {
		var v domain.MatchView
		if err := rows.Scan(&v.ItemID, &v.OurSKU, &v.CompBarcode, &v.CompURL, &v.Approved); err != nil {
			return nil, fmt.Errorf("scanning match view: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ComparisonSnapshot returns one comparison row per item. Unmatched items
// carry null competitor fields; the diff is computed by the caller from
// the exact decimal prices. With approvedOnly set, unapproved matches are
// surfaced as if absent (the item row itself always appears).
func (s *Store) ComparisonSnapshot(ctx context.Context, competitor string, approvedOnly bool) ([]domain.ComparisonRow, error) {
	query := `
		SELECT i.id, i.sku, i.name, i.price,
			ci.sku, ci.name, ci.price, ci.url, COALESCE(m.approved, 0)
		FROM items i
		LEFT JOIN matches m ON m.item_id = i.id AND m.competitor_name = ?`
	if approvedOnly {
		query += " AND m.approved = 1"
	}
	query += `
		LEFT JOIN competitor_items ci ON ci.id = m.competitor_item_id
		ORDER BY i.id ASC`

	rows, err := s.db.QueryContext(ctx, query, competitor)
	if err != nil {
		return nil, fmt.Errorf("building comparison view: %w", err)
	}
	defer rows.Close()

	var out []domain.ComparisonRow
	for rows.Next() {
		var r domain.ComparisonRow
		var ourPrice string
		var compPrice *string
		if err := rows.Scan(&r.ItemID, &r.OurSKU, &r.OurName, &ourPrice,
			&r.CompSKU, &r.CompName, &compPrice, &r.CompURL, &r.Approved); err != nil {
			return nil, fmt.Errorf("scanning comparison row: %w", err)
		}
		if r.OurPrice, err = decimal.NewFromString(ourPrice); err != nil {
			return nil, fmt.Errorf("parsing price for item %d: %w", r.ItemID, err)
		}
		if compPrice != nil {
			p, err := decimal.NewFromString(*compPrice)
			if err != nil {
				return nil, fmt.Errorf("parsing competitor price for item %d: %w", r.ItemID, err)
			}
			r.CompPrice = &p
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
