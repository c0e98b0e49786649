package usecase

import (
	"context"

	"github.com/pricewatch/backend/internal/domain"
)

// ComparisonService projects confirmed matches into price comparison rows.
// It is a pure read path: no mutation, safe to call concurrently and
// arbitrarily often.
type ComparisonService struct {
	matches domain.MatchRepository
}

// NewComparisonService creates a new comparison service
func NewComparisonService(matches domain.MatchRepository) *ComparisonService {
	return &ComparisonService{matches: matches}
}

// Compare returns one row per item. Matched rows carry the competitor sku,
// name and price, and diff = comp_price - our_price computed with exact
// decimal arithmetic. Unmatched rows carry nulls. With approvedOnly set,
// unapproved matches are treated as absent (used by the export path).
func (s *ComparisonService) Compare(ctx context.Context, competitor string, approvedOnly bool) ([]domain.ComparisonRow, error) {
	rows, err := s.matches.ComparisonSnapshot(ctx, competitor, approvedOnly)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].CompPrice != nil {
			diff := rows[i].CompPrice.Sub(rows[i].OurPrice)
			rows[i].Diff = &diff
		}
	}
	return rows, nil
}
