package usecase

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/pricewatch/backend/internal/domain"
)

// MatchingConfig holds configuration for the matching service
type MatchingConfig struct {
	EnableDebugLogging bool
}

// MatchingService links catalog items to competitor listings by barcode.
// Mutations for the same competitor are serialized; different competitors
// proceed independently.
type MatchingService struct {
	catalog domain.CatalogRepository
	matches domain.MatchRepository

	enableDebugLogging bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMatchingService creates a new matching service
func NewMatchingService(catalog domain.CatalogRepository, matches domain.MatchRepository, config MatchingConfig) *MatchingService {
	return &MatchingService{
		catalog:            catalog,
		matches:            matches,
		enableDebugLogging: config.EnableDebugLogging,
		locks:              make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding match writes for one competitor.
func (s *MatchingService) lockFor(competitor string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[competitor]
	if !ok {
		l = &sync.Mutex{}
		s.locks[competitor] = l
	}
	return l
}

// AutoMatch links every item carrying an internal barcode to the
// competitor listing with the same barcode. Manual matches are never
// touched. A barcode shared by several listings is reported as a conflict
// and the item is left as-is. Re-running with unchanged catalogs is a
// no-op with the same conflict set.
func (s *MatchingService) AutoMatch(ctx context.Context, competitor string) (*domain.MatchResult, error) {
	lock := s.lockFor(competitor)
	lock.Lock()
	defer lock.Unlock()

	links, err := s.catalog.BarcodeLinks(ctx)
	if err != nil {
		return nil, err
	}

	compItems, err := s.catalog.ListCompetitorItems(ctx, competitor)
	if err != nil {
		return nil, err
	}
	byBarcode := make(map[string][]domain.CompetitorItem)
	for _, ci := range compItems {
		if ci.Barcode == "" {
			continue
		}
		byBarcode[ci.Barcode] = append(byBarcode[ci.Barcode], ci)
	}

	existing, err := s.matches.ListMatches(ctx, competitor)
	if err != nil {
		return nil, err
	}
	current := make(map[int64]domain.Match, len(existing))
	for _, m := range existing {
		current[m.ItemID] = m
	}

	result := &domain.MatchResult{Conflicts: []domain.Conflict{}}
	for _, link := range links {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if m, ok := current[link.ItemID]; ok && m.Source == domain.SourceManual {
			// Manual intent is sticky.
			result.Skipped++
			continue
		}

		candidates := byBarcode[link.Barcode]
		switch {
		case len(candidates) == 0:
			result.Skipped++

		case len(candidates) > 1:
			ids := make([]int64, 0, len(candidates))
			for _, c := range candidates {
				ids = append(ids, c.ID)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			result.Conflicts = append(result.Conflicts, domain.Conflict{
				ItemID:            link.ItemID,
				Barcode:           link.Barcode,
				CompetitorItemIDs: ids,
			})

		default:
			target := candidates[0]
			prev, had := current[link.ItemID]
			if had && prev.CompetitorItemID == target.ID && prev.Barcode == link.Barcode {
				result.Skipped++
				continue
			}

			m := domain.Match{
				ItemID:           link.ItemID,
				CompetitorName:   competitor,
				CompetitorItemID: target.ID,
				Barcode:          link.Barcode,
				Source:           domain.SourceAuto,
				Approved:         had && prev.Approved,
			}
			if err := s.matches.UpsertMatch(ctx, m); err != nil {
				return nil, err
			}
			if had {
				result.Updated++
			} else {
				result.Created++
			}
			if s.enableDebugLogging {
				log.Printf("[MATCH] auto: item %d -> %s listing %d (barcode %s)",
					link.ItemID, competitor, target.ID, link.Barcode)
			}
		}
	}

	return result, nil
}

// ManualMatch links an item to the competitor listing carrying exactly
// the supplied barcode (trimmed, case-sensitive). The resulting match is
// approved and overwrites any prior match for the pair, manual included.
func (s *MatchingService) ManualMatch(ctx context.Context, itemID int64, competitor, barcode string) (*domain.Match, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.ErrEmptyBarcode
	}

	if _, err := s.catalog.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	target, err := s.catalog.CompetitorItemByBarcode(ctx, competitor, barcode)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(competitor)
	lock.Lock()
	defer lock.Unlock()

	m := domain.Match{
		ItemID:           itemID,
		CompetitorName:   competitor,
		CompetitorItemID: target.ID,
		Barcode:          barcode,
		Source:           domain.SourceManual,
		Approved:         true,
	}
	if err := s.matches.UpsertMatch(ctx, m); err != nil {
		return nil, err
	}

	if s.enableDebugLogging {
		log.Printf("[MATCH] manual: item %d -> %s listing %d (barcode %s)",
			itemID, competitor, target.ID, barcode)
	}
	return &m, nil
}

// ViewMatches returns one row per item, matched or not. Unmatched items
// are never hidden; manual remediation depends on seeing them.
func (s *MatchingService) ViewMatches(ctx context.Context, competitor string) ([]domain.MatchView, error) {
	return s.matches.MatchSnapshot(ctx, competitor)
}
