package domain

import "context"

// CatalogRepository defines read/write access to items, competitor
// listings and the barcode link table. Imports upsert; the engines read.
type CatalogRepository interface {
	UpsertItems(ctx context.Context, items []ItemUpsert) (int, error)
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	UpsertCompetitorItems(ctx context.Context, competitor string, items []CompetitorItemUpsert) (int, error)
	ListCompetitorItems(ctx context.Context, competitor string) ([]CompetitorItem, error)
	BarcodeLinks(ctx context.Context) ([]BarcodeLink, error)
	CompetitorItemByBarcode(ctx context.Context, competitor, barcode string) (*CompetitorItem, error)
}

// MatchRepository defines access to match records and the joined read-side
// projections. Projections observe a consistent snapshot of items, matches
// and competitor listings.
type MatchRepository interface {
	ListMatches(ctx context.Context, competitor string) ([]Match, error)
	UpsertMatch(ctx context.Context, m Match) error
	MatchSnapshot(ctx context.Context, competitor string) ([]MatchView, error)
	ComparisonSnapshot(ctx context.Context, competitor string, approvedOnly bool) ([]ComparisonRow, error)
}

// TagRepository defines access to tags.
type TagRepository interface {
	CreateTag(ctx context.Context, name string, email *string) (*Tag, error)
	ListTags(ctx context.Context) ([]Tag, error)
	GetTag(ctx context.Context, id int64) (*Tag, error)
}

// ScheduleRepository defines access to schedules.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, tagID int64, cron string) (*Schedule, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)
	ListActiveSchedules(ctx context.Context) ([]Schedule, error)
	SetScheduleActive(ctx context.Context, id int64, active bool) error
	DeleteSchedule(ctx context.Context, id int64) error
}
