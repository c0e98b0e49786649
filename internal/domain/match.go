package domain

import "github.com/shopspring/decimal"

// MatchSource records how a match was established.
type MatchSource string

const (
	// SourceAuto marks a match created by the barcode auto-match pass.
	// Auto matches may be replaced by a later pass or a manual entry.
	SourceAuto MatchSource = "auto"
	// SourceManual marks a human-entered match. Manual intent is sticky:
	// only another manual match may replace it.
	SourceManual MatchSource = "manual"
)

// Match links an item to a competitor listing. At most one match exists
// per (item, competitor) pair at any time; writes are upserts.
type Match struct {
	ItemID           int64       `json:"itemId"`
	CompetitorName   string      `json:"competitorName"`
	CompetitorItemID int64       `json:"competitorItemId"`
	Barcode          string      `json:"barcode"`
	Source           MatchSource `json:"source"`
	Approved         bool        `json:"approved"`
}

// Conflict reports a barcode shared by multiple competitor listings.
// The affected item stays unmatched until resolved manually; the full set
// of colliding listing ids is reported so a human can pick deliberately.
type Conflict struct {
	ItemID            int64   `json:"itemId"`
	Barcode           string  `json:"barcode"`
	CompetitorItemIDs []int64 `json:"competitorItemIds"`
}

// MatchResult summarizes one auto-match pass.
type MatchResult struct {
	Created   int        `json:"created"`
	Updated   int        `json:"updated"`
	Skipped   int        `json:"skipped"`
	Conflicts []Conflict `json:"conflicts"`
}

// MatchView is one row of the per-item match table. Every item appears,
// matched or not; absent match fields are null.
type MatchView struct {
	ItemID      int64   `json:"item_id"`
	OurSKU      string  `json:"our_sku"`
	CompBarcode *string `json:"comp_barcode"`
	CompURL     *string `json:"comp_url"`
	Approved    bool    `json:"approved"`
}

// ComparisonRow is one row of the price comparison view. Unmatched items
// carry null competitor fields and a null diff.
type ComparisonRow struct {
	ItemID    int64            `json:"item_id"`
	OurSKU    string           `json:"our_sku"`
	OurName   string           `json:"our_name"`
	OurPrice  decimal.Decimal  `json:"our_price"`
	CompSKU   *string          `json:"comp_sku"`
	CompName  *string          `json:"comp_name"`
	CompPrice *decimal.Decimal `json:"comp_price"`
	CompURL   *string          `json:"comp_url"`
	Diff      *decimal.Decimal `json:"diff"`
	Approved  bool             `json:"approved"`
}
