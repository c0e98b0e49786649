package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is an internal catalog product record. Prices are exact two-decimal
// currency values; the engine never computes on floats.
type Item struct {
	ID        int64           `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CompetitorItem is a listing imported from a named competitor. A listing
// carries at most one barcode, but barcodes are not unique across listings
// (duplicates surface as match conflicts).
type CompetitorItem struct {
	ID             int64           `json:"id"`
	CompetitorName string          `json:"competitorName"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Barcode        string          `json:"barcode,omitempty"`
	Price          decimal.Decimal `json:"price"`
	URL            string          `json:"url"`
}

// BarcodeLink maps an item to its internal barcode. The link table is
// populated by catalog import; the matching engine only reads it.
type BarcodeLink struct {
	ItemID  int64  `json:"itemId"`
	Barcode string `json:"barcode"`
}

// ItemUpsert is the catalog-import payload for one item.
type ItemUpsert struct {
	SKU     string          `json:"sku" binding:"required"`
	Name    string          `json:"name" binding:"required"`
	Barcode string          `json:"barcode,omitempty"`
	Price   decimal.Decimal `json:"price"`
}

// CompetitorItemUpsert is the import payload for one competitor listing.
type CompetitorItemUpsert struct {
	SKU     string          `json:"sku" binding:"required"`
	Name    string          `json:"name" binding:"required"`
	Barcode string          `json:"barcode,omitempty"`
	Price   decimal.Decimal `json:"price"`
	URL     string          `json:"url,omitempty"`
}
