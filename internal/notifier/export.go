package notifier

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/pricewatch/backend/internal/domain"
)

// BuildWorkbook renders comparison rows into an xlsx workbook. Empty
// competitor fields stay blank cells so the sheet mirrors the API's nulls.
func BuildWorkbook(rows []domain.ComparisonRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := []any{"our_sku", "our_name", "our_price", "comp_sku", "comp_name", "comp_price", "diff", "comp_url"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		row := []any{
			r.OurSKU,
			r.OurName,
			r.OurPrice.StringFixed(2),
			strOrBlank(r.CompSKU),
			strOrBlank(r.CompName),
			decOrBlank(r.CompPrice),
			decOrBlank(r.Diff),
			strOrBlank(r.CompURL),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func strOrBlank(s *string) any {
	if s == nil {
		return ""
	}
	return *s
}

func decOrBlank(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
