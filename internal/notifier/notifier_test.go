package notifier

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/pricewatch/backend/internal/storage"
	"github.com/pricewatch/backend/internal/usecase"
)

type sentMail struct {
	to         string
	subject    string
	filename   string
	attachment []byte
}

type fakeSender struct {
	sent []sentMail
}

func (f *fakeSender) Send(to, subject, body, filename string, attachment []byte) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, filename: filename, attachment: attachment})
	return nil
}

func setupNotifier(t *testing.T) (*storage.Store, *fakeSender, *Notifier) {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sender := &fakeSender{}
	n := New(store, usecase.NewComparisonService(store), sender, "praktiker")
	return store, sender, n
}

func event(scheduleID, tagID int64, minute time.Time) domain.NotificationEvent {
	return domain.NotificationEvent{
		ID:         "test-event",
		ScheduleID: scheduleID,
		TagID:      tagID,
		FiredAt:    minute,
		DedupKey:   domain.EventDedupKey(scheduleID, minute),
	}
}

func TestHandleSendsWorkbook(t *testing.T) {
	store, sender, n := setupNotifier(t)
	ctx := context.Background()

	email := "purchasing@example.com"
	tag, err := store.CreateTag(ctx, "hardware", &email)
	require.NoError(t, err)

	_, err = store.UpsertItems(ctx, []domain.ItemUpsert{
		{SKU: "A1", Name: "Hammer", Barcode: "111", Price: decimal.RequireFromString("10.00")},
	})
	require.NoError(t, err)

	n.Handle(ctx, event(1, tag.ID, time.Now()))

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "purchasing@example.com", mail.to)
	assert.Contains(t, mail.subject, "praktiker")
	assert.Contains(t, mail.filename, ".xlsx")
	assert.NotEmpty(t, mail.attachment)

	// The attachment is a readable workbook with the comparison header.
	f, err := excelize.OpenReader(bytes.NewReader(mail.attachment))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "our_sku", rows[0][0])
	require.Len(t, rows, 2)
	assert.Equal(t, "A1", rows[1][0])
}

func TestHandleDeduplicatesPerScheduleMinute(t *testing.T) {
	store, sender, n := setupNotifier(t)
	ctx := context.Background()

	email := "purchasing@example.com"
	tag, err := store.CreateTag(ctx, "hardware", &email)
	require.NoError(t, err)

	minute := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	// At-least-once upstream: the same fire arrives twice.
	n.Handle(ctx, event(1, tag.ID, minute))
	n.Handle(ctx, event(1, tag.ID, minute))
	assert.Len(t, sender.sent, 1)

	// A different minute is a fresh fire.
	n.Handle(ctx, event(1, tag.ID, minute.Add(time.Minute)))
	assert.Len(t, sender.sent, 2)

	// So is a different schedule in the same minute.
	n.Handle(ctx, event(2, tag.ID, minute))
	assert.Len(t, sender.sent, 3)
}

func TestHandleSkipsTagWithoutEmail(t *testing.T) {
	store, sender, n := setupNotifier(t)
	ctx := context.Background()

	tag, err := store.CreateTag(ctx, "hardware", nil)
	require.NoError(t, err)

	n.Handle(ctx, event(1, tag.ID, time.Now()))
	assert.Empty(t, sender.sent)
}

func TestHandleSkipsMissingTag(t *testing.T) {
	_, sender, n := setupNotifier(t)

	n.Handle(context.Background(), event(1, 4242, time.Now()))
	assert.Empty(t, sender.sent)
}

func TestBuildWorkbookBlanksForNulls(t *testing.T) {
	rows := []domain.ComparisonRow{
		{OurSKU: "A1", OurName: "Hammer", OurPrice: decimal.RequireFromString("10.00")},
	}
	data, err := BuildWorkbook(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Sheet1", "D2") // comp_sku
	require.NoError(t, err)
	assert.Equal(t, "", got)

	price, err := f.GetCellValue("Sheet1", "C2")
	require.NoError(t, err)
	assert.Equal(t, "10.00", price)
}
