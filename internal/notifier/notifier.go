package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/pricewatch/backend/internal/usecase"
)

// maxSeen bounds the dedup set; oldest keys are evicted first.
const maxSeen = 1024

// Sender delivers one report email with an attached workbook.
type Sender interface {
	Send(to, subject, body, filename string, attachment []byte) error
}

// Notifier consumes NotificationEvents: it builds the approved-only price
// comparison workbook and emails it to the schedule's tag address.
// Firing upstream is at-least-once, so the notifier deduplicates per
// (schedule, minute) using the event's DedupKey. Failures are logged and
// not retried.
type Notifier struct {
	tags       domain.TagRepository
	comparison *usecase.ComparisonService
	sender     Sender
	competitor string

	seen      map[string]struct{}
	seenOrder []string
}

// New creates a notifier reporting on one competitor's prices
func New(tags domain.TagRepository, comparison *usecase.ComparisonService, sender Sender, competitor string) *Notifier {
	return &Notifier{
		tags:       tags,
		comparison: comparison,
		sender:     sender,
		competitor: competitor,
		seen:       make(map[string]struct{}),
	}
}

// Run consumes events until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context, events <-chan domain.NotificationEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			n.Handle(ctx, event)
		}
	}
}

// Handle processes one event. Duplicate fires for the same
// (schedule, minute) are dropped.
func (n *Notifier) Handle(ctx context.Context, event domain.NotificationEvent) {
	if _, dup := n.seen[event.DedupKey]; dup {
		log.Printf("Notifier: duplicate fire %s, skipping", event.DedupKey)
		return
	}
	n.remember(event.DedupKey)

	tag, err := n.tags.GetTag(ctx, event.TagID)
	if err != nil {
		log.Printf("Notifier: event %s: resolving tag %d: %v", event.DedupKey, event.TagID, err)
		return
	}
	if tag.Email == nil {
		log.Printf("Notifier: tag %q has no email, skipping event %s", tag.Name, event.DedupKey)
		return
	}

	rows, err := n.comparison.Compare(ctx, n.competitor, true)
	if err != nil {
		log.Printf("Notifier: event %s: building comparison: %v", event.DedupKey, err)
		return
	}

	workbook, err := BuildWorkbook(rows)
	if err != nil {
		log.Printf("Notifier: event %s: writing workbook: %v", event.DedupKey, err)
		return
	}

	subject := fmt.Sprintf("Price comparison: %s", n.competitor)
	body := "Attached is your price comparison."
	filename := fmt.Sprintf("pricewatch_%s_tag_%d.xlsx", n.competitor, tag.ID)
	if err := n.sender.Send(*tag.Email, subject, body, filename, workbook); err != nil {
		log.Printf("Notifier: event %s: sending to %s: %v", event.DedupKey, *tag.Email, err)
		return
	}
	log.Printf("Notifier: sent comparison for tag %q to %s", tag.Name, *tag.Email)
}

func (n *Notifier) remember(key string) {
	n.seen[key] = struct{}{}
	n.seenOrder = append(n.seenOrder, key)
	for len(n.seenOrder) > maxSeen {
		delete(n.seen, n.seenOrder[0])
		n.seenOrder = n.seenOrder[1:]
	}
}
