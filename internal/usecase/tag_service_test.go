package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/pricewatch/backend/internal/domain"
)

func TestCreateTag(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty name", func(t *testing.T) {
		svc := NewTagService(newTestStore(t))

		_, err := svc.CreateTag(ctx, "   ", nil)
		if !errors.Is(err, domain.ErrEmptyTagName) {
			t.Errorf("error = %v, want ErrEmptyTagName", err)
		}
	})

	t.Run("trims the name", func(t *testing.T) {
		svc := NewTagService(newTestStore(t))

		tag, err := svc.CreateTag(ctx, "  hardware  ", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tag.Name != "hardware" {
			t.Errorf("Name = %q, want hardware", tag.Name)
		}
	})

	t.Run("stores a malformed email with a warning", func(t *testing.T) {
		svc := NewTagService(newTestStore(t))

		email := "not-an-address"
		tag, err := svc.CreateTag(ctx, "hardware", &email)
		if err != nil {
			t.Fatalf("lenient validation must not reject: %v", err)
		}
		if tag.Email == nil || *tag.Email != "not-an-address" {
			t.Errorf("Email = %v, want stored as-is", tag.Email)
		}
	})

	t.Run("drops a blank email", func(t *testing.T) {
		svc := NewTagService(newTestStore(t))

		email := "   "
		tag, err := svc.CreateTag(ctx, "hardware", &email)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tag.Email != nil {
			t.Errorf("Email = %v, want nil", tag.Email)
		}
	})

	t.Run("tolerates duplicate names", func(t *testing.T) {
		svc := NewTagService(newTestStore(t))

		if _, err := svc.CreateTag(ctx, "hardware", nil); err != nil {
			t.Fatalf("first create: %v", err)
		}
		if _, err := svc.CreateTag(ctx, "hardware", nil); err != nil {
			t.Errorf("duplicate name must be accepted: %v", err)
		}
	})
}

func TestListTagsNewestFirst(t *testing.T) {
	svc := NewTagService(newTestStore(t))
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := svc.CreateTag(ctx, name, nil); err != nil {
			t.Fatalf("creating %q: %v", name, err)
		}
	}

	tags, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("tags = %d, want 3", len(tags))
	}
	if tags[0].Name != "third" || tags[2].Name != "first" {
		t.Errorf("order = [%s %s %s], want newest first", tags[0].Name, tags[1].Name, tags[2].Name)
	}
}
