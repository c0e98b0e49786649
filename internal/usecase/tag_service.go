package usecase

import (
	"context"
	"log"
	"net/mail"
	"strings"

	"github.com/pricewatch/backend/internal/domain"
)

// TagService manages notification tags. Names must be non-empty after
// trimming; duplicates are tolerated. Email validation is lenient:
// a malformed address is stored anyway with a warning, since delivery is
// an external concern.
type TagService struct {
	tags domain.TagRepository
}

// NewTagService creates a new tag service
func NewTagService(tags domain.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// CreateTag creates a tag with an optional notification email.
func (s *TagService) CreateTag(ctx context.Context, name string, email *string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyTagName
	}

	if email != nil {
		trimmed := strings.TrimSpace(*email)
		if trimmed == "" {
			email = nil
		} else {
			if _, err := mail.ParseAddress(trimmed); err != nil {
				log.Printf("WARNING: tag %q: email %q does not parse (%v), storing anyway", name, trimmed, err)
			}
			email = &trimmed
		}
	}

	return s.tags.CreateTag(ctx, name, email)
}

// ListTags returns all tags, most recently created first.
func (s *TagService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.ListTags(ctx)
}
