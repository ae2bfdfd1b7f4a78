package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/brainlyapp/brainly-server/internal/domain"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/store"
)

// maxTagTitleLength is the longest tag title accepted, in runes.
const maxTagTitleLength = 64

// TagService manages the global tag registry.
// Tags are created on first use by any user and never updated or deleted.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// ResolveOrCreate returns the id of the tag with the given title, creating it
// if needed. The title is trimmed and NFC-normalized first.
func (s *TagService) ResolveOrCreate(ctx context.Context, title string) (string, error) {
	tag, err := s.resolve(ctx, title)
	if err != nil {
		return "", err
	}
	return tag.ID, nil
}

// ResolveAll resolves every title to a tag id. Titles that normalize to the
// same value collapse to one id; the first occurrence fixes the order.
func (s *TagService) ResolveAll(ctx context.Context, titles []string) ([]string, error) {
	tags, err := s.resolveAll(ctx, titles)
	if err != nil {
		return nil, err
	}
	return tagIDs(tags), nil
}

// TitlesFor maps tag ids to titles in input order. Unknown ids are skipped.
func (s *TagService) TitlesFor(ctx context.Context, tagIDs []string) ([]string, error) {
	if len(tagIDs) == 0 {
		return []string{}, nil
	}

	tags, err := s.store.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}

	titles := make([]string, len(tags))
	for i, t := range tags {
		titles[i] = t.Title
	}
	return titles, nil
}

// ListForOwner returns the distinct tag titles used by the owner's content, sorted.
func (s *TagService) ListForOwner(ctx context.Context, ownerID string) ([]string, error) {
	contents, err := s.store.ListContentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, domainerrors.Internal("failed to list tags").WithCause(err)
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, c := range contents {
		for _, tagID := range c.TagIDs {
			if _, ok := seen[tagID]; !ok {
				seen[tagID] = struct{}{}
				ids = append(ids, tagID)
			}
		}
	}

	titles, err := s.TitlesFor(ctx, ids)
	if err != nil {
		return nil, domainerrors.Internal("failed to list tags").WithCause(err)
	}
	slices.Sort(titles)
	return titles, nil
}

func (s *TagService) resolve(ctx context.Context, title string) (*domain.Tag, error) {
	normalized := domain.NormalizeTagTitle(title)
	if normalized == "" {
		return nil, domainerrors.Validation("tag title is required")
	}
	if utf8.RuneCountInString(normalized) > maxTagTitleLength {
		return nil, domainerrors.Validationf("tag title must not exceed %d characters", maxTagTitleLength)
	}

	tag, err := s.store.UpsertTag(ctx, normalized)
	if err != nil {
		return nil, domainerrors.Internal("failed to save tag").WithCause(err)
	}
	return tag, nil
}

func (s *TagService) resolveAll(ctx context.Context, titles []string) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0, len(titles))
	seen := make(map[string]struct{}, len(titles))

	for _, title := range titles {
		normalized := domain.NormalizeTagTitle(title)
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		tag, err := s.resolve(ctx, normalized)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}
