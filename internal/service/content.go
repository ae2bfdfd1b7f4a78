package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/dto"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/id"
	"github.com/brainlyapp/brainly-server/internal/search"
	"github.com/brainlyapp/brainly-server/internal/store"
	"github.com/brainlyapp/brainly-server/internal/validation"
)

// ContentIndexer keeps a search index in step with the content store.
// SearchService is the production implementation.
type ContentIndexer interface {
	IndexContent(ctx context.Context, content *domain.Content, tagTitles []string) error
	RemoveContent(ctx context.Context, contentID string) error
	SearchContent(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
}

// CreateContentRequest is the payload for saving a new link.
type CreateContentRequest struct {
	_     struct{} `json:"-" additionalProperties:"true"`
	Link  string   `json:"link" validate:"required,https_link,max=2048"`
	Type  string   `json:"type" validate:"required,content_type"`
	Title string   `json:"title" validate:"trimmed_required,max=512"`
	Tags  []string `json:"tags" validate:"required,max=64,dive,trimmed_required,max=64"`
}

// UpdateContentRequest changes only the fields that are present.
// A present Tags replaces the whole tag set.
type UpdateContentRequest struct {
	Link  *string   `json:"link,omitempty" validate:"omitempty,https_link,max=2048"`
	Type  *string   `json:"type,omitempty" validate:"omitempty,content_type"`
	Title *string   `json:"title,omitempty" validate:"omitempty,trimmed_required,max=512"`
	Tags  *[]string `json:"tags,omitempty" validate:"omitempty,max=64,dive,trimmed_required,max=64"`
}

// SearchRequest filters the caller's content.
type SearchRequest struct {
	Query  string   `json:"q" validate:"max=256"`
	Types  []string `json:"type" validate:"max=6,dive,content_type"`
	Tags   []string `json:"tag" validate:"max=32,dive,trimmed_required,max=64"`
	Limit  int      `json:"limit" validate:"min=0,max=100"`
	Offset int      `json:"offset" validate:"min=0"`
	Sort   string   `json:"sort" validate:"omitempty,oneof=relevance recent title"`
}

// ContentService manages saved links. Every method takes the caller's user id
// and enforces ownership itself.
type ContentService struct {
	store     store.Store
	tags      *TagService
	enricher  *dto.Enricher
	validator *validation.Validator
	indexer   ContentIndexer
	logger    *slog.Logger
}

// NewContentService creates a new content service. indexer may be nil, in
// which case search falls back to filtering the owner's content in memory.
func NewContentService(
	store store.Store,
	tags *TagService,
	validator *validation.Validator,
	indexer ContentIndexer,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		store:     store,
		tags:      tags,
		enricher:  dto.NewEnricher(store),
		validator: validator,
		indexer:   indexer,
		logger:    logger,
	}
}

// Create validates and saves a new content item owned by ownerID.
func (s *ContentService) Create(ctx context.Context, ownerID string, req CreateContentRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}

	tags, err := s.tags.resolveAll(ctx, req.Tags)
	if err != nil {
		return "", err
	}

	contentID, err := id.Generate(id.PrefixContent)
	if err != nil {
		return "", domainerrors.Internal("failed to save content").WithCause(err)
	}

	content := &domain.Content{
		Record:  domain.Record{ID: contentID},
		OwnerID: ownerID,
		Link:    req.Link,
		Type:    domain.ContentType(req.Type),
		Title:   strings.TrimSpace(req.Title),
		TagIDs:  tagIDs(tags),
	}
	content.InitTimestamps()

	if err := s.store.CreateContent(ctx, content); err != nil {
		s.logger.Error("failed to save content", "owner_id", ownerID, "error", err)
		return "", domainerrors.Internal("failed to save content").WithCause(err)
	}

	s.logger.Info("content created", "content_id", contentID, "owner_id", ownerID, "tags", len(tags))
	s.index(ctx, content, tagTitles(tags))

	return contentID, nil
}

// List returns every content item owned by ownerID in insertion order.
func (s *ContentService) List(ctx context.Context, ownerID string) ([]dto.Content, error) {
	_, items, err := s.listWithOwner(ctx, ownerID)
	return items, err
}

// Authorize checks that contentID exists and is owned by ownerID without
// changing it. Callers that must reject an undecodable payload use it so a
// non-owner still sees Forbidden.
func (s *ContentService) Authorize(ctx context.Context, ownerID, contentID string) error {
	_, err := s.getOwned(ctx, ownerID, contentID)
	return err
}

// Update applies the present fields of req to a content item owned by ownerID.
// Existence and ownership are checked before the payload is validated.
func (s *ContentService) Update(ctx context.Context, ownerID, contentID string, req UpdateContentRequest) error {
	content, err := s.getOwned(ctx, ownerID, contentID)
	if err != nil {
		return err
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if req.Link != nil {
		content.Link = *req.Link
	}
	if req.Type != nil {
		content.Type = domain.ContentType(*req.Type)
	}
	if req.Title != nil {
		content.Title = strings.TrimSpace(*req.Title)
	}
	if req.Tags != nil {
		ids, err := s.tags.ResolveAll(ctx, *req.Tags)
		if err != nil {
			return err
		}
		content.TagIDs = ids
	}
	content.Touch()

	if err := s.store.UpdateContent(ctx, content); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("content not found")
		}
		s.logger.Error("failed to update content", "content_id", contentID, "error", err)
		return domainerrors.Internal("failed to update content").WithCause(err)
	}

	s.logger.Info("content updated", "content_id", contentID, "owner_id", ownerID)

	titles, err := s.tags.TitlesFor(ctx, content.TagIDs)
	if err != nil {
		s.logger.Warn("failed to resolve tags for index", "content_id", contentID, "error", err)
		return nil
	}
	s.index(ctx, content, titles)

	return nil
}

// Delete removes a content item owned by ownerID. Tags are never removed.
func (s *ContentService) Delete(ctx context.Context, ownerID, contentID string) error {
	if _, err := s.getOwned(ctx, ownerID, contentID); err != nil {
		return err
	}

	if err := s.store.DeleteContent(ctx, contentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("content not found")
		}
		s.logger.Error("failed to delete content", "content_id", contentID, "error", err)
		return domainerrors.Internal("failed to delete content").WithCause(err)
	}

	s.logger.Info("content deleted", "content_id", contentID, "owner_id", ownerID)

	if s.indexer != nil {
		if err := s.indexer.RemoveContent(ctx, contentID); err != nil {
			s.logger.Warn("failed to remove content from search index", "content_id", contentID, "error", err)
		}
	}

	return nil
}

// Search finds the caller's content by text, type and tag.
func (s *ContentService) Search(ctx context.Context, ownerID string, req SearchRequest) (*dto.SearchResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if s.indexer == nil {
		return s.searchInMemory(ctx, ownerID, req)
	}

	res, err := s.indexer.SearchContent(ctx, search.SearchParams{
		OwnerID: ownerID,
		Query:   req.Query,
		Types:   req.Types,
		Tags:    normalizeTitles(req.Tags),
		Limit:   req.Limit,
		Offset:  req.Offset,
		SortBy:  req.Sort,
	})
	if err != nil {
		s.logger.Error("search failed", "owner_id", ownerID, "error", err)
		return nil, domainerrors.Internal("failed to search content").WithCause(err)
	}

	// Hydrate from the store. Hits deleted since indexing are dropped from the
	// page, the total and the index.
	contents := make([]*domain.Content, 0, len(res.Hits))
	var stale uint64
	for _, hit := range res.Hits {
		c, err := s.store.GetContent(ctx, hit.ID)
		if errors.Is(err, store.ErrNotFound) {
			stale++
			if err := s.indexer.RemoveContent(ctx, hit.ID); err != nil {
				s.logger.Warn("failed to drop stale search hit", "content_id", hit.ID, "error", err)
			}
			continue
		}
		if err != nil {
			return nil, domainerrors.Internal("failed to search content").WithCause(err)
		}
		if !c.IsOwnedBy(ownerID) {
			stale++
			continue
		}
		contents = append(contents, c)
	}

	total := res.Total
	if stale > total {
		total = 0
	} else {
		total -= stale
	}

	username, err := s.username(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	items, err := s.enricher.EnrichContents(ctx, contents, username)
	if err != nil {
		return nil, domainerrors.Internal("failed to search content").WithCause(err)
	}

	return &dto.SearchResult{Total: total, Items: items}, nil
}

// searchInMemory filters the owner's listing when no index is configured.
// Query matches title, link or tag by case-insensitive substring.
func (s *ContentService) searchInMemory(ctx context.Context, ownerID string, req SearchRequest) (*dto.SearchResult, error) {
	_, items, err := s.listWithOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(req.Query))
	wantTags := normalizeTitles(req.Tags)

	matched := make([]dto.Content, 0, len(items))
	for _, item := range items {
		if len(req.Types) > 0 && !slices.Contains(req.Types, item.Type) {
			continue
		}
		if len(wantTags) > 0 && !containsAny(item.Tags, wantTags) {
			continue
		}
		if q != "" && !matchesText(item, q) {
			continue
		}
		matched = append(matched, item)
	}

	// Newest first, matching the index's recency order.
	slices.Reverse(matched)
	if req.Sort == search.SortTitle {
		slices.SortStableFunc(matched, func(a, b dto.Content) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	}

	total := uint64(len(matched))
	limit := req.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	start := min(req.Offset, len(matched))
	end := min(start+limit, len(matched))

	return &dto.SearchResult{Total: total, Items: matched[start:end]}, nil
}

// listWithOwner returns the owner's username and content. The username is
// dto.UnknownUsername when the owner no longer resolves.
func (s *ContentService) listWithOwner(ctx context.Context, ownerID string) (string, []dto.Content, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	username, err := s.username(ctx, ownerID)
	if err != nil {
		return "", nil, err
	}

	contents, err := s.store.ListContentsByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list content", "owner_id", ownerID, "error", err)
		return "", nil, domainerrors.Internal("failed to list content").WithCause(err)
	}

	items, err := s.enricher.EnrichContents(ctx, contents, username)
	if err != nil {
		s.logger.Error("failed to resolve tags", "owner_id", ownerID, "error", err)
		return "", nil, domainerrors.Internal("failed to list content").WithCause(err)
	}

	return username, items, nil
}

func (s *ContentService) username(ctx context.Context, ownerID string) (string, error) {
	user, err := s.store.GetUser(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return dto.UnknownUsername, nil
	}
	if err != nil {
		return "", domainerrors.Internal("failed to load user").WithCause(err)
	}
	return user.Username, nil
}

// getOwned loads a content item and checks that ownerID owns it.
func (s *ContentService) getOwned(ctx context.Context, ownerID, contentID string) (*domain.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !id.Valid(id.PrefixContent, contentID) {
		return nil, domainerrors.Validation("invalid content id")
	}

	content, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("content not found")
		}
		return nil, domainerrors.Internal("failed to load content").WithCause(err)
	}

	if !content.IsOwnedBy(ownerID) {
		return nil, domainerrors.Forbidden("you do not own this content")
	}
	return content, nil
}

// index pushes content to the indexer. Failures are logged only; the store
// stays authoritative and a reindex repairs drift.
func (s *ContentService) index(ctx context.Context, content *domain.Content, titles []string) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexContent(ctx, content, titles); err != nil {
		s.logger.Warn("failed to index content", "content_id", content.ID, "error", err)
	}
}

func tagIDs(tags []*domain.Tag) []string {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

func tagTitles(tags []*domain.Tag) []string {
	titles := make([]string, len(tags))
	for i, t := range tags {
		titles[i] = t.Title
	}
	return titles
}

func normalizeTitles(titles []string) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if n := domain.NormalizeTagTitle(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func matchesText(item dto.Content, q string) bool {
	if strings.Contains(strings.ToLower(item.Title), q) || strings.Contains(strings.ToLower(item.Link), q) {
		return true
	}
	for _, t := range item.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
