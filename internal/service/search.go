package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/search"
	"github.com/brainlyapp/brainly-server/internal/store"
)

// reindexBatchSize is the number of content items converted per index batch.
const reindexBatchSize = 500

var _ ContentIndexer = (*SearchService)(nil)

// SearchService bridges the content store and the search index.
type SearchService struct {
	index  *search.Index
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// IndexContent adds or replaces a content item in the index.
func (s *SearchService) IndexContent(_ context.Context, content *domain.Content, tagTitles []string) error {
	if err := s.index.IndexDocument(search.ContentToDocument(content, tagTitles)); err != nil {
		return fmt.Errorf("index content: %w", err)
	}
	s.logger.Debug("indexed content", "id", content.ID)
	return nil
}

// RemoveContent drops a content item from the index.
func (s *SearchService) RemoveContent(_ context.Context, contentID string) error {
	return s.index.DeleteDocument(contentID)
}

// SearchContent runs an owner-scoped query against the index.
func (s *SearchService) SearchContent(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from every content item in the store.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	indexed := 0
	batch := make([]*domain.Content, 0, reindexBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		docs, err := s.buildDocuments(ctx, batch)
		if err != nil {
			return err
		}
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index contents: %w", err)
		}
		indexed += len(docs)
		batch = batch[:0]
		return nil
	}

	for content, err := range s.store.ListAllContents(ctx) {
		if err != nil {
			return fmt.Errorf("list contents: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		batch = append(batch, content)
		if len(batch) == reindexBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	s.logger.Info("full reindex complete", "total_documents", indexed)
	return nil
}

// NeedsReindex reports whether the index is empty while the store has content.
func (s *SearchService) NeedsReindex(ctx context.Context) (bool, error) {
	count, err := s.index.DocumentCount()
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, err := range s.store.ListAllContents(ctx) {
		if err != nil {
			return false, fmt.Errorf("list contents: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// buildDocuments resolves tag titles for a batch with one store lookup.
func (s *SearchService) buildDocuments(ctx context.Context, contents []*domain.Content) ([]*search.ContentDocument, error) {
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

	titles := make(map[string]string, len(ids))
	if len(ids) > 0 {
		tags, err := s.store.GetTagsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("get tags: %w", err)
		}
		for _, t := range tags {
			titles[t.ID] = t.Title
		}
	}

	docs := make([]*search.ContentDocument, 0, len(contents))
	for _, c := range contents {
		tagTitles := make([]string, 0, len(c.TagIDs))
		for _, tagID := range c.TagIDs {
			if title, ok := titles[tagID]; ok {
				tagTitles = append(tagTitles, title)
			}
		}
		docs = append(docs, search.ContentToDocument(c, tagTitles))
	}
	return docs, nil
}
