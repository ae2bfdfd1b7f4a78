package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders.
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
	SortTitle     = "title"
)

// Limits applied to SearchParams.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrOwnerRequired is returned when a search is not scoped to an owner.
var ErrOwnerRequired = errors.New("search: owner id is required")

// SearchParams configures a search query.
type SearchParams struct {
	OwnerID string   // Required; only this owner's content matches
	Query   string   // Free text; empty matches everything
	Types   []string // Content types to include (empty = all)
	Tags    []string // Exact tag titles; a document must carry at least one

	Limit  int
	Offset int

	SortBy string // relevance, recent, title
}

// SearchResult is a page of hits.
type SearchResult struct {
	Total  uint64
	TookMs int64
	Hits   []SearchHit
}

// SearchHit is a single matching document.
type SearchHit struct {
	ID         string
	Score      float64
	Title      string
	Highlights map[string]string
}

// Search executes a query scoped to params.OwnerID.
func (s *Index) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.OwnerID == "" {
		return nil, ErrOwnerRequired
	}
	params.Limit = clampLimit(params.Limit)
	params.Offset = max(params.Offset, 0)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)
	req.Fields = []string{"title"}

	if params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// buildSearchQuery ANDs the owner scope with the text query and filters.
func buildSearchQuery(params SearchParams) query.Query {
	owner := bleve.NewTermQuery(params.OwnerID)
	owner.SetField("owner_id")
	queries := []query.Query{owner}

	if q := strings.TrimSpace(params.Query); q != "" {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		tagMatch := bleve.NewTermQuery(q)
		tagMatch.SetField("tags")
		tagMatch.SetBoost(2.0)

		linkMatch := bleve.NewMatchQuery(q)
		linkMatch.SetField("link")

		// Typo tolerance on title.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, tagMatch, linkMatch, fuzzy}

		// Prefix for search-as-you-type, minimum 2 chars.
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		queries = append(queries, anyTerm("type", params.Types))
	}

	if len(params.Tags) > 0 {
		queries = append(queries, anyTerm("tags", params.Tags))
	}

	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

func anyTerm(field string, values []string) query.Query {
	qs := make([]query.Query, len(values))
	for i, v := range values {
		tq := bleve.NewTermQuery(v)
		tq.SetField(field)
		qs[i] = tq
	}
	return bleve.NewDisjunctionQuery(qs...)
}

func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case SortTitle:
		req.SortBy([]string{"title", "created_at"})
	case SortRecent:
		req.SortBy([]string{"-created_at"})
	default:
		req.SortBy([]string{"-_score", "-created_at"})
	}
}
