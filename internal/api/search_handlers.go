package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/inkwellapp/inkwell-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search posts",
		Description: "Full-text search over published posts with tag facets",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching posts.
type SearchInput struct {
	Query  string `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Tags   string `query:"tags" validate:"omitempty,max=200" doc:"Comma-separated tag slugs to filter by"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset (default 0)"`
	Sort   string `query:"sort" enum:"relevance,recent,title" default:"relevance" doc:"Result ordering"`
	Facets bool   `query:"facets" doc:"Include tag facet counts"`
}

// SearchHitResult contains a single matching post.
type SearchHitResult struct {
	ID         string            `json:"id" doc:"Post ID"`
	Slug       string            `json:"slug" doc:"Post slug"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Title      string            `json:"title" doc:"Post title"`
	Excerpt    string            `json:"excerpt,omitempty" doc:"Post excerpt"`
	Author     string            `json:"author,omitempty" doc:"Author display name"`
	Tags       []string          `json:"tags,omitempty" doc:"Tag slugs"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Number of matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  int64             `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Matching posts"`
	Facets []FacetCount      `json:"facets,omitempty" doc:"Tag facet counts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Offset = input.Offset
	params.IncludeFacets = input.Facets
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}

	if input.Tags != "" {
		for t := range strings.SplitSeq(input.Tags, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				params.TagSlugs = append(params.TagSlugs, t)
			}
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	resp := SearchResponse{
		Query:  result.Query,
		Total:  int64(result.Total), //nolint:gosec // Safe: total count won't exceed int64
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResult, len(result.Hits)),
	}

	for i := range result.Hits {
		hit := &result.Hits[i]
		resp.Hits[i] = SearchHitResult{
			ID:         hit.ID,
			Slug:       hit.Slug,
			Score:      hit.Score,
			Title:      hit.Title,
			Excerpt:    hit.Excerpt,
			Author:     hit.Author,
			Tags:       hit.TagSlugs,
			Highlights: hit.Highlights,
		}
	}

	for _, facet := range result.Facets {
		resp.Facets = append(resp.Facets, FacetCount{Value: facet.Value, Count: facet.Count})
	}

	return &SearchOutput{Body: resp}, nil
}
