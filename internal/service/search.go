package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// SearchService bridges the search index with the data store.
// It implements store.SearchIndexer, so the store keeps the index in
// sync as posts are written.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search executes a full-text search over posts.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexPost indexes a single post.
// Called by the store after post writes.
func (s *SearchService) IndexPost(post *domain.Post) error {
	doc := search.PostToDocument(post)

	if err := s.index.IndexDocument(doc); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	s.logger.Debug("indexed post", "id", post.ID, "title", post.Title)
	return nil
}

// DeletePost removes a post from the index.
// Called by the store after post deletes.
func (s *SearchService) DeletePost(postID string) error {
	return s.index.DeleteDocument(postID)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the entire search index from the store.
// This is a heavy operation - use sparingly.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	// Rebuild index (drops existing)
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	// Walk every post, drafts included: the published flag lives in the
	// index and queries filter on it.
	filter := store.PostFilter{}
	params := store.PaginationParams{Limit: 500}

	var docs []*search.PostDocument
	for {
		page, err := s.store.ListPosts(ctx, filter, params)
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}

		for _, post := range page.Items {
			docs = append(docs, search.PostToDocument(post))
		}

		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index posts: %w", err)
		}
	}

	s.logger.Info("full reindex complete", "total_documents", len(docs))
	return nil
}
