package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/richtext"
	"github.com/inkwellapp/inkwell-server/internal/slug"
	"github.com/inkwellapp/inkwell-server/internal/sse"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

const (
	// excerptMaxLen caps derived excerpts.
	excerptMaxLen = 280

	// maxTagsPerPost limits how many tags a single post can carry.
	maxTagsPerPost = 5

	// slugCreateAttempts bounds retries when the random slug suffix collides.
	slugCreateAttempts = 3
)

// PostService orchestrates post CRUD, tag resolution, and feeds.
type PostService struct {
	store      store.Store
	validator  *validation.Validator
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(
	store store.Store,
	validator *validation.Validator,
	sseManager *sse.Manager,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		store:      store,
		validator:  validator,
		sseManager: sseManager,
		logger:     logger,
	}
}

// CreatePostRequest contains the data for a new post.
type CreatePostRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content" validate:"required"`
	Excerpt    string   `json:"excerpt" validate:"omitempty,max=500"`
	CoverImage string   `json:"cover_image" validate:"omitempty,url"`
	Tags       []string `json:"tags" validate:"omitempty,max=5,dive,max=50"`
	Publish    bool     `json:"publish"`
}

// UpdatePostRequest is a patch: nil fields are left untouched.
// Tags follows the same convention - nil leaves tags alone, an empty
// slice clears them, anything else replaces them.
type UpdatePostRequest struct {
	Title      *string   `json:"title" validate:"omitempty,max=200"`
	Content    *string   `json:"content"`
	Excerpt    *string   `json:"excerpt" validate:"omitempty,max=500"`
	CoverImage *string   `json:"cover_image" validate:"omitempty,url"`
	Tags       *[]string `json:"tags" validate:"omitempty,max=5,dive,max=50"`
	Publish    *bool     `json:"publish"`
}

// ListPostsRequest narrows the public post listing.
type ListPostsRequest struct {
	AuthorUsername string // Filter to one author's posts
	TagSlug        string // Filter to posts carrying this tag
	Search         string // Substring search
	ViewerID       string // Authenticated viewer, empty for anonymous
	Limit          int
	Cursor         string
}

// CreatePost creates a post for the author, resolving tag names to tags
// and generating a unique slug from the title.
func (s *PostService) CreatePost(ctx context.Context, authorID string, req CreatePostRequest) (*domain.Post, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tagIDs, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	postID, err := id.Generate("post")
	if err != nil {
		return nil, fmt.Errorf("generate post ID: %w", err)
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = richtext.Excerpt(req.Content, excerptMaxLen)
	}

	post := &domain.Post{
		Entity: domain.Entity{
			ID: postID,
		},
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  excerpt,
	}
	if req.CoverImage != "" {
		cover := req.CoverImage
		post.CoverImage = &cover
	}
	post.InitTimestamps()

	if req.Publish {
		post.MarkPublished()
	}

	// The slug carries a random suffix, so collisions are rare. Retry a
	// couple of times rather than surfacing an internal error to writers.
	for attempt := 0; attempt < slugCreateAttempts; attempt++ {
		post.Slug, err = slug.ForPost(req.Title)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}

		err = s.store.CreatePost(ctx, post, tagIDs)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("create post: %w", err)
		}
	}
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("could not allocate a unique slug, retry the request")
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	created, err := s.store.GetPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("reload post: %w", err)
	}

	if created.Published {
		s.sseManager.Emit(sse.NewPostPublishedEvent(created))
	}

	if s.logger != nil {
		s.logger.Info("Post created",
			"post_id", created.ID,
			"slug", created.Slug,
			"published", created.Published,
		)
	}

	return created, nil
}

// UpdatePost applies a patch to a post owned by the user.
// A title change regenerates the slug; old links break, which is the
// trade-off for slugs that always match the title.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, req UpdatePostRequest) (*domain.Post, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	post, err := s.getOwnedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domainerrors.Validation("title cannot be empty")
		}
		// Compare after trimming so whitespace-only edits don't churn
		// the slug.
		if title != post.Title {
			post.Title = title
			post.Slug, err = slug.ForPost(title)
			if err != nil {
				return nil, fmt.Errorf("generate slug: %w", err)
			}
		}
	}

	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, domainerrors.Validation("content cannot be empty")
		}
		post.Content = *req.Content
		// Keep derived excerpts in sync with edited content.
		if req.Excerpt == nil {
			post.Excerpt = richtext.Excerpt(post.Content, excerptMaxLen)
		}
	}

	if req.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
	}

	if req.CoverImage != nil {
		if *req.CoverImage == "" {
			post.CoverImage = nil
		} else {
			cover := *req.CoverImage
			post.CoverImage = &cover
		}
	}

	wasPublished := post.Published
	if req.Publish != nil {
		if *req.Publish {
			post.MarkPublished()
		} else {
			post.Published = false
		}
	}

	post.Touch()
	if err := s.store.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("slug already in use, retry the update")
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	if req.Tags != nil {
		tagIDs, err := s.resolveTags(ctx, *req.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetPostTags(ctx, post.ID, tagIDs); err != nil {
			return nil, fmt.Errorf("set post tags: %w", err)
		}
	}

	updated, err := s.store.GetPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("reload post: %w", err)
	}

	if !wasPublished && updated.Published {
		s.sseManager.Emit(sse.NewPostPublishedEvent(updated))
	}

	return updated, nil
}

// DeletePost removes a post owned by the user.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.getOwnedPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Post deleted", "post_id", post.ID, "author_id", userID)
	}

	return nil
}

// GetPost fetches a post by ID or slug.
// Drafts are only visible to their author; everyone else gets not found
// rather than forbidden, so draft existence doesn't leak.
func (s *PostService) GetPost(ctx context.Context, idOrSlug, viewerID string) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, idOrSlug)
	if errors.Is(err, store.ErrNotFound) {
		post, err = s.store.GetPostBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	if !post.IsVisibleTo(viewerID) {
		return nil, domainerrors.NotFound("post not found")
	}

	return post, nil
}

// ListPosts returns published posts, newest first, with optional filters.
// When the viewer filters to their own posts, drafts are included.
func (s *PostService) ListPosts(ctx context.Context, req ListPostsRequest) (*store.PaginatedResult[*domain.Post], error) {
	filter := store.PostFilter{
		PublishedOnly: true,
		TagSlug:       req.TagSlug,
		Search:        req.Search,
	}

	if req.AuthorUsername != "" {
		author, err := s.store.GetUserByUsername(ctx, req.AuthorUsername)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFound("user not found")
			}
			return nil, fmt.Errorf("lookup author: %w", err)
		}
		filter.AuthorID = author.ID

		// Authors see their own drafts in their post list.
		if req.ViewerID != "" && req.ViewerID == author.ID {
			filter.PublishedOnly = false
			filter.ViewerID = req.ViewerID
		}
	}

	params := store.PaginationParams{Limit: req.Limit, Cursor: req.Cursor}
	result, err := s.store.ListPosts(ctx, filter, params)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.Validation("invalid cursor")
		}
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return result, nil
}

// FollowingFeed returns published posts from authors the user follows.
func (s *PostService) FollowingFeed(ctx context.Context, userID string, limit int, cursor string) (*store.PaginatedResult[*domain.Post], error) {
	followeeIDs, err := s.store.ListFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followees: %w", err)
	}

	params := store.PaginationParams{Limit: limit, Cursor: cursor}
	result, err := s.store.ListPostsByAuthors(ctx, followeeIDs, params)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.Validation("invalid cursor")
		}
		return nil, fmt.Errorf("list feed posts: %w", err)
	}

	return result, nil
}

// TrendingPosts returns the most-liked published posts.
func (s *PostService) TrendingPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	posts, err := s.store.ListTrendingPosts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list trending posts: %w", err)
	}

	return posts, nil
}

// getOwnedPost loads a post and checks ownership.
// Missing posts return not found; posts owned by someone else return
// forbidden.
func (s *PostService) getOwnedPost(ctx context.Context, userID, postID string) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	if post.AuthorID != userID {
		return nil, domainerrors.Forbidden("you do not own this post")
	}

	return post, nil
}

// resolveTags maps raw tag names to tag IDs, creating tags that don't
// exist yet. Matching is fuzzy: names are reduced to a normalized key
// ("Node.js", "NODE JS", and "nodejs" are the same tag) so near-duplicate
// tags never accumulate. Inputs that normalize to nothing are skipped,
// and duplicate inputs collapse to one tag.
func (s *PostService) resolveTags(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if len(names) > maxTagsPerPost {
		return nil, domainerrors.Validationf("a post can carry at most %d tags", maxTagsPerPost)
	}

	// One pass over all tags beats a query per name at the tag counts
	// a blogging platform sees.
	existing, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	byKey := make(map[string]*domain.Tag, len(existing))
	for _, tag := range existing {
		byKey[slug.NormalizeTagName(tag.Name)] = tag
	}

	var tagIDs []string
	seen := make(map[string]bool, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		key := slug.NormalizeTagName(name)
		if key == "" {
			// All-punctuation input has no usable identity.
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		if tag, ok := byKey[key]; ok {
			tagIDs = append(tagIDs, tag.ID)
			continue
		}

		tag, err := s.createTag(ctx, name)
		if err != nil {
			return nil, err
		}
		byKey[key] = tag
		tagIDs = append(tagIDs, tag.ID)
	}

	return tagIDs, nil
}

// createTag inserts a new tag, falling back to a slug lookup when a
// concurrent request created the same tag first.
func (s *PostService) createTag(ctx context.Context, name string) (*domain.Tag, error) {
	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	now := time.Now()
	tag := &domain.Tag{
		ID:        tagID,
		Name:      name,
		Slug:      slug.ForTag(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the race: reuse whoever won.
			winner, getErr := s.store.GetTagBySlug(ctx, tag.Slug)
			if getErr != nil {
				return nil, fmt.Errorf("fetch racing tag: %w", getErr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	return tag, nil
}
