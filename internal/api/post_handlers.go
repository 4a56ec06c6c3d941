package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List posts",
		Description: "Returns published posts, newest first. Authors also see their own drafts when filtering by their username.",
		Tags:        []string{"Posts"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPost",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts",
		Summary:     "Create post",
		Description: "Creates a post, as draft or published",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTrendingPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/trending",
		Summary:     "Trending posts",
		Description: "Returns recently published posts ranked by engagement",
		Tags:        []string{"Posts"},
	}, s.handleTrendingPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Following feed",
		Description: "Returns published posts from authors the user follows",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Get post",
		Description: "Returns a post by ID or slug",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePost",
		Method:      http.MethodPatch,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Update post",
		Description: "Updates a post owned by the authenticated user",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePost",
		Method:      http.MethodDelete,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Delete post",
		Description: "Deletes a post owned by the authenticated user",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePost)
}

// === DTOs ===

// PostResponse contains post data in API responses.
type PostResponse struct {
	ID           string        `json:"id" doc:"Post ID"`
	Slug         string        `json:"slug" doc:"URL slug with random suffix"`
	Title        string        `json:"title" doc:"Post title"`
	Content      string        `json:"content,omitempty" doc:"Full content, omitted in listings"`
	Excerpt      string        `json:"excerpt,omitempty" doc:"Short summary"`
	CoverImage   *string       `json:"cover_image,omitempty" doc:"Cover image URL"`
	Published    bool          `json:"published" doc:"Whether the post is public"`
	PublishedAt  *time.Time    `json:"published_at,omitempty" doc:"First publication time"`
	Author       *UserResponse `json:"author,omitempty" doc:"Post author"`
	Tags         []TagResponse `json:"tags" doc:"Post tags"`
	LikeCount    int           `json:"like_count" doc:"Number of likes"`
	CommentCount int           `json:"comment_count" doc:"Number of comments"`
	CreatedAt    time.Time     `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time     `json:"updated_at" doc:"Last update time"`
}

// PostListResponse contains a page of posts.
type PostListResponse struct {
	Posts      []PostResponse `json:"posts" doc:"Posts in this page"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages exist"`
}

// PostListOutput wraps the post list response for Huma.
type PostListOutput struct {
	Body PostListResponse
}

// ListPostsInput contains parameters for listing posts.
type ListPostsInput struct {
	Authorization string `header:"Authorization"`
	Author        string `query:"author" validate:"omitempty,max=30" doc:"Filter to one author's username"`
	Tag           string `query:"tag" validate:"omitempty,max=60" doc:"Filter to posts carrying this tag slug"`
	Search        string `query:"q" validate:"omitempty,max=200" doc:"Title substring filter"`
	Limit         int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Page size (default 20)"`
	Cursor        string `query:"cursor" validate:"omitempty,max=200" doc:"Opaque pagination cursor"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title      string   `json:"title" validate:"required,max=200" doc:"Post title"`
	Content    string   `json:"content" validate:"required" doc:"Post body, HTML or Markdown"`
	Excerpt    string   `json:"excerpt,omitempty" validate:"omitempty,max=500" doc:"Summary, derived from content when empty"`
	CoverImage string   `json:"cover_image,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,max=5,dive,max=50" doc:"Up to five tag names"`
	Publish    bool     `json:"publish,omitempty" doc:"Publish immediately instead of saving a draft"`
}

// CreatePostInput wraps the create post request for Huma.
type CreatePostInput struct {
	Authorization string `header:"Authorization"`
	Body          CreatePostRequest
}

// PostOutput wraps a single post response for Huma.
type PostOutput struct {
	Body PostResponse
}

// GetPostInput contains parameters for fetching a post.
type GetPostInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Post ID or slug"`
}

// UpdatePostRequest is the request body for updating a post.
// Omitted fields are left untouched; tags as an empty array clears them.
type UpdatePostRequest struct {
	Title      *string   `json:"title,omitempty" validate:"omitempty,max=200" doc:"New title, regenerates the slug"`
	Content    *string   `json:"content,omitempty" doc:"New content"`
	Excerpt    *string   `json:"excerpt,omitempty" validate:"omitempty,max=500" doc:"New summary"`
	CoverImage *string   `json:"cover_image,omitempty" validate:"omitempty,url" doc:"Cover URL, empty string clears it"`
	Tags       *[]string `json:"tags,omitempty" validate:"omitempty,max=5,dive,max=50" doc:"Replacement tag names"`
	Publish    *bool     `json:"publish,omitempty" doc:"Publish or unpublish"`
}

// UpdatePostInput wraps the update post request for Huma.
type UpdatePostInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Post ID"`
	Body          UpdatePostRequest
}

// DeletePostInput contains parameters for deleting a post.
type DeletePostInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Post ID"`
}

// FeedInput contains parameters for the following feed.
type FeedInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Page size (default 20)"`
	Cursor        string `query:"cursor" validate:"omitempty,max=200" doc:"Opaque pagination cursor"`
}

// TrendingPostsInput contains parameters for the trending listing.
type TrendingPostsInput struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=50" doc:"Number of posts (default 10)"`
}

// TrendingPostsResponse contains trending posts.
type TrendingPostsResponse struct {
	Posts []PostResponse `json:"posts" doc:"Trending posts"`
}

// TrendingPostsOutput wraps the trending response for Huma.
type TrendingPostsOutput struct {
	Body TrendingPostsResponse
}

// === Handlers ===

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*PostListOutput, error) {
	page, err := s.services.Post.ListPosts(ctx, service.ListPostsRequest{
		AuthorUsername: input.Author,
		TagSlug:        input.Tag,
		Search:         input.Search,
		ViewerID:       OptionalUserID(ctx),
		Limit:          input.Limit,
		Cursor:         input.Cursor,
	})
	if err != nil {
		return nil, err
	}

	return &PostListOutput{Body: mapPostPage(page)}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Post.CreatePost(ctx, userID, service.CreatePostRequest{
		Title:      input.Body.Title,
		Content:    input.Body.Content,
		Excerpt:    input.Body.Excerpt,
		CoverImage: input.Body.CoverImage,
		Tags:       input.Body.Tags,
		Publish:    input.Body.Publish,
	})
	if err != nil {
		return nil, err
	}

	return &PostOutput{Body: mapPostResponse(post, true)}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *GetPostInput) (*PostOutput, error) {
	post, err := s.services.Post.GetPost(ctx, input.ID, OptionalUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &PostOutput{Body: mapPostResponse(post, true)}, nil
}

func (s *Server) handleUpdatePost(ctx context.Context, input *UpdatePostInput) (*PostOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Post.UpdatePost(ctx, userID, input.ID, service.UpdatePostRequest{
		Title:      input.Body.Title,
		Content:    input.Body.Content,
		Excerpt:    input.Body.Excerpt,
		CoverImage: input.Body.CoverImage,
		Tags:       input.Body.Tags,
		Publish:    input.Body.Publish,
	})
	if err != nil {
		return nil, err
	}

	return &PostOutput{Body: mapPostResponse(post, true)}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *DeletePostInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Post.DeletePost(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Post deleted"}}, nil
}

func (s *Server) handleFeed(ctx context.Context, input *FeedInput) (*PostListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Post.FollowingFeed(ctx, userID, input.Limit, input.Cursor)
	if err != nil {
		return nil, err
	}

	return &PostListOutput{Body: mapPostPage(page)}, nil
}

func (s *Server) handleTrendingPosts(ctx context.Context, input *TrendingPostsInput) (*TrendingPostsOutput, error) {
	posts, err := s.services.Post.TrendingPosts(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]PostResponse, len(posts))
	for i, post := range posts {
		resp[i] = mapPostResponse(post, false)
	}

	return &TrendingPostsOutput{Body: TrendingPostsResponse{Posts: resp}}, nil
}

// === Helpers ===

// mapPostResponse converts a domain post. Listings drop the full content
// and rely on the excerpt.
func mapPostResponse(post *domain.Post, includeContent bool) PostResponse {
	resp := PostResponse{
		ID:           post.ID,
		Slug:         post.Slug,
		Title:        post.Title,
		Excerpt:      post.Excerpt,
		CoverImage:   post.CoverImage,
		Published:    post.Published,
		PublishedAt:  post.PublishedAt,
		Tags:         make([]TagResponse, len(post.Tags)),
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
	if includeContent {
		resp.Content = post.Content
	}
	if post.Author != nil {
		author := mapUserResponse(post.Author)
		resp.Author = &author
	}
	for i, tag := range post.Tags {
		resp.Tags[i] = mapTagResponse(tag)
	}
	return resp
}

func mapPostPage(page *store.PaginatedResult[*domain.Post]) PostListResponse {
	posts := make([]PostResponse, len(page.Items))
	for i, post := range page.Items {
		posts[i] = mapPostResponse(post, false)
	}
	return PostListResponse{
		Posts:      posts,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
}
