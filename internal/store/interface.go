// Package store defines the persistence interface for the Inkwell server.
package store

import (
	"context"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	SetSearchIndexer(indexer SearchIndexer)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	GetUserProfile(ctx context.Context, username, viewerID string) (*domain.Profile, error)

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Posts
	CreatePost(ctx context.Context, post *domain.Post, tagIDs []string) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, filter PostFilter, params PaginationParams) (*PaginatedResult[*domain.Post], error)
	ListPostsByAuthors(ctx context.Context, authorIDs []string, params PaginationParams) (*PaginatedResult[*domain.Post], error)
	ListTrendingPosts(ctx context.Context, limit int) ([]*domain.Post, error)
	SetPostTags(ctx context.Context, postID string, tagIDs []string) error

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ListPostComments(ctx context.Context, postID string) ([]*domain.Comment, error)

	// Social graph
	FollowExists(ctx context.Context, followerID, followeeID string) (bool, error)
	CreateFollow(ctx context.Context, follow *domain.Follow) error
	DeleteFollow(ctx context.Context, followerID, followeeID string) error
	ListFolloweeIDs(ctx context.Context, followerID string) ([]string, error)

	// Likes
	LikeExists(ctx context.Context, userID, postID string) (bool, error)
	CreateLike(ctx context.Context, like *domain.Like) error
	DeleteLike(ctx context.Context, userID, postID string) error
	CountPostLikes(ctx context.Context, postID string) (int, error)
}

// PostFilter narrows a post listing. Zero value lists everything.
type PostFilter struct {
	PublishedOnly bool
	AuthorID      string // Filter to one author
	TagSlug       string // Filter to posts carrying this tag; unknown slug yields no rows
	Search        string // Case-insensitive substring across title, content, excerpt, tag name, author name
	ViewerID      string // Drafts by this author stay visible when PublishedOnly is false
}

// SearchIndexer keeps an external search index in sync with post writes.
// The store calls it after successful mutations; indexing failures are
// logged, never surfaced to the caller.
type SearchIndexer interface {
	IndexPost(post *domain.Post) error
	DeletePost(postID string) error
}
