package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/sse"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// CommentService handles commenting on posts, including one level of
// threaded replies.
type CommentService struct {
	store      store.Store
	validator  *validation.Validator
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(
	store store.Store,
	validator *validation.Validator,
	sseManager *sse.Manager,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		store:      store,
		validator:  validator,
		sseManager: sseManager,
		logger:     logger,
	}
}

// CreateCommentRequest contains the data for a new comment.
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=5000"`
	ParentID string `json:"parent_id" validate:"omitempty"`
}

// CreateComment adds a comment to a post. Only published posts accept
// comments, except the author commenting on their own draft.
func (s *CommentService) CreateComment(ctx context.Context, userID, postID string, req CreateCommentRequest) (*domain.Comment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, domainerrors.Validation("content cannot be empty")
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	if !post.IsVisibleTo(userID) {
		return nil, domainerrors.NotFound("post not found")
	}

	var parentID *string
	if req.ParentID != "" {
		parent, err := s.store.GetComment(ctx, req.ParentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFound("parent comment not found")
			}
			return nil, fmt.Errorf("get parent comment: %w", err)
		}
		if parent.PostID != post.ID {
			return nil, domainerrors.Validation("parent comment belongs to a different post")
		}
		// One level of threading: replying to a reply attaches to the
		// top-level comment instead.
		if parent.ParentID != nil {
			parentID = parent.ParentID
		} else {
			pid := parent.ID
			parentID = &pid
		}
	}

	commentID, err := id.Generate("comment")
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	comment := &domain.Comment{
		Entity: domain.Entity{
			ID: commentID,
		},
		PostID:   post.ID,
		AuthorID: userID,
		ParentID: parentID,
		Content:  req.Content,
	}
	comment.InitTimestamps()

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	// Notify the post author, unless they commented themselves.
	if post.AuthorID != userID {
		s.sseManager.EmitToUser(post.AuthorID, sse.NewCommentCreatedEvent(comment))
	}

	created, err := s.store.GetComment(ctx, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}

	return created, nil
}

// DeleteComment removes a comment. The comment author and the post
// author can both delete; replies go with it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("comment not found")
		}
		return fmt.Errorf("get comment: %w", err)
	}

	if comment.AuthorID != userID {
		post, err := s.store.GetPost(ctx, comment.PostID)
		if err != nil {
			return fmt.Errorf("get post: %w", err)
		}
		if post.AuthorID != userID {
			return domainerrors.Forbidden("you cannot delete this comment")
		}
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Comment deleted", "comment_id", commentID, "user_id", userID)
	}

	return nil
}

// ListPostComments returns a post's comments threaded: top-level
// comments in creation order, each with its replies nested.
func (s *CommentService) ListPostComments(ctx context.Context, postID, viewerID string) ([]*domain.Comment, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	if !post.IsVisibleTo(viewerID) {
		return nil, domainerrors.NotFound("post not found")
	}

	comments, err := s.store.ListPostComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	// Assemble the thread. Comments arrive oldest first, so parents
	// always precede their replies.
	byID := make(map[string]*domain.Comment, len(comments))
	threaded := make([]*domain.Comment, 0, len(comments))
	for _, comment := range comments {
		byID[comment.ID] = comment
		if comment.ParentID == nil {
			threaded = append(threaded, comment)
			continue
		}
		if parent, ok := byID[*comment.ParentID]; ok {
			parent.Replies = append(parent.Replies, comment)
		}
	}

	return threaded, nil
}
