package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPostComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/comments",
		Summary:     "List comments",
		Description: "Returns a post's comments as threads, oldest first",
		Tags:        []string{"Comments"},
	}, s.handleListPostComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "createComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts/{id}/comments",
		Summary:     "Create comment",
		Description: "Adds a comment or single-level reply to a post",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete comment",
		Description: "Deletes a comment. Allowed for the comment author and the post author.",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

// === DTOs ===

// CommentResponse contains comment data in API responses.
type CommentResponse struct {
	ID        string            `json:"id" doc:"Comment ID"`
	PostID    string            `json:"post_id" doc:"Post the comment belongs to"`
	ParentID  *string           `json:"parent_id,omitempty" doc:"Parent comment for replies"`
	Content   string            `json:"content" doc:"Comment text"`
	Author    *UserResponse     `json:"author,omitempty" doc:"Comment author"`
	Replies   []CommentResponse `json:"replies,omitempty" doc:"Replies to this comment"`
	CreatedAt time.Time         `json:"created_at" doc:"Creation time"`
}

// CommentListResponse contains threaded comments for a post.
type CommentListResponse struct {
	Comments []CommentResponse `json:"comments" doc:"Top-level comments with nested replies"`
}

// CommentListOutput wraps the comment list for Huma.
type CommentListOutput struct {
	Body CommentListResponse
}

// ListPostCommentsInput contains parameters for listing comments.
type ListPostCommentsInput struct {
	Authorization string `header:"Authorization"`
	PostID        string `path:"id" doc:"Post ID"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=5000" doc:"Comment text"`
	ParentID string `json:"parent_id,omitempty" doc:"Comment to reply to"`
}

// CreateCommentInput wraps the create comment request for Huma.
type CreateCommentInput struct {
	Authorization string `header:"Authorization"`
	PostID        string `path:"id" doc:"Post ID"`
	Body          CreateCommentRequest
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// DeleteCommentInput contains parameters for deleting a comment.
type DeleteCommentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Comment ID"`
}

// === Handlers ===

func (s *Server) handleListPostComments(ctx context.Context, input *ListPostCommentsInput) (*CommentListOutput, error) {
	comments, err := s.services.Comment.ListPostComments(ctx, input.PostID, OptionalUserID(ctx))
	if err != nil {
		return nil, err
	}

	resp := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		resp[i] = mapCommentResponse(comment)
	}

	return &CommentListOutput{Body: CommentListResponse{Comments: resp}}, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.CreateComment(ctx, userID, input.PostID, service.CreateCommentRequest{
		Content:  input.Body.Content,
		ParentID: input.Body.ParentID,
	})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: mapCommentResponse(comment)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *DeleteCommentInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Comment.DeleteComment(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Comment deleted"}}, nil
}

// === Helpers ===

func mapCommentResponse(comment *domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
	if comment.Author != nil {
		author := mapUserResponse(comment.Author)
		resp.Author = &author
	}
	for _, reply := range comment.Replies {
		resp.Replies = append(resp.Replies, mapCommentResponse(reply))
	}
	return resp
}
