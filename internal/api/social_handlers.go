package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFollow",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{username}/follow",
		Summary:     "Toggle follow",
		Description: "Follows the user, or unfollows if already following",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "togglePostLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts/{id}/like",
		Summary:     "Toggle like",
		Description: "Likes the post, or removes the like if already liked",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleLike)
}

// === DTOs ===

// ToggleFollowInput contains parameters for toggling a follow.
type ToggleFollowInput struct {
	Authorization string `header:"Authorization"`
	Username      string `path:"username" doc:"Username to follow or unfollow"`
}

// FollowResponse reports the follow state after toggling.
type FollowResponse struct {
	Following bool `json:"following" doc:"Whether the viewer now follows the user"`
}

// FollowOutput wraps the follow response for Huma.
type FollowOutput struct {
	Body FollowResponse
}

// ToggleLikeInput contains parameters for toggling a like.
type ToggleLikeInput struct {
	Authorization string `header:"Authorization"`
	PostID        string `path:"id" doc:"Post ID"`
}

// LikeResponse reports the like state after toggling.
type LikeResponse struct {
	Liked     bool `json:"liked" doc:"Whether the viewer now likes the post"`
	LikeCount int  `json:"like_count" doc:"Total likes on the post"`
}

// LikeOutput wraps the like response for Huma.
type LikeOutput struct {
	Body LikeResponse
}

// === Handlers ===

func (s *Server) handleToggleFollow(ctx context.Context, input *ToggleFollowInput) (*FollowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	following, err := s.services.Social.ToggleFollow(ctx, userID, input.Username)
	if err != nil {
		return nil, err
	}

	return &FollowOutput{Body: FollowResponse{Following: following}}, nil
}

func (s *Server) handleToggleLike(ctx context.Context, input *ToggleLikeInput) (*LikeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	liked, count, err := s.services.Social.ToggleLike(ctx, userID, input.PostID)
	if err != nil {
		return nil, err
	}

	return &LikeOutput{Body: LikeResponse{Liked: liked, LikeCount: count}}, nil
}
