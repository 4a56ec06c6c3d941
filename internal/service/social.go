package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/sse"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// SocialService handles the follow graph and post likes.
// Both operations are toggles: calling them again undoes the action.
type SocialService struct {
	store      store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(store store.Store, sseManager *sse.Manager, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// ToggleFollow follows or unfollows a user by username.
// Returns true when the caller now follows them.
func (s *SocialService) ToggleFollow(ctx context.Context, followerID, username string) (bool, error) {
	followee, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, domainerrors.NotFound("user not found")
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}

	if followee.ID == followerID {
		return false, domainerrors.Validation("you cannot follow yourself")
	}

	exists, err := s.store.FollowExists(ctx, followerID, followee.ID)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}

	if exists {
		if err := s.store.DeleteFollow(ctx, followerID, followee.ID); err != nil {
			return false, fmt.Errorf("delete follow: %w", err)
		}
		return false, nil
	}

	follow := &domain.Follow{
		FollowerID: followerID,
		FolloweeID: followee.ID,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateFollow(ctx, follow); err != nil {
		// Concurrent double-tap: the follow exists, which is what the
		// caller asked for.
		if errors.Is(err, store.ErrAlreadyExists) {
			return true, nil
		}
		return false, fmt.Errorf("create follow: %w", err)
	}

	s.sseManager.EmitToUser(followee.ID, sse.NewUserFollowedEvent(followerID, followee.ID))

	return true, nil
}

// ToggleLike likes or unlikes a post.
// Returns the new liked state and the post's like count.
func (s *SocialService) ToggleLike(ctx context.Context, userID, postID string) (bool, int, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, 0, domainerrors.NotFound("post not found")
		}
		return false, 0, fmt.Errorf("get post: %w", err)
	}
	if !post.IsVisibleTo(userID) {
		return false, 0, domainerrors.NotFound("post not found")
	}

	exists, err := s.store.LikeExists(ctx, userID, post.ID)
	if err != nil {
		return false, 0, fmt.Errorf("check like: %w", err)
	}

	liked := !exists
	if exists {
		if err := s.store.DeleteLike(ctx, userID, post.ID); err != nil {
			return false, 0, fmt.Errorf("delete like: %w", err)
		}
	} else {
		like := &domain.Like{
			UserID:    userID,
			PostID:    post.ID,
			CreatedAt: time.Now(),
		}
		if err := s.store.CreateLike(ctx, like); err != nil {
			if !errors.Is(err, store.ErrAlreadyExists) {
				return false, 0, fmt.Errorf("create like: %w", err)
			}
		}

		if post.AuthorID != userID {
			s.sseManager.EmitToUser(post.AuthorID, sse.NewPostLikedEvent(post.ID, userID))
		}
	}

	count, err := s.store.CountPostLikes(ctx, post.ID)
	if err != nil {
		return liked, 0, fmt.Errorf("count likes: %w", err)
	}

	return liked, count, nil
}
