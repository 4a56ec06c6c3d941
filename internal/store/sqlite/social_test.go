package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

func TestFollows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-a", "alice")
	insertTestUser(t, s, "user-b", "bob")

	exists, err := s.FollowExists(ctx, "user-a", "user-b")
	if err != nil {
		t.Fatalf("FollowExists: %v", err)
	}
	if exists {
		t.Error("expected no follow yet")
	}

	f := &domain.Follow{FollowerID: "user-a", FolloweeID: "user-b", CreatedAt: time.Now()}
	if err := s.CreateFollow(ctx, f); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}

	exists, err = s.FollowExists(ctx, "user-a", "user-b")
	if err != nil {
		t.Fatalf("FollowExists: %v", err)
	}
	if !exists {
		t.Error("expected follow to exist")
	}

	// Follows are directional.
	exists, err = s.FollowExists(ctx, "user-b", "user-a")
	if err != nil {
		t.Fatalf("FollowExists reverse: %v", err)
	}
	if exists {
		t.Error("reverse follow should not exist")
	}

	if err := s.CreateFollow(ctx, f); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate follow: expected ErrAlreadyExists, got %v", err)
	}

	ids, err := s.ListFolloweeIDs(ctx, "user-a")
	if err != nil {
		t.Fatalf("ListFolloweeIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "user-b" {
		t.Errorf("followees: %v", ids)
	}

	if err := s.DeleteFollow(ctx, "user-a", "user-b"); err != nil {
		t.Fatalf("DeleteFollow: %v", err)
	}
	if err := s.DeleteFollow(ctx, "user-a", "user-b"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second unfollow: expected ErrNotFound, got %v", err)
	}
}

func TestLikes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-l1", "liker")
	insertTestUser(t, s, "user-l2", "author")
	insertTestPost(t, s, "post-l1", "user-l2", "Likeable", "likeable-zzz1111")

	l := &domain.Like{UserID: "user-l1", PostID: "post-l1", CreatedAt: time.Now()}
	if err := s.CreateLike(ctx, l); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}

	exists, err := s.LikeExists(ctx, "user-l1", "post-l1")
	if err != nil {
		t.Fatalf("LikeExists: %v", err)
	}
	if !exists {
		t.Error("expected like to exist")
	}

	if err := s.CreateLike(ctx, l); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("double like: expected ErrAlreadyExists, got %v", err)
	}

	count, err := s.CountPostLikes(ctx, "post-l1")
	if err != nil {
		t.Fatalf("CountPostLikes: %v", err)
	}
	if count != 1 {
		t.Errorf("count: got %d, want 1", count)
	}

	if err := s.DeleteLike(ctx, "user-l1", "post-l1"); err != nil {
		t.Fatalf("DeleteLike: %v", err)
	}
	if err := s.DeleteLike(ctx, "user-l1", "post-l1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second unlike: expected ErrNotFound, got %v", err)
	}
}
