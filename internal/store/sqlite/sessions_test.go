package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

func makeTestSession(id, userID, tokenHash string, expiresAt time.Time) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        "127.0.0.1",
		UserAgent:        "test-agent",
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-s1", "sessioner")

	sess := makeTestSession("sess-1", "user-s1", "hash-abc", time.Now().Add(time.Hour))
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByRefreshToken(ctx, "hash-abc")
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if got.ID != "sess-1" || got.UserID != "user-s1" {
		t.Errorf("got %+v", got)
	}
	if got.IPAddress != "127.0.0.1" || got.UserAgent != "test-agent" {
		t.Errorf("device info: %+v", got)
	}

	// Rotation: new hash replaces old.
	got.RefreshTokenHash = "hash-def"
	got.Touch()
	if err := s.UpdateSession(ctx, got); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "hash-abc"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old hash should be gone, got %v", err)
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash-def"); err != nil {
		t.Errorf("new hash lookup: %v", err)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := s.DeleteSession(ctx, "sess-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAllUserSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-s2", "multi")

	for i, hash := range []string{"h1", "h2", "h3"} {
		sess := makeTestSession("sess-m"+hash, "user-s2", hash, time.Now().Add(time.Hour))
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession %d: %v", i, err)
		}
	}

	if err := s.DeleteAllUserSessions(ctx, "user-s2"); err != nil {
		t.Fatalf("DeleteAllUserSessions: %v", err)
	}

	for _, hash := range []string{"h1", "h2", "h3"} {
		if _, err := s.GetSessionByRefreshToken(ctx, hash); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("session %s should be gone, got %v", hash, err)
		}
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-s3", "expirer")

	expired := makeTestSession("sess-old", "user-s3", "old-hash", time.Now().Add(-time.Hour))
	live := makeTestSession("sess-new", "user-s3", "new-hash", time.Now().Add(time.Hour))
	for _, sess := range []*domain.Session{expired, live} {
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession(%s): %v", sess.ID, err)
		}
	}

	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "new-hash"); err != nil {
		t.Errorf("live session should survive: %v", err)
	}
}
