package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/sse"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

// newServiceTestStore opens a temporary sqlite store for service tests.
func newServiceTestStore(t *testing.T) store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestSSEManager() *sse.Manager {
	return sse.NewManager(slog.New(slog.DiscardHandler))
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// createServiceTestUser inserts a user directly through the store.
func createServiceTestUser(t *testing.T, s store.Store, username string) *domain.User {
	t.Helper()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	user := &domain.User{
		Entity: domain.Entity{
			ID:        userID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "not-a-real-hash",
		LastLoginAt:  time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}
