package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/sse"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/store/sqlite"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// testAuthKeyHex is a fixed 32-byte key for API tests.
const testAuthKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api        humatest.TestAPI
	store      store.Store
	sseManager *sse.Manager
}

// setupTestServer creates a full server backed by a temporary SQLite
// store and Bleve index.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "index"),
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokenService, err := auth.NewTokenService(testAuthKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sseManager := sse.NewManager(logger)
	validator := validation.New()

	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, validator, logger)
	searchService := service.NewSearchService(index, st, logger)
	st.SetSearchIndexer(searchService)

	services := &Services{
		Auth:    authService,
		Session: sessionService,
		User:    service.NewUserService(st, validator, logger),
		Post:    service.NewPostService(st, validator, sseManager, logger),
		Tag:     service.NewTagService(st, logger),
		Comment: service.NewCommentService(st, validator, sseManager, logger),
		Social:  service.NewSocialService(st, sseManager, logger),
		Search:  searchService,
	}

	s := NewServer(Options{
		Store:      st,
		Services:   services,
		SSEManager: sseManager,
		Logger:     logger,
	})

	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.api),
		store:      st,
		sseManager: sseManager,
	}
}

// registerTestUser registers a user and returns the access token.
func (ts *testServer) registerTestUser(t *testing.T, username string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    username + "@example.com",
		"username": username,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)

	return envelope.Data.AccessToken
}

// createTestPost creates a published post and returns its response body.
func (ts *testServer) createTestPost(t *testing.T, token, title string, tags []string) PostResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/posts", map[string]any{
		"title":   title,
		"content": "<p>Body of " + title + "</p>",
		"tags":    tags,
		"publish": true,
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, "CreatePost failed: %s", resp.Body.String())

	var envelope testEnvelope[PostResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Contains(t, envelope.Data.Components, "database")
	assert.Contains(t, envelope.Data.Components, "search")
	assert.Contains(t, envelope.Data.Components, "sse")
	assert.Equal(t, "healthy", envelope.Data.Components["database"].Status)
}

func TestUnknownRouteReturns404(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
