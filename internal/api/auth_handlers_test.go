package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "alice@example.com",
		"username":     "alice",
		"password":     "correct-horse-battery",
		"display_name": "Alice",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Equal(t, "alice", envelope.Data.User.Username)
	assert.Equal(t, "alice@example.com", envelope.Data.User.Email)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "ALICE@example.com",
		"username": "alice2",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())
}

func TestRegisterEndpoint_WeakPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "bob@example.com",
		"username": "bob",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestLoginEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "Alice@Example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
}

func TestRefreshEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	registerResp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, registerResp.Code)

	var registered testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(registerResp.Body.Bytes(), &registered))

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var refreshed testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &refreshed))

	assert.NotEqual(t, registered.Data.RefreshToken, refreshed.Data.RefreshToken)
	assert.Equal(t, registered.Data.SessionID, refreshed.Data.SessionID)

	// The rotated-out token must be dead.
	reuse := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, reuse.Code, reuse.Body.String())
}

func TestLogoutEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	registerResp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, registerResp.Code)

	var registered testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(registerResp.Body.Bytes(), &registered))

	resp := ts.api.Post("/api/v1/auth/logout", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	refresh := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, refresh.Code, refresh.Body.String())
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t)

	// Burst is 10 per client IP; hammer login until the limiter kicks in.
	limited := false
	for range 15 {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "wrong-password-here",
		}, "X-Real-IP: 203.0.113.9")
		if resp.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	assert.True(t, limited, "expected a 429 within 15 attempts")
}

func TestProtectedEndpointRequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
