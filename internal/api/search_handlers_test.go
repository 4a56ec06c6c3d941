package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")

	want := ts.createTestPost(t, token, "Go Concurrency Patterns", []string{"go"})
	ts.createTestPost(t, token, "Sourdough Basics", []string{"baking"})

	resp := ts.api.Get("/api/v1/search?q=concurrency")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SearchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	result := envelope.Data
	assert.Equal(t, "concurrency", result.Query)
	require.Equal(t, int64(1), result.Total)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, want.ID, result.Hits[0].ID)
	assert.Equal(t, want.Slug, result.Hits[0].Slug)
	assert.Equal(t, "Go Concurrency Patterns", result.Hits[0].Title)
}

func TestSearchEndpoint_ExcludesDrafts(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")

	draftResp := ts.api.Post("/api/v1/posts", map[string]any{
		"title":   "Unpublished Kubernetes Notes",
		"content": "secret scribbles",
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, draftResp.Code)

	resp := ts.api.Get("/api/v1/search?q=kubernetes")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SearchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Zero(t, envelope.Data.Total)
}

func TestSearchEndpoint_TagFilter(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")

	ts.createTestPost(t, token, "Testing in Go", []string{"go"})
	ts.createTestPost(t, token, "Testing in Python", []string{"python"})

	resp := ts.api.Get("/api/v1/search?q=testing&tags=go")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SearchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Hits, 1)
	assert.Equal(t, "Testing in Go", envelope.Data.Hits[0].Title)
}

func TestSearchEndpoint_Facets(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")

	ts.createTestPost(t, token, "Channels Explained", []string{"go"})
	ts.createTestPost(t, token, "Goroutines Explained", []string{"go", "concurrency"})

	resp := ts.api.Get("/api/v1/search?q=explained&facets=true")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SearchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.NotEmpty(t, envelope.Data.Facets)
	counts := make(map[string]int)
	for _, facet := range envelope.Data.Facets {
		counts[facet.Value] = facet.Count
	}
	assert.Equal(t, 2, counts["go"])
	assert.Equal(t, 1, counts["concurrency"])
}

func TestSearchEndpoint_UpdatedPostReindexed(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")
	post := ts.createTestPost(t, token, "Original Title", nil)

	patch := ts.api.Patch("/api/v1/posts/"+post.ID, map[string]any{
		"title": "Zanzibar Travelogue",
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, patch.Code)

	resp := ts.api.Get("/api/v1/search?q=zanzibar")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SearchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Hits, 1)
	assert.Equal(t, post.ID, envelope.Data.Hits[0].ID)
}
