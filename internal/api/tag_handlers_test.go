package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTagsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")

	ts.createTestPost(t, token, "Post A", []string{"go", "databases"})
	ts.createTestPost(t, token, "Post B", []string{"go"})

	resp := ts.api.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ListTagsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	counts := make(map[string]int)
	for _, tag := range envelope.Data.Tags {
		counts[tag.Slug] = tag.PostCount
	}
	assert.Equal(t, 2, counts["go"])
	assert.Equal(t, 1, counts["databases"])
}

func TestTagResolution_MatchesSpellingVariants(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")

	// Same tag in three spellings. The first spelling wins as the
	// display name.
	ts.createTestPost(t, token, "Post A", []string{"Machine Learning"})
	ts.createTestPost(t, token, "Post B", []string{"machine-learning"})
	ts.createTestPost(t, token, "Post C", []string{"  MACHINE  LEARNING  "})

	resp := ts.api.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListTagsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Tags, 1)
	tag := envelope.Data.Tags[0]
	assert.Equal(t, "Machine Learning", tag.Name)
	assert.Equal(t, "machine-learning", tag.Slug)
	assert.Equal(t, 3, tag.PostCount)
}

func TestGetTagEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")
	ts.createTestPost(t, token, "Post A", []string{"Distributed Systems"})

	resp := ts.api.Get("/api/v1/tags/distributed-systems")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[TagResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Distributed Systems", envelope.Data.Name)

	resp = ts.api.Get("/api/v1/tags/no-such-tag")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTagCountsExcludeDrafts(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")

	draftResp := ts.api.Post("/api/v1/posts", map[string]any{
		"title":   "Draft With Tag",
		"content": "wip",
		"tags":    []string{"drafting"},
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, draftResp.Code)

	resp := ts.api.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ListTagsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Tags, 1)
	assert.Equal(t, "drafting", envelope.Data.Tags[0].Slug)
	assert.Equal(t, 0, envelope.Data.Tags[0].PostCount)
}
