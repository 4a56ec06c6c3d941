package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createTestComment(t *testing.T, token, postID, content, parentID string) CommentResponse {
	t.Helper()

	body := map[string]any{"content": content}
	if parentID != "" {
		body["parent_id"] = parentID
	}

	resp := ts.api.Post("/api/v1/posts/"+postID+"/comments", body, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, "CreateComment failed: %s", resp.Body.String())

	var envelope testEnvelope[CommentResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCreateCommentEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")
	post := ts.createTestPost(t, token, "Commented Post", nil)

	comment := ts.createTestComment(t, token, post.ID, "First!", "")

	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, "First!", comment.Content)
	assert.Nil(t, comment.ParentID)
	require.NotNil(t, comment.Author)
	assert.Equal(t, "alice", comment.Author.Username)
}

func TestCreateCommentEndpoint_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "alice")
	post := ts.createTestPost(t, token, "Commented Post", nil)

	resp := ts.api.Post("/api/v1/posts/"+post.ID+"/comments", map[string]any{
		"content": "drive-by",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCommentThreadsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken := ts.registerTestUser(t, "alice")
	bobToken := ts.registerTestUser(t, "bob")
	post := ts.createTestPost(t, aliceToken, "Thread Post", nil)

	top := ts.createTestComment(t, aliceToken, post.ID, "Top-level", "")
	reply := ts.createTestComment(t, bobToken, post.ID, "A reply", top.ID)

	// Replying to a reply flattens onto the top-level comment.
	nested := ts.createTestComment(t, aliceToken, post.ID, "Reply to reply", reply.ID)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, top.ID, *nested.ParentID)

	resp := ts.api.Get("/api/v1/posts/" + post.ID + "/comments")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[CommentListResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Comments, 1)
	thread := envelope.Data.Comments[0]
	assert.Equal(t, top.ID, thread.ID)
	require.Len(t, thread.Replies, 2)
	assert.Equal(t, "A reply", thread.Replies[0].Content)
	assert.Equal(t, "Reply to reply", thread.Replies[1].Content)
}

func TestDeleteCommentEndpoint_Permissions(t *testing.T) {
	ts := setupTestServer(t)
	authorToken := ts.registerTestUser(t, "alice")
	commenterToken := ts.registerTestUser(t, "bob")
	strangerToken := ts.registerTestUser(t, "carol")
	post := ts.createTestPost(t, authorToken, "Moderated Post", nil)

	comment := ts.createTestComment(t, commenterToken, post.ID, "Rude comment", "")

	resp := ts.api.Delete("/api/v1/comments/"+comment.ID, "Authorization: Bearer "+strangerToken)
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())

	// The post author can moderate comments on their post.
	resp = ts.api.Delete("/api/v1/comments/"+comment.ID, "Authorization: Bearer "+authorToken)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete("/api/v1/comments/"+comment.ID, "Authorization: Bearer "+authorToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCommentsOnDraftHidden(t *testing.T) {
	ts := setupTestServer(t)
	authorToken := ts.registerTestUser(t, "alice")
	strangerToken := ts.registerTestUser(t, "bob")

	draftResp := ts.api.Post("/api/v1/posts", map[string]any{
		"title":   "Draft",
		"content": "wip",
	}, "Authorization: Bearer "+authorToken)
	require.Equal(t, http.StatusOK, draftResp.Code)

	var draft testEnvelope[PostResponse]
	require.NoError(t, json.Unmarshal(draftResp.Body.Bytes(), &draft))

	resp := ts.api.Post("/api/v1/posts/"+draft.Data.ID+"/comments", map[string]any{
		"content": "sneaky",
	}, "Authorization: Bearer "+strangerToken)
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}
