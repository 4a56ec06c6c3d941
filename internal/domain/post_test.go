package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkPublished(t *testing.T) {
	p := &Post{Title: "Draft"}
	require.Nil(t, p.PublishedAt)

	p.MarkPublished()
	assert.True(t, p.Published)
	require.NotNil(t, p.PublishedAt)
	first := *p.PublishedAt

	// Unpublish then republish: the original timestamp survives.
	p.Published = false
	time.Sleep(5 * time.Millisecond)
	p.MarkPublished()
	assert.True(t, p.Published)
	assert.Equal(t, first, *p.PublishedAt)
}

func TestIsVisibleTo(t *testing.T) {
	draft := &Post{AuthorID: "user-1", Published: false}
	assert.True(t, draft.IsVisibleTo("user-1"))
	assert.False(t, draft.IsVisibleTo("user-2"))
	assert.False(t, draft.IsVisibleTo(""))

	published := &Post{AuthorID: "user-1", Published: true}
	assert.True(t, published.IsVisibleTo("user-2"))
	assert.True(t, published.IsVisibleTo(""))
}
