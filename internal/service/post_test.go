package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostService(t *testing.T) (*PostService, *TagService) {
	t.Helper()

	s := newServiceTestStore(t)
	validator := validation.New()
	posts := NewPostService(s, validator, newTestSSEManager(), testLogger())
	tags := NewTagService(s, testLogger())
	return posts, tags
}

func TestCreatePost(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Hello, World!",
		Content: "<p>My first post about Go.</p>",
		Tags:    []string{"golang", "Hello"},
		Publish: true,
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^hello-world-[0-9a-z]{7}$`), post.Slug)
	assert.True(t, post.Published)
	require.NotNil(t, post.PublishedAt)
	assert.Equal(t, author.ID, post.AuthorID)

	// Excerpt derived from content when not supplied.
	assert.Equal(t, "My first post about Go.", post.Excerpt)

	// Tags resolved and attached.
	require.Len(t, post.Tags, 2)

	// Author loaded without credentials.
	require.NotNil(t, post.Author)
	assert.Empty(t, post.Author.PasswordHash)
}

func TestCreatePost_Draft(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Work in Progress",
		Content: "Draft content",
	})
	require.NoError(t, err)
	assert.False(t, post.Published)
	assert.Nil(t, post.PublishedAt)

	// Drafts are hidden from other viewers.
	_, err = svc.GetPost(ctx, post.ID, "someone-else")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// But visible to the author, by ID or slug.
	got, err := svc.GetPost(ctx, post.Slug, author.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestCreatePost_Validation(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{Content: "no title"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.CreatePost(ctx, author.ID, CreatePostRequest{Title: "no content"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

// conflictingPostStore reports a slug collision on every post insert.
type conflictingPostStore struct {
	store.Store
}

func (cs *conflictingPostStore) CreatePost(_ context.Context, _ *domain.Post, _ []string) error {
	return store.ErrAlreadyExists
}

func TestCreatePost_SlugRetriesExhausted(t *testing.T) {
	base := newServiceTestStore(t)
	author := createServiceTestUser(t, base, "alice")
	svc := NewPostService(&conflictingPostStore{Store: base}, validation.New(), newTestSSEManager(), testLogger())

	_, err := svc.CreatePost(context.Background(), author.ID, CreatePostRequest{
		Title:   "Collides Every Time",
		Content: "c",
	})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestResolveTags_ReusesByNormalizedName(t *testing.T) {
	svc, tagSvc := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "First",
		Content: "c",
		Tags:    []string{"Node.js"},
		Publish: true,
	})
	require.NoError(t, err)
	require.Len(t, first.Tags, 1)

	// All spellings of the same normalized name reuse the existing tag.
	second, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Second",
		Content: "c",
		Tags:    []string{"NODE JS", "node-js", "nodejs"},
		Publish: true,
	})
	require.NoError(t, err)
	require.Len(t, second.Tags, 1)
	assert.Equal(t, first.Tags[0].ID, second.Tags[0].ID)

	// The original casing survives.
	assert.Equal(t, "Node.js", second.Tags[0].Name)

	// No near-duplicate tags accumulated.
	all, err := tagSvc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResolveTags_SkipsEmptyAndCollapsesDuplicates(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Tags",
		Content: "c",
		Tags:    []string{"  go  ", "!!!", "GO", "rust"},
	})
	require.NoError(t, err)

	// "!!!" normalizes to nothing and is skipped; "go" and "GO" collapse.
	require.Len(t, post.Tags, 2)

	names := []string{post.Tags[0].Name, post.Tags[1].Name}
	assert.Contains(t, names, "go")
	assert.Contains(t, names, "rust")
}

func TestCreateTag_ReusesWinnerOnConflict(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	// Another request created the tag between the resolver's lookup and
	// the insert; the insert hits the slug uniqueness constraint.
	now := time.Now()
	winner := &domain.Tag{
		ID:        "tag-winner",
		Name:      "golang",
		Slug:      "golang",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, svc.store.CreateTag(ctx, winner))

	tag, err := svc.createTag(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, tag.ID)
}

func TestResolveTags_TooMany(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")

	_, err := svc.CreatePost(context.Background(), author.ID, CreatePostRequest{
		Title:   "Over-tagged",
		Content: "c",
		Tags:    []string{"a", "b", "c", "d", "e", "f"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUpdatePost_TitleRegeneratesSlug(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Old Title",
		Content: "c",
	})
	require.NoError(t, err)
	oldSlug := post.Slug

	newTitle := "Brand New Title"
	updated, err := svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, newTitle, updated.Title)
	assert.NotEqual(t, oldSlug, updated.Slug)
	assert.Regexp(t, regexp.MustCompile(`^brand-new-title-[0-9a-z]{7}$`), updated.Slug)
}

func TestUpdatePost_WhitespaceTitleKeepsSlug(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Stable Title",
		Content: "c",
	})
	require.NoError(t, err)

	// A title that only gains surrounding whitespace is not a rename.
	padded := "  Stable Title  "
	updated, err := svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Title: &padded})
	require.NoError(t, err)

	assert.Equal(t, "Stable Title", updated.Title)
	assert.Equal(t, post.Slug, updated.Slug)
}

func TestUpdatePost_PublishKeepsFirstTimestamp(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Timestamps",
		Content: "c",
	})
	require.NoError(t, err)

	publish := true
	published, err := svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Publish: &publish})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	firstPublished := *published.PublishedAt

	// Unpublish, then publish again: the original timestamp survives.
	unpublish := false
	_, err = svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Publish: &unpublish})
	require.NoError(t, err)

	republished, err := svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Publish: &publish})
	require.NoError(t, err)
	require.NotNil(t, republished.PublishedAt)
	assert.WithinDuration(t, firstPublished, *republished.PublishedAt, 0)
}

func TestUpdatePost_TagPatchSemantics(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Tagged",
		Content: "c",
		Tags:    []string{"go", "sql"},
	})
	require.NoError(t, err)
	require.Len(t, post.Tags, 2)

	// Nil tags leave the set untouched.
	content := "updated content"
	updated, err := svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Content: &content})
	require.NoError(t, err)
	assert.Len(t, updated.Tags, 2)

	// Replacing swaps the whole set.
	newTags := []string{"rust"}
	updated, err = svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Tags: &newTags})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "rust", updated.Tags[0].Name)

	// An empty slice clears everything.
	empty := []string{}
	updated, err = svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Tags: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestUpdatePost_DerivedExcerptFollowsContent(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Excerpts",
		Content: "original content",
	})
	require.NoError(t, err)
	assert.Equal(t, "original content", post.Excerpt)

	content := "completely different words"
	updated, err := svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "completely different words", updated.Excerpt)

	// An explicit excerpt wins over derivation.
	excerpt := "hand-written summary"
	newContent := "even newer content"
	updated, err = svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostRequest{
		Content: &newContent,
		Excerpt: &excerpt,
	})
	require.NoError(t, err)
	assert.Equal(t, "hand-written summary", updated.Excerpt)
}

func TestUpdatePost_Ownership(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	stranger := createServiceTestUser(t, svc.store, "mallory")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Mine",
		Content: "c",
	})
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.UpdatePost(ctx, stranger.ID, post.ID, UpdatePostRequest{Title: &title})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = svc.UpdatePost(ctx, author.ID, "post-missing", UpdatePostRequest{Title: &title})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeletePost(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	stranger := createServiceTestUser(t, svc.store, "mallory")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{
		Title:   "Short-lived",
		Content: "c",
		Publish: true,
	})
	require.NoError(t, err)

	err = svc.DeletePost(ctx, stranger.ID, post.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, svc.DeletePost(ctx, author.ID, post.ID))

	_, err = svc.GetPost(ctx, post.ID, author.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListPosts_AuthorDrafts(t *testing.T) {
	svc, _ := newTestPostService(t)
	author := createServiceTestUser(t, svc.store, "alice")
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, author.ID, CreatePostRequest{Title: "Published", Content: "c", Publish: true})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, author.ID, CreatePostRequest{Title: "Draft", Content: "c"})
	require.NoError(t, err)

	// Anonymous listing sees published only.
	page, err := svc.ListPosts(ctx, ListPostsRequest{AuthorUsername: "alice"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	// The author sees their drafts too.
	page, err = svc.ListPosts(ctx, ListPostsRequest{AuthorUsername: "alice", ViewerID: author.ID})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	// Unknown author is a 404, not an empty page.
	_, err = svc.ListPosts(ctx, ListPostsRequest{AuthorUsername: "nobody"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestFollowingFeed(t *testing.T) {
	svc, _ := newTestPostService(t)
	reader := createServiceTestUser(t, svc.store, "reader")
	followed := createServiceTestUser(t, svc.store, "followed")
	other := createServiceTestUser(t, svc.store, "other")
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, followed.ID, CreatePostRequest{Title: "In Feed", Content: "c", Publish: true})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, other.ID, CreatePostRequest{Title: "Not In Feed", Content: "c", Publish: true})
	require.NoError(t, err)

	// Empty follow graph, empty feed.
	page, err := svc.FollowingFeed(ctx, reader.ID, 10, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	social := NewSocialService(svc.store, newTestSSEManager(), testLogger())
	_, err = social.ToggleFollow(ctx, reader.ID, "followed")
	require.NoError(t, err)

	page, err = svc.FollowingFeed(ctx, reader.ID, 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "In Feed", page.Items[0].Title)
}
