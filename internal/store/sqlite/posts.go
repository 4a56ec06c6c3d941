package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// postColumns is the ordered list of columns selected in post queries.
// Must match the scan order in scanPost.
const postColumns = `id, created_at, updated_at, author_id, title, slug,
	content, excerpt, cover_image, published, published_at`

// scanPost scans a sql.Row (or sql.Rows via its Scan method) into a domain.Post.
// Relations (Author, Tags, counts) are filled by loadPostRelations.
func scanPost(scanner interface{ Scan(dest ...any) error }) (*domain.Post, error) {
	var p domain.Post

	var (
		createdAt   string
		updatedAt   string
		coverImage  sql.NullString
		published   int
		publishedAt sql.NullString
	)

	err := scanner.Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
		&p.AuthorID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.Excerpt,
		&coverImage,
		&published,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	p.PublishedAt, err = parseNullableTime(publishedAt)
	if err != nil {
		return nil, err
	}

	if coverImage.Valid {
		p.CoverImage = &coverImage.String
	}
	p.Published = published != 0

	return &p, nil
}

// CreatePost inserts a post and its tag associations in one transaction.
// Returns store.ErrAlreadyExists on a slug collision.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO posts (
			id, created_at, updated_at, author_id, title, slug,
			content, excerpt, cover_image, published, published_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		formatTime(post.CreatedAt),
		formatTime(post.UpdatedAt),
		post.AuthorID,
		post.Title,
		post.Slug,
		post.Content,
		post.Excerpt,
		nullableString(post.CoverImage),
		boolToInt(post.Published),
		nullTimeString(post.PublishedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO post_tags (post_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			post.ID,
			tagID,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert post_tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncSearchIndex(ctx, post.ID)
	return nil
}

// GetPost retrieves a post by ID with relations loaded.
// Returns store.ErrNotFound if the post does not exist.
func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return s.finishPostRow(ctx, row)
}

// GetPostBySlug retrieves a post by slug with relations loaded.
// Returns store.ErrNotFound if the post does not exist.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return s.finishPostRow(ctx, row)
}

func (s *Store) finishPostRow(ctx context.Context, row *sql.Row) (*domain.Post, error) {
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadPostRelations(ctx, []*domain.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePost writes the full post row back. Tag links are managed
// separately via SetPostTags.
// Returns store.ErrNotFound if the post does not exist.
func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE posts SET
			updated_at = ?, title = ?, slug = ?, content = ?, excerpt = ?,
			cover_image = ?, published = ?, published_at = ?
		WHERE id = ?`,
		formatTime(post.UpdatedAt),
		post.Title,
		post.Slug,
		post.Content,
		post.Excerpt,
		nullableString(post.CoverImage),
		boolToInt(post.Published),
		nullTimeString(post.PublishedAt),
		post.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	s.syncSearchIndex(ctx, post.ID)
	return nil
}

// DeletePost removes a post. Tag links, comments, and likes cascade.
// Returns store.ErrNotFound if the post does not exist.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.DeletePost(id); err != nil {
		s.logger.Warn("failed to remove post from search index", "post_id", id, "error", err)
	}
	return nil
}

// SetPostTags replaces all tag links for a post in a single transaction.
// It deletes existing post_tags rows and inserts the new set.
func (s *Store) SetPostTags(ctx context.Context, postID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("delete post_tags: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO post_tags (post_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			postID,
			tagID,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert post_tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncSearchIndex(ctx, postID)
	return nil
}

// ListPosts returns posts matching the filter, newest first.
func (s *Store) ListPosts(ctx context.Context, filter store.PostFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Post], error) {
	params.Validate()

	var (
		where []string
		args  []any
	)

	if filter.PublishedOnly {
		where = append(where, `p.published = 1`)
	} else if filter.ViewerID != "" {
		// Unpublished drafts stay private to their author.
		where = append(where, `(p.published = 1 OR p.author_id = ?)`)
		args = append(args, filter.ViewerID)
	}

	if filter.AuthorID != "" {
		where = append(where, `p.author_id = ?`)
		args = append(args, filter.AuthorID)
	}

	if filter.TagSlug != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = ?)`)
		args = append(args, filter.TagSlug)
	}

	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		where = append(where, `(
			LOWER(p.title) LIKE ? OR LOWER(p.content) LIKE ? OR LOWER(p.excerpt) LIKE ?
			OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
				WHERE pt.post_id = p.id AND LOWER(t.name) LIKE ?)
			OR EXISTS (SELECT 1 FROM users u WHERE u.id = p.author_id
				AND (LOWER(u.display_name) LIKE ? OR LOWER(u.username) LIKE ?)))`)
		args = append(args, needle, needle, needle, needle, needle, needle)
	}

	return s.listPostsPage(ctx, where, args, params)
}

// ListPostsByAuthors returns published posts by any of the given authors,
// newest first. An empty author list yields an empty page.
func (s *Store) ListPostsByAuthors(ctx context.Context, authorIDs []string, params store.PaginationParams) (*store.PaginatedResult[*domain.Post], error) {
	params.Validate()

	if len(authorIDs) == 0 {
		return &store.PaginatedResult[*domain.Post]{Items: []*domain.Post{}}, nil
	}

	placeholders := strings.Repeat("?,", len(authorIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(authorIDs))
	for i, id := range authorIDs {
		args[i] = id
	}

	where := []string{
		`p.published = 1`,
		`p.author_id IN (` + placeholders + `)`,
	}

	return s.listPostsPage(ctx, where, args, params)
}

// listPostsPage runs a keyset-paginated post query. The cursor encodes the
// last row's "created_at|id" sort key.
func (s *Store) listPostsPage(ctx context.Context, where []string, args []any, params store.PaginationParams) (*store.PaginatedResult[*domain.Post], error) {
	if params.Cursor != "" {
		key, err := store.DecodeCursor(params.Cursor)
		if err != nil {
			return nil, store.ErrInvalidInput.WithCause(err)
		}
		createdAt, id, ok := strings.Cut(key, "|")
		if !ok {
			return nil, store.ErrInvalidInput.WithMessage("malformed cursor")
		}
		where = append(where, `(p.created_at < ? OR (p.created_at = ? AND p.id < ?))`)
		args = append(args, createdAt, createdAt, id)
	}

	query := `SELECT ` + postColumnsPrefixed + ` FROM posts p`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &store.PaginatedResult[*domain.Post]{}
	if len(posts) > params.Limit {
		posts = posts[:params.Limit]
		result.HasMore = true
		last := posts[len(posts)-1]
		result.NextCursor = store.EncodeCursor(formatTime(last.CreatedAt) + "|" + last.ID)
	}

	if posts == nil {
		posts = []*domain.Post{}
	}
	if err := s.loadPostRelations(ctx, posts); err != nil {
		return nil, err
	}

	result.Items = posts
	return result, nil
}

// postColumnsPrefixed is postColumns with the "p." alias for joins.
const postColumnsPrefixed = `p.id, p.created_at, p.updated_at, p.author_id, p.title, p.slug,
	p.content, p.excerpt, p.cover_image, p.published, p.published_at`

// ListTrendingPosts returns published posts ranked by like count, then
// recency as a tiebreak.
func (s *Store) ListTrendingPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumnsPrefixed+`
		FROM posts p
		WHERE p.published = 1
		ORDER BY (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) DESC,
			p.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if posts == nil {
		posts = []*domain.Post{}
	}
	if err := s.loadPostRelations(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// loadPostRelations fills Author, Tags, LikeCount, and CommentCount for a
// batch of posts using one query per relation.
func (s *Store) loadPostRelations(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Post, len(posts))
	authorIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		p.Tags = []*domain.Tag{}
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := s.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if author, ok := authors[p.AuthorID]; ok {
			public := *author
			public.PasswordHash = ""
			p.Author = &public
		}
	}

	placeholders := strings.Repeat("?,", len(posts))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(posts))
	for _, p := range posts {
		args = append(args, p.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at, t.updated_at
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+placeholders+`)
		ORDER BY t.slug ASC`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var t domain.Tag
		var createdAt, updatedAt string
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &createdAt, &updatedAt); err != nil {
			return err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, &t)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	countRows, err := s.db.QueryContext(ctx, `
		SELECT p.id,
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
		FROM posts p WHERE p.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return err
	}
	defer countRows.Close()

	for countRows.Next() {
		var postID string
		var likes, comments int
		if err := countRows.Scan(&postID, &likes, &comments); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.LikeCount = likes
			p.CommentCount = comments
		}
	}
	return countRows.Err()
}

// syncSearchIndex re-indexes a post after a mutation. Failures are logged,
// never surfaced; the index rebuilds itself on mapping changes anyway.
func (s *Store) syncSearchIndex(ctx context.Context, postID string) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		s.logger.Warn("failed to load post for indexing", "post_id", postID, "error", err)
		return
	}
	if err := s.searchIndexer.IndexPost(post); err != nil {
		s.logger.Warn("failed to index post", "post_id", postID, "error", err)
	}
}
