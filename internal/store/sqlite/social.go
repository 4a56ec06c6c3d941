package sqlite

import (
	"context"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// FollowExists reports whether follower already follows followee.
func (s *Store) FollowExists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// CreateFollow inserts a follow edge.
// Returns store.ErrAlreadyExists if the edge already exists.
func (s *Store) CreateFollow(ctx context.Context, f *domain.Follow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES (?, ?, ?)`,
		f.FollowerID,
		f.FolloweeID,
		formatTime(f.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeleteFollow removes a follow edge.
// Returns store.ErrNotFound if the edge does not exist.
func (s *Store) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID)
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
	return nil
}

// ListFolloweeIDs returns the IDs of every user followerID follows.
func (s *Store) ListFolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = ?`, followerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// LikeExists reports whether the user already likes the post.
func (s *Store) LikeExists(ctx context.Context, userID, postID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM likes WHERE user_id = ? AND post_id = ?`,
		userID, postID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// CreateLike inserts a like.
// Returns store.ErrAlreadyExists if the like already exists.
func (s *Store) CreateLike(ctx context.Context, l *domain.Like) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO likes (user_id, post_id, created_at)
		VALUES (?, ?, ?)`,
		l.UserID,
		l.PostID,
		formatTime(l.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeleteLike removes a like.
// Returns store.ErrNotFound if the like does not exist.
func (s *Store) DeleteLike(ctx context.Context, userID, postID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
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
	return nil
}

// CountPostLikes returns the number of likes on a post.
func (s *Store) CountPostLikes(ctx context.Context, postID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&count)
	return count, err
}
