package domain

import "time"

// Follow represents one user following another's posts.
// Self-follows are rejected at the service layer.
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Like represents a user liking a post. One like per user per post;
// liking again removes it (toggle semantics).
type Like struct {
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
