// Package sse implements Server-Sent Events for real-time feed updates
// and notifications.
package sse

import (
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// SSE carries server-to-client notifications only. Everything else in
// Inkwell follows a request/response pattern.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventPostPublished fires when a post goes from draft to published.
	EventPostPublished EventType = "post.published"

	// EventCommentCreated fires when someone comments on a post.
	// Targeted at the post author.
	EventCommentCreated EventType = "comment.created"

	// EventPostLiked fires when someone likes a post.
	// Targeted at the post author.
	EventPostLiked EventType = "post.liked"

	// EventUserFollowed fires when someone follows a user.
	// Targeted at the followed user.
	EventUserFollowed EventType = "user.followed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// When set, the event is only delivered to clients authenticated as
	// this user. Empty string means broadcast to all connected clients.
	UserID string `json:"-"`
}

// PostPublishedEventData is the data payload for post.published events.
type PostPublishedEventData struct {
	PostID      string    `json:"post_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	AuthorID    string    `json:"author_id"`
	PublishedAt time.Time `json:"published_at"`
}

// CommentCreatedEventData is the data payload for comment.created events.
type CommentCreatedEventData struct {
	CommentID string `json:"comment_id"`
	PostID    string `json:"post_id"`
	AuthorID  string `json:"author_id"`
	ParentID  string `json:"parent_id,omitempty"`
}

// PostLikedEventData is the data payload for post.liked events.
type PostLikedEventData struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

// UserFollowedEventData is the data payload for user.followed events.
type UserFollowedEventData struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewPostPublishedEvent creates a post.published event for all clients.
func NewPostPublishedEvent(post *domain.Post) Event {
	publishedAt := time.Now()
	if post.PublishedAt != nil {
		publishedAt = *post.PublishedAt
	}
	return Event{
		Type: EventPostPublished,
		Data: PostPublishedEventData{
			PostID:      post.ID,
			Slug:        post.Slug,
			Title:       post.Title,
			AuthorID:    post.AuthorID,
			PublishedAt: publishedAt,
		},
		Timestamp: time.Now(),
	}
}

// NewCommentCreatedEvent creates a comment.created event.
func NewCommentCreatedEvent(comment *domain.Comment) Event {
	data := CommentCreatedEventData{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
	}
	if comment.ParentID != nil {
		data.ParentID = *comment.ParentID
	}
	return Event{
		Type:      EventCommentCreated,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewPostLikedEvent creates a post.liked event.
func NewPostLikedEvent(postID, userID string) Event {
	return Event{
		Type: EventPostLiked,
		Data: PostLikedEventData{
			PostID: postID,
			UserID: userID,
		},
		Timestamp: time.Now(),
	}
}

// NewUserFollowedEvent creates a user.followed event.
func NewUserFollowedEvent(followerID, followeeID string) Event {
	return Event{
		Type: EventUserFollowed,
		Data: UserFollowedEventData{
			FollowerID: followerID,
			FolloweeID: followeeID,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
