package domain

import "time"

// Tag represents a global community tag for categorizing posts.
// Tags are shared across all users — no ownership model.
// Name preserves the casing of whoever created the tag first; Slug is the
// canonical lowercase-hyphenated form used in URLs.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PostCount int       `json:"post_count"` // Denormalized count of posts with this tag
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// PostTag represents the many-to-many relationship between posts and tags.
type PostTag struct {
	PostID    string    `json:"post_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
