package domain

import "time"

// Post represents a published or draft article.
// Slug is the public identifier used in URLs; it carries a random suffix so
// two posts with the same title never collide.
type Post struct {
	Entity
	AuthorID    string     `json:"author_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"` // HTML or Markdown as authored
	Excerpt     string     `json:"excerpt,omitempty"`
	CoverImage  *string    `json:"cover_image,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	// Loaded relations - populated by the store on read, not persisted
	// as post columns.
	Author       *User  `json:"author,omitempty"`
	Tags         []*Tag `json:"tags"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}

// MarkPublished flips the post to published and records the timestamp of
// the first publication. PublishedAt is set once and never cleared, so
// unpublish/republish cycles keep the original date.
func (p *Post) MarkPublished() {
	p.Published = true
	if p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}
}

// IsVisibleTo reports whether userID may read this post.
// Drafts are visible only to their author.
func (p *Post) IsVisibleTo(userID string) bool {
	return p.Published || p.AuthorID == userID
}
