package domain

// Comment represents a reader comment on a post. A comment may reply to
// another comment on the same post via ParentID; nesting is single-level.
type Comment struct {
	Entity
	PostID   string  `json:"post_id"`
	AuthorID string  `json:"author_id"`
	ParentID *string `json:"parent_id,omitempty"`
	Content  string  `json:"content"`

	// Loaded relations
	Author  *User      `json:"author,omitempty"`
	Replies []*Comment `json:"replies,omitempty"`
}

// IsReply returns true if this comment replies to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
