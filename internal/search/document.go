// Package search provides full-text search over posts using Bleve.
// It supports fuzzy matching, field boosting, and tag filtering.
package search

import (
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/richtext"
)

// PostDocument is the document structure for the Bleve index.
//
// Design note: author name and tag names are denormalized into the post
// document so one query covers everything a reader might type. The
// trade-off is reindexing a post when its author renames themselves,
// which is rare enough to accept.
type PostDocument struct {
	// Identity
	ID   string `json:"id"`
	Slug string `json:"slug"`

	// Primary searchable text
	Title   string `json:"title"`
	Content string `json:"content"` // Plain text, markup stripped
	Excerpt string `json:"excerpt,omitempty"`

	// Denormalized for search
	Author string `json:"author,omitempty"`

	// Tag slugs for exact filtering, tag names for full-text matching
	TagSlugs []string `json:"tag_slugs,omitempty"`
	TagNames []string `json:"tag_names,omitempty"`

	Published bool `json:"published"`

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *PostDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"slug":       d.Slug,
		"title":      d.Title,
		"content":    d.Content,
		"published":  d.Published,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Excerpt != "" {
		m["excerpt"] = d.Excerpt
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if len(d.TagSlugs) > 0 {
		m["tag_slugs"] = d.TagSlugs
	}
	if len(d.TagNames) > 0 {
		m["tag_names"] = d.TagNames
	}

	return m
}

// PostToDocument converts a domain Post to a PostDocument.
// Content is reduced to plain text so markup never matches queries.
func PostToDocument(post *domain.Post) *PostDocument {
	doc := &PostDocument{
		ID:        post.ID,
		Slug:      post.Slug,
		Title:     post.Title,
		Content:   richtext.ToPlainText(post.Content),
		Excerpt:   post.Excerpt,
		Published: post.Published,
		CreatedAt: post.CreatedAt.UnixMilli(),
		UpdatedAt: post.UpdatedAt.UnixMilli(),
	}

	if post.Author != nil {
		doc.Author = post.Author.Name()
	}
	for _, tag := range post.Tags {
		doc.TagSlugs = append(doc.TagSlugs, tag.Slug)
		doc.TagNames = append(doc.TagNames, tag.Name)
	}

	return doc
}
