// Package search provides full-text search over books using Bleve.
package search

import (
	"github.com/bookly/bookly-server/internal/domain"
)

// BookDocument is the indexed form of a book. Tag slugs are denormalized
// onto the book so a single query can match either.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Publisher   string   `json:"publisher,omitempty"`
	Language    string   `json:"language,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	PublishYear int      `json:"publish_year,omitempty"`
	CreatedAt   int64    `json:"created_at"` // Unix ms
}

// NewBookDocument builds the search document for b and its tags.
func NewBookDocument(b *domain.Book, tags []*domain.Tag) *BookDocument {
	doc := &BookDocument{
		ID:        b.UID,
		Title:     b.Title,
		Author:    b.Author,
		Publisher: b.Publisher,
		Language:  b.Language,
		CreatedAt: b.CreatedAt.UnixMilli(),
	}
	if !b.PublishedDate.IsZero() {
		doc.PublishYear = b.PublishedDate.Year()
	}
	for _, t := range tags {
		doc.Tags = append(doc.Tags, t.Slug)
	}
	return doc
}

// ToMap converts the document to the field names used by the mapping.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"publisher":  d.Publisher,
		"language":   d.Language,
		"created_at": float64(d.CreatedAt),
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.PublishYear > 0 {
		m["publish_year"] = float64(d.PublishYear)
	}
	return m
}
