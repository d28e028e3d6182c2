package domain

import "time"

// Book is a submitted book. UserUID is empty once the owner account is gone.
type Book struct {
	Timestamps
	UID           string    `json:"uid"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Publisher     string    `json:"publisher"`
	PublishedDate time.Time `json:"published_date"`
	PageCount     int       `json:"page_count"`
	Language      string    `json:"language"`
	UserUID       string    `json:"user_uid,omitempty"`
}

// BookUpdate is a partial update; nil fields are left unchanged.
type BookUpdate struct {
	Title         *string
	Author        *string
	Publisher     *string
	PublishedDate *time.Time
	PageCount     *int
	Language      *string
}

// Apply overwrites the non-nil fields of upd onto b.
func (b *Book) Apply(upd BookUpdate) {
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Author != nil {
		b.Author = *upd.Author
	}
	if upd.Publisher != nil {
		b.Publisher = *upd.Publisher
	}
	if upd.PublishedDate != nil {
		b.PublishedDate = *upd.PublishedDate
	}
	if upd.PageCount != nil {
		b.PageCount = *upd.PageCount
	}
	if upd.Language != nil {
		b.Language = *upd.Language
	}
}

// BookDetail is a book together with its reviews and tags.
type BookDetail struct {
	Book
	Reviews []*Review `json:"reviews"`
	Tags    []*Tag    `json:"tags"`
}
