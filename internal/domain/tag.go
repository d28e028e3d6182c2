package domain

import "time"

// Tag is a label that can be attached to many books.
// Slug is the case-folded form of Name and is what uniqueness is enforced on.
type Tag struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Slug      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// BookTag links a book to a tag.
type BookTag struct {
	BookUID string
	TagUID  string
}
