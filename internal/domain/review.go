package domain

// Review is a user's rating of a book.
type Review struct {
	Timestamps
	UID        string `json:"uid"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
	UserUID    string `json:"user_uid,omitempty"`
	BookUID    string `json:"book_uid,omitempty"`
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)
