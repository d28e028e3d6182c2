// Package store defines the persistence interfaces for the Bookly server.
//
// Lookups return ErrNotFound when the row is missing, inserts return
// ErrAlreadyExists on unique violations, and updates or deletes that touch
// no row return ErrNotFound.
package store

import (
	"context"

	"github.com/bookly/bookly-server/internal/domain"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, uid string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, uid string) error
}

// BookStore persists books.
type BookStore interface {
	CreateBook(ctx context.Context, b *domain.Book) error
	GetBook(ctx context.Context, uid string) (*domain.Book, error)
	// ListBooks returns every book, newest first.
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListBooksByUser(ctx context.Context, userUID string) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, b *domain.Book) error
	DeleteBook(ctx context.Context, uid string) error
}

// ReviewStore persists reviews.
type ReviewStore interface {
	CreateReview(ctx context.Context, r *domain.Review) error
	GetReview(ctx context.Context, uid string) (*domain.Review, error)
	ListReviews(ctx context.Context) ([]*domain.Review, error)
	ListReviewsByBook(ctx context.Context, bookUID string) ([]*domain.Review, error)
	ListReviewsByUser(ctx context.Context, userUID string) ([]*domain.Review, error)
	DeleteReview(ctx context.Context, uid string) error
}

// TagStore persists tags and their links to books.
type TagStore interface {
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, uid string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, uid string) error

	// AddBookTags links tags to a book in one transaction. Existing links are kept.
	AddBookTags(ctx context.Context, bookUID string, tagUIDs []string) error
	RemoveBookTag(ctx context.Context, bookUID, tagUID string) error
	ListTagsForBook(ctx context.Context, bookUID string) ([]*domain.Tag, error)
	ListBookUIDsForTag(ctx context.Context, tagUID string) ([]string, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	BookStore
	ReviewStore
	TagStore

	Ping(ctx context.Context) error
	Close() error
}
