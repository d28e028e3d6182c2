package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookly/bookly-server/internal/domain"
	domainerrors "github.com/bookly/bookly-server/internal/errors"
	"github.com/bookly/bookly-server/internal/id"
	"github.com/bookly/bookly-server/internal/search"
	"github.com/bookly/bookly-server/internal/store"
	"github.com/bookly/bookly-server/internal/validation"
)

// BookService manages books and keeps the search index in step with the store.
type BookService struct {
	store  store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewBookService creates a new book service. index may be nil, which disables search.
func NewBookService(store store.Store, index *search.SearchIndex, logger *slog.Logger) *BookService {
	return &BookService{store: store, index: index, logger: logger}
}

// BookCreateRequest contains the fields of a new book.
type BookCreateRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	Author        string `json:"author" validate:"required,max=255"`
	Publisher     string `json:"publisher" validate:"required,max=255"`
	PublishedDate string `json:"published_date" validate:"required,date"`
	PageCount     int    `json:"page_count" validate:"gte=0"`
	Language      string `json:"language" validate:"required,max=32"`
}

// BookUpdateRequest is a partial book update.
type BookUpdateRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Author        *string `json:"author,omitempty" validate:"omitempty,max=255"`
	Publisher     *string `json:"publisher,omitempty" validate:"omitempty,max=255"`
	PublishedDate *string `json:"published_date,omitempty" validate:"omitempty,date"`
	PageCount     *int    `json:"page_count,omitempty" validate:"omitempty,gte=0"`
	Language      *string `json:"language,omitempty" validate:"omitempty,max=32"`
}

func (r BookUpdateRequest) toUpdate() domain.BookUpdate {
	upd := domain.BookUpdate{
		Title:     r.Title,
		Author:    r.Author,
		Publisher: r.Publisher,
		PageCount: r.PageCount,
		Language:  r.Language,
	}
	if r.PublishedDate != nil {
		// Already checked by the "date" rule.
		d, _ := time.Parse(validation.DateLayout, *r.PublishedDate)
		upd.PublishedDate = &d
	}
	return upd
}

// BookSearchResult is a page of search hits resolved to books.
type BookSearchResult struct {
	Query  string         `json:"query"`
	Total  uint64         `json:"total"`
	TookMs int64          `json:"took_ms"`
	Books  []*domain.Book `json:"books"`
}

// List returns every book, newest first.
func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// ListByUser returns the books submitted by one user, newest first.
func (s *BookService) ListByUser(ctx context.Context, userUID string) ([]*domain.Book, error) {
	books, err := s.store.ListBooksByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// Get returns a book with its reviews and tags.
func (s *BookService) Get(ctx context.Context, uid string) (*domain.BookDetail, error) {
	b, err := s.store.GetBook(ctx, uid)
	if err != nil {
		return nil, translate(err, domainerrors.ErrBookNotFound, "get book")
	}

	reviews, err := s.store.ListReviewsByBook(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	tags, err := s.store.ListTagsForBook(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}

	return &domain.BookDetail{Book: *b, Reviews: reviews, Tags: tags}, nil
}

// Create stores a new book owned by userUID.
func (s *BookService) Create(ctx context.Context, userUID string, req BookCreateRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	published, _ := time.Parse(validation.DateLayout, req.PublishedDate)

	b := &domain.Book{
		UID:           id.New(),
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		Publisher:     strings.TrimSpace(req.Publisher),
		PublishedDate: published,
		PageCount:     req.PageCount,
		Language:      strings.TrimSpace(req.Language),
		UserUID:       userUID,
	}
	b.InitTimestamps()

	if err := s.store.CreateBook(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.indexBook(ctx, b)
	s.logger.Info("book created", "book_uid", b.UID, "user_uid", userUID)
	return b, nil
}

// Update applies the set fields of req to the book.
func (s *BookService) Update(ctx context.Context, uid string, req BookUpdateRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	b, err := s.store.GetBook(ctx, uid)
	if err != nil {
		return nil, translate(err, domainerrors.ErrBookNotFound, "get book")
	}

	b.Apply(req.toUpdate())
	b.Touch()

	if err := s.store.UpdateBook(ctx, b); err != nil {
		return nil, translate(err, domainerrors.ErrBookNotFound, "update book")
	}

	s.indexBook(ctx, b)
	s.logger.Info("book updated", "book_uid", uid)
	return b, nil
}

// Delete removes a book along with its reviews and tag links.
func (s *BookService) Delete(ctx context.Context, uid string) error {
	if err := s.store.DeleteBook(ctx, uid); err != nil {
		return translate(err, domainerrors.ErrBookNotFound, "delete book")
	}

	if s.index != nil {
		if err := s.index.DeleteBook(uid); err != nil {
			s.logger.Warn("remove book from search index", "book_uid", uid, "error", err)
		}
	}
	s.logger.Info("book deleted", "book_uid", uid)
	return nil
}

// Search runs a full-text query and returns the matching books in rank order.
func (s *BookService) Search(ctx context.Context, params search.SearchParams) (*BookSearchResult, error) {
	if s.index == nil {
		return nil, domainerrors.Internal("search is not available")
	}

	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	books := make([]*domain.Book, 0, len(res.Hits))
	for _, uid := range res.IDs() {
		b, err := s.store.GetBook(ctx, uid)
		if err != nil {
			// The index can briefly trail a delete.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get book: %w", err)
		}
		books = append(books, b)
	}

	return &BookSearchResult{Query: res.Query, Total: res.Total, TookMs: res.TookMs, Books: books}, nil
}

// indexBook writes the book and its current tags to the search index.
// Index failures are logged; the store remains the source of truth.
func (s *BookService) indexBook(ctx context.Context, b *domain.Book) {
	if s.index == nil {
		return
	}
	tags, err := s.store.ListTagsForBook(ctx, b.UID)
	if err != nil {
		s.logger.Warn("load tags for indexing", "book_uid", b.UID, "error", err)
		return
	}
	if err := s.index.IndexBook(search.NewBookDocument(b, tags)); err != nil {
		s.logger.Warn("index book", "book_uid", b.UID, "error", err)
	}
}

// reindex refreshes the index entries of the given books.
func (s *BookService) reindex(ctx context.Context, uids ...string) {
	for _, uid := range uids {
		b, err := s.store.GetBook(ctx, uid)
		if err != nil {
			s.logger.Warn("load book for indexing", "book_uid", uid, "error", err)
			continue
		}
		s.indexBook(ctx, b)
	}
}

// Reindex rebuilds the search index from the store.
func (s *BookService) Reindex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	docs := make([]*search.BookDocument, 0, len(books))
	for _, b := range books {
		tags, err := s.store.ListTagsForBook(ctx, b.UID)
		if err != nil {
			return fmt.Errorf("list tags for %s: %w", b.UID, err)
		}
		docs = append(docs, search.NewBookDocument(b, tags))
	}

	if err := s.index.IndexBooks(docs); err != nil {
		return fmt.Errorf("index books: %w", err)
	}

	s.logger.Info("search index rebuilt", "books", len(docs))
	return nil
}
