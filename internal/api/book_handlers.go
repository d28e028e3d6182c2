package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/search"
	"github.com/bookly/bookly-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns all books, newest first",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Submits a book owned by the caller",
		Tags:          []string{"Books"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search books",
		Description: "Full-text search over title, author, publisher and tags",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/user/{user_uid}",
		Summary:     "List a user's books",
		Description: "Returns the books submitted by a user, newest first",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleListUserBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{book_uid}",
		Summary:     "Get book",
		Description: "Returns a book with its reviews and tags",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{book_uid}",
		Summary:     "Update book",
		Description: "Updates the provided fields of a book",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{book_uid}",
		Summary:       "Delete book",
		Description:   "Deletes a book along with its reviews and tag links",
		Tags:          []string{"Books"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)
}

// === DTOs ===

// BooksOutput wraps a list of books for Huma.
type BooksOutput struct {
	Body []*domain.Book
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// BookDetailOutput wraps a book with reviews and tags for Huma.
type BookDetailOutput struct {
	Body *domain.BookDetail
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          service.BookCreateRequest
}

// BookPathInput identifies a book.
type BookPathInput struct {
	Authorization string `header:"Authorization"`
	BookUID       string `path:"book_uid" doc:"Book UID"`
}

// UserBooksInput identifies the owner of the listed books.
type UserBooksInput struct {
	Authorization string `header:"Authorization"`
	UserUID       string `path:"user_uid" doc:"User UID"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	BookUID       string `path:"book_uid" doc:"Book UID"`
	Body          service.BookUpdateRequest
}

// SearchBooksInput contains search parameters.
type SearchBooksInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search text"`
	Tag           string `query:"tag" doc:"Only books carrying this tag"`
	Language      string `query:"language" doc:"Only books in this language"`
	Limit         int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset        int    `query:"offset" minimum:"0" doc:"Results to skip"`
}

// SearchBooksOutput wraps search results for Huma.
type SearchBooksOutput struct {
	Body *service.BookSearchResult
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *AuthInput) (*BooksOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	books, err := s.services.Book.List(ctx)
	if err != nil {
		return nil, err
	}
	return &BooksOutput{Body: books}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	user, err := s.authorizeRequest(ctx, input.Authorization, anyRole)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Create(ctx, user.UID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	result, err := s.services.Book.Search(ctx, search.SearchParams{
		Query:    input.Query,
		Tag:      input.Tag,
		Language: input.Language,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchBooksOutput{Body: result}, nil
}

func (s *Server) handleListUserBooks(ctx context.Context, input *UserBooksInput) (*BooksOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListByUser(ctx, input.UserUID)
	if err != nil {
		return nil, err
	}
	return &BooksOutput{Body: books}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookPathInput) (*BookDetailOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	book, err := s.services.Book.Get(ctx, input.BookUID)
	if err != nil {
		return nil, err
	}
	return &BookDetailOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	book, err := s.services.Book.Update(ctx, input.BookUID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookPathInput) (*struct{}, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	if err := s.services.Book.Delete(ctx, input.BookUID); err != nil {
		return nil, err
	}
	return nil, nil
}
