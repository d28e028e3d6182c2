package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags",
		Tags:        []string{"Tags"},
		Security:    bearer,
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/tags",
		Summary:       "Create tag",
		Description:   "Creates a new tag. Names are unique ignoring case.",
		Tags:          []string{"Tags"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/book/{book_uid}/tags",
		Summary:     "Tag a book",
		Description: "Finds or creates each named tag and links it to the book",
		Tags:        []string{"Tags"},
		Security:    bearer,
	}, s.handleAddBookTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "removeBookTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tags/book/{book_uid}/tags/{tag_uid}",
		Summary:       "Untag a book",
		Description:   "Removes a tag from a book",
		Tags:          []string{"Tags"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleRemoveBookTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/tags/{tag_uid}",
		Summary:     "Rename tag",
		Description: "Renames a tag",
		Tags:        []string{"Tags"},
		Security:    bearer,
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tags/{tag_uid}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag and detaches it from every book",
		Tags:          []string{"Tags"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTag)
}

// === DTOs ===

// TagsOutput wraps a list of tags for Huma.
type TagsOutput struct {
	Body []*domain.Tag
}

// TagOutput wraps a tag for Huma.
type TagOutput struct {
	Body *domain.Tag
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Authorization string `header:"Authorization"`
	Body          service.TagCreateRequest
}

// AddBookTagsInput wraps the tag-a-book request for Huma.
type AddBookTagsInput struct {
	Authorization string `header:"Authorization"`
	BookUID       string `path:"book_uid" doc:"Book UID"`
	Body          service.TagsAddRequest
}

// RemoveBookTagInput identifies a book-tag link.
type RemoveBookTagInput struct {
	Authorization string `header:"Authorization"`
	BookUID       string `path:"book_uid" doc:"Book UID"`
	TagUID        string `path:"tag_uid" doc:"Tag UID"`
}

// UpdateTagInput wraps the rename request for Huma.
type UpdateTagInput struct {
	Authorization string `header:"Authorization"`
	TagUID        string `path:"tag_uid" doc:"Tag UID"`
	Body          service.TagCreateRequest
}

// TagPathInput identifies a tag.
type TagPathInput struct {
	Authorization string `header:"Authorization"`
	TagUID        string `path:"tag_uid" doc:"Tag UID"`
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *AuthInput) (*TagsOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.List(ctx)
	if err != nil {
		return nil, err
	}
	return &TagsOutput{Body: tags}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: tag}, nil
}

func (s *Server) handleAddBookTags(ctx context.Context, input *AddBookTagsInput) (*BookDetailOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	book, err := s.services.Tag.AddToBook(ctx, input.BookUID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookDetailOutput{Body: book}, nil
}

func (s *Server) handleRemoveBookTag(ctx context.Context, input *RemoveBookTagInput) (*struct{}, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	if err := s.services.Tag.RemoveFromBook(ctx, input.BookUID, input.TagUID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.Update(ctx, input.TagUID, input.Body)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: tag}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagPathInput) (*struct{}, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	if err := s.services.Tag.Delete(ctx, input.TagUID); err != nil {
		return nil, err
	}
	return nil, nil
}
