package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"

	"github.com/bookly/bookly-server/internal/domain"
	domainerrors "github.com/bookly/bookly-server/internal/errors"
	"github.com/bookly/bookly-server/internal/id"
	"github.com/bookly/bookly-server/internal/store"
)

// TagService orchestrates tag operations.
// Tags are global: any user can create them and attach them to any book.
type TagService struct {
	store  store.Store
	books  *BookService
	logger *slog.Logger
}

// NewTagService creates a new tag service. Book lookups and reindexing go through books.
func NewTagService(store store.Store, books *BookService, logger *slog.Logger) *TagService {
	return &TagService{store: store, books: books, logger: logger}
}

// TagCreateRequest names a tag.
type TagCreateRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// TagsAddRequest lists tags to attach to a book.
type TagsAddRequest struct {
	Tags []TagCreateRequest `json:"tags" validate:"required,min=1,dive"`
}

// normalizeTag cleans a display name and derives its slug.
// "Sci-Fi ", "sci fi" and "SCI FI" all share the slug "sci-fi".
func normalizeTag(raw string) (name, tagSlug string, err error) {
	name = strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
	tagSlug = slug.Make(name)
	if tagSlug == "" {
		return "", "", domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"name": "must contain at least one letter or digit"})
	}
	return name, tagSlug, nil
}

// List returns every tag ordered by name.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// Create adds a new tag. A name that normalizes to an existing slug is rejected.
func (s *TagService) Create(ctx context.Context, req TagCreateRequest) (*domain.Tag, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	name, tagSlug, err := normalizeTag(req.Name)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetTagBySlug(ctx, tagSlug); err == nil {
		return nil, domainerrors.ErrTagAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup tag: %w", err)
	}

	t := &domain.Tag{UID: id.New(), Name: name, Slug: tagSlug, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateTag(ctx, t); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ErrTagAlreadyExists
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created", "tag_uid", t.UID, "slug", t.Slug)
	return t, nil
}

// findOrCreate returns the tag with name's slug, creating it when missing.
func (s *TagService) findOrCreate(ctx context.Context, raw string) (*domain.Tag, error) {
	name, tagSlug, err := normalizeTag(raw)
	if err != nil {
		return nil, err
	}

	t, err := s.store.GetTagBySlug(ctx, tagSlug)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup tag: %w", err)
	}

	t = &domain.Tag{UID: id.New(), Name: name, Slug: tagSlug, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateTag(ctx, t); err != nil {
		// Someone else created it first.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.GetTagBySlug(ctx, tagSlug)
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	s.logger.Info("tag created", "tag_uid", t.UID, "slug", t.Slug)
	return t, nil
}

// AddToBook attaches each named tag to a book, creating tags as needed, and
// returns the book with its full tag list. Links that already exist are kept.
func (s *TagService) AddToBook(ctx context.Context, bookUID string, req TagsAddRequest) (*domain.BookDetail, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, bookUID); err != nil {
		return nil, translate(err, domainerrors.ErrBookNotFound, "get book")
	}

	tagUIDs := make([]string, 0, len(req.Tags))
	seen := make(map[string]bool, len(req.Tags))
	for _, item := range req.Tags {
		t, err := s.findOrCreate(ctx, item.Name)
		if err != nil {
			return nil, err
		}
		if !seen[t.UID] {
			seen[t.UID] = true
			tagUIDs = append(tagUIDs, t.UID)
		}
	}

	if err := s.store.AddBookTags(ctx, bookUID, tagUIDs); err != nil {
		if errors.Is(err, store.ErrReferenceMissing) {
			return nil, domainerrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("link tags: %w", err)
	}

	s.books.reindex(ctx, bookUID)
	s.logger.Info("tags added to book", "book_uid", bookUID, "count", len(tagUIDs))

	return s.books.Get(ctx, bookUID)
}

// RemoveFromBook detaches one tag from a book.
func (s *TagService) RemoveFromBook(ctx context.Context, bookUID, tagUID string) error {
	if _, err := s.store.GetBook(ctx, bookUID); err != nil {
		return translate(err, domainerrors.ErrBookNotFound, "get book")
	}
	if err := s.store.RemoveBookTag(ctx, bookUID, tagUID); err != nil {
		return translate(err, domainerrors.ErrTagNotFound, "unlink tag")
	}

	s.books.reindex(ctx, bookUID)
	s.logger.Info("tag removed from book", "book_uid", bookUID, "tag_uid", tagUID)
	return nil
}

// Update renames a tag.
func (s *TagService) Update(ctx context.Context, uid string, req TagCreateRequest) (*domain.Tag, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	name, tagSlug, err := normalizeTag(req.Name)
	if err != nil {
		return nil, err
	}

	t, err := s.store.GetTag(ctx, uid)
	if err != nil {
		return nil, translate(err, domainerrors.ErrTagNotFound, "get tag")
	}

	t.Name = name
	t.Slug = tagSlug
	if err := s.store.UpdateTag(ctx, t); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ErrTagAlreadyExists
		}
		return nil, translate(err, domainerrors.ErrTagNotFound, "update tag")
	}

	s.reindexTagged(ctx, uid)
	s.logger.Info("tag renamed", "tag_uid", uid, "slug", tagSlug)
	return t, nil
}

// Delete removes a tag and every link to it.
func (s *TagService) Delete(ctx context.Context, uid string) error {
	affected, err := s.store.ListBookUIDsForTag(ctx, uid)
	if err != nil {
		return fmt.Errorf("list tagged books: %w", err)
	}

	if err := s.store.DeleteTag(ctx, uid); err != nil {
		return translate(err, domainerrors.ErrTagNotFound, "delete tag")
	}

	s.books.reindex(ctx, affected...)
	s.logger.Info("tag deleted", "tag_uid", uid, "books", len(affected))
	return nil
}

func (s *TagService) reindexTagged(ctx context.Context, tagUID string) {
	uids, err := s.store.ListBookUIDsForTag(ctx, tagUID)
	if err != nil {
		s.logger.Warn("list tagged books for indexing", "tag_uid", tagUID, "error", err)
		return
	}
	s.books.reindex(ctx, uids...)
}
