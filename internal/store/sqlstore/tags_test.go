package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/store"
)

// makeTestTag creates a domain.Tag with sensible defaults for testing.
func makeTestTag(uid, name, slug string) *domain.Tag {
	return &domain.Tag{
		UID:       uid,
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}
}

func TestCreateAndGetTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := makeTestTag("tag-1", "Slow Burn", "slow-burn")
	if err := s.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	got, err := s.GetTag(ctx, "tag-1")
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if got.Name != "Slow Burn" || got.Slug != "slow-burn" {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(tag.CreatedAt.UTC()) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, tag.CreatedAt)
	}

	bySlug, err := s.GetTagBySlug(ctx, "slow-burn")
	if err != nil {
		t.Fatalf("GetTagBySlug: %v", err)
	}
	if bySlug.UID != "tag-1" {
		t.Errorf("GetTagBySlug UID: got %q", bySlug.UID)
	}

	if _, err := s.GetTagBySlug(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTag_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTag(ctx, makeTestTag("tag-1", "Sci-Fi", "sci-fi")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	err := s.CreateTag(ctx, makeTestTag("tag-2", "SCI-FI", "sci-fi"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTag(ctx, makeTestTag("tag-1", "Fantasy", "fantasy")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.CreateTag(ctx, makeTestTag("tag-2", "Horror", "horror")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	renamed := &domain.Tag{UID: "tag-1", Name: "High Fantasy", Slug: "high-fantasy"}
	if err := s.UpdateTag(ctx, renamed); err != nil {
		t.Fatalf("UpdateTag: %v", err)
	}
	got, err := s.GetTag(ctx, "tag-1")
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if got.Name != "High Fantasy" {
		t.Errorf("Name: got %q", got.Name)
	}

	clash := &domain.Tag{UID: "tag-1", Name: "Horror", Slug: "horror"}
	if err := s.UpdateTag(ctx, clash); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	ghost := &domain.Tag{UID: "ghost", Name: "x", Slug: "x"}
	if err := s.UpdateTag(ctx, ghost); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTags_SortedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, tag := range []*domain.Tag{
		makeTestTag("tag-1", "Mystery", "mystery"),
		makeTestTag("tag-2", "Biography", "biography"),
		makeTestTag("tag-3", "Horror", "horror"),
	} {
		if err := s.CreateTag(ctx, tag); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	want := []string{"Biography", "Horror", "Mystery"}
	if len(tags) != len(want) {
		t.Fatalf("expected %d tags, got %d", len(want), len(tags))
	}
	for i, name := range want {
		if tags[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, tags[i].Name, name)
		}
	}
}

func TestBookTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBook(ctx, makeTestBook("book-1", "", time.Now())); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	for _, tag := range []*domain.Tag{
		makeTestTag("tag-1", "Classic", "classic"),
		makeTestTag("tag-2", "Adventure", "adventure"),
	} {
		if err := s.CreateTag(ctx, tag); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}

	if err := s.AddBookTags(ctx, "book-1", []string{"tag-1", "tag-2"}); err != nil {
		t.Fatalf("AddBookTags: %v", err)
	}
	// Re-adding an existing link is not an error.
	if err := s.AddBookTags(ctx, "book-1", []string{"tag-1"}); err != nil {
		t.Fatalf("AddBookTags (repeat): %v", err)
	}

	tags, err := s.ListTagsForBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("ListTagsForBook: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "Adventure" || tags[1].Name != "Classic" {
		t.Fatalf("unexpected tags: %+v", tags)
	}

	books, err := s.ListBookUIDsForTag(ctx, "tag-1")
	if err != nil {
		t.Fatalf("ListBookUIDsForTag: %v", err)
	}
	if len(books) != 1 || books[0] != "book-1" {
		t.Errorf("ListBookUIDsForTag: got %v", books)
	}

	if err := s.RemoveBookTag(ctx, "book-1", "tag-1"); err != nil {
		t.Fatalf("RemoveBookTag: %v", err)
	}
	if err := s.RemoveBookTag(ctx, "book-1", "tag-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second remove: expected ErrNotFound, got %v", err)
	}

	tags, err = s.ListTagsForBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("ListTagsForBook: %v", err)
	}
	if len(tags) != 1 || tags[0].UID != "tag-2" {
		t.Errorf("unexpected tags after remove: %+v", tags)
	}
}

func TestAddBookTags_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBook(ctx, makeTestBook("book-1", "", time.Now())); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if err := s.CreateTag(ctx, makeTestTag("tag-1", "Classic", "classic")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	err := s.AddBookTags(ctx, "book-1", []string{"tag-1", "missing-tag"})
	if !errors.Is(err, store.ErrReferenceMissing) {
		t.Fatalf("expected ErrReferenceMissing, got %v", err)
	}

	tags, err := s.ListTagsForBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("ListTagsForBook: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("failed batch should leave no links, got %d", len(tags))
	}
}

func TestDeleteTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTag(ctx, makeTestTag("tag-1", "Classic", "classic")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.DeleteTag(ctx, "tag-1"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if err := s.DeleteTag(ctx, "tag-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
