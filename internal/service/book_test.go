package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly-server/internal/domain"
	domainerrors "github.com/bookly/bookly-server/internal/errors"
	"github.com/bookly/bookly-server/internal/search"
)

func TestBookService_CreateAndGet(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	owner := env.verifiedUser(t, "ada@example.com", domain.RoleUser)

	b := env.createBook(t, owner, "  Dune ")
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, owner.UID, b.UserUID)
	assert.Equal(t, time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), b.PublishedDate)

	detail, err := env.books.Get(ctx, b.UID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", detail.Title)
	assert.NotNil(t, detail.Reviews)
	assert.NotNil(t, detail.Tags)

	_, err = env.books.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domainerrors.ErrBookNotFound)
}

func TestBookService_Create_Validation(t *testing.T) {
	env := setupTest(t)

	_, err := env.books.Create(context.Background(), "", BookCreateRequest{
		Title:         "Dune",
		Author:        "Frank Herbert",
		Publisher:     "Chilton",
		PublishedDate: "August 1965",
		Language:      "en",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestBookService_IdenticalBooksAreDistinct(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	owner := env.verifiedUser(t, "ada@example.com", domain.RoleUser)

	a := env.createBook(t, owner, "Dune")
	b := env.createBook(t, owner, "Dune")
	assert.NotEqual(t, a.UID, b.UID)

	for _, uid := range []string{a.UID, b.UID} {
		got, err := env.books.Get(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
	}
}

func TestBookService_List(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	ada := env.verifiedUser(t, "ada@example.com", domain.RoleUser)
	bob := env.verifiedUser(t, "bob@example.com", domain.RoleUser)

	first := env.createBook(t, ada, "First")
	second := env.createBook(t, bob, "Second")

	all, err := env.books.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.UID, all[0].UID, "newest first")
	assert.Equal(t, first.UID, all[1].UID)

	mine, err := env.books.ListByUser(ctx, ada.UID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.UID, mine[0].UID)

	none, err := env.books.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestBookService_Update(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	owner := env.verifiedUser(t, "ada@example.com", domain.RoleUser)
	b := env.createBook(t, owner, "Dune")
	other := env.createBook(t, owner, "Emma")

	updated, err := env.books.Update(ctx, b.UID, BookUpdateRequest{
		PageCount:     ptr(500),
		PublishedDate: ptr("1966-01-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, 500, updated.PageCount)
	assert.Equal(t, 1966, updated.PublishedDate.Year())
	assert.Equal(t, owner.UID, updated.UserUID)

	_, err = env.books.Update(ctx, "00000000-0000-0000-0000-000000000000", BookUpdateRequest{Title: ptr("X")})
	assert.ErrorIs(t, err, domainerrors.ErrBookNotFound)

	// The failed update touched nothing else.
	got, err := env.books.Get(ctx, other.UID)
	require.NoError(t, err)
	assert.Equal(t, "Emma", got.Title)
}

func TestBookService_Delete(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	owner := env.verifiedUser(t, "ada@example.com", domain.RoleUser)
	b := env.createBook(t, owner, "Dune")

	require.NoError(t, env.books.Delete(ctx, b.UID))

	_, err := env.books.Get(ctx, b.UID)
	assert.ErrorIs(t, err, domainerrors.ErrBookNotFound)
	assert.ErrorIs(t, env.books.Delete(ctx, b.UID), domainerrors.ErrBookNotFound)

	res, err := env.books.Search(ctx, search.SearchParams{Query: "dune"})
	require.NoError(t, err)
	assert.Empty(t, res.Books)
}

func TestBookService_Search(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	owner := env.verifiedUser(t, "ada@example.com", domain.RoleUser)

	dune := env.createBook(t, owner, "Dune")
	env.createBook(t, owner, "Emma")

	res, err := env.books.Search(ctx, search.SearchParams{Query: "dune"})
	require.NoError(t, err)
	require.Len(t, res.Books, 1)
	assert.Equal(t, dune.UID, res.Books[0].UID)

	// Renames are picked up by the index.
	_, err = env.books.Update(ctx, dune.UID, BookUpdateRequest{Title: ptr("Children of Dune")})
	require.NoError(t, err)
	res, err = env.books.Search(ctx, search.SearchParams{Query: "children"})
	require.NoError(t, err)
	require.Len(t, res.Books, 1)
	assert.Equal(t, "Children of Dune", res.Books[0].Title)
}

func TestBookService_Reindex(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	owner := env.verifiedUser(t, "ada@example.com", domain.RoleUser)
	env.createBook(t, owner, "Dune")
	env.createBook(t, owner, "Emma")

	require.NoError(t, env.books.Reindex(ctx))

	count, err := env.books.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestBookService_SearchDisabled(t *testing.T) {
	env := setupTest(t)
	books := NewBookService(env.store, nil, env.books.logger)

	_, err := books.Search(context.Background(), search.SearchParams{Query: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrInternal)
	assert.NoError(t, books.Reindex(context.Background()))
}
