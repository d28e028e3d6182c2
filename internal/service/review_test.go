package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly-server/internal/domain"
	domainerrors "github.com/bookly/bookly-server/internal/errors"
)

func TestReviewService_Create(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.verifiedUser(t, "ada@example.com", domain.RoleUser)
	b := env.createBook(t, user, "Dune")

	r, err := env.reviews.Create(ctx, user, b.UID, ReviewCreateRequest{Rating: 4, ReviewText: " Sandworms. "})
	require.NoError(t, err)
	assert.Equal(t, "Sandworms.", r.ReviewText)
	assert.Equal(t, user.UID, r.UserUID)
	assert.Equal(t, b.UID, r.BookUID)

	got, err := env.reviews.Get(ctx, r.UID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)

	detail, err := env.books.Get(ctx, b.UID)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 1)
}

func TestReviewService_Create_Rejects(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.verifiedUser(t, "ada@example.com", domain.RoleUser)
	b := env.createBook(t, user, "Dune")

	for _, rating := range []int{0, 6, -1} {
		_, err := env.reviews.Create(ctx, user, b.UID, ReviewCreateRequest{Rating: rating, ReviewText: "x"})
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "rating %d", rating)
	}

	_, err := env.reviews.Create(ctx, user, "00000000-0000-0000-0000-000000000000", ReviewCreateRequest{Rating: 3, ReviewText: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrBookNotFound)
}

func TestReviewService_Delete_AuthorOnly(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	author := env.verifiedUser(t, "ada@example.com", domain.RoleUser)
	other := env.verifiedUser(t, "bob@example.com", domain.RoleAdmin)
	b := env.createBook(t, author, "Dune")

	r, err := env.reviews.Create(ctx, author, b.UID, ReviewCreateRequest{Rating: 5, ReviewText: "Great"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.reviews.Delete(ctx, other, r.UID), domainerrors.ErrInsufficientPermission)

	require.NoError(t, env.reviews.Delete(ctx, author, r.UID))
	_, err = env.reviews.Get(ctx, r.UID)
	assert.ErrorIs(t, err, domainerrors.ErrReviewNotFound)
	assert.ErrorIs(t, env.reviews.Delete(ctx, author, r.UID), domainerrors.ErrReviewNotFound)
}

func TestReviewService_List(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	empty, err := env.reviews.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	user := env.verifiedUser(t, "ada@example.com", domain.RoleUser)
	b := env.createBook(t, user, "Dune")
	for i := 1; i <= 3; i++ {
		_, err := env.reviews.Create(ctx, user, b.UID, ReviewCreateRequest{Rating: i, ReviewText: "ok"})
		require.NoError(t, err)
	}

	all, err := env.reviews.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
