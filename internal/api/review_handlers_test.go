package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/service"
)

func postReview(t *testing.T, ts *testServer, token, bookUID string, rating int) *domain.Review {
	t.Helper()

	resp := ts.api.Post("/api/v1/reviews/book/"+bookUID, bearerHeader(token), map[string]any{
		"rating":      rating,
		"review_text": "A classic.",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeData[*domain.Review](t, resp.Body.Bytes())
}

func TestCreateReview(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.loginAs(t, "ada@example.com", domain.RoleUser)
	book := ts.createBook(t, token, "Dune")

	review := postReview(t, ts, token, book.UID, 5)
	assert.Equal(t, book.UID, review.BookUID)
	assert.Equal(t, 5, review.Rating)

	resp := ts.api.Get("/api/v1/books/"+book.UID, bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decodeData[domain.BookDetail](t, resp.Body.Bytes())
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, review.UID, detail.Reviews[0].UID)
}

func TestCreateReview_UnverifiedAccount(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	owner, _ := ts.loginAs(t, "ada@example.com", domain.RoleUser)
	book := ts.createBook(t, owner, "Dune")

	ts.signup(t, "new@example.com")
	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "new@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	login := decodeData[service.LoginResponse](t, resp.Body.Bytes())

	review := postReview(t, ts, login.AccessToken, book.UID, 3)
	assert.Equal(t, login.User.UID, review.UserUID)

	// Signing in is still required.
	resp = ts.api.Post("/api/v1/reviews/book/"+book.UID, map[string]any{
		"rating":      3,
		"review_text": "Anonymous.",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "access_token_required", decodeError(t, resp.Body.Bytes()).Code)
}

func TestCreateReview_Validation(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.loginAs(t, "ada@example.com", domain.RoleUser)
	book := ts.createBook(t, token, "Dune")

	resp := ts.api.Post("/api/v1/reviews/book/"+book.UID, bearerHeader(token), map[string]any{
		"rating":      9,
		"review_text": "Too good.",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/reviews/book/missing", bearerHeader(token), map[string]any{
		"rating":      4,
		"review_text": "Where is it?",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "book_not_found", decodeError(t, resp.Body.Bytes()).Code)
}

func TestListReviews_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	user, _ := ts.loginAs(t, "ada@example.com", domain.RoleUser)
	admin, _ := ts.loginAs(t, "root@example.com", domain.RoleAdmin)
	book := ts.createBook(t, user, "Dune")
	postReview(t, ts, user, book.UID, 4)

	resp := ts.api.Get("/api/v1/reviews", bearerHeader(user))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "insufficient_permission", decodeError(t, resp.Body.Bytes()).Code)

	resp = ts.api.Get("/api/v1/reviews", bearerHeader(admin))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeData[[]*domain.Review](t, resp.Body.Bytes()), 1)
}

func TestDeleteReview_AuthorOnly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	author, _ := ts.loginAs(t, "ada@example.com", domain.RoleUser)
	admin, _ := ts.loginAs(t, "root@example.com", domain.RoleAdmin)
	book := ts.createBook(t, author, "Dune")
	review := postReview(t, ts, author, book.UID, 3)

	resp := ts.api.Get("/api/v1/reviews/"+review.UID, bearerHeader(admin))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/reviews/"+review.UID, bearerHeader(admin))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "insufficient_permission", decodeError(t, resp.Body.Bytes()).Code)

	resp = ts.api.Delete("/api/v1/reviews/"+review.UID, bearerHeader(author))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/reviews/"+review.UID, bearerHeader(author))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "review_not_found", decodeError(t, resp.Body.Bytes()).Code)
}
