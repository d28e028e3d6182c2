package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly-server/internal/auth"
	"github.com/bookly/bookly-server/internal/blocklist"
	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/mail"
	"github.com/bookly/bookly-server/internal/search"
	"github.com/bookly/bookly-server/internal/store/sqlstore"
)

// fakeQueue records enqueued mail instead of delivering it.
type fakeQueue struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, msg mail.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *fakeQueue) Start(context.Context) {}

func (q *fakeQueue) Close() error { return nil }

func (q *fakeQueue) sent() []mail.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]mail.Message(nil), q.msgs...)
}

type testEnv struct {
	store     *sqlstore.Store
	tokens    *auth.TokenService
	urlTokens *auth.URLTokenService
	blocklist blocklist.Blocklist
	mail      *fakeQueue

	auth    *AuthService
	users   *UserService
	books   *BookService
	reviews *ReviewService
	tags    *TagService
}

// setupTest wires every service against a temporary SQLite file,
// an in-memory blocklist and an in-memory search index.
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()

	s, err := sqlstore.Open("sqlite://"+filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	bl, err := blocklist.OpenBadger("", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bl.Close() })

	index, err := search.NewSearchIndex(search.Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService("test-secret-that-is-long-enough", "HS256", time.Hour, 48*time.Hour)
	require.NoError(t, err)

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	urlTokens, err := auth.NewURLTokenService(key, 24*time.Hour)
	require.NoError(t, err)

	renderer, err := mail.NewRenderer()
	require.NoError(t, err)

	queue := &fakeQueue{}
	books := NewBookService(s, index, log)

	return &testEnv{
		store:     s,
		tokens:    tokens,
		urlTokens: urlTokens,
		blocklist: bl,
		mail:      queue,
		auth:      NewAuthService(s, tokens, urlTokens, bl, queue, renderer, "localhost:8000", log),
		users:     NewUserService(s, log),
		books:     books,
		reviews:   NewReviewService(s, log),
		tags:      NewTagService(s, books, log),
	}
}

func signupRequest(email string) SignupRequest {
	return SignupRequest{
		Username:  "reader",
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "secret123",
	}
}

// verifiedUser signs up and verifies an account with the given role.
func (e *testEnv) verifiedUser(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	ctx := context.Background()

	resp, err := e.auth.Signup(ctx, signupRequest(email))
	require.NoError(t, err)

	token, err := e.urlTokens.Create(resp.User.Email, auth.PurposeVerify)
	require.NoError(t, err)
	_, err = e.auth.Verify(ctx, token)
	require.NoError(t, err)

	r := string(role)
	u, err := e.users.Update(ctx, resp.User.UID, UserUpdateRequest{Role: &r})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createBook(t *testing.T, owner *domain.User, title string) *domain.Book {
	t.Helper()
	b, err := e.books.Create(context.Background(), owner.UID, BookCreateRequest{
		Title:         title,
		Author:        "Frank Herbert",
		Publisher:     "Chilton",
		PublishedDate: "1965-08-01",
		PageCount:     412,
		Language:      "en",
	})
	require.NoError(t, err)
	return b
}

func ptr[T any](v T) *T { return &v }
