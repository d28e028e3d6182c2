package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly-server/internal/auth"
	"github.com/bookly/bookly-server/internal/blocklist"
	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/mail"
	"github.com/bookly/bookly-server/internal/search"
	"github.com/bookly/bookly-server/internal/service"
	"github.com/bookly/bookly-server/internal/store/sqlstore"
)

// testEnvelope mirrors the success envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// testErrorEnvelope mirrors the coded error envelope.
type testErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// recordingQueue keeps enqueued mail in memory.
type recordingQueue struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (q *recordingQueue) Enqueue(_ context.Context, msg mail.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *recordingQueue) Start(context.Context) {}

func (q *recordingQueue) Close() error { return nil }

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

type testServer struct {
	*Server
	api       humatest.TestAPI
	store     *sqlstore.Store
	urlTokens *auth.URLTokenService
	mail      *recordingQueue
	cleanup   func()
}

func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithOptions(t, Options{})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()
	log := logger.Discard()

	st, err := sqlstore.Open("sqlite://"+filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)

	bl, err := blocklist.OpenBadger("", log)
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{Logger: log})
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("test-secret-that-is-long-enough", "HS256", 15*time.Minute, 48*time.Hour)
	require.NoError(t, err)

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(31 - i)
	}
	urlTokens, err := auth.NewURLTokenService(key, 24*time.Hour)
	require.NoError(t, err)

	renderer, err := mail.NewRenderer()
	require.NoError(t, err)

	queue := &recordingQueue{}
	books := service.NewBookService(st, index, log)
	services := &Services{
		Auth:   service.NewAuthService(st, tokens, urlTokens, bl, queue, renderer, "localhost:8000", log),
		User:   service.NewUserService(st, log),
		Book:   books,
		Review: service.NewReviewService(st, log),
		Tag:    service.NewTagService(st, books, log),
		Search: index,
	}

	srv := NewServer(services, st, opts, log)

	return &testServer{
		Server:    srv,
		api:       humatest.Wrap(t, srv.api),
		store:     st,
		urlTokens: urlTokens,
		mail:      queue,
		cleanup: func() {
			srv.Close()
			_ = index.Close()
			_ = bl.Close()
			_ = st.Close()
		},
	}
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	require.True(t, env.Success, "body: %s", body)
	require.Equal(t, 1, env.Version)
	return env.Data
}

func decodeError(t *testing.T, body []byte) testErrorEnvelope {
	t.Helper()
	var env testErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	require.False(t, env.Success, "body: %s", body)
	return env
}

func bearerHeader(token string) string {
	return "Authorization: Bearer " + token
}

// signup creates an account through the API and returns it.
func (ts *testServer) signup(t *testing.T, email string) *domain.User {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"username":   "reader",
		"email":      email,
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"password":   "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "signup failed: %s", resp.Body.String())

	data := decodeData[service.SignupResponse](t, resp.Body.Bytes())
	return data.User
}

// loginAs signs up, verifies, assigns role and logs in, returning the token pair.
func (ts *testServer) loginAs(t *testing.T, email string, role domain.Role) (access, refresh string) {
	t.Helper()
	ctx := context.Background()

	ts.signup(t, email)

	token, err := ts.urlTokens.Create(email, auth.PurposeVerify)
	require.NoError(t, err)
	resp := ts.api.Get("/api/v1/auth/verify/" + token)
	require.Equal(t, http.StatusOK, resp.Code, "verify failed: %s", resp.Body.String())

	if role != domain.RoleUser {
		u, err := ts.store.GetUserByEmail(ctx, email)
		require.NoError(t, err)
		u.Role = role
		require.NoError(t, ts.store.UpdateUser(ctx, u))
	}

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	data := decodeData[service.LoginResponse](t, resp.Body.Bytes())
	return data.AccessToken, data.RefreshToken
}

func (ts *testServer) createBook(t *testing.T, token, title string) *domain.Book {
	t.Helper()

	resp := ts.api.Post("/api/v1/books", bearerHeader(token), map[string]any{
		"title":          title,
		"author":         "Frank Herbert",
		"publisher":      "Chilton",
		"published_date": "1965-08-01",
		"page_count":     412,
		"language":       "en",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "create book failed: %s", resp.Body.String())

	return decodeData[*domain.Book](t, resp.Body.Bytes())
}
