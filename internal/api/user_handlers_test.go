package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly-server/internal/domain"
)

func TestUsers_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	user, _ := ts.loginAs(t, "ada@example.com", domain.RoleUser)

	resp := ts.api.Get("/api/v1/users", bearerHeader(user))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "insufficient_permission", decodeError(t, resp.Body.Bytes()).Code)
}

func TestUsers_AdminCRUD(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin, _ := ts.loginAs(t, "root@example.com", domain.RoleAdmin)
	bob := ts.signup(t, "bob@example.com")

	resp := ts.api.Get("/api/v1/users", bearerHeader(admin))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeData[[]*domain.User](t, resp.Body.Bytes()), 2)

	resp = ts.api.Patch("/api/v1/users/"+bob.UID, bearerHeader(admin), map[string]any{
		"first_name":  "Robert",
		"is_verified": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeData[*domain.User](t, resp.Body.Bytes())
	assert.Equal(t, "Robert", updated.FirstName)
	assert.True(t, updated.IsVerified)
	assert.Equal(t, bob.LastName, updated.LastName)

	resp = ts.api.Patch("/api/v1/users/"+bob.UID, bearerHeader(admin), map[string]any{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Delete("/api/v1/users/"+bob.UID, bearerHeader(admin))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/users/"+bob.UID, bearerHeader(admin))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "user_not_found", decodeError(t, resp.Body.Bytes()).Code)
}

func TestUsers_PasswordHashNeverSerialized(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin, _ := ts.loginAs(t, "root@example.com", domain.RoleAdmin)

	resp := ts.api.Get("/api/v1/users", bearerHeader(admin))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "password")
	assert.NotContains(t, resp.Body.String(), "argon2id")
}
