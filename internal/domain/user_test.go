package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("root").Valid())
	assert.False(t, Role("").Valid())
}

func TestUser_HasRole(t *testing.T) {
	u := &User{Role: RoleUser}

	assert.True(t, u.HasRole(RoleAdmin, RoleUser))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.False(t, u.IsAdmin())
}

func TestUser_ApplyOnlyTouchesSetFields(t *testing.T) {
	u := &User{Username: "old", FirstName: "Ada", LastName: "Lovelace", Role: RoleUser}

	verified := true
	last := "King"
	u.Apply(UserUpdate{IsVerified: &verified, LastName: &last})

	assert.Equal(t, "old", u.Username)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "King", u.LastName)
	assert.True(t, u.IsVerified)
	assert.Equal(t, RoleUser, u.Role)
}

func TestBook_Apply(t *testing.T) {
	b := &Book{Title: "Dune", Author: "Herbert", PageCount: 412, Language: "en"}

	pages := 500
	b.Apply(BookUpdate{PageCount: &pages})

	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Herbert", b.Author)
	assert.Equal(t, 500, b.PageCount)
	assert.Equal(t, "en", b.Language)
}

func TestTimestamps(t *testing.T) {
	var ts Timestamps
	ts.InitTimestamps()
	assert.False(t, ts.CreatedAt.IsZero())
	assert.Equal(t, ts.CreatedAt, ts.UpdatedAt)

	ts.Touch()
	assert.False(t, ts.UpdatedAt.Before(ts.CreatedAt))
}
