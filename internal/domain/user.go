// Package domain holds the Bookly record types shared by the store, services and API.
package domain

// Role represents the user's permission level.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleUser is the default role for new accounts.
	RoleUser Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account. PasswordHash never leaves the server.
type User struct {
	Timestamps
	UID          string `json:"uid"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsVerified   bool   `json:"is_verified"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasRole reports whether the user's role is one of allowed.
func (u *User) HasRole(allowed ...Role) bool {
	for _, r := range allowed {
		if u.Role == r {
			return true
		}
	}
	return false
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Username     *string
	FirstName    *string
	LastName     *string
	IsVerified   *bool
	PasswordHash *string
	Role         *Role
}

// Apply overwrites the non-nil fields of upd onto u.
func (u *User) Apply(upd UserUpdate) {
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.IsVerified != nil {
		u.IsVerified = *upd.IsVerified
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
}
