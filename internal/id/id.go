// Package id generates identifiers for Bookly records and tokens.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for token identifiers.
const (
	PrefixAccess  = "acc"
	PrefixRefresh = "ref"
	PrefixURL     = "url"
)

// New returns a random UUIDv4 string used as the uid of users, books, reviews and tags.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}

// Token creates a prefixed NanoID for a token jti, e.g. "acc-V1StGXR8_Z5jdHi6B-myT".
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Token(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}
