// Package service holds the Bookly business logic. Services validate input,
// translate store errors into coded domain errors, and keep the search index
// and token blocklist in step with the database.
package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/bookly/bookly-server/internal/errors"
	"github.com/bookly/bookly-server/internal/store"
	"github.com/bookly/bookly-server/internal/validation"
)

// validate is shared by every service.
var validate = validation.New()

// translate turns store.ErrNotFound into notFound and wraps anything else with op.
func translate(err error, notFound *domainerrors.Error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// MessageResponse is returned by operations whose only output is a confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
