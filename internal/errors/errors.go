// Package errors provides coded domain errors for the Bookly API.
//
// Services return these errors and the API layer renders them:
//
//	if exists {
//	    return errors.UserAlreadyExists("user with email already exists")
//	}
//
//	// Callers match on code with errors.Is.
//	if errors.Is(err, errors.ErrUserNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound               Code = "not_found"
	CodeUserNotFound           Code = "user_not_found"
	CodeBookNotFound           Code = "book_not_found"
	CodeReviewNotFound         Code = "review_not_found"
	CodeTagNotFound            Code = "tag_not_found"
	CodeUserAlreadyExists      Code = "user_already_exists"
	CodeTagAlreadyExists       Code = "tag_already_exists"
	CodeInvalidCredentials     Code = "invalid_credentials"
	CodeInvalidToken           Code = "invalid_token"
	CodeRevokedToken           Code = "revoked_token"
	CodeAccessTokenRequired    Code = "access_token_required"
	CodeRefreshTokenRequired   Code = "refresh_token_required"
	CodeInsufficientPermission Code = "insufficient_permission"
	CodeAccountNotVerified     Code = "account_not_verified"
	CodePasswordMismatch       Code = "password_mismatch"
	CodeUnauthorized           Code = "unauthorized"
	CodeValidation             Code = "validation"
	CodeConflict               Code = "conflict"
	CodeInternal               Code = "internal"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeUserNotFound, CodeBookNotFound, CodeReviewNotFound, CodeTagNotFound:
		return http.StatusNotFound
	case CodeUserAlreadyExists, CodeTagAlreadyExists, CodeInsufficientPermission, CodeAccountNotVerified:
		return http.StatusForbidden
	case CodeInvalidToken, CodeRevokedToken, CodeAccessTokenRequired, CodeRefreshTokenRequired, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInvalidCredentials, CodeValidation, CodePasswordMismatch:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound               = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUserNotFound           = &Error{Code: CodeUserNotFound, Message: "User not found"}
	ErrBookNotFound           = &Error{Code: CodeBookNotFound, Message: "Book not found"}
	ErrReviewNotFound         = &Error{Code: CodeReviewNotFound, Message: "Review not found"}
	ErrTagNotFound            = &Error{Code: CodeTagNotFound, Message: "Tag not found"}
	ErrUserAlreadyExists      = &Error{Code: CodeUserAlreadyExists, Message: "User with email already exists"}
	ErrTagAlreadyExists       = &Error{Code: CodeTagAlreadyExists, Message: "Tag already exists"}
	ErrInvalidCredentials     = &Error{Code: CodeInvalidCredentials, Message: "Invalid email or password"}
	ErrInvalidToken           = &Error{Code: CodeInvalidToken, Message: "Token is invalid or expired"}
	ErrRevokedToken           = &Error{Code: CodeRevokedToken, Message: "Token is invalid or has been revoked"}
	ErrAccessTokenRequired    = &Error{Code: CodeAccessTokenRequired, Message: "Please provide a valid access token"}
	ErrRefreshTokenRequired   = &Error{Code: CodeRefreshTokenRequired, Message: "Please provide a valid refresh token"}
	ErrInsufficientPermission = &Error{Code: CodeInsufficientPermission, Message: "You do not have enough permissions to perform this action"}
	ErrAccountNotVerified     = &Error{Code: CodeAccountNotVerified, Message: "Account not yet verified"}
	ErrPasswordMismatch       = &Error{Code: CodePasswordMismatch, Message: "Passwords do not match"}
	ErrUnauthorized           = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrValidation             = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict               = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal               = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a generic not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
