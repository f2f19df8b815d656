package services

import "net/http"

// Error is a service-level failure that carries the HTTP status and message
// the API contract requires. Controllers unwrap it with errors.As; anything
// else becomes a 500.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func badRequest(msg string) *Error   { return &Error{Status: http.StatusBadRequest, Message: msg} }
func unauthorized(msg string) *Error { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func forbidden(msg string) *Error    { return &Error{Status: http.StatusForbidden, Message: msg} }
func notFound(msg string) *Error     { return &Error{Status: http.StatusNotFound, Message: msg} }

// Shared sentinels for conditions callers may want to branch on.
var (
	ErrEmailTaken         = badRequest("Email already in use")
	ErrInvalidCredentials = unauthorized("Invalid credentials")
	ErrWrongPassword      = unauthorized("Incorrect current password")
)
