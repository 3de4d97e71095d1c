package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired marks the 401 path: the server rejected the bearer token
// and the session has already been invalidated by the time it is returned.
var ErrSessionExpired = errors.New("session expired; please login again")

// ErrNoSession marks a local refusal: an authenticated call was attempted
// with no stored token, so no request was sent.
var ErrNoSession = errors.New("not logged in")

type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Message)
}

type RegisterError struct {
	Message string
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("registration failed: %s", e.Message)
}

// RequestError is any non-401 failure status from an authenticated endpoint.
// Message carries the server's `detail` field when one was supplied.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Status)
}
