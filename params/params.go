// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package params holds the types used in the JSON responses of the
// certificate authentication server.
package params

import (
	"fmt"
)

// ErrorCode holds the class of an error in machine-readable format.
type ErrorCode string

func (code ErrorCode) Error() string {
	return string(code)
}

// ErrorCode implements the error coder interface used to determine the
// code sent in error responses.
func (code ErrorCode) ErrorCode() ErrorCode {
	return code
}

const (
	ErrBadRequest       ErrorCode = "bad request"
	ErrForbidden        ErrorCode = "forbidden"
	ErrMethodNotAllowed ErrorCode = "method not allowed"
	ErrNotFound         ErrorCode = "not found"
	ErrUnauthorized     ErrorCode = "unauthorized"
)

// Error represents an error response from the server.
type Error struct {
	Message string    `json:",omitempty"`
	Code    ErrorCode `json:",omitempty"`
}

// Error implements error.Error.
func (e *Error) Error() string {
	return e.Message
}

// ErrorCode returns the error's code.
func (e *Error) ErrorCode() ErrorCode {
	return e.Code
}

// GoString implements fmt.GoStringer.
func (e *Error) GoString() string {
	return fmt.Sprintf("&params.Error{Message: %q, Code: %q}", e.Message, e.Code)
}

// LogoutResponse holds the response from the logout endpoint.
type LogoutResponse struct {
	// LoggedOut reports whether the session was ended.
	LoggedOut bool `json:"logged-out"`
}
