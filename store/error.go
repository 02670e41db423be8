// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package store

import (
	errgo "gopkg.in/errgo.v1"
)

var (
	// ErrNotFound is the error cause used when a user cannot be
	// found in storage.
	ErrNotFound = errgo.New("not found")

	// ErrDuplicateUsername is the error cause used when a user is
	// created with a login ID that is already in use.
	ErrDuplicateUsername = errgo.New("duplicate username")
)

// NotFoundError creates a new error with a cause of ErrNotFound and an
// appropriate message.
func NotFoundError(loginID string) error {
	msg := "user not specified"
	if loginID != "" {
		msg = "user " + loginID + " not found"
	}
	err := errgo.WithCausef(nil, ErrNotFound, "%s", msg)
	err.(*errgo.Err).SetLocation(1)
	return err
}

// DuplicateUsernameError creates a new error with a cause of
// ErrDuplicateUsername and an appropriate message.
func DuplicateUsernameError(loginID string) error {
	err := errgo.WithCausef(nil, ErrDuplicateUsername, "username %s already in use", loginID)
	err.(*errgo.Err).SetLocation(1)
	return err
}
