// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package store defines the user store used to hold the accounts of
// users authenticated by client certificate.
package store

import (
	"context"
	"regexp"
	"strings"

	"github.com/juju/names/v4"
)

// Store is the interface that represents the data storage mechanism for
// user accounts.
type Store interface {
	// User reads the user with the given login ID. If no such user
	// exists then an error with a cause of ErrNotFound will be
	// returned.
	User(ctx context.Context, loginID string) (*User, error)

	// Users returns all of the stored users sorted by login ID.
	Users(ctx context.Context) ([]User, error)

	// CreateUser creates a new user record from the given user. The
	// given password is hashed before it is stored, u.PasswordHash is
	// ignored. If a user with the same login ID already exists then
	// an error with a cause of ErrDuplicateUsername will be returned.
	CreateUser(ctx context.Context, u *User, password string) error
}

// User represents a user account in the store.
type User struct {
	// LoginID contains the unique login name of the user.
	LoginID string

	// Name contains the display name of the user.
	Name string

	// Email contains the email address of the user.
	Email string

	// Groups contains the groups the user is a member of.
	Groups []string

	// PasswordHash contains the hash of the user's password. It is
	// opaque to everything except the store.
	PasswordHash []byte
}

// IsValidLoginID reports whether the given string can be used as a
// login ID.
func IsValidLoginID(s string) bool {
	return names.IsValidUserName(s)
}

var invalidLoginIDChars = regexp.MustCompile(`[^a-z0-9.+-]+`)

// CleanLoginID converts s into a valid login ID. If s is already valid
// it is returned unchanged. Otherwise s is lower-cased, each run of
// invalid characters is replaced by a single "." and any leading or
// trailing punctuation is removed. The empty string is returned if
// nothing usable remains.
func CleanLoginID(s string) string {
	if IsValidLoginID(s) {
		return s
	}
	s = invalidLoginIDChars.ReplaceAllString(strings.ToLower(s), ".")
	s = strings.Trim(s, ".+-")
	if !IsValidLoginID(s) {
		return ""
	}
	return s
}

var invalidGroupChars = regexp.MustCompile(`[^a-z0-9_.-]`)

// CleanGroup converts s into a valid group name. Group names are lower
// case and may only contain letters, digits, "_", "." and "-"; every
// other character is replaced by "_".
func CleanGroup(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return invalidGroupChars.ReplaceAllString(s, "_")
}
