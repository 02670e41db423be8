// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package session holds the identity established for a request by an
// authenticator.
package session

import (
	"context"
)

// Identity is a snapshot of an authenticated user. It is owned by the
// caller once returned from an authenticator.
type Identity struct {
	// LoginID contains the login name of the user in the user store.
	LoginID string `json:"login-id"`

	// Name contains the display name of the user.
	Name string `json:"name"`

	// Email contains the email address of the user.
	Email string `json:"email"`

	// Groups contains the groups of which the user is a member.
	Groups []string `json:"groups"`

	// LogoutAllowed reports whether the session may be logged out.
	// It is false when the identity is re-established on every
	// request, as is the case for client certificates.
	LogoutAllowed bool `json:"logout-allowed"`
}

type contextKey int

const identityKey contextKey = iota

// ContextWithIdentity returns a context with the given identity
// attached.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached to the given
// context, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}
