// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package idp defines the API provided by all authenticators that
// establish an identity from an inbound request.
package idp

import (
	"context"
	"net/http"

	"github.com/canonical/certauth/session"
	"github.com/canonical/certauth/store"
)

// InitParams are passed to the authenticator to initialise it.
type InitParams struct {
	// Store contains the user store being used by the host
	// application.
	Store store.Store
}

// Authenticator is the interface that is satisfied by all
// authenticators.
type Authenticator interface {
	// Name is the short name for the authenticator, this is used in
	// logs and metrics.
	Name() string

	// Init is used to perform any one time initialization tasks
	// that are needed for the authenticator. Init is called once by
	// the host application before any request is handled.
	Init(ctx context.Context, params InitParams) error

	// TrustExternal attempts to establish the identity of the user
	// making the given request. It returns false when the request
	// is not authenticated by this authenticator, in which case the
	// host should fall through to any other authentication it
	// supports.
	TrustExternal(ctx context.Context, req *http.Request) (*session.Identity, bool)
}
