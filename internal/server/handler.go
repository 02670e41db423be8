// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package server

import (
	"gopkg.in/errgo.v1"
	"gopkg.in/httprequest.v1"

	"github.com/canonical/certauth/params"
	"github.com/canonical/certauth/session"
)

// apiHandler serves the session endpoints.
type apiHandler struct{}

// WhoAmIRequest describes the /whoami endpoint.
type WhoAmIRequest struct {
	httprequest.Route `httprequest:"GET /whoami"`
}

// WhoAmI returns the identity established for the request.
func (h apiHandler) WhoAmI(p httprequest.Params, _ *WhoAmIRequest) (*session.Identity, error) {
	id, ok := session.IdentityFromContext(p.Request.Context())
	if !ok {
		return nil, errgo.WithCausef(nil, params.ErrUnauthorized, "not authenticated")
	}
	return id, nil
}

// LogoutRequest describes the /logout endpoint.
type LogoutRequest struct {
	httprequest.Route `httprequest:"POST /logout"`
}

// Logout ends the session of the request. Sessions that are
// re-established on every request, such as those authenticated by a
// client certificate, cannot be logged out.
func (h apiHandler) Logout(p httprequest.Params, _ *LogoutRequest) (*params.LogoutResponse, error) {
	id, ok := session.IdentityFromContext(p.Request.Context())
	if !ok {
		return nil, errgo.WithCausef(nil, params.ErrUnauthorized, "not authenticated")
	}
	if !id.LogoutAllowed {
		return nil, errgo.WithCausef(nil, params.ErrForbidden, "logout not allowed for %s", id.LoginID)
	}
	logger.Infof("logged out %s", id.LoginID)
	return &params.LogoutResponse{LoggedOut: true}, nil
}
