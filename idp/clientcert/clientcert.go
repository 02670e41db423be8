// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package clientcert is an authenticator that establishes the identity
// of a user from a TLS client certificate. The certificate is verified
// by a TLS terminating proxy which forwards it to the application in a
// request header.
package clientcert

import (
	"context"
	"net/http"

	"github.com/juju/loggo"
	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/cert"
	"github.com/canonical/certauth/idp"
	"github.com/canonical/certauth/internal/monitoring"
	"github.com/canonical/certauth/session"
	"github.com/canonical/certauth/store"
)

var logger = loggo.GetLogger("certauth.idp.clientcert")

func init() {
	idp.Register("client-cert", func(unmarshal func(interface{}) error) (idp.Authenticator, error) {
		var p Params
		if err := unmarshal(&p); err != nil {
			return nil, errgo.Mask(err)
		}
		if p.HTTPHeaderName == "" {
			return nil, errgo.Newf("http-header-name not specified")
		}
		return NewAuthenticator(p), nil
	})
}

// Params holds the configuration of a client certificate authenticator.
type Params struct {
	// Name is the name of the authenticator as used in logs and
	// metrics. If this is empty "client-cert" is used.
	Name string `yaml:"name"`

	// HTTPHeaderName holds the name of the request header in which
	// the proxy forwards the client certificate, for example
	// "X-SSL-Client-Cert".
	HTTPHeaderName string `yaml:"http-header-name"`

	// Group holds the group given to users created on their first
	// authentication. If this is empty DefaultGroup is used.
	Group string `yaml:"group"`

	// Debug enables the reporting of authentication failures.
	Debug bool `yaml:"debug"`

	// Reporter receives the diagnostics reported when Debug is set.
	// If this is nil diagnostics are written to the package logger.
	Reporter Reporter `yaml:"-"`
}

// NewAuthenticator creates a client certificate authenticator with the
// given parameters. Init must be called before it is used.
func NewAuthenticator(p Params) *Authenticator {
	if p.Name == "" {
		p.Name = "client-cert"
	}
	if p.Reporter == nil {
		p.Reporter = LoggoReporter{Logger: logger}
	}
	return &Authenticator{
		params:  p,
		metrics: monitoring.NewAuthMetrics(),
	}
}

// Authenticator authenticates requests using a forwarded client
// certificate.
type Authenticator struct {
	params     Params
	reconciler *Reconciler
	metrics    *monitoring.AuthMetrics
}

var _ idp.Authenticator = (*Authenticator)(nil)

// Name implements idp.Authenticator.Name.
func (a *Authenticator) Name() string {
	return a.params.Name
}

// Init implements idp.Authenticator.Init.
func (a *Authenticator) Init(_ context.Context, params idp.InitParams) error {
	if params.Store == nil {
		return errgo.Newf("no store specified")
	}
	a.reconciler = &Reconciler{
		Store: params.Store,
		Group: a.params.Group,
		OnCreate: func(*store.User) {
			a.metrics.Provisioned(a.params.Name)
		},
	}
	return nil
}

// TrustExternal implements idp.Authenticator.TrustExternal. Any failure
// to authenticate results in false, the reason being reported only if
// debugging is enabled.
func (a *Authenticator) TrustExternal(ctx context.Context, req *http.Request) (*session.Identity, bool) {
	id, err := a.Authenticate(ctx, req)
	if err != nil {
		if a.params.Debug {
			a.params.Reporter.Report(err.Error(), errorSeverity(err), errorLocation(err))
		}
		return nil, false
	}
	return id, true
}

// Authenticate establishes the identity of the user making the given
// request from the client certificate held in the configured header. On
// success the user's account will exist in the store, having been
// created if necessary. On failure the error will have one of the
// following causes:
//
//	ErrNoHeaderConfigured
//	ErrNoCertificate
//	cert.ErrUnparsable
//	ErrMissingCommonName
//	ErrMissingEmail
//	ErrProvisioningFailed
func (a *Authenticator) Authenticate(ctx context.Context, req *http.Request) (*session.Identity, error) {
	id, err := a.authenticate(ctx, req)
	a.metrics.Attempt(a.params.Name, result(err))
	if err != nil {
		return nil, errgo.Mask(err, errgo.Any)
	}
	return id, nil
}

func (a *Authenticator) authenticate(ctx context.Context, req *http.Request) (*session.Identity, error) {
	if a.params.HTTPHeaderName == "" {
		return nil, errgo.WithCausef(nil, ErrNoHeaderConfigured, "http-header-name is empty")
	}
	raw := req.Header.Get(a.params.HTTPHeaderName)
	if raw == "" {
		return nil, errgo.WithCausef(nil, ErrNoCertificate, "missing http header (%s)", a.params.HTTPHeaderName)
	}
	pem := cert.Normalize(cert.Unescape(raw))
	if cert.Body(pem) == "" {
		return nil, errgo.WithCausef(nil, ErrNoCertificate, "unable to locate user certificate")
	}
	c, err := cert.Parse(pem)
	if err != nil {
		return nil, errgo.Mask(err, errgo.Is(cert.ErrUnparsable))
	}
	id, err := Extract(c)
	if err != nil {
		if a.params.Debug {
			a.params.Reporter.Report("rejected certificate "+dumpCertificate(c), SeverityInfo, errorLocation(err))
		}
		return nil, errgo.Mask(err, errgo.Is(ErrMissingCommonName), errgo.Is(ErrMissingEmail))
	}
	if a.reconciler == nil {
		return nil, errgo.WithCausef(nil, ErrProvisioningFailed, "authenticator not initialized")
	}
	u, err := a.reconciler.Reconcile(ctx, id)
	if err != nil {
		return nil, errgo.Mask(err, errgo.Is(ErrProvisioningFailed))
	}
	return &session.Identity{
		LoginID:       u.LoginID,
		Name:          u.Name,
		Email:         u.Email,
		Groups:        append([]string(nil), u.Groups...),
		LogoutAllowed: false,
	}, nil
}

func result(err error) string {
	switch errgo.Cause(err) {
	case nil:
		return monitoring.ResultSuccess
	case ErrNoHeaderConfigured:
		return monitoring.ResultNoHeaderConfigured
	case ErrNoCertificate:
		return monitoring.ResultNoCertificate
	case cert.ErrUnparsable:
		return monitoring.ResultUnparsable
	case ErrMissingCommonName:
		return monitoring.ResultMissingCommonName
	case ErrMissingEmail:
		return monitoring.ResultMissingEmail
	case ErrProvisioningFailed:
		return monitoring.ResultProvisioningFailed
	}
	return monitoring.ResultError
}
