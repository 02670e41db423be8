// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package clientcert

import (
	errgo "gopkg.in/errgo.v1"
)

var (
	// ErrNoHeaderConfigured is the error cause used when the
	// authenticator has no header name configured.
	ErrNoHeaderConfigured = errgo.New("no client certificate header configured")

	// ErrNoCertificate is the error cause used when the request does
	// not carry a client certificate.
	ErrNoCertificate = errgo.New("no client certificate presented")

	// ErrMissingCommonName is the error cause used when the
	// certificate subject has no common name.
	ErrMissingCommonName = errgo.New("certificate subject has no common name")

	// ErrMissingEmail is the error cause used when neither the
	// subjectAltName extension nor the subject contains an email
	// address.
	ErrMissingEmail = errgo.New("certificate has no email address")

	// ErrProvisioningFailed is the error cause used when the user
	// account for an identity cannot be found or created.
	ErrProvisioningFailed = errgo.New("cannot provision user")
)
