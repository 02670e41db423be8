// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package clientcert

import (
	"strings"

	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/cert"
)

// Identity is the identity claimed by a client certificate.
type Identity struct {
	// Name contains the display name of the user, taken from the
	// subject common name.
	Name string

	// Email contains the email address of the user.
	Email string

	// LoginID contains the login ID of the user in the store. It is
	// empty until the identity has been reconciled with the store.
	LoginID string
}

// Extract determines the identity claimed by the given certificate.
// The name is the subject CN, which must be present and non-empty. The email is the first email entry in
// the subjectAltName extension, or the subject emailAddress if there is
// no such entry.
func Extract(c *cert.Certificate) (Identity, error) {
	name := c.Subject.Get("CN")
	if name == "" {
		return Identity{}, errgo.WithCausef(nil, ErrMissingCommonName, "certificate %q has no CN", c.Subject.String())
	}
	email := altNameEmail(c.AltNames)
	if email == "" {
		email = strings.TrimSpace(c.Subject.Get("emailAddress"))
	}
	if email == "" {
		return Identity{}, errgo.WithCausef(nil, ErrMissingEmail, "certificate for %q has no email address", name)
	}
	return Identity{
		Name:  name,
		Email: email,
	}, nil
}

func altNameEmail(altNames cert.AltNames) string {
	for _, an := range altNames {
		if an.Type != cert.AltNameEmail {
			continue
		}
		if v := strings.TrimSpace(an.Value); v != "" {
			return v
		}
	}
	return ""
}
