// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cert decodes client certificates forwarded by a TLS
// terminating proxy and exposes the parts of them that are used to
// identify a user.
package cert

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"math/big"
	"time"

	"github.com/juju/loggo"
	errgo "gopkg.in/errgo.v1"
)

var logger = loggo.GetLogger("certauth.cert")

// ErrUnparsable is the error cause used when a certificate cannot be
// decoded.
var ErrUnparsable = errgo.New("unparsable certificate")

// Certificate holds the information decoded from a client certificate.
type Certificate struct {
	// Subject contains the subject distinguished name fields in the
	// order they appear in the certificate.
	Subject DN

	// Issuer contains the issuer distinguished name fields.
	Issuer DN

	// AltNames contains the entries of the subjectAltName extension
	// in the order they appear in the extension.
	AltNames AltNames

	// SerialNumber contains the certificate serial number.
	SerialNumber *big.Int

	// NotBefore and NotAfter hold the validity period of the
	// certificate. They are informational only, the proxy that
	// forwarded the certificate is responsible for checking them.
	NotBefore time.Time
	NotAfter  time.Time

	// Fingerprint contains the hex encoded SHA-256 digest of the DER
	// encoded certificate.
	Fingerprint string
}

// Parse decodes the given PEM encoded certificate. The first
// CERTIFICATE block is used. If the certificate cannot be decoded then
// an error with a cause of ErrUnparsable is returned.
func Parse(data string) (*Certificate, error) {
	block, _ := pem.Decode([]byte(data))
	if block == nil {
		return nil, errgo.WithCausef(nil, ErrUnparsable, "no PEM data found")
	}
	if block.Type != "CERTIFICATE" {
		return nil, errgo.WithCausef(nil, ErrUnparsable, "unexpected PEM block type %q", block.Type)
	}
	xc, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, errgo.WithCausef(err, ErrUnparsable, "cannot parse certificate")
	}
	return FromX509(xc)
}

// FromX509 creates a Certificate from an already decoded X.509
// certificate.
func FromX509(xc *x509.Certificate) (*Certificate, error) {
	altNames, err := altNamesFromExtensions(xc.Extensions)
	if err != nil {
		return nil, errgo.WithCausef(err, ErrUnparsable, "cannot parse subjectAltName")
	}
	sum := sha256.Sum256(xc.Raw)
	return &Certificate{
		Subject:      dnFromNames(xc.Subject.Names),
		Issuer:       dnFromNames(xc.Issuer.Names),
		AltNames:     altNames,
		SerialNumber: xc.SerialNumber,
		NotBefore:    xc.NotBefore,
		NotAfter:     xc.NotAfter,
		Fingerprint:  hex.EncodeToString(sum[:]),
	}, nil
}
