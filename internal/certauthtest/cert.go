// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package certauthtest holds helpers shared by the tests of the
// certificate authentication packages.
package certauthtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"net"
	"strings"
	"time"

	qt "github.com/frankban/quicktest"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/canonical/certauth/cert"
)

var (
	oidEmailAddress   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
	oidSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}
)

// CertParams holds the parameters of a test certificate.
type CertParams struct {
	// CommonName holds the subject CN. No CN is added when it is
	// empty.
	CommonName string

	// EmailAddress holds the subject emailAddress. No emailAddress
	// is added when it is empty.
	EmailAddress string

	// Organization holds the subject organization names.
	Organization []string

	// AltNames holds the subjectAltName entries in the order they
	// will be encoded. Only email, DNS, URI and IP Address entries
	// are supported.
	AltNames []string
}

// NewCertificate creates a self signed certificate with the given
// parameters and returns it in PEM format.
func NewCertificate(c *qt.C, p CertParams) string {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	c.Assert(err, qt.IsNil)
	subject := pkix.Name{
		CommonName:   p.CommonName,
		Organization: p.Organization,
	}
	if p.EmailAddress != "" {
		subject.ExtraNames = append(subject.ExtraNames, pkix.AttributeTypeAndValue{
			Type:  oidEmailAddress,
			Value: p.EmailAddress,
		})
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      subject,
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	if len(p.AltNames) > 0 {
		tmpl.ExtraExtensions = []pkix.Extension{{
			Id:    oidSubjectAltName,
			Value: marshalAltNames(c, cert.ParseAltNames(strings.Join(p.AltNames, ","))),
		}}
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	c.Assert(err, qt.IsNil)
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: der,
	}))
}

// Base64Body returns the base64 body of the given PEM certificate
// without the BEGIN and END lines or any line breaks, as some proxies
// forward it.
func Base64Body(pemCert string) string {
	var lines []string
	for _, line := range strings.Split(pemCert, "\n") {
		if line == "" || strings.HasPrefix(line, "-----") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "")
}

func marshalAltNames(c *qt.C, altNames cert.AltNames) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, a := range altNames {
			var tag cbasn1.Tag
			value := []byte(a.Value)
			switch a.Type {
			case cert.AltNameEmail:
				tag = cbasn1.Tag(1).ContextSpecific()
			case cert.AltNameDNS:
				tag = cbasn1.Tag(2).ContextSpecific()
			case cert.AltNameURI:
				tag = cbasn1.Tag(6).ContextSpecific()
			case cert.AltNameIP:
				ip := net.ParseIP(a.Value)
				c.Assert(ip, qt.Not(qt.IsNil), qt.Commentf("invalid IP address %q", a.Value))
				if ip4 := ip.To4(); ip4 != nil {
					ip = ip4
				}
				tag = cbasn1.Tag(7).ContextSpecific()
				value = ip
			default:
				c.Fatalf("unsupported alt name type %q", a.Type)
			}
			b.AddASN1(tag, func(b *cryptobyte.Builder) {
				b.AddBytes(value)
			})
		}
	})
	der, err := b.Bytes()
	c.Assert(err, qt.IsNil)
	return der
}
