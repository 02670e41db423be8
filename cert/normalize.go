// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cert

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	beginCertificate = "-----BEGIN CERTIFICATE-----"
	endCertificate   = "-----END CERTIFICATE-----"
)

var envelopeRegexp = regexp.MustCompile(`(?s)` + beginCertificate + `(.*?)` + endCertificate)

// bodyCutset holds the characters a transport may insert into the
// body of a forwarded certificate.
const bodyCutset = " \t\r\n\x00\x0b"

// Normalize converts a certificate as forwarded in an HTTP header into
// a well formed PEM block.
//
// If raw contains a BEGIN/END CERTIFICATE envelope then the whitespace
// and control characters are removed from the enclosed body and the
// envelope is regenerated. Otherwise the trimmed value is taken to be
// the base64 body itself. Normalize never fails, an empty input
// results in a PEM block with an empty body.
func Normalize(raw string) string {
	var body string
	if m := envelopeRegexp.FindStringSubmatch(raw); m != nil {
		body = strings.Map(func(r rune) rune {
			if strings.ContainsRune(bodyCutset, r) {
				return -1
			}
			return r
		}, m[1])
	} else {
		body = strings.Trim(raw, bodyCutset)
	}
	return beginCertificate + "\n" + body + "\n" + endCertificate + "\n"
}

// Body returns the body enclosed in a PEM block created by Normalize.
func Body(pem string) string {
	if m := envelopeRegexp.FindStringSubmatch(pem); m != nil {
		return strings.Trim(m[1], bodyCutset)
	}
	return ""
}

// Unescape decodes a certificate that has been URL encoded by the
// forwarding proxy, as done by nginx for $ssl_client_escaped_cert.
// Values that do not look URL encoded are returned unchanged.
func Unescape(raw string) string {
	if !strings.Contains(raw, "%") {
		return raw
	}
	s, err := url.PathUnescape(raw)
	if err != nil {
		logger.Debugf("certificate is not URL encoded: %v", err)
		return raw
	}
	return s
}
