// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cert

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"net"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
	errgo "gopkg.in/errgo.v1"
)

// Labels used for subjectAltName entries. These match the labels
// OpenSSL uses when printing the extension.
const (
	AltNameEmail        = "email"
	AltNameDNS          = "DNS"
	AltNameURI          = "URI"
	AltNameIP           = "IP Address"
	AltNameDirName      = "DirName"
	AltNameOtherName    = "othername"
	AltNameRegisteredID = "Registered ID"
	AltNameX400         = "X400Name"
	AltNameEDIParty     = "EdiPartyName"
)

const unsupported = "<unsupported>"

// An AltName is a single subjectAltName entry.
type AltName struct {
	Type  string
	Value string
}

// String implements fmt.Stringer.
func (a AltName) String() string {
	return a.Type + ":" + a.Value
}

// AltNames holds subjectAltName entries in extension order.
type AltNames []AltName

// String returns the entries in the comma separated form used by
// OpenSSL, for example "email:jane@example.org, DNS:example.org".
func (an AltNames) String() string {
	parts := make([]string, len(an))
	for i, a := range an {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// ParseAltNames parses the comma separated representation of a
// subjectAltName extension. Each entry is split on its first colon
// only, so values may themselves contain colons. Entries without a
// colon are ignored.
func ParseAltNames(s string) AltNames {
	var an AltNames
	for _, part := range strings.Split(s, ",") {
		typ, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		an = append(an, AltName{
			Type:  strings.TrimSpace(typ),
			Value: value,
		})
	}
	return an
}

var oidSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}

var (
	tagOtherName     = cbasn1.Tag(0).ContextSpecific().Constructed()
	tagRFC822Name    = cbasn1.Tag(1).ContextSpecific()
	tagDNSName       = cbasn1.Tag(2).ContextSpecific()
	tagX400Address   = cbasn1.Tag(3).ContextSpecific().Constructed()
	tagDirectoryName = cbasn1.Tag(4).ContextSpecific().Constructed()
	tagEDIPartyName  = cbasn1.Tag(5).ContextSpecific().Constructed()
	tagURI           = cbasn1.Tag(6).ContextSpecific()
	tagIPAddress     = cbasn1.Tag(7).ContextSpecific()
	tagRegisteredID  = cbasn1.Tag(8).ContextSpecific()
)

func altNamesFromExtensions(exts []pkix.Extension) (AltNames, error) {
	for _, ext := range exts {
		if ext.Id.Equal(oidSubjectAltName) {
			return parseAltNameExtension(ext.Value)
		}
	}
	return nil, nil
}

// parseAltNameExtension walks the GeneralNames sequence of a
// subjectAltName extension preserving the order of the entries.
func parseAltNameExtension(der []byte) (AltNames, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, errgo.New("invalid GeneralNames sequence")
	}
	var an AltNames
	for !seq.Empty() {
		var value cryptobyte.String
		var tag cbasn1.Tag
		if !seq.ReadAnyASN1(&value, &tag) {
			return nil, errgo.New("invalid GeneralName")
		}
		a, err := parseGeneralName(tag, value)
		if err != nil {
			return nil, errgo.Mask(err)
		}
		an = append(an, a)
	}
	return an, nil
}

func parseGeneralName(tag cbasn1.Tag, value cryptobyte.String) (AltName, error) {
	switch tag {
	case tagRFC822Name:
		return AltName{AltNameEmail, string(value)}, nil
	case tagDNSName:
		return AltName{AltNameDNS, string(value)}, nil
	case tagURI:
		return AltName{AltNameURI, string(value)}, nil
	case tagIPAddress:
		if len(value) != net.IPv4len && len(value) != net.IPv6len {
			return AltName{}, errgo.Newf("invalid IP address length %d", len(value))
		}
		return AltName{AltNameIP, net.IP(value).String()}, nil
	case tagRegisteredID:
		var b cryptobyte.Builder
		b.AddASN1(cbasn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
			b.AddBytes(value)
		})
		oidBytes, err := b.Bytes()
		if err != nil {
			return AltName{}, errgo.Mask(err)
		}
		var oid asn1.ObjectIdentifier
		s := cryptobyte.String(oidBytes)
		if !s.ReadASN1ObjectIdentifier(&oid) {
			return AltName{}, errgo.New("invalid registered ID")
		}
		return AltName{AltNameRegisteredID, oid.String()}, nil
	case tagDirectoryName:
		var rdns pkix.RDNSequence
		rest, err := asn1.Unmarshal(value, &rdns)
		if err != nil {
			return AltName{}, errgo.Notef(err, "invalid directory name")
		}
		if len(rest) != 0 {
			return AltName{}, errgo.New("trailing data after directory name")
		}
		return AltName{AltNameDirName, dnFromRDNSequence(rdns).String()}, nil
	case tagOtherName:
		return AltName{AltNameOtherName, unsupported}, nil
	case tagX400Address:
		return AltName{AltNameX400, unsupported}, nil
	case tagEDIPartyName:
		return AltName{AltNameEDIParty, unsupported}, nil
	}
	logger.Debugf("ignoring unknown GeneralName tag %d", tag)
	return AltName{"UNDEF", unsupported}, nil
}
