// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cert

import (
	"crypto/x509/pkix"
	"fmt"
	"strings"
)

// An Attribute is a single distinguished name field.
type Attribute struct {
	// Type holds the short name of the attribute as used by OpenSSL
	// (for example "CN" or "emailAddress"). Attributes without a
	// well known short name use the dotted form of their OID.
	Type string

	// Value holds the attribute value.
	Value string
}

// DN holds the fields of a distinguished name in certificate order.
type DN []Attribute

// Get returns the value of the given attribute. When the attribute is
// repeated the last value wins. The empty string is returned when the
// attribute is not present.
func (dn DN) Get(typ string) string {
	for i := len(dn) - 1; i >= 0; i-- {
		if dn[i].Type == typ {
			return dn[i].Value
		}
	}
	return ""
}

// Values returns all the values of the given attribute in order.
func (dn DN) Values(typ string) []string {
	var values []string
	for _, a := range dn {
		if a.Type == typ {
			values = append(values, a.Value)
		}
	}
	return values
}

// String returns the distinguished name in the OpenSSL "oneline"
// format, for example "/C=GB/O=Example/CN=Jane Doe".
func (dn DN) String() string {
	var sb strings.Builder
	for _, a := range dn {
		sb.WriteByte('/')
		sb.WriteString(a.Type)
		sb.WriteByte('=')
		sb.WriteString(a.Value)
	}
	return sb.String()
}

var shortNames = map[string]string{
	"2.5.4.3":                    "CN",
	"2.5.4.4":                    "SN",
	"2.5.4.5":                    "serialNumber",
	"2.5.4.6":                    "C",
	"2.5.4.7":                    "L",
	"2.5.4.8":                    "ST",
	"2.5.4.9":                    "street",
	"2.5.4.10":                   "O",
	"2.5.4.11":                   "OU",
	"2.5.4.12":                   "title",
	"2.5.4.17":                   "postalCode",
	"2.5.4.42":                   "GN",
	"2.5.4.43":                   "initials",
	"2.5.4.46":                   "dnQualifier",
	"2.5.4.65":                   "pseudonym",
	"1.2.840.113549.1.9.1":       "emailAddress",
	"0.9.2342.19200300.100.1.1":  "UID",
	"0.9.2342.19200300.100.1.25": "DC",
}

func dnFromNames(names []pkix.AttributeTypeAndValue) DN {
	if len(names) == 0 {
		return nil
	}
	dn := make(DN, 0, len(names))
	for _, n := range names {
		oid := n.Type.String()
		typ, ok := shortNames[oid]
		if !ok {
			typ = oid
		}
		var value string
		switch v := n.Value.(type) {
		case string:
			value = v
		default:
			value = fmt.Sprint(v)
		}
		dn = append(dn, Attribute{Type: typ, Value: value})
	}
	return dn
}

func dnFromRDNSequence(rdns pkix.RDNSequence) DN {
	var names []pkix.AttributeTypeAndValue
	for _, rdn := range rdns {
		names = append(names, rdn...)
	}
	return dnFromNames(names)
}
