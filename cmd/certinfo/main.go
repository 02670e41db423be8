// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// The certinfo command shows the identity that the client-cert
// authenticator would establish from a certificate.
package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/juju/gnuflag"
	"gopkg.in/errgo.v1"
	"gopkg.in/yaml.v2"

	"github.com/canonical/certauth/cert"
	"github.com/canonical/certauth/idp/clientcert"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// certInfo holds the information printed about a certificate.
type certInfo struct {
	Subject     string    `yaml:"subject"`
	Issuer      string    `yaml:"issuer"`
	AltNames    []string  `yaml:"subject-alt-names,omitempty"`
	Serial      string    `yaml:"serial"`
	NotBefore   time.Time `yaml:"not-before"`
	NotAfter    time.Time `yaml:"not-after"`
	Fingerprint string    `yaml:"sha256"`
	Name        string    `yaml:"name,omitempty"`
	Email       string    `yaml:"email,omitempty"`
	LoginID     string    `yaml:"login-id,omitempty"`
	Error       string    `yaml:"error,omitempty"`
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := gnuflag.NewFlagSet("certinfo", gnuflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: certinfo [<certificate file>]\n\n")
		fmt.Fprintf(stderr, "The certificate is read from standard input if no file is given.\n")
		fmt.Fprintf(stderr, "It may be PEM encoded, a bare base64 body or URL escaped.\n")
	}
	if err := fs.Parse(true, args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}
	var r io.Reader = stdin
	if fs.NArg() == 1 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "cannot open certificate: %v\n", err)
			return 1
		}
		defer f.Close()
		r = f
	}
	info, err := readInfo(r)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	data, err := yaml.Marshal(info)
	if err != nil {
		fmt.Fprintf(stderr, "cannot marshal certificate information: %v\n", err)
		return 1
	}
	stdout.Write(data)
	if info.Error != "" {
		return 1
	}
	return 0
}

func readInfo(r io.Reader) (*certInfo, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errgo.Notef(err, "cannot read certificate")
	}
	c, err := cert.Parse(cert.Normalize(cert.Unescape(string(data))))
	if err != nil {
		return nil, errgo.Mask(err)
	}
	info := &certInfo{
		Subject:     c.Subject.String(),
		Issuer:      c.Issuer.String(),
		NotBefore:   c.NotBefore.UTC(),
		NotAfter:    c.NotAfter.UTC(),
		Fingerprint: c.Fingerprint,
	}
	if c.SerialNumber != nil {
		info.Serial = c.SerialNumber.Text(16)
	}
	for _, an := range c.AltNames {
		info.AltNames = append(info.AltNames, an.String())
	}
	id, err := clientcert.Extract(c)
	if err != nil {
		info.Error = err.Error()
		return info, nil
	}
	info.Name = id.Name
	info.Email = id.Email
	info.LoginID = clientcert.DeriveLoginID(id)
	return info, nil
}
