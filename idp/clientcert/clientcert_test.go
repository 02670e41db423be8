// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package clientcert_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	errgo "gopkg.in/errgo.v1"
	"gopkg.in/yaml.v2"

	"github.com/canonical/certauth/cert"
	"github.com/canonical/certauth/idp"
	"github.com/canonical/certauth/idp/clientcert"
	"github.com/canonical/certauth/internal/certauthtest"
	"github.com/canonical/certauth/session"
	"github.com/canonical/certauth/store"
	"github.com/canonical/certauth/store/memstore"
)

const headerName = "X-SSL-Client-Cert"

type report struct {
	msg string
	sev clientcert.Severity
	loc clientcert.Location
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []report
}

func (r *recordingReporter) Report(msg string, sev clientcert.Severity, loc clientcert.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{msg, sev, loc})
}

type fixture struct {
	store    *certauthtest.RecordingStore
	reporter *recordingReporter
	auth     *clientcert.Authenticator
}

func newFixture(c *qt.C, p clientcert.Params) *fixture {
	certauthtest.LogTo(c)
	f := &fixture{
		store:    certauthtest.NewRecordingStore(memstore.NewStore()),
		reporter: new(recordingReporter),
	}
	p.Reporter = f.reporter
	f.auth = clientcert.NewAuthenticator(p)
	err := f.auth.Init(context.Background(), idp.InitParams{
		Store: f.store,
	})
	c.Assert(err, qt.IsNil)
	return f
}

func newRequest(c *qt.C, header string) *http.Request {
	req, err := http.NewRequest("GET", "/", nil)
	c.Assert(err, qt.IsNil)
	if header != "" {
		req.Header.Set(headerName, header)
	}
	return req
}

func janeDoe(c *qt.C) string {
	return certauthtest.NewCertificate(c, certauthtest.CertParams{
		CommonName: "Jane Doe",
		AltNames:   []string{"email:jane@example.org"},
	})
}

func TestAuthenticateBareBody(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture(c, clientcert.Params{
		HTTPHeaderName: headerName,
	})
	body := certauthtest.Base64Body(janeDoe(c))
	c.Assert(strings.HasPrefix(body, "MII"), qt.IsTrue)

	id, err := f.auth.Authenticate(ctx, newRequest(c, body))
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.DeepEquals, &session.Identity{
		LoginID:       "jane.doe",
		Name:          "Jane Doe",
		Email:         "jane@example.org",
		Groups:        []string{"user"},
		LogoutAllowed: false,
	})
	c.Assert(f.store.Calls(), qt.DeepEquals, []string{"Users", "CreateUser"})
	users, err := f.store.Users(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(users, qt.HasLen, 1)
}

func TestAuthenticateRepeat(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture(c, clientcert.Params{
		HTTPHeaderName: headerName,
		Group:          "staff",
	})
	pem := janeDoe(c)
	id1, err := f.auth.Authenticate(ctx, newRequest(c, certauthtest.Base64Body(pem)))
	c.Assert(err, qt.IsNil)
	c.Assert(id1.Groups, qt.DeepEquals, []string{"staff"})

	f.store.Reset()
	id2, err := f.auth.Authenticate(ctx, newRequest(c, pem))
	c.Assert(err, qt.IsNil)
	c.Assert(id2, qt.DeepEquals, id1)
	c.Assert(f.store.Calls(), qt.DeepEquals, []string{"Users"})
}

func TestAuthenticateHeaderForms(t *testing.T) {
	c := qt.New(t)
	pem := janeDoe(c)
	tests := []struct {
		about  string
		header string
	}{{
		about:  "PEM with line breaks folded into spaces",
		header: strings.ReplaceAll(strings.TrimSpace(pem), "\n", " "),
	}, {
		about:  "PEM with tabs",
		header: strings.ReplaceAll(strings.TrimSpace(pem), "\n", "\t"),
	}, {
		about:  "URL escaped PEM",
		header: url.PathEscape(pem),
	}, {
		about:  "bare body with surrounding whitespace",
		header: " " + certauthtest.Base64Body(pem) + " ",
	}}
	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			f := newFixture(c, clientcert.Params{
				HTTPHeaderName: headerName,
			})
			id, err := f.auth.Authenticate(context.Background(), newRequest(c, test.header))
			c.Assert(err, qt.IsNil)
			c.Assert(id.Email, qt.Equals, "jane@example.org")
		})
	}
}

func TestAuthenticateHeaderNameCaseInsensitive(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, clientcert.Params{
		HTTPHeaderName: "x-ssl-client-cert",
	})
	id, ok := f.auth.TrustExternal(context.Background(), newRequest(c, janeDoe(c)))
	c.Assert(ok, qt.IsTrue)
	c.Assert(id.Name, qt.Equals, "Jane Doe")
}

var authenticateErrorTests = []struct {
	about        string
	params       clientcert.Params
	header       func(c *qt.C) string
	expectCause  error
	expectErrMsg string
}{{
	about:  "no header name configured",
	params: clientcert.Params{},
	header: func(c *qt.C) string {
		return janeDoe(c)
	},
	expectCause:  clientcert.ErrNoHeaderConfigured,
	expectErrMsg: `http-header-name is empty`,
}, {
	about:  "header absent",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return ""
	},
	expectCause:  clientcert.ErrNoCertificate,
	expectErrMsg: `missing http header \(X-SSL-Client-Cert\)`,
}, {
	about:  "header only whitespace",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return " \t "
	},
	expectCause:  clientcert.ErrNoCertificate,
	expectErrMsg: `unable to locate user certificate`,
}, {
	about:  "empty envelope",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return "-----BEGIN CERTIFICATE----- \n -----END CERTIFICATE-----"
	},
	expectCause:  clientcert.ErrNoCertificate,
	expectErrMsg: `unable to locate user certificate`,
}, {
	about:  "not base64",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return "not a certificate!"
	},
	expectCause:  cert.ErrUnparsable,
	expectErrMsg: `no PEM data found`,
}, {
	about:  "corrupt DER",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return "AAAAAAAA"
	},
	expectCause:  cert.ErrUnparsable,
	expectErrMsg: `cannot parse certificate: .*`,
}, {
	about:  "no common name",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return certauthtest.NewCertificate(c, certauthtest.CertParams{
			Organization: []string{"Example"},
			AltNames:     []string{"email:jane@example.org"},
		})
	},
	expectCause:  clientcert.ErrMissingCommonName,
	expectErrMsg: `certificate "/O=Example" has no CN`,
}, {
	about:  "no email",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return certauthtest.NewCertificate(c, certauthtest.CertParams{
			CommonName: "Jane Doe",
			AltNames:   []string{"DNS:example.com"},
		})
	},
	expectCause:  clientcert.ErrMissingEmail,
	expectErrMsg: `certificate for "Jane Doe" has no email address`,
}}

func TestAuthenticateErrors(t *testing.T) {
	c := qt.New(t)
	for _, test := range authenticateErrorTests {
		c.Run(test.about, func(c *qt.C) {
			f := newFixture(c, test.params)
			id, err := f.auth.Authenticate(context.Background(), newRequest(c, test.header(c)))
			c.Assert(id, qt.IsNil)
			c.Assert(err, qt.ErrorMatches, test.expectErrMsg)
			c.Assert(errgo.Cause(err), qt.Equals, test.expectCause)
			// None of these failures may touch the store.
			c.Assert(f.store.Calls(), qt.HasLen, 0)
		})
	}
}

func TestAuthenticateProvisioningFailed(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, clientcert.Params{
		HTTPHeaderName: headerName,
	})
	f.store.CreateError = errgo.New("read-only store")
	_, err := f.auth.Authenticate(context.Background(), newRequest(c, janeDoe(c)))
	c.Assert(err, qt.ErrorMatches, `cannot create user "jane.doe": read-only store`)
	c.Assert(errgo.Cause(err), qt.Equals, clientcert.ErrProvisioningFailed)
}

func TestAuthenticateNotInitialized(t *testing.T) {
	c := qt.New(t)
	a := clientcert.NewAuthenticator(clientcert.Params{
		HTTPHeaderName: headerName,
	})
	_, err := a.Authenticate(context.Background(), newRequest(c, janeDoe(c)))
	c.Assert(errgo.Cause(err), qt.Equals, clientcert.ErrProvisioningFailed)
}

func TestInitNoStore(t *testing.T) {
	c := qt.New(t)
	a := clientcert.NewAuthenticator(clientcert.Params{
		HTTPHeaderName: headerName,
	})
	err := a.Init(context.Background(), idp.InitParams{})
	c.Assert(err, qt.ErrorMatches, `no store specified`)
}

func TestTrustExternalDebug(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, clientcert.Params{
		HTTPHeaderName: headerName,
		Debug:          true,
	})
	id, ok := f.auth.TrustExternal(context.Background(), newRequest(c, ""))
	c.Assert(ok, qt.IsFalse)
	c.Assert(id, qt.IsNil)
	c.Assert(f.reporter.reports, qt.HasLen, 1)
	r := f.reporter.reports[0]
	c.Check(r.msg, qt.Equals, "missing http header (X-SSL-Client-Cert)")
	c.Check(r.sev, qt.Equals, clientcert.SeverityInfo)
	c.Check(r.loc.File, qt.Matches, `.*clientcert\.go`)
	c.Check(r.loc.Line > 0, qt.IsTrue)
}

var trustExternalReportTests = []struct {
	about         string
	params        clientcert.Params
	header        func(c *qt.C) string
	expectReports []report
}{{
	about:  "no header name configured",
	params: clientcert.Params{},
	header: janeDoe,
	expectReports: []report{{
		msg: `http-header-name is empty`,
		sev: clientcert.SeverityNotice,
		loc: clientcert.Location{File: `.*clientcert\.go`},
	}},
}, {
	about:  "unparsable certificate",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return "garbage"
	},
	expectReports: []report{{
		msg: `no PEM data found`,
		sev: clientcert.SeverityError,
		loc: clientcert.Location{File: `.*/cert/cert\.go`},
	}},
}, {
	about:  "no email",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return certauthtest.NewCertificate(c, certauthtest.CertParams{
			CommonName: "Jane Doe",
			AltNames:   []string{"DNS:example.com"},
		})
	},
	expectReports: []report{{
		msg: `rejected certificate subject=/CN=Jane Doe .*subjectAltName="DNS:example.com".*`,
		sev: clientcert.SeverityInfo,
		loc: clientcert.Location{File: `.*extract\.go`},
	}, {
		msg: `certificate for "Jane Doe" has no email address`,
		sev: clientcert.SeverityError,
		loc: clientcert.Location{File: `.*extract\.go`},
	}},
}, {
	about:  "provisioning failure",
	params: clientcert.Params{HTTPHeaderName: headerName},
	header: func(c *qt.C) string {
		return certauthtest.NewCertificate(c, certauthtest.CertParams{
			CommonName: "!!!",
			AltNames:   []string{"email:???@example.org"},
		})
	},
	expectReports: []report{{
		msg: `cannot derive login ID for "!!!"`,
		sev: clientcert.SeverityError,
		loc: clientcert.Location{File: `.*reconcile\.go`},
	}},
}}

func TestTrustExternalReports(t *testing.T) {
	c := qt.New(t)
	for _, test := range trustExternalReportTests {
		c.Run(test.about, func(c *qt.C) {
			test.params.Debug = true
			f := newFixture(c, test.params)
			_, ok := f.auth.TrustExternal(context.Background(), newRequest(c, test.header(c)))
			c.Assert(ok, qt.IsFalse)
			c.Assert(f.reporter.reports, qt.HasLen, len(test.expectReports))
			for i, r := range f.reporter.reports {
				expect := test.expectReports[i]
				c.Check(r.msg, qt.Matches, expect.msg)
				c.Check(r.msg, qt.Not(qt.Contains), "BEGIN CERTIFICATE")
				c.Check(r.sev, qt.Equals, expect.sev)
				c.Check(r.loc.File, qt.Matches, expect.loc.File)
				c.Check(r.loc.Line > 0, qt.IsTrue)
			}
		})
	}
}

func TestTrustExternalNoDebug(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, clientcert.Params{
		HTTPHeaderName: headerName,
	})
	_, ok := f.auth.TrustExternal(context.Background(), newRequest(c, "garbage"))
	c.Assert(ok, qt.IsFalse)
	c.Assert(f.reporter.reports, qt.HasLen, 0)
}

func TestTrustExternalSuccess(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, clientcert.Params{
		HTTPHeaderName: headerName,
		Debug:          true,
	})
	id, ok := f.auth.TrustExternal(context.Background(), newRequest(c, janeDoe(c)))
	c.Assert(ok, qt.IsTrue)
	c.Assert(id.LogoutAllowed, qt.IsFalse)
	c.Assert(id.LoginID, qt.Equals, "jane.doe")
	c.Assert(f.reporter.reports, qt.HasLen, 0)
}

func TestName(t *testing.T) {
	c := qt.New(t)
	c.Assert(clientcert.NewAuthenticator(clientcert.Params{}).Name(), qt.Equals, "client-cert")
	c.Assert(clientcert.NewAuthenticator(clientcert.Params{Name: "proxy"}).Name(), qt.Equals, "proxy")
}

var configTests = []struct {
	about       string
	yaml        string
	expectError string
}{{
	about: "valid",
	yaml: `
type: client-cert
http-header-name: X-SSL-Client-Cert
group: staff
debug: true
`,
}, {
	about: "no header name",
	yaml: `
type: client-cert
group: staff
`,
	expectError: `cannot unmarshal client-cert configuration: http-header-name not specified`,
}}

func TestConfig(t *testing.T) {
	c := qt.New(t)
	for _, test := range configTests {
		c.Run(test.about, func(c *qt.C) {
			var cfg idp.Config
			err := yaml.Unmarshal([]byte(test.yaml), &cfg)
			if test.expectError != "" {
				c.Assert(err, qt.ErrorMatches, test.expectError)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(cfg.Authenticator.Name(), qt.Equals, "client-cert")

			f := newFixture(c, clientcert.Params{})
			err = cfg.Authenticator.Init(context.Background(), idp.InitParams{
				Store: f.store,
			})
			c.Assert(err, qt.IsNil)
			id, ok := cfg.Authenticator.TrustExternal(context.Background(), newRequest(c, janeDoe(c)))
			c.Assert(ok, qt.IsTrue)
			c.Assert(id.Groups, qt.DeepEquals, []string{"staff"})
		})
	}
}

var _ store.Store = (*certauthtest.RecordingStore)(nil)
