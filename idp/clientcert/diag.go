// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package clientcert

import (
	"fmt"
	"strings"

	"github.com/juju/loggo"
	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/cert"
)

// Severity is the severity of a diagnostic message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityNotice
	SeveritySuccess
	SeverityError
)

var severityNames = []string{
	SeverityInfo:    "info",
	SeverityNotice:  "notice",
	SeveritySuccess: "success",
	SeverityError:   "error",
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// Location identifies the source location that produced a diagnostic.
// The zero value means the location is unknown.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// errorLocation returns the location at which the failure described by
// err was first detected. Wrapping errors that preserve the cause are
// skipped so that the location is that of the original failure site
// rather than that of the last wrapper.
func errorLocation(err error) Location {
	cause := errgo.Cause(err)
	for {
		u, ok := err.(interface{ Underlying() error })
		if !ok {
			break
		}
		next := u.Underlying()
		if next == nil || errgo.Cause(next) != cause {
			break
		}
		if _, ok := next.(errgo.Locationer); !ok {
			break
		}
		err = next
	}
	if l, ok := err.(errgo.Locationer); ok {
		file, line := l.Location()
		return Location{File: file, Line: line}
	}
	return Location{}
}

// errorSeverity returns the severity with which a failure with the
// given cause is reported. A request without a certificate is the normal
// case for anonymous users.
func errorSeverity(err error) Severity {
	switch errgo.Cause(err) {
	case ErrNoCertificate:
		return SeverityInfo
	case ErrNoHeaderConfigured:
		return SeverityNotice
	}
	return SeverityError
}

// A Reporter receives diagnostic messages from the authenticator. It is
// only used when debugging is enabled.
type Reporter interface {
	Report(msg string, sev Severity, loc Location)
}

// LoggoReporter is a Reporter that writes diagnostics to a loggo
// logger.
type LoggoReporter struct {
	Logger loggo.Logger
}

// Report implements Reporter.Report.
func (r LoggoReporter) Report(msg string, sev Severity, loc Location) {
	level := loggo.INFO
	switch sev {
	case SeverityNotice:
		level = loggo.WARNING
	case SeverityError:
		level = loggo.ERROR
	}
	if loc.File != "" {
		msg = fmt.Sprintf("%s (%s)", msg, loc)
	}
	r.Logger.Logf(level, "%s", msg)
}

// dumpCertificate returns a summary of the identifying parts of c that
// is suitable for diagnostics. The certificate data itself is not
// included.
func dumpCertificate(c *cert.Certificate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "subject=%s", c.Subject)
	fmt.Fprintf(&sb, " issuer=%s", c.Issuer)
	if len(c.AltNames) > 0 {
		fmt.Fprintf(&sb, " subjectAltName=%q", c.AltNames.String())
	}
	if c.SerialNumber != nil {
		fmt.Fprintf(&sb, " serial=%s", c.SerialNumber.Text(16))
	}
	fmt.Fprintf(&sb, " sha256=%s", c.Fingerprint)
	return sb.String()
}
