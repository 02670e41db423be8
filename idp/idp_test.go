// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package idp_test

import (
	"context"
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	errgo "gopkg.in/errgo.v1"
	"gopkg.in/yaml.v2"

	"github.com/canonical/certauth/idp"
	"github.com/canonical/certauth/session"
)

type testAuthenticator struct {
	Label string `yaml:"label"`
}

func (a *testAuthenticator) Name() string {
	return "test-" + a.Label
}

func (*testAuthenticator) Init(context.Context, idp.InitParams) error {
	return nil
}

func (*testAuthenticator) TrustExternal(context.Context, *http.Request) (*session.Identity, bool) {
	return nil, false
}

func init() {
	idp.Register("test", func(unmarshal func(interface{}) error) (idp.Authenticator, error) {
		var a testAuthenticator
		if err := unmarshal(&a); err != nil {
			return nil, errgo.Mask(err)
		}
		if a.Label == "" {
			return nil, errgo.New("label not specified")
		}
		return &a, nil
	})
}

var configUnmarshalTests = []struct {
	about       string
	yaml        string
	expectName  string
	expectError string
}{{
	about: "registered type",
	yaml: `
type: test
label: one
`,
	expectName: "test-one",
}, {
	about: "unknown type",
	yaml: `
type: no-such-type
`,
	expectError: `unrecognised authenticator type "no-such-type"`,
}, {
	about: "authenticator error",
	yaml: `
type: test
`,
	expectError: `cannot unmarshal test configuration: label not specified`,
}}

func TestConfigUnmarshal(t *testing.T) {
	c := qt.New(t)
	for _, test := range configUnmarshalTests {
		c.Run(test.about, func(c *qt.C) {
			var conf idp.Config
			err := yaml.Unmarshal([]byte(test.yaml), &conf)
			if test.expectError != "" {
				c.Assert(err, qt.ErrorMatches, test.expectError)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(conf.Name(), qt.Equals, test.expectName)
		})
	}
}
