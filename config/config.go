// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// The config package defines configuration parameters for the
// certificate authentication server.
package config

import (
	"io/ioutil"
	"os"
	"strings"

	"gopkg.in/errgo.v1"
	"gopkg.in/yaml.v2"

	"github.com/canonical/certauth/idp"
	"github.com/canonical/certauth/store"
)

// Config holds the configuration parameters for the certificate
// authentication server.
type Config struct {
	// APIAddr holds the address on which the server listens.
	APIAddr string `yaml:"api-addr"`

	// LoggingConfig holds the loggo configuration string.
	LoggingConfig string `yaml:"logging-config"`

	// AccessLog holds the name of the file to which the access log
	// is written. No access log is written if this is empty.
	AccessLog string `yaml:"access-log"`

	// Storage holds the storage backend for user accounts.
	Storage *store.Config `yaml:"storage"`

	// Authenticators holds the authenticators that are tried, in
	// order, for each request.
	Authenticators []idp.Config `yaml:"authenticators"`
}

func (c *Config) validate() error {
	var missing []string
	if c.APIAddr == "" {
		missing = append(missing, "api-addr")
	}
	if c.Storage == nil {
		missing = append(missing, "storage")
	}
	if len(c.Authenticators) == 0 {
		missing = append(missing, "authenticators")
	}
	if len(missing) != 0 {
		return errgo.Newf("missing fields %s in config file", strings.Join(missing, ", "))
	}
	return nil
}

// Read reads a configuration file from the given path.
func Read(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errgo.Notef(err, "cannot open config file")
	}
	defer f.Close()
	data, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errgo.Notef(err, "cannot read %q", path)
	}
	var conf Config
	err = yaml.Unmarshal(data, &conf)
	if err != nil {
		return nil, errgo.Notef(err, "cannot parse %q", path)
	}
	if err := conf.validate(); err != nil {
		return nil, errgo.Mask(err)
	}
	return &conf, nil
}
