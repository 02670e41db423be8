package idp

import (
	"gopkg.in/errgo.v1"
)

// authenticators holds the registry of authenticators, indexed by type.
var authenticators = make(map[string]func(func(interface{}) error) (Authenticator, error))

// Config allows an Authenticator instance to be unmarshaled from a
// YAML configuration file. The "type" field determines which registered
// authenticator is used for the unmarshaling.
type Config struct {
	Authenticator
}

func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var t struct {
		Type string
	}
	if err := unmarshal(&t); err != nil {
		return errgo.Notef(err, "cannot unmarshal authenticator type")
	}
	if f, ok := authenticators[t.Type]; ok {
		a, err := f(unmarshal)
		if err != nil {
			return errgo.Notef(err, "cannot unmarshal %s configuration", t.Type)
		}
		c.Authenticator = a
		return nil
	}
	return errgo.Newf("unrecognised authenticator type %q", t.Type)
}

// Register is used by authenticators to register a function that can
// be used to unmarshal an authenticator type. When the authenticator
// with the given name is used, f will be called to unmarshal its
// parameters from YAML. Its argument will be an unmarshalYAML function
// that can be used to unmarshal the configuration parameters into its
// argument according to the rules specified in gopkg.in/yaml.v2.
func Register(authType string, f func(func(interface{}) error) (Authenticator, error)) {
	authenticators[authType] = f
}
