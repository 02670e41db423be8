package storetest

import (
	"context"

	qt "github.com/frankban/quicktest"
	"gopkg.in/yaml.v2"

	"github.com/canonical/certauth/store"
)

// TestUnmarshal checks that the storage section of the given
// configuration creates a working backend.
func TestUnmarshal(c *qt.C, configYAML string) {
	ctx := context.Background()
	var cfg struct {
		Storage *store.Config `yaml:"storage"`
	}
	err := yaml.Unmarshal([]byte(configYAML), &cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Storage, qt.Not(qt.IsNil))

	backend, err := cfg.Storage.NewBackend()
	c.Assert(err, qt.IsNil)
	defer backend.Close()

	// Sanity check that the backend can actually be used.
	_, err = backend.Store().Users(ctx)
	c.Assert(err, qt.IsNil)
}
