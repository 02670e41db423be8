package sqlstore_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/juju/postgrestest"
	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/store"
	"github.com/canonical/certauth/store/sqlstore"
	"github.com/canonical/certauth/store/storetest"
)

func TestStore(t *testing.T) {
	c := qt.New(t)
	defer c.Done()

	storetest.TestStore(c, func(c *qt.C) store.Store {
		return newFixture(c).backend.Store()
	})
}

func TestUnsupportedDriver(t *testing.T) {
	c := qt.New(t)
	defer c.Done()

	_, err := sqlstore.NewBackend("sqlite3", nil)
	c.Assert(err, qt.ErrorMatches, `unsupported database driver "sqlite3"`)
}

func TestInitIdempotent(t *testing.T) {
	c := qt.New(t)
	defer c.Done()

	f := newFixture(c)

	u1 := store.User{
		LoginID: "jane.doe",
		Name:    "Jane Doe",
		Email:   "jane@example.org",
		Groups:  []string{"user", "wiki"},
	}
	err := f.backend.Store().CreateUser(context.Background(), &u1, "secret")
	c.Assert(err, qt.Equals, nil)

	backend, err := sqlstore.NewBackend("postgres", f.pg.DB)
	c.Assert(err, qt.Equals, nil)
	u2, err := backend.Store().User(context.Background(), "jane.doe")
	c.Assert(err, qt.Equals, nil)
	u2.PasswordHash = nil
	c.Assert(*u2, qt.DeepEquals, u1)
}

type fixture struct {
	backend store.Backend
	pg      *postgrestest.DB
}

func newFixture(c *qt.C) *fixture {
	pg, err := postgrestest.New()
	if errgo.Cause(err) == postgrestest.ErrDisabled {
		c.Skip(err.Error())
	}
	c.Assert(err, qt.Equals, nil)

	backend, err := sqlstore.NewBackend("postgres", pg.DB)
	c.Assert(err, qt.Equals, nil)
	// Note: closing backend also closes the db.
	c.Defer(backend.Close)

	return &fixture{
		pg:      pg,
		backend: backend,
	}
}
