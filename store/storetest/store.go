// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package storetest provides useful tools for testing Store
// implementations.
package storetest

import (
	"context"

	qt "github.com/frankban/quicktest"
	"github.com/frankban/quicktest/qtsuite"
	"golang.org/x/crypto/bcrypt"
	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/store"
)

// storeSuite contains a set of tests for Store implementations.
type storeSuite struct {
	newStore func(c *qt.C) store.Store

	Store store.Store
	ctx   context.Context
}

// TestStore runs a suite of tests on the given store implementation.
func TestStore(c *qt.C, newStore func(c *qt.C) store.Store) {
	qtsuite.Run(c, &storeSuite{
		newStore: newStore,
	})
}

func (s *storeSuite) Init(c *qt.C) {
	s.Store = s.newStore(c)
	s.ctx = context.Background()
}

func (s *storeSuite) TestUserNotFound(c *qt.C) {
	u, err := s.Store.User(s.ctx, "no-such-user")
	c.Assert(errgo.Cause(err), qt.Equals, store.ErrNotFound)
	c.Assert(err, qt.ErrorMatches, `user no-such-user not found`)
	c.Assert(u, qt.IsNil)
}

func (s *storeSuite) TestUserNotSpecified(c *qt.C) {
	_, err := s.Store.User(s.ctx, "")
	c.Assert(errgo.Cause(err), qt.Equals, store.ErrNotFound)
}

func (s *storeSuite) TestCreateUser(c *qt.C) {
	err := s.Store.CreateUser(s.ctx, &store.User{
		LoginID: "jane.doe",
		Name:    "Jane Doe",
		Email:   "jane@example.org",
		Groups:  []string{"user"},
	}, "secret")
	c.Assert(err, qt.IsNil)

	u, err := s.Store.User(s.ctx, "jane.doe")
	c.Assert(err, qt.IsNil)
	c.Assert(u.LoginID, qt.Equals, "jane.doe")
	c.Assert(u.Name, qt.Equals, "Jane Doe")
	c.Assert(u.Email, qt.Equals, "jane@example.org")
	c.Assert(u.Groups, qt.DeepEquals, []string{"user"})
	c.Assert(bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("secret")), qt.IsNil)
}

func (s *storeSuite) TestCreateUserIgnoresPasswordHash(c *qt.C) {
	err := s.Store.CreateUser(s.ctx, &store.User{
		LoginID:      "jane.doe",
		PasswordHash: []byte("not-a-hash"),
	}, "secret")
	c.Assert(err, qt.IsNil)

	u, err := s.Store.User(s.ctx, "jane.doe")
	c.Assert(err, qt.IsNil)
	c.Assert(string(u.PasswordHash), qt.Not(qt.Equals), "not-a-hash")
	c.Assert(bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("secret")), qt.IsNil)
}

func (s *storeSuite) TestCreateUserDuplicate(c *qt.C) {
	err := s.Store.CreateUser(s.ctx, &store.User{
		LoginID: "jane.doe",
		Email:   "jane@example.org",
	}, "secret")
	c.Assert(err, qt.IsNil)

	err = s.Store.CreateUser(s.ctx, &store.User{
		LoginID: "jane.doe",
		Email:   "other@example.org",
	}, "secret")
	c.Assert(errgo.Cause(err), qt.Equals, store.ErrDuplicateUsername)
	c.Assert(err, qt.ErrorMatches, `username jane.doe already in use`)

	u, err := s.Store.User(s.ctx, "jane.doe")
	c.Assert(err, qt.IsNil)
	c.Assert(u.Email, qt.Equals, "jane@example.org")
}

func (s *storeSuite) TestCreateUserNoLoginID(c *qt.C) {
	err := s.Store.CreateUser(s.ctx, &store.User{
		Email: "jane@example.org",
	}, "secret")
	c.Assert(err, qt.ErrorMatches, `login ID not specified`)
}

func (s *storeSuite) TestUsers(c *qt.C) {
	users, err := s.Store.Users(s.ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(users, qt.HasLen, 0)

	for _, u := range []store.User{{
		LoginID: "zed",
		Name:    "Zed",
		Email:   "zed@example.org",
		Groups:  []string{"user", "admin"},
	}, {
		LoginID: "amy",
		Name:    "Amy",
		Email:   "AMY@example.org",
	}} {
		u := u
		err := s.Store.CreateUser(s.ctx, &u, "pw")
		c.Assert(err, qt.IsNil)
	}

	users, err = s.Store.Users(s.ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(users, qt.HasLen, 2)
	c.Assert(users[0].LoginID, qt.Equals, "amy")
	c.Assert(users[0].Email, qt.Equals, "AMY@example.org")
	c.Assert(users[0].Groups, qt.HasLen, 0)
	c.Assert(users[1].LoginID, qt.Equals, "zed")
	c.Assert(users[1].Groups, qt.DeepEquals, []string{"user", "admin"})
}

func (s *storeSuite) TestReturnedUserIsCopy(c *qt.C) {
	err := s.Store.CreateUser(s.ctx, &store.User{
		LoginID: "jane.doe",
		Groups:  []string{"user"},
	}, "secret")
	c.Assert(err, qt.IsNil)

	u, err := s.Store.User(s.ctx, "jane.doe")
	c.Assert(err, qt.IsNil)
	u.Groups[0] = "admin"
	u.Name = "changed"

	u, err = s.Store.User(s.ctx, "jane.doe")
	c.Assert(err, qt.IsNil)
	c.Assert(u.Groups, qt.DeepEquals, []string{"user"})
	c.Assert(u.Name, qt.Equals, "")
}
