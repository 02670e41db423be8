// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package memstore provides an in-memory implementation of the store.
// This might be useful for simple test systems.
package memstore

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"
	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/store"
)

type memStore struct {
	mu    sync.Mutex
	users []*store.User
}

// NewStore creates a new in-memory store.Store instance.
func NewStore() store.Store {
	return &memStore{}
}

// RemoveAll is implemented so that tests can clear out the data.
func (s *memStore) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
}

// User implements store.Store.User.
func (s *memStore) User(_ context.Context, loginID string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loginID == "" {
		return nil, store.NotFoundError("")
	}
	u := s.userFromLoginID(loginID)
	if u == nil {
		return nil, store.NotFoundError(loginID)
	}
	var u1 store.User
	copyUser(&u1, u)
	return &u1, nil
}

// userFromLoginID performs a linear search to find a user with the
// given login ID.
func (s *memStore) userFromLoginID(loginID string) *store.User {
	for _, u := range s.users {
		if u.LoginID == loginID {
			return u
		}
	}
	return nil
}

// Users implements store.Store.Users.
func (s *memStore) Users(_ context.Context) ([]store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]store.User, len(s.users))
	for i, u := range s.users {
		copyUser(&users[i], u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].LoginID < users[j].LoginID
	})
	return users, nil
}

// CreateUser implements store.Store.CreateUser.
func (s *memStore) CreateUser(_ context.Context, u *store.User, password string) error {
	if u.LoginID == "" {
		return errgo.New("login ID not specified")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errgo.Notef(err, "cannot hash password")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userFromLoginID(u.LoginID) != nil {
		return store.DuplicateUsernameError(u.LoginID)
	}
	u1 := new(store.User)
	copyUser(u1, u)
	u1.PasswordHash = hash
	s.users = append(s.users, u1)
	return nil
}

func copyUser(dst, src *store.User) {
	*dst = *src
	dst.Groups = append([]string(nil), src.Groups...)
	dst.PasswordHash = append([]byte(nil), src.PasswordHash...)
}
