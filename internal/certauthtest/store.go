// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package certauthtest

import (
	"context"
	"sync"

	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/store"
)

// RecordingStore is a store.Store that records the calls made to an
// underlying store.
type RecordingStore struct {
	store.Store

	mu    sync.Mutex
	calls []string

	// CreateError, if set, is returned from CreateUser without
	// calling the underlying store.
	CreateError error
}

// NewRecordingStore returns a RecordingStore wrapping s.
func NewRecordingStore(s store.Store) *RecordingStore {
	return &RecordingStore{Store: s}
}

func (s *RecordingStore) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

// Calls returns the names of the methods called so far, in order.
func (s *RecordingStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Reset forgets all recorded calls.
func (s *RecordingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// User implements store.Store.User.
func (s *RecordingStore) User(ctx context.Context, loginID string) (*store.User, error) {
	s.record("User")
	u, err := s.Store.User(ctx, loginID)
	return u, errgo.Mask(err, errgo.Any)
}

// Users implements store.Store.Users.
func (s *RecordingStore) Users(ctx context.Context) ([]store.User, error) {
	s.record("Users")
	users, err := s.Store.Users(ctx)
	return users, errgo.Mask(err, errgo.Any)
}

// CreateUser implements store.Store.CreateUser.
func (s *RecordingStore) CreateUser(ctx context.Context, u *store.User, password string) error {
	s.record("CreateUser")
	if s.CreateError != nil {
		return s.CreateError
	}
	return errgo.Mask(s.Store.CreateUser(ctx, u, password), errgo.Any)
}
