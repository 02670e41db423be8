// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package memstore

import (
	"github.com/canonical/certauth/store"
)

func init() {
	store.Register("memory", func(func(interface{}) error) (store.BackendFactory, error) {
		return &backend{
			store: NewStore(),
		}, nil
	})
}

type backend struct {
	store store.Store
}

// NewBackend implements store.BackendFactory.NewBackend.
func (b *backend) NewBackend() (store.Backend, error) {
	return b, nil
}

// Store implements store.Backend.Store.
func (b *backend) Store() store.Store {
	return b.store
}

func (b *backend) Close() {
}
