// Copyright 2018 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package memstore

import (
	"github.com/canonical/certauth/store"
)

var RemoveAll = func(s store.Store) {
	s.(*memStore).RemoveAll()
}
