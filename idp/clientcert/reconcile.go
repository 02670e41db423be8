// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package clientcert

import (
	"context"
	"strings"

	"github.com/juju/utils/v2"
	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/store"
)

// DefaultGroup is the group given to provisioned users when no group
// is configured.
const DefaultGroup = "user"

// A Reconciler maps identities onto user accounts, creating accounts
// for identities that have not been seen before.
type Reconciler struct {
	// Store holds the user store.
	Store store.Store

	// Group holds the group given to newly created users. If this
	// is empty DefaultGroup is used.
	Group string

	// NewPassword is used to generate the password for new users.
	// The password is never disclosed. If this is nil
	// utils.RandomPassword is used.
	NewPassword func() (string, error)

	// OnCreate, if set, is called with each newly created user.
	OnCreate func(u *store.User)
}

// Reconcile returns the stored user matching the given identity. A user
// matches if their email address is the same as the identity's, ignoring
// case. If no user matches then a new user is created and returned
// without being read back, so its PasswordHash is not set. Existing users
// are never modified. Any failure has a cause of ErrProvisioningFailed.
func (r *Reconciler) Reconcile(ctx context.Context, id Identity) (*store.User, error) {
	users, err := r.Store.Users(ctx)
	if err != nil {
		logger.Errorf("cannot list users: %s", err)
		return nil, errgo.WithCausef(err, ErrProvisioningFailed, "cannot list users")
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, id.Email) {
			return &users[i], nil
		}
	}
	loginID := DeriveLoginID(id)
	if loginID == "" {
		return nil, errgo.WithCausef(nil, ErrProvisioningFailed, "cannot derive login ID for %q", id.Name)
	}
	password, err := r.newPassword()
	if err != nil {
		logger.Errorf("cannot generate password: %s", err)
		return nil, errgo.WithCausef(err, ErrProvisioningFailed, "cannot generate password")
	}
	u := store.User{
		LoginID: loginID,
		Name:    id.Name,
		Email:   id.Email,
		Groups:  []string{r.group()},
	}
	if err := r.Store.CreateUser(ctx, &u, password); err != nil {
		logger.Errorf("cannot create user %q: %s", loginID, err)
		return nil, errgo.WithCausef(err, ErrProvisioningFailed, "cannot create user %q", loginID)
	}
	logger.Infof("created user %q for %s", loginID, id.Email)
	if r.OnCreate != nil {
		r.OnCreate(&u)
	}
	return &u, nil
}

// DeriveLoginID returns the login ID given to a new user with the given
// identity. An explicit login ID is used if present, otherwise the name
// is cleaned, falling back to the local part of the email address. The
// empty string is returned if no valid login ID can be derived.
func DeriveLoginID(id Identity) string {
	if id.LoginID != "" {
		return id.LoginID
	}
	if s := store.CleanLoginID(id.Name); s != "" {
		return s
	}
	local, _, _ := strings.Cut(id.Email, "@")
	return store.CleanLoginID(local)
}

func (r *Reconciler) group() string {
	g := store.CleanGroup(r.Group)
	if g == "" {
		return DefaultGroup
	}
	return g
}

func (r *Reconciler) newPassword() (string, error) {
	if r.NewPassword != nil {
		return r.NewPassword()
	}
	return utils.RandomPassword()
}
