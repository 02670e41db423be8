package sqlstore

import (
	"context"
	"database/sql"

	"github.com/juju/loggo"
	"golang.org/x/crypto/bcrypt"
	errgo "gopkg.in/errgo.v1"

	"github.com/canonical/certauth/store"
)

var logger = loggo.GetLogger("certauth.store.sqlstore")

type userStore struct {
	*backend
}

type userParams struct {
	argBuilder

	LoginID      string
	Name         string
	Email        string
	PasswordHash []byte
}

type scanner interface {
	Scan(...interface{}) error
}

func scanUser(s scanner, u *store.User) error {
	return errgo.Mask(s.Scan(&u.LoginID, &u.Name, &u.Email, &u.PasswordHash), errgo.Any)
}

// User implements store.Store.User.
func (s *userStore) User(ctx context.Context, loginID string) (*store.User, error) {
	if loginID == "" {
		return nil, store.NotFoundError("")
	}
	var u store.User
	err := s.withTx(func(tx *sql.Tx) error {
		row, err := s.driver.queryRow(tx, tmplUserFrom, &userParams{
			argBuilder: s.driver.argBuilderFunc(),
			LoginID:    loginID,
		})
		if err != nil {
			return errgo.Mask(err)
		}
		if err := scanUser(row, &u); err != nil {
			if errgo.Cause(err) == sql.ErrNoRows {
				return store.NotFoundError(loginID)
			}
			return errgo.Mask(err)
		}
		groups, err := s.groups(tx, loginID)
		if err != nil {
			return errgo.Mask(err)
		}
		u.Groups = groups[loginID]
		return nil
	})
	if err != nil {
		return nil, errgo.Mask(err, errgo.Is(store.ErrNotFound))
	}
	return &u, nil
}

// Users implements store.Store.Users.
func (s *userStore) Users(ctx context.Context) ([]store.User, error) {
	var users []store.User
	err := s.withTx(func(tx *sql.Tx) error {
		rows, err := s.driver.query(tx, tmplSelectUsers, &userParams{
			argBuilder: s.driver.argBuilderFunc(),
		})
		if err != nil {
			return errgo.Mask(err)
		}
		defer rows.Close()
		for rows.Next() {
			var u store.User
			if err := scanUser(rows, &u); err != nil {
				return errgo.Mask(err)
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			return errgo.Mask(err)
		}
		groups, err := s.groups(tx, "")
		if err != nil {
			return errgo.Mask(err)
		}
		for i := range users {
			users[i].Groups = groups[users[i].LoginID]
		}
		return nil
	})
	if err != nil {
		return nil, errgo.Notef(err, "cannot list users")
	}
	return users, nil
}

// groups returns the groups of the given user, or of all users if
// loginID is empty, keyed by login ID.
func (s *userStore) groups(tx *sql.Tx, loginID string) (map[string][]string, error) {
	rows, err := s.driver.query(tx, tmplSelectGroups, &userParams{
		argBuilder: s.driver.argBuilderFunc(),
		LoginID:    loginID,
	})
	if err != nil {
		return nil, errgo.Mask(err)
	}
	defer rows.Close()
	groups := make(map[string][]string)
	for rows.Next() {
		var id, g string
		if err := rows.Scan(&id, &g); err != nil {
			return nil, errgo.Mask(err)
		}
		groups[id] = append(groups[id], g)
	}
	return groups, errgo.Mask(rows.Err())
}

type insertGroupsParams struct {
	argBuilder

	LoginID string
	Values  []string
}

// CreateUser implements store.Store.CreateUser.
func (s *userStore) CreateUser(ctx context.Context, u *store.User, password string) error {
	if u.LoginID == "" {
		return errgo.New("login ID not specified")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errgo.Notef(err, "cannot hash password")
	}
	err = s.withTx(func(tx *sql.Tx) error {
		_, err := s.driver.exec(tx, tmplInsertUser, &userParams{
			argBuilder:   s.driver.argBuilderFunc(),
			LoginID:      u.LoginID,
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: hash,
		})
		if s.driver.isDuplicateFunc(err) {
			return store.DuplicateUsernameError(u.LoginID)
		}
		if err != nil {
			return errgo.Mask(err)
		}
		if len(u.Groups) == 0 {
			return nil
		}
		_, err = s.driver.exec(tx, tmplInsertGroups, &insertGroupsParams{
			argBuilder: s.driver.argBuilderFunc(),
			LoginID:    u.LoginID,
			Values:     u.Groups,
		})
		return errgo.Mask(err)
	})
	if err != nil {
		return errgo.Mask(err, errgo.Is(store.ErrDuplicateUsername))
	}
	return nil
}
