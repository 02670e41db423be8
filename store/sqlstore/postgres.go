package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	errgo "gopkg.in/errgo.v1"
)

const postgresInit = `
CREATE TABLE IF NOT EXISTS users (
	loginid TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	passwordhash BYTEA NOT NULL
);

CREATE INDEX IF NOT EXISTS users_email ON users (lower(email));

CREATE TABLE IF NOT EXISTS user_groups (
	loginid TEXT REFERENCES users NOT NULL,
	ordinal INTEGER NOT NULL,
	value TEXT NOT NULL,
	UNIQUE (loginid, value)
);
`

var postgresTmpls = [numTmpl]string{
	tmplUserFrom: `
		SELECT loginid, name, email, passwordhash
		FROM users
		WHERE loginid={{.LoginID | .Arg}}`,
	tmplSelectUsers: `
		SELECT loginid, name, email, passwordhash
		FROM users
		ORDER BY loginid`,
	tmplSelectGroups: `
		SELECT loginid, value FROM user_groups
		{{if .LoginID}}WHERE loginid={{.LoginID | .Arg}}{{end}}
		ORDER BY loginid, ordinal`,
	tmplInsertUser: `
		INSERT INTO users (loginid, name, email, passwordhash)
		VALUES ({{.LoginID | .Arg}}, {{.Name | .Arg}}, {{.Email | .Arg}}, {{.PasswordHash | .Arg}})`,
	tmplInsertGroups: `
		INSERT INTO user_groups (loginid, ordinal, value)
		VALUES {{range $i, $v := .Values}}{{if gt $i 0}}, {{end}}({{$.LoginID | $.Arg}}, {{$i}}, {{$v | $.Arg}}){{end}}
		ON CONFLICT (loginid, value) DO NOTHING`,
}

// newPostgresDriver creates a postgres driver using the given DB.
func newPostgresDriver(db *sql.DB) (*driver, error) {
	_, err := db.Exec(postgresInit)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	d := &driver{
		name: "postgres",
		argBuilderFunc: func() argBuilder {
			return &postgresArgBuilder{}
		},
		isDuplicateFunc: postgresIsDuplicate,
	}
	for i, t := range postgresTmpls {
		if err := d.parseTemplate(tmplID(i), t); err != nil {
			return nil, errgo.Notef(err, "cannot parse template %v", t)
		}
	}
	return d, nil
}

func postgresIsDuplicate(err error) bool {
	if pqerr, ok := errgo.Cause(err).(*pq.Error); ok && pqerr.Code.Name() == "unique_violation" {
		return true
	}
	return false
}

// postgresArgBuilder implements an argBuilder that produces placeholders
// in the the "$n" format.
type postgresArgBuilder struct {
	args_ []interface{}
}

// Arg implements argbuilder.Arg.
func (b *postgresArgBuilder) Arg(a interface{}) string {
	b.args_ = append(b.args_, a)
	return fmt.Sprintf("$%d", len(b.args_))
}

// args implements argbuilder.args.
func (b *postgresArgBuilder) args() []interface{} {
	return b.args_
}
