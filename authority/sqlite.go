package authority

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/vitalvas/authgate/httpauth"
)

// Schema creates the tables a SQLite authority reads. The passwd command
// applies it when pointed at a fresh database.
const Schema = `
CREATE TABLE IF NOT EXISTS realms (
	prefix    TEXT PRIMARY KEY,
	realm     TEXT NOT NULL,
	anonymous INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS users (
	realm    TEXT NOT NULL,
	username TEXT NOT NULL,
	a1       TEXT NOT NULL,
	PRIMARY KEY (realm, username)
);
`

// SQLiteConfig configures a SQLite authority.
type SQLiteConfig struct {
	// Path locates the database file. Required.
	Path string
}

// SQLite authenticates against a SQLite database. The realms table maps
// path prefixes to realm names and is loaded once at construction, so
// realm resolution never touches the database. Users hold the digest A1
// value and are queried per request with the request context; Basic
// authentication recomputes the A1 from the presented password and
// compares.
type SQLite struct {
	db        *sql.DB
	realms    realmMap
	anonymous map[string]bool
}

// NewSQLite opens the database and loads the realm table. The realms and
// users tables must exist; see Schema.
func NewSQLite(cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, err
	}

	a := &SQLite{
		db:        db,
		anonymous: make(map[string]bool),
	}

	shares, err := a.loadRealms()
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("authority: loading realms: %w", err)
	}

	a.realms = newRealmMap(shares)

	return a, nil
}

func (a *SQLite) loadRealms() (map[string]string, error) {
	rows, err := a.db.Query(`SELECT prefix, realm, anonymous FROM realms`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := make(map[string]string)

	for rows.Next() {
		var (
			prefix, realm string
			anonymous     bool
		)

		if err := rows.Scan(&prefix, &realm, &anonymous); err != nil {
			return nil, err
		}

		shares[prefix] = realm

		if anonymous {
			a.anonymous[realm] = true
		}
	}

	return shares, rows.Err()
}

func (a *SQLite) ResolveRealm(path string) string {
	return a.realms.resolve(path)
}

func (a *SQLite) RequiresAuth(realm string) bool {
	return !a.anonymous[realm]
}

func (a *SQLite) IsRealmUser(ctx context.Context, realm, username string) (bool, error) {
	_, err := a.lookupA1(ctx, realm, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil

	case err != nil:
		return false, err
	}

	return true, nil
}

func (a *SQLite) Authenticate(ctx context.Context, realm, username, password string) (bool, error) {
	a1, err := a.lookupA1(ctx, realm, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil

	case err != nil:
		return false, err
	}

	presented := httpauth.HashA1(username, realm, password)

	return subtle.ConstantTimeCompare([]byte(presented), []byte(a1)) == 1, nil
}

func (a *SQLite) CredentialHash(ctx context.Context, realm, username string) (string, error) {
	a1, err := a.lookupA1(ctx, realm, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", httpauth.ErrUnknownUser

	case err != nil:
		return "", err
	}

	return a1, nil
}

func (a *SQLite) SupportsDigest() bool {
	return true
}

// Close closes the database.
func (a *SQLite) Close() error {
	return a.db.Close()
}

func (a *SQLite) lookupA1(ctx context.Context, realm, username string) (string, error) {
	var a1 string

	err := a.db.QueryRowContext(ctx,
		`SELECT a1 FROM users WHERE realm = ? AND username = ?`,
		realm, username).Scan(&a1)

	return a1, err
}
