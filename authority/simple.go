package authority

import (
	"context"
	"crypto/subtle"

	"github.com/vitalvas/authgate/httpauth"
)

// Simple is an in-memory authority: shares map to their users, users map
// to plaintext passwords. The share path doubles as the realm name.
//
// A share with an empty user map is anonymous and requires no
// authentication. Paths that fall outside every configured share resolve
// to realm "/", which requires authentication unless "/" is itself a
// configured share; without one, no user can pass there.
//
// The map is not copied. It must not be mutated after construction.
type Simple struct {
	shares map[string]map[string]string
	realms realmMap
}

// NewSimple builds a Simple authority from a share to user to password
// mapping.
func NewSimple(shares map[string]map[string]string) *Simple {
	prefixes := make(map[string]string, len(shares))
	for share := range shares {
		prefixes[share] = share
	}

	return &Simple{
		shares: shares,
		realms: newRealmMap(prefixes),
	}
}

func (a *Simple) ResolveRealm(path string) string {
	return a.realms.resolve(path)
}

func (a *Simple) RequiresAuth(realm string) bool {
	users, ok := a.shares[realm]

	return !ok || len(users) > 0
}

func (a *Simple) IsRealmUser(_ context.Context, realm, username string) (bool, error) {
	_, ok := a.shares[realm][username]

	return ok, nil
}

func (a *Simple) Authenticate(_ context.Context, realm, username, password string) (bool, error) {
	stored, ok := a.shares[realm][username]
	if !ok {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, nil
}

func (a *Simple) CredentialHash(_ context.Context, realm, username string) (string, error) {
	password, ok := a.shares[realm][username]
	if !ok {
		return "", httpauth.ErrUnknownUser
	}

	return httpauth.HashA1(username, realm, password), nil
}

func (a *Simple) SupportsDigest() bool {
	return true
}
