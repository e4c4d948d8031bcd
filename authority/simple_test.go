package authority

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/authgate/httpauth"
)

func simpleAuthority() *Simple {
	return NewSimple(map[string]map[string]string{
		"/dav":    {"mircea": "secret"},
		"/public": {},
	})
}

func TestSimpleResolveRealm(t *testing.T) {
	auth := simpleAuthority()

	assert.Equal(t, "/dav", auth.ResolveRealm("/dav/file.txt"))
	assert.Equal(t, "/public", auth.ResolveRealm("/public/index.html"))
	assert.Equal(t, "/", auth.ResolveRealm("/elsewhere"))
}

func TestSimpleRequiresAuth(t *testing.T) {
	auth := simpleAuthority()

	t.Run("share with users", func(t *testing.T) {
		assert.True(t, auth.RequiresAuth("/dav"))
	})

	t.Run("share without users is anonymous", func(t *testing.T) {
		assert.False(t, auth.RequiresAuth("/public"))
	})

	t.Run("unconfigured realm stays locked", func(t *testing.T) {
		assert.True(t, auth.RequiresAuth("/"))
	})
}

func TestSimpleAuthenticate(t *testing.T) {
	auth := simpleAuthority()
	ctx := context.Background()

	tests := []struct {
		name     string
		realm    string
		username string
		password string
		want     bool
	}{
		{"valid", "/dav", "mircea", "secret", true},
		{"wrong password", "/dav", "mircea", "wrong", false},
		{"unknown user", "/dav", "nobody", "secret", false},
		{"user of another realm", "/public", "mircea", "secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := auth.Authenticate(ctx, tt.realm, tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestSimpleCredentialHash(t *testing.T) {
	auth := simpleAuthority()
	ctx := context.Background()

	t.Run("known user", func(t *testing.T) {
		a1, err := auth.CredentialHash(ctx, "/dav", "mircea")
		require.NoError(t, err)
		assert.Equal(t, httpauth.HashA1("mircea", "/dav", "secret"), a1)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := auth.CredentialHash(ctx, "/dav", "nobody")
		assert.ErrorIs(t, err, httpauth.ErrUnknownUser)
	})
}

func TestSimpleIsRealmUser(t *testing.T) {
	auth := simpleAuthority()
	ctx := context.Background()

	known, err := auth.IsRealmUser(ctx, "/dav", "mircea")
	require.NoError(t, err)
	assert.True(t, known)

	known, err = auth.IsRealmUser(ctx, "/dav", "nobody")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestSimpleBacksAGate(t *testing.T) {
	assert.True(t, simpleAuthority().SupportsDigest())

	_, err := httpauth.New(httpauth.Config{Authority: simpleAuthority()})
	assert.NoError(t, err)
}
