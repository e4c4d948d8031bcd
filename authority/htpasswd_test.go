package authority

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitalvas/authgate/httpauth"
)

// htpasswdLine renders one file entry with a freshly computed bcrypt hash.
func htpasswdLine(t *testing.T, username, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return username + ":" + string(hash)
}

func writeHtpasswd(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.htpasswd")

	content := ""
	for _, line := range lines {
		content += line + "\n"
	}

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestNewHtpasswd(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := NewHtpasswd(HtpasswdConfig{})
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("parses bcrypt entries", func(t *testing.T) {
		path := writeHtpasswd(t,
			"# staff",
			htpasswdLine(t, "mircea", "secret"),
		)

		auth, err := NewHtpasswd(HtpasswdConfig{Path: path})
		require.NoError(t, err)

		known, err := auth.IsRealmUser(context.Background(), "/", "mircea")
		require.NoError(t, err)
		assert.True(t, known)
	})

	t.Run("rejects non bcrypt hashes", func(t *testing.T) {
		path := writeHtpasswd(t, "mircea:{SHA}2aDeAPh6wB9UNAfY7r0fSpKYharbR=")

		_, err := NewHtpasswd(HtpasswdConfig{Path: path})
		assert.ErrorIs(t, err, ErrMalformedEntry)
	})

	t.Run("rejects entries without a separator", func(t *testing.T) {
		path := writeHtpasswd(t, "mircea")

		_, err := NewHtpasswd(HtpasswdConfig{Path: path})
		assert.ErrorIs(t, err, ErrMalformedEntry)
	})
}

func TestHtpasswdAuthenticate(t *testing.T) {
	path := writeHtpasswd(t, htpasswdLine(t, "mircea", "secret"))

	auth, err := NewHtpasswd(HtpasswdConfig{Path: path})
	require.NoError(t, err)

	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"valid", "mircea", "secret", true},
		{"wrong password", "mircea", "wrong", false},
		{"unknown user", "nobody", "secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := auth.Authenticate(ctx, "/", tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	t.Run("entries are realm independent", func(t *testing.T) {
		ok, err := auth.Authenticate(ctx, "AnyRealm", "mircea", "secret")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestHtpasswdDigestCapability(t *testing.T) {
	path := writeHtpasswd(t, htpasswdLine(t, "mircea", "secret"))

	auth, err := NewHtpasswd(HtpasswdConfig{Path: path})
	require.NoError(t, err)

	assert.False(t, auth.SupportsDigest())

	_, err = auth.CredentialHash(context.Background(), "/", "mircea")
	assert.ErrorIs(t, err, httpauth.ErrNoCredentialHash)

	t.Run("default gate refuses the authority", func(t *testing.T) {
		_, err := httpauth.New(httpauth.Config{Authority: auth})
		assert.ErrorIs(t, err, httpauth.ErrDigestNotSupported)
	})

	t.Run("basic only gate accepts it", func(t *testing.T) {
		_, err := httpauth.New(httpauth.Config{
			Authority:      auth,
			DisableDigest:  true,
			DefaultToBasic: true,
		})
		assert.NoError(t, err)
	})
}

func TestHtpasswdReload(t *testing.T) {
	path := writeHtpasswd(t, htpasswdLine(t, "mircea", "secret"))

	auth, err := NewHtpasswd(HtpasswdConfig{Path: path, Watch: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = auth.Close() })

	ctx := context.Background()

	content := htpasswdLine(t, "mircea", "secret") + "\n" + htpasswdLine(t, "nelu", "hunter2") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.Eventually(t, func() bool {
		known, err := auth.IsRealmUser(ctx, "/", "nelu")

		return err == nil && known
	}, 3*time.Second, 50*time.Millisecond)
}
