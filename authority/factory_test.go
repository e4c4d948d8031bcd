package authority

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		auth, err := New(Config{
			Type:  "simple",
			Users: map[string]map[string]string{"/dav": {"mircea": "secret"}},
		})
		require.NoError(t, err)
		assert.IsType(t, &Simple{}, auth)
	})

	t.Run("htdigest", func(t *testing.T) {
		auth, err := New(Config{
			Type: "htdigest",
			Path: writeHtdigest(t, htdigestLine("mircea", "WebDAV", "secret")),
		})
		require.NoError(t, err)
		assert.IsType(t, &Htdigest{}, auth)
	})

	t.Run("htpasswd", func(t *testing.T) {
		auth, err := New(Config{
			Type: "htpasswd",
			Path: writeHtpasswd(t, htpasswdLine(t, "mircea", "secret")),
		})
		require.NoError(t, err)
		assert.IsType(t, &Htpasswd{}, auth)
	})

	t.Run("sqlite", func(t *testing.T) {
		auth, err := New(Config{Type: "sqlite", Path: newTestDB(t)})
		require.NoError(t, err)
		assert.IsType(t, &SQLite{}, auth)

		if closer, ok := auth.(io.Closer); ok {
			require.NoError(t, closer.Close())
		}
	})

	t.Run("file type without path", func(t *testing.T) {
		_, err := New(Config{Type: "htdigest"})
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := New(Config{Type: "ldap"})
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}
