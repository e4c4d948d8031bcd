package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "authgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("overrides over defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
listen: ":9090"
root: ./public
auth:
  accept_basic: false
authority:
  type: htdigest
  path: ./users.htdigest
  realms:
    /dav: WebDAV
`))
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.Listen)
		assert.Equal(t, "./public", cfg.Root)
		assert.False(t, cfg.Auth.AcceptBasic)

		// Unnamed keys keep their defaults.
		assert.True(t, cfg.Auth.AcceptDigest)
		assert.True(t, cfg.Auth.DefaultToDigest)
		assert.Equal(t, "info", cfg.Logging.Level)

		assert.Equal(t, "htdigest", cfg.Authority.Type)
		assert.Equal(t, map[string]string{"/dav": "WebDAV"}, cfg.Authority.Realms)
	})

	t.Run("simple authority users", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
root: ./public
authority:
  type: simple
  users:
    /dav:
      mircea: secret
`))
		require.NoError(t, err)
		assert.Equal(t, "secret", cfg.Authority.Users["/dav"]["mircea"])
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
root: ./public
lisen: ":8080"
`))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Root = "./public"

		return cfg
	}

	t.Run("default plus root is valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("empty listen", func(t *testing.T) {
		cfg := valid()
		cfg.Listen = ""
		assert.ErrorIs(t, cfg.Validate(), ErrNoListen)
	})

	t.Run("root and upstream together", func(t *testing.T) {
		cfg := valid()
		cfg.Upstream = "http://127.0.0.1:9000"
		assert.ErrorIs(t, cfg.Validate(), ErrDocumentSource)
	})

	t.Run("neither root nor upstream", func(t *testing.T) {
		cfg := valid()
		cfg.Root = ""
		assert.ErrorIs(t, cfg.Validate(), ErrDocumentSource)
	})

	t.Run("upstream must be absolute http", func(t *testing.T) {
		cfg := valid()
		cfg.Root = ""
		cfg.Upstream = "127.0.0.1:9000"
		assert.ErrorIs(t, cfg.Validate(), ErrBadUpstream)
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Level = "chatty"
		assert.ErrorIs(t, cfg.Validate(), ErrBadLogLevel)
	})

	t.Run("bad authority type", func(t *testing.T) {
		cfg := valid()
		cfg.Authority.Type = "ldap"
		assert.ErrorIs(t, cfg.Validate(), ErrBadAuthorityType)
	})
}

func TestGateConfig(t *testing.T) {
	auth := AuthConfig{
		AcceptBasic:           true,
		AcceptDigest:          false,
		DefaultToDigest:       false,
		TrustedAuthHeader:     "X-Remote-User",
		StrictRealm:           true,
		AllowAnonymousOptions: true,
	}

	gate := auth.GateConfig(nil, nil, nil)

	assert.False(t, gate.DisableBasic)
	assert.True(t, gate.DisableDigest)
	assert.True(t, gate.DefaultToBasic)
	assert.Equal(t, "X-Remote-User", gate.TrustedAuthHeader)
	assert.True(t, gate.StrictRealm)
	assert.True(t, gate.AllowAnonymousOptions)
}

func TestBuildLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "debug"}.BuildLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = LoggingConfig{Level: "warn"}.BuildLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = LoggingConfig{Level: "chatty"}.BuildLogger()
	assert.ErrorIs(t, err, ErrBadLogLevel)
}

func TestAuthorityBuild(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		auth, err := AuthorityConfig{
			Type:  "simple",
			Users: map[string]map[string]string{"/dav": {"mircea": "secret"}},
		}.Build(nil)
		require.NoError(t, err)
		assert.True(t, auth.SupportsDigest())
	})

	t.Run("unknown type surfaces the factory error", func(t *testing.T) {
		_, err := AuthorityConfig{Type: "ldap"}.Build(nil)
		assert.Error(t, err)
	})
}
