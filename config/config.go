package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/authgate/authority"
	"github.com/vitalvas/authgate/httpauth"
)

// Config is the process configuration of the authgate command.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`

	// Root serves a directory of static files. Exactly one of Root and
	// Upstream must be set.
	Root string `yaml:"root"`

	// Upstream reverse-proxies authenticated requests to another server.
	Upstream string `yaml:"upstream"`

	// MaxConns caps concurrent connections when greater than zero.
	MaxConns int `yaml:"max_conns"`

	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
	Authority AuthorityConfig `yaml:"authority"`
}

// LoggingConfig selects the zap logger profile.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Development switches to the human readable console encoder.
	Development bool `yaml:"development"`
}

// AuthConfig carries the gate policy flags. The YAML surface speaks in
// positive terms (accept_basic: true); the mapping onto httpauth.Config
// inverts them.
type AuthConfig struct {
	AcceptBasic           bool   `yaml:"accept_basic"`
	AcceptDigest          bool   `yaml:"accept_digest"`
	DefaultToDigest       bool   `yaml:"default_to_digest"`
	TrustedAuthHeader     string `yaml:"trusted_auth_header"`
	StrictRealm           bool   `yaml:"strict_realm"`
	AllowAnonymousOptions bool   `yaml:"allow_anonymous_options"`
}

// AuthorityConfig selects and configures the identity backend.
type AuthorityConfig struct {
	// Type is one of simple, htdigest, htpasswd, sqlite.
	Type string `yaml:"type"`

	// Users holds share -> username -> password for the simple type.
	Users map[string]map[string]string `yaml:"users"`

	// Path locates the credential file or database.
	Path string `yaml:"path"`

	// Watch reloads file backed credentials on change.
	Watch bool `yaml:"watch"`

	// Realms maps path prefixes to realm names for file backed types.
	Realms map[string]string `yaml:"realms"`
}

// authorityTypes are the values AuthorityConfig.Type accepts.
var authorityTypes = []string{"simple", "htdigest", "htpasswd", "sqlite"}

// Default returns the configuration a file decodes over, so YAML only
// overrides what it names.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Logging: LoggingConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			AcceptBasic:     true,
			AcceptDigest:    true,
			DefaultToDigest: true,
		},
		Authority: AuthorityConfig{
			Type: "simple",
		},
	}
}

// Load reads, decodes and validates the YAML file at path. Unknown keys
// are rejected so typos fail at startup instead of silently keeping a
// default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the invariants Load promises.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return ErrNoListen
	}

	if (c.Root == "") == (c.Upstream == "") {
		return ErrDocumentSource
	}

	if c.Upstream != "" {
		u, err := url.Parse(c.Upstream)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrBadUpstream, c.Upstream)
		}
	}

	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrBadLogLevel, c.Logging.Level)
	}

	valid := false
	for _, t := range authorityTypes {
		if c.Authority.Type == t {
			valid = true

			break
		}
	}

	if !valid {
		return fmt.Errorf("%w: %q", ErrBadAuthorityType, c.Authority.Type)
	}

	return nil
}

// BuildLogger constructs the zap logger the configuration describes.
func (c LoggingConfig) BuildLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadLogLevel, c.Level)
	}

	zapCfg := zap.NewProductionConfig()
	if c.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}

	zapCfg.Level = level

	return zapCfg.Build()
}

// GateConfig maps the auth section onto the gate configuration.
func (c AuthConfig) GateConfig(auth httpauth.Authority, logger *zap.Logger, metrics *httpauth.Metrics) httpauth.Config {
	return httpauth.Config{
		Authority:             auth,
		DisableBasic:          !c.AcceptBasic,
		DisableDigest:         !c.AcceptDigest,
		DefaultToBasic:        !c.DefaultToDigest,
		TrustedAuthHeader:     c.TrustedAuthHeader,
		StrictRealm:           c.StrictRealm,
		AllowAnonymousOptions: c.AllowAnonymousOptions,
		Logger:                logger,
		Metrics:               metrics,
	}
}

// Build constructs the authority the section describes.
func (c AuthorityConfig) Build(logger *zap.Logger) (httpauth.Authority, error) {
	return authority.New(authority.Config{
		Type:   c.Type,
		Users:  c.Users,
		Path:   c.Path,
		Watch:  c.Watch,
		Realms: c.Realms,
		Logger: logger,
	})
}
