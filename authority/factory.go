package authority

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vitalvas/authgate/httpauth"
)

// Config selects and configures an Authority implementation for New.
type Config struct {
	// Type selects the implementation: simple, htdigest, htpasswd or
	// sqlite.
	Type string

	// Users holds the share to username to password mapping of the simple
	// type.
	Users map[string]map[string]string

	// Path locates the credential file of the htdigest and htpasswd types
	// and the database of the sqlite type.
	Path string

	// Watch reloads file backed credentials on change.
	Watch bool

	// Realms maps path prefixes to realm names for the htdigest and
	// htpasswd types. The sqlite type carries its realms in the database.
	Realms map[string]string

	// Logger receives reload diagnostics of file backed authorities.
	Logger *zap.Logger
}

// New builds the authority cfg.Type names. The selection happens once at
// startup; swapping authorities at runtime is not supported.
func New(cfg Config) (httpauth.Authority, error) {
	switch cfg.Type {
	case "simple":
		return NewSimple(cfg.Users), nil

	case "htdigest":
		return NewHtdigest(HtdigestConfig{
			Path:   cfg.Path,
			Realms: cfg.Realms,
			Watch:  cfg.Watch,
			Logger: cfg.Logger,
		})

	case "htpasswd":
		return NewHtpasswd(HtpasswdConfig{
			Path:   cfg.Path,
			Realms: cfg.Realms,
			Watch:  cfg.Watch,
			Logger: cfg.Logger,
		})

	case "sqlite":
		return NewSQLite(SQLiteConfig{Path: cfg.Path})

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}
