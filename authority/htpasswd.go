package authority

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitalvas/authgate/httpauth"
)

// HtpasswdConfig configures an Htpasswd authority.
type HtpasswdConfig struct {
	// Path locates the htpasswd file. Required.
	Path string

	// Realms maps path prefixes to realm names. Paths outside every
	// prefix resolve to realm "/".
	Realms map[string]string

	// Watch reloads the file when it changes on disk. A reload that fails
	// to parse keeps the previous entries.
	Watch bool

	// Logger receives reload diagnostics. When nil, logging is disabled.
	Logger *zap.Logger
}

// Htpasswd authenticates against an htpasswd file with bcrypt hashes: one
// "username:hash" entry per line, only $2a$, $2b$ and $2y$ hashes
// accepted. Entries are realm independent; every user exists in every
// realm.
//
// Bcrypt is one way, so no digest A1 value can be derived. The authority
// reports SupportsDigest false and can back only a basic-only gate
// (DisableDigest and DefaultToBasic set).
type Htpasswd struct {
	path   string
	realms realmMap
	logger *zap.Logger
	watch  *fileWatcher

	mu    sync.RWMutex
	users map[string]string
}

// bcryptPrefixes are the hash versions accepted in htpasswd files.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// NewHtpasswd loads the htpasswd file and builds the authority. The load
// fails on the first malformed or non-bcrypt line.
func NewHtpasswd(cfg HtpasswdConfig) (*Htpasswd, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}

	a := &Htpasswd{
		path:   cfg.Path,
		realms: newRealmMap(cfg.Realms),
		logger: cfg.Logger,
	}

	if a.logger == nil {
		a.logger = zap.NewNop()
	}

	if err := a.reload(); err != nil {
		return nil, err
	}

	if cfg.Watch {
		watch, err := watchFile(cfg.Path, a.logger, a.reload)
		if err != nil {
			return nil, err
		}

		a.watch = watch
	}

	return a, nil
}

func (a *Htpasswd) reload() error {
	users, err := parseHtpasswd(a.path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.users = users
	a.mu.Unlock()

	return nil
}

func (a *Htpasswd) ResolveRealm(path string) string {
	return a.realms.resolve(path)
}

func (a *Htpasswd) RequiresAuth(string) bool {
	return true
}

func (a *Htpasswd) IsRealmUser(_ context.Context, _, username string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.users[username]

	return ok, nil
}

func (a *Htpasswd) Authenticate(_ context.Context, _, username, password string) (bool, error) {
	a.mu.RLock()
	hash, ok := a.users[username]
	a.mu.RUnlock()

	if !ok {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil

	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil

	default:
		return false, err
	}
}

func (a *Htpasswd) CredentialHash(context.Context, string, string) (string, error) {
	return "", httpauth.ErrNoCredentialHash
}

func (a *Htpasswd) SupportsDigest() bool {
	return false
}

// Close stops the file watcher, when one was started.
func (a *Htpasswd) Close() error {
	if a.watch == nil {
		return nil
	}

	return a.watch.Close()
}

// parseHtpasswd reads an htpasswd file into a username to bcrypt hash
// mapping.
func parseHtpasswd(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	users := make(map[string]string)

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		username, hash, found := strings.Cut(line, ":")
		if !found || username == "" || !bcryptHash(hash) {
			return nil, fmt.Errorf("%w: %s line %d", ErrMalformedEntry, path, lineNum)
		}

		users[username] = hash
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// bcryptHash reports whether hash carries a supported bcrypt version
// prefix.
func bcryptHash(hash string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}

	return false
}
