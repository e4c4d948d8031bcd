package authority

import (
	"bufio"
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vitalvas/authgate/httpauth"
)

// HtdigestConfig configures an Htdigest authority.
type HtdigestConfig struct {
	// Path locates the htdigest file. Required.
	Path string

	// Realms maps path prefixes to the realm names used in the file.
	// Paths outside every prefix resolve to realm "/".
	Realms map[string]string

	// Watch reloads the file when it changes on disk. A reload that fails
	// to parse keeps the previous entries.
	Watch bool

	// Logger receives reload diagnostics. When nil, logging is disabled.
	Logger *zap.Logger
}

// Htdigest authenticates against an Apache htdigest file: one
// "username:realm:md5hex" entry per line, blank lines and "#" comments
// skipped. The stored hash is the digest A1 value, so both schemes work;
// Basic authentication recomputes the A1 from the presented password and
// compares.
//
// Every realm requires authentication; the htdigest format has no
// anonymous concept.
type Htdigest struct {
	path   string
	realms realmMap
	logger *zap.Logger
	watch  *fileWatcher

	mu    sync.RWMutex
	users map[string]map[string]string
}

// NewHtdigest loads the htdigest file and builds the authority. The load
// fails on the first malformed line.
func NewHtdigest(cfg HtdigestConfig) (*Htdigest, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}

	a := &Htdigest{
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

func (a *Htdigest) reload() error {
	users, err := parseHtdigest(a.path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.users = users
	a.mu.Unlock()

	return nil
}

func (a *Htdigest) ResolveRealm(path string) string {
	return a.realms.resolve(path)
}

func (a *Htdigest) RequiresAuth(string) bool {
	return true
}

func (a *Htdigest) IsRealmUser(_ context.Context, realm, username string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.users[realm][username]

	return ok, nil
}

func (a *Htdigest) Authenticate(_ context.Context, realm, username, password string) (bool, error) {
	a.mu.RLock()
	a1, ok := a.users[realm][username]
	a.mu.RUnlock()

	if !ok {
		return false, nil
	}

	presented := httpauth.HashA1(username, realm, password)

	return subtle.ConstantTimeCompare([]byte(presented), []byte(a1)) == 1, nil
}

func (a *Htdigest) CredentialHash(_ context.Context, realm, username string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	a1, ok := a.users[realm][username]
	if !ok {
		return "", httpauth.ErrUnknownUser
	}

	return a1, nil
}

func (a *Htdigest) SupportsDigest() bool {
	return true
}

// Close stops the file watcher, when one was started.
func (a *Htdigest) Close() error {
	if a.watch == nil {
		return nil
	}

	return a.watch.Close()
}

// parseHtdigest reads an htdigest file into a realm to username to A1
// mapping.
func parseHtdigest(path string) (map[string]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	users := make(map[string]map[string]string)

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) != 3 || parts[0] == "" || !validA1(parts[2]) {
			return nil, fmt.Errorf("%w: %s line %d", ErrMalformedEntry, path, lineNum)
		}

		username, realm, a1 := parts[0], parts[1], strings.ToLower(parts[2])

		if users[realm] == nil {
			users[realm] = make(map[string]string)
		}

		users[realm][username] = a1
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// validA1 reports whether s is a 32-character hex string, the shape of an
// MD5 A1 hash.
func validA1(s string) bool {
	if len(s) != 32 {
		return false
	}

	_, err := hex.DecodeString(s)

	return err == nil
}
