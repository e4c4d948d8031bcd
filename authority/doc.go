// Package authority provides ready-made identity backends for the
// httpauth gate.
//
// Four implementations cover the common deployment shapes:
//
//   - Simple: an in-memory share to user to password mapping, for tests
//     and literal configs.
//   - Htdigest: an Apache htdigest file, digest capable, optionally
//     reloaded on change.
//   - Htpasswd: an htpasswd file with bcrypt hashes, basic only.
//   - SQLite: realms and A1 hashes in a SQLite database, queried per
//     request.
//
// All of them resolve request paths to realms by longest configured
// prefix, with "/" as the fallback realm.
//
// New builds an implementation from a Config, which is how the serve
// command selects one at startup:
//
//	auth, err := authority.New(authority.Config{
//	    Type:   "htdigest",
//	    Path:   "/etc/authgate/users.htdigest",
//	    Realms: map[string]string{"/dav": "WebDAV"},
//	    Watch:  true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if closer, ok := auth.(io.Closer); ok {
//	    defer closer.Close()
//	}
//
// File and database backed authorities implement io.Closer; callers that
// built one through New should close it on shutdown.
package authority
