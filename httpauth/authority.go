package httpauth

import "context"

// Authority supplies realm resolution and credential checks to the Gate.
// Implementations may read files, query databases, or call directory
// services; the Gate treats every returned error as an authentication
// failure and answers with a fresh challenge instead of surfacing it.
//
// ResolveRealm, RequiresAuth, and SupportsDigest are policy lookups on
// state the implementation must keep locally; they sit on the request hot
// path and cannot block or fail.
type Authority interface {
	// ResolveRealm maps a request path to the realm protecting it.
	ResolveRealm(path string) string

	// RequiresAuth reports whether requests under realm must carry
	// credentials. Requests in realms that do not require authentication
	// are forwarded with an empty username.
	RequiresAuth(realm string) bool

	// IsRealmUser reports whether username is known under realm.
	IsRealmUser(ctx context.Context, realm, username string) (bool, error)

	// Authenticate checks a plaintext password for the Basic scheme.
	Authenticate(ctx context.Context, realm, username, password string) (bool, error)

	// CredentialHash returns the stored digest hash for the pair,
	// semantically HashA1(username, realm, password). The Gate treats the
	// value as opaque and never sees the plaintext behind it.
	CredentialHash(ctx context.Context, realm, username string) (string, error)

	// SupportsDigest reports whether CredentialHash is available. When
	// false, Gate construction fails unless the policy is basic-only.
	SupportsDigest() bool
}
