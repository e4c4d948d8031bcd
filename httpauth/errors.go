package httpauth

import "errors"

// Construction errors.
var (
	// ErrNoAuthority is returned when Config has no Authority configured.
	ErrNoAuthority = errors.New("httpauth: authority must not be nil")

	// ErrDigestNotSupported is returned when the policy needs digest
	// credential hashes but the configured Authority cannot supply them.
	// Such an authority can only back a basic-only Gate (DisableDigest
	// and DefaultToBasic set, Basic enabled).
	ErrDigestNotSupported = errors.New("httpauth: authority does not support the digest scheme")
)

// Authority errors.
var (
	// ErrUnknownUser is returned by Authority implementations when a
	// (realm, username) pair is not present in the credential store.
	ErrUnknownUser = errors.New("httpauth: unknown user")

	// ErrNoCredentialHash is returned by CredentialHash on authorities
	// that only hold one-way password hashes and cannot derive the
	// digest A1 value.
	ErrNoCredentialHash = errors.New("httpauth: authority cannot derive a digest credential hash")
)

// Transport errors.
var (
	// ErrBadChallenge is returned when a Digest challenge misses the
	// directives needed to compute a response.
	ErrBadChallenge = errors.New("httpauth: malformed digest challenge")

	// ErrUnsupportedChallenge is returned when a Digest challenge demands
	// an algorithm other than MD5.
	ErrUnsupportedChallenge = errors.New("httpauth: unsupported digest challenge algorithm")
)
