package config

import "errors"

var (
	// ErrNoListen is returned when the listen address is empty.
	ErrNoListen = errors.New("config: listen address must not be empty")

	// ErrDocumentSource is returned unless exactly one of root and
	// upstream is set.
	ErrDocumentSource = errors.New("config: exactly one of root and upstream must be set")

	// ErrBadUpstream is returned for an upstream that is not an absolute
	// http or https URL.
	ErrBadUpstream = errors.New("config: invalid upstream URL")

	// ErrBadLogLevel is returned for an unknown logging level.
	ErrBadLogLevel = errors.New("config: unknown log level")

	// ErrBadAuthorityType is returned for an unknown authority type.
	ErrBadAuthorityType = errors.New("config: unknown authority type")
)
