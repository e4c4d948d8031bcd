package authority

import "errors"

var (
	// ErrUnknownType is returned by New for an unrecognized authority type.
	ErrUnknownType = errors.New("authority: unknown authority type")

	// ErrNoPath is returned when a file or database backed authority is
	// configured without a path.
	ErrNoPath = errors.New("authority: credential path must not be empty")

	// ErrMalformedEntry is returned when a credential file contains a line
	// that does not match the expected format. The whole load fails so a
	// damaged file cannot silently drop users.
	ErrMalformedEntry = errors.New("authority: malformed credential entry")
)
