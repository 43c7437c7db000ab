package source

import "errors"

// Sentinel errors returned by the loaders.
var (
	// ErrNotFound is returned when a file, URL, or registry reference does not exist.
	ErrNotFound = errors.New("source: not found")

	// ErrUnauthorized is returned when the remote rejects the credentials.
	ErrUnauthorized = errors.New("source: unauthorized")

	// ErrForbidden is returned when the remote denies access.
	ErrForbidden = errors.New("source: forbidden")

	// ErrTooLarge is returned when content exceeds the configured size limit.
	ErrTooLarge = errors.New("source: content too large")

	// ErrDigestMismatch is returned when content does not match its expected digest.
	ErrDigestMismatch = errors.New("source: digest mismatch")

	// ErrInvalidText is returned when content is not valid UTF-8.
	ErrInvalidText = errors.New("source: content is not valid UTF-8")

	// ErrInvalidArtifact is returned when a registry artifact is not a word list.
	ErrInvalidArtifact = errors.New("source: invalid word list artifact")

	// ErrDecompression is returned when zstd content cannot be decoded.
	ErrDecompression = errors.New("source: decompression failed")

	// ErrInvalidReference is returned when a location or reference is malformed.
	ErrInvalidReference = errors.New("source: invalid reference")
)
