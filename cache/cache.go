package cache

import "github.com/opencontainers/go-digest"

// Cache provides content-addressed storage for haystack text.
//
// Keys are digests of the uncompressed haystack bytes. Implementations
// should handle their own size limits and eviction policies and must be
// safe for concurrent use.
type Cache interface {
	// Get returns the cached content for d.
	// Returns nil, false if the content is not cached or fails verification.
	Get(d digest.Digest) ([]byte, bool)

	// Put stores data under d. Storing an existing digest is a no-op.
	// The caller is responsible for d actually describing data.
	Put(d digest.Digest, data []byte) error

	// Delete removes cached content for d.
	// Implementations should treat missing entries as a no-op.
	Delete(d digest.Digest) error

	// MaxBytes returns the configured cache size limit (0 = unlimited).
	MaxBytes() int64

	// SizeBytes returns the current cache size in bytes.
	SizeBytes() int64

	// Prune removes cached entries until the cache is at or below targetBytes.
	// Returns the number of bytes freed.
	Prune(targetBytes int64) (int64, error)
}
