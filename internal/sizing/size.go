// Package sizing bounds how many bytes a loader will accept.
package sizing

import (
	"io"
	"math"
)

// Exceeds reports whether a declared size is over limit. Negative sizes mean
// the size is unknown and never exceed.
func Exceeds(size int64, limit uint64) bool {
	return size >= 0 && uint64(size) > limit
}

// ReadAllWithLimit reads r to EOF, failing with overflowErr as soon as more
// than limit bytes arrive. At most limit+1 bytes are buffered. Limits of
// MaxInt64 and above are effectively unlimited.
func ReadAllWithLimit(r io.Reader, limit uint64, overflowErr error) ([]byte, error) {
	n := int64(min(limit, math.MaxInt64-1)) + 1 //nolint:gosec // clamped below MaxInt64
	data, err := io.ReadAll(io.LimitReader(r, n))
	switch {
	case err != nil:
		return nil, err
	case uint64(len(data)) > limit:
		return nil, overflowErr
	}
	return data, nil
}
