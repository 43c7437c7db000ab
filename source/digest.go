package source

import (
	"fmt"

	"github.com/opencontainers/go-digest"
)

func verifyDigest(data []byte, want digest.Digest) error {
	if err := want.Validate(); err != nil {
		return fmt.Errorf("%w: expected digest %q: %v", ErrDigestMismatch, want, err)
	}
	if got := want.Algorithm().FromBytes(data); got != want {
		return fmt.Errorf("%w: got %s, want %s", ErrDigestMismatch, got, want)
	}
	return nil
}
