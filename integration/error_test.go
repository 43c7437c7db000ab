//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"

	"github.com/meigma/b4s"
	"github.com/meigma/b4s/source"
)

func TestPull_MissingTag(t *testing.T) {
	t.Parallel()

	_, err := newTestLoader().Load(context.Background(), "oci://"+testRef(t, "does-not-exist"))
	require.ErrorIs(t, err, source.ErrNotFound)
}

func TestPull_DigestMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ref := testRef(t, "digest-mismatch")
	text, _ := wordList(100)

	_, err := source.Push(ctx, newRepository(t, ref), "latest", text)
	require.NoError(t, err, "Push")

	_, err = newTestLoader().Load(ctx, "oci://"+ref, source.WithDigest(digest.FromString("other")))
	require.ErrorIs(t, err, source.ErrDigestMismatch)
}

func TestOpen_UnsortedArtifact(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ref := testRef(t, "unsorted")

	_, err := source.Push(ctx, newRepository(t, ref), "latest", "pear\napple\nfig")
	require.NoError(t, err, "Push")

	_, err = newTestLoader().Open(ctx, "oci://"+ref, b4s.Newline)
	require.ErrorIs(t, err, b4s.ErrUnsortedSource)

	ss, err := newTestLoader().Open(ctx, "oci://"+ref, b4s.Newline, source.WithUnchecked())
	require.NoError(t, err)
	require.False(t, ss.IsSorted())
}
