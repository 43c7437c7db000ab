package source

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const words = "Hündin\nKatze\nMäuschen"

func mustCompress(t *testing.T, text string) []byte {
	t.Helper()
	data, err := compress([]byte(text))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, zstdMagic))
	return data
}

func TestRead(t *testing.T) {
	t.Parallel()

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()
		got, err := Read(strings.NewReader(words))
		require.NoError(t, err)
		assert.Equal(t, words, got)
	})

	t.Run("zstd text", func(t *testing.T) {
		t.Parallel()
		got, err := Read(bytes.NewReader(mustCompress(t, words)))
		require.NoError(t, err)
		assert.Equal(t, words, got)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		got, err := Read(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("input over limit", func(t *testing.T) {
		t.Parallel()
		_, err := Read(strings.NewReader(words), WithMaxSize(4))
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("input at limit", func(t *testing.T) {
		t.Parallel()
		got, err := Read(strings.NewReader(words), WithMaxSize(uint64(len(words))))
		require.NoError(t, err)
		assert.Equal(t, words, got)
	})

	t.Run("decompressed output over limit", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("a\n", 1000)
		compressed := mustCompress(t, text)
		require.Less(t, len(compressed), 200)

		_, err := Read(bytes.NewReader(compressed), WithMaxSize(200))
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("truncated zstd frame", func(t *testing.T) {
		t.Parallel()
		compressed := mustCompress(t, strings.Repeat(words+"\n", 50))
		_, err := Read(bytes.NewReader(compressed[:len(compressed)/2]))
		require.ErrorIs(t, err, ErrDecompression)
	})

	t.Run("invalid UTF-8", func(t *testing.T) {
		t.Parallel()
		_, err := Read(strings.NewReader("a\n\xff\nb"))
		require.ErrorIs(t, err, ErrInvalidText)
	})
}

func TestReadDigest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []byte
		digest  digest.Digest
		wantErr error
	}{
		{name: "matching digest", input: []byte(words), digest: digest.FromString(words)},
		{name: "matching sha512 digest", input: []byte(words), digest: digest.SHA512.FromString(words)},
		{name: "digest covers uncompressed text", input: mustCompress(t, words), digest: digest.FromString(words)},
		{name: "mismatched digest", input: []byte(words), digest: digest.FromString("other"), wantErr: ErrDigestMismatch},
		{name: "malformed digest", input: []byte(words), digest: "sha256:nothex", wantErr: ErrDigestMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Read(bytes.NewReader(tt.input), WithDigest(tt.digest))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, words, got)
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(plain, []byte(words), 0o600))
	compressed := filepath.Join(dir, "words.txt.zst")
	require.NoError(t, os.WriteFile(compressed, mustCompress(t, words), 0o600))

	t.Run("plain file", func(t *testing.T) {
		t.Parallel()
		got, err := ReadFile(plain)
		require.NoError(t, err)
		assert.Equal(t, words, got)
	})

	t.Run("compressed file", func(t *testing.T) {
		t.Parallel()
		got, err := ReadFile(compressed)
		require.NoError(t, err)
		assert.Equal(t, words, got)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := ReadFile(filepath.Join(dir, "missing.txt"))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("file over limit", func(t *testing.T) {
		t.Parallel()
		_, err := ReadFile(plain, WithMaxSize(3))
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("errors name the file", func(t *testing.T) {
		t.Parallel()
		_, err := ReadFile(plain, WithDigest(digest.FromString("other")))
		require.ErrorIs(t, err, ErrDigestMismatch)
		assert.Contains(t, err.Error(), plain)
	})
}

func TestReadUnboundedMaxSize(t *testing.T) {
	t.Parallel()

	for _, limit := range []uint64{math.MaxInt64, math.MaxUint64} {
		got, err := Read(strings.NewReader(words), WithMaxSize(limit))
		require.NoError(t, err, "plain, limit %d", limit)
		assert.Equal(t, words, got)

		got, err = Read(bytes.NewReader(mustCompress(t, words)), WithMaxSize(limit))
		require.NoError(t, err, "zstd, limit %d", limit)
		assert.Equal(t, words, got)
	}
}

func TestWithMaxSizeZeroUsesDefault(t *testing.T) {
	t.Parallel()

	o := newOptions([]Option{WithMaxSize(0)})
	assert.Equal(t, uint64(DefaultMaxSize), o.maxSize)
}
