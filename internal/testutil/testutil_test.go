package testutil

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWords(t *testing.T) {
	t.Parallel()

	words := Words(500, 1)
	require.Len(t, words, 500)
	assert.True(t, slices.IsSorted(words))
	assert.Len(t, slices.Compact(slices.Clone(words)), 500, "words must be distinct")
	for _, w := range words {
		require.True(t, utf8.ValidString(w))
		n := utf8.RuneCountInString(w)
		require.True(t, n >= 1 && n <= 16, "word %q has %d runes", w, n)
		require.False(t, strings.ContainsAny(w, "\n\t ,-\x00"), "word %q contains a separator", w)
	}

	assert.Equal(t, words, Words(500, 1), "same seed must give the same words")
	assert.NotEqual(t, words, Words(500, 2))
	assert.Empty(t, Words(0, 1))
}

func TestHaystack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a,b,c", Haystack([]string{"a", "b", "c"}, ','))
	assert.Equal(t, "a\nb", Haystack([]string{"a", "b"}, '\n'))
	assert.Empty(t, Haystack(nil, ','))
}

func TestSpread(t *testing.T) {
	t.Parallel()

	words := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

	assert.Equal(t, []string{"a", "c", "e", "g", "i"}, Spread(words, 5))
	assert.Equal(t, []string{"a", "d", "g"}, Spread(words, 3))
	assert.Equal(t, words, Spread(words, 10))
	assert.Equal(t, words, Spread(words, 20))
	assert.Nil(t, Spread(words, 0))

	all := Spread(words, 20)
	all[0] = "changed"
	assert.Equal(t, "a", words[0], "Spread must not alias its input")
}

func TestMockCache(t *testing.T) {
	t.Parallel()

	c := NewMockCache()
	d := digest.FromString("apple,fig")

	_, ok := c.Get(d)
	assert.False(t, ok)

	data := []byte("apple,fig")
	require.NoError(t, c.Put(d, data))
	data[0] = 'X'

	got, ok := c.Get(d)
	require.True(t, ok)
	assert.Equal(t, "apple,fig", string(got))
	assert.Equal(t, int64(9), c.SizeBytes())
	assert.Zero(t, c.MaxBytes())

	gets, puts := c.Counts()
	assert.Equal(t, 2, gets)
	assert.Equal(t, 1, puts)

	freed, err := c.Prune(100)
	require.NoError(t, err)
	assert.Zero(t, freed)

	freed, err = c.Prune(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), freed)
	assert.Zero(t, c.SizeBytes())

	require.NoError(t, c.Put(d, []byte("x")))
	require.NoError(t, c.Delete(d))
	_, ok = c.Get(d)
	assert.False(t, ok)
}
