// Package testutil provides word-list generators and test doubles shared by
// tests and benchmarks.
package testutil

import (
	"math/rand" //nolint:gosec // deterministic word lists for tests
	"slices"
	"strings"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/b4s/cache"
)

// letters mixes ASCII with multi-byte runes so generated lists exercise
// UTF-8 boundaries.
var letters = []rune("abcdefghijklmnopqrstuvwxyzäöüßéABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Words returns n distinct words in sorted order, generated deterministically
// from seed. Words are 1 to 16 runes long and never contain ASCII
// punctuation or whitespace, so any such byte can serve as a separator.
func Words(n int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // intentional for reproducible tests
	seen := make(map[string]struct{}, n)
	words := make([]string, 0, n)
	var b strings.Builder
	for len(words) < n {
		b.Reset()
		length := 1 + rng.Intn(16)
		for range length {
			b.WriteRune(letters[rng.Intn(len(letters))])
		}
		w := b.String()
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

// Haystack joins words with sep.
func Haystack(words []string, sep byte) string {
	return strings.Join(words, string(rune(sep)))
}

// Spread picks up to k words from a sorted list, evenly spaced from the first
// to the last, preserving order.
func Spread(words []string, k int) []string {
	n := len(words)
	if k >= n {
		return slices.Clone(words)
	}
	if k <= 0 {
		return nil
	}
	out := make([]string, 0, k)
	step := float64(n) / float64(k)
	for i := range k {
		out = append(out, words[int(float64(i)*step)])
	}
	return out
}

// MockCache implements cache.Cache in memory.
type MockCache struct {
	mu   sync.RWMutex
	data map[digest.Digest][]byte
	gets int
	puts int
}

var _ cache.Cache = (*MockCache)(nil)

// NewMockCache constructs an empty in-memory cache.
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[digest.Digest][]byte)}
}

// Get returns cached content for d.
func (c *MockCache) Get(d digest.Digest) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	data, ok := c.data[d]
	return data, ok
}

// Put stores content under d.
func (c *MockCache) Put(d digest.Digest, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.data[d] = slices.Clone(data)
	return nil
}

// Delete removes content for d.
func (c *MockCache) Delete(d digest.Digest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, d)
	return nil
}

// MaxBytes returns 0 (unlimited).
func (c *MockCache) MaxBytes() int64 { return 0 }

// SizeBytes returns the total size of cached content.
func (c *MockCache) SizeBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, v := range c.data {
		total += int64(len(v))
	}
	return total
}

// Prune drops everything when targetBytes is below the current size.
func (c *MockCache) Prune(targetBytes int64) (int64, error) {
	size := c.SizeBytes()
	if size <= targetBytes {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.data)
	return size, nil
}

// Counts returns the number of Get and Put calls made so far.
func (c *MockCache) Counts() (gets, puts int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gets, c.puts
}
