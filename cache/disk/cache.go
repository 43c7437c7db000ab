// Package disk persists loaded word lists on the local filesystem, keyed by
// the digest of their text.
package disk

import (
	_ "crypto/sha256" // register sha256 for go-digest
	_ "crypto/sha512" // register sha384 and sha512 for go-digest
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/b4s/cache"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700
	defaultFilePerm       = 0o600
	tempPattern           = ".tmp-*"
)

var _ cache.Cache = (*Cache)(nil)

// Cache stores word lists as files named by their digest.
//
// A word list with digest sha256:abcd... lives at <dir>/sha256/ab/abcd...
// Writes go through a temp file and a rename, so readers never observe a
// partial word list. Safe for concurrent use.
type Cache struct {
	root      string
	shardLen  int
	dirMode   os.FileMode
	maxBytes  int64
	usedBytes atomic.Int64
	evictMu   sync.Mutex
}

// Option configures a disk cache.
type Option func(*Cache)

// WithShardPrefixLen splits entries into subdirectories named by the first n
// hex characters of their digest. 0 stores all entries of an algorithm in
// one directory. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(c *Cache) {
		c.shardLen = n
	}
}

// WithDirPerm sets the mode of created directories. Defaults to 0700.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) {
		c.dirMode = mode
	}
}

// WithMaxBytes caps the total size of stored word lists. When a Put would
// exceed the cap, the oldest entries are evicted first; a word list larger
// than the cap is not stored at all. 0 means no cap.
func WithMaxBytes(n int64) Option {
	return func(c *Cache) {
		c.maxBytes = n
	}
}

// New opens the cache rooted at dir, creating it if needed. Entries left by
// earlier processes count towards the size cap.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("disk cache: empty directory")
	}
	c := &Cache{
		root:     dir,
		shardLen: defaultShardPrefixLen,
		dirMode:  defaultDirPerm,
	}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.shardLen < 0:
		return nil, fmt.Errorf("disk cache: negative shard prefix length %d", c.shardLen)
	case c.maxBytes < 0:
		return nil, fmt.Errorf("disk cache: negative max bytes %d", c.maxBytes)
	}
	if err := os.MkdirAll(dir, c.dirMode); err != nil {
		return nil, err
	}
	used, err := usage(dir)
	if err != nil {
		return nil, fmt.Errorf("disk cache: scan %s: %w", dir, err)
	}
	c.usedBytes.Store(used)
	return c, nil
}

// Get returns the word list stored under d.
//
// Files whose content no longer hashes to d are removed and reported as a miss.
func (c *Cache) Get(d digest.Digest) ([]byte, bool) {
	path, err := c.entryPath(d)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a validated digest
	if err != nil {
		return nil, false
	}
	if d.Algorithm().FromBytes(data) != d {
		_ = c.Delete(d) //nolint:errcheck // best-effort removal of corrupt entry
		return nil, false
	}
	return data, true
}

// Put stores data under d. Existing entries are left untouched, and data
// larger than the size cap is silently skipped.
func (c *Cache) Put(d digest.Digest, data []byte) error {
	path, err := c.entryPath(d)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return nil
	}

	size := int64(len(data))
	fits, err := c.makeRoom(size)
	if err != nil || !fits {
		return err
	}

	stored, err := writeAtomic(path, data, c.dirMode)
	if err != nil {
		return fmt.Errorf("disk cache: store %s: %w", d, err)
	}
	if stored {
		c.usedBytes.Add(size)
	}
	return nil
}

// Delete removes the entry for d. Missing entries are not an error.
func (c *Cache) Delete(d digest.Digest) error {
	path, err := c.entryPath(d)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	c.usedBytes.Add(-info.Size())
	return nil
}

// MaxBytes returns the size cap, 0 when unlimited.
func (c *Cache) MaxBytes() int64 {
	return c.maxBytes
}

// SizeBytes returns the total size of stored word lists.
func (c *Cache) SizeBytes() int64 {
	return c.usedBytes.Load()
}

// Prune evicts the oldest entries until at most targetBytes remain and
// returns the number of bytes freed.
func (c *Cache) Prune(targetBytes int64) (int64, error) {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	freed, left, err := evictOldest(c.root, max(targetBytes, 0))
	if err != nil {
		return 0, err
	}
	c.usedBytes.Store(left)
	return freed, nil
}

// entryPath maps a digest to its file. Validation rejects digests that could
// escape the cache root.
func (c *Cache) entryPath(d digest.Digest) (string, error) {
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("disk cache: key %q: %w", d, err)
	}
	hex := d.Encoded()
	dir := filepath.Join(c.root, d.Algorithm().String())
	if c.shardLen > 0 {
		dir = filepath.Join(dir, hex[:min(c.shardLen, len(hex))])
	}
	return filepath.Join(dir, hex), nil
}

// makeRoom evicts old entries so that size more bytes fit under the cap.
// It reports false when size alone exceeds the cap.
func (c *Cache) makeRoom(size int64) (bool, error) {
	switch {
	case c.maxBytes == 0:
		return true, nil
	case size > c.maxBytes:
		return false, nil
	case c.SizeBytes()+size <= c.maxBytes:
		return true, nil
	}
	if _, err := c.Prune(c.maxBytes - size); err != nil {
		return false, err
	}
	return c.SizeBytes()+size <= c.maxBytes, nil
}

// writeAtomic writes data to path through a temp file in the same directory.
// It reports false when another writer renamed its copy into place first.
func writeAtomic(path string, data []byte, dirMode os.FileMode) (bool, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return false, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // no-op after a successful rename

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(defaultFilePerm)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return false, nil
	}
	if err := os.Rename(tmpPath, path); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
