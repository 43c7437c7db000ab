package disk

import (
	"cmp"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// storedList is one committed word list file.
type storedList struct {
	path    string
	size    int64
	touched time.Time
}

// scan lists committed word lists below root along with their total size.
// Temp files from unfinished writes do not count.
func scan(root string) ([]storedList, int64, error) {
	var (
		lists []storedList
		total int64
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		switch {
		case walkErr != nil:
			return walkErr
		case !d.Type().IsRegular(), isTemp(d.Name()):
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		lists = append(lists, storedList{path: path, size: info.Size(), touched: info.ModTime()})
		total += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, nil
	}
	return lists, total, err
}

func isTemp(name string) bool {
	ok, _ := filepath.Match(tempPattern, name) //nolint:errcheck // constant pattern
	return ok
}

func usage(root string) (int64, error) {
	_, total, err := scan(root)
	return total, err
}

// evictOldest removes the least recently written lists until at most limit
// bytes remain. Ties on mtime fall back to path order so runs are repeatable.
func evictOldest(root string, limit int64) (freed, left int64, err error) {
	lists, left, err := scan(root)
	if err != nil || left <= limit {
		return 0, left, err
	}

	slices.SortFunc(lists, func(a, b storedList) int {
		return cmp.Or(a.touched.Compare(b.touched), cmp.Compare(a.path, b.path))
	})

	for _, l := range lists {
		if left <= limit {
			break
		}
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return freed, left, err
		}
		left -= l.size
		freed += l.size
	}
	return freed, left, nil
}
