package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/consts"
)

// File is a Backend that keeps one JSON file per key in a directory.
type File struct {
	clock
	dir string
}

// NewFile creates a File backend rooted at dir. The directory is created on
// first write.
func NewFile(dir string, opts ...Option) *File {
	return &File{clock: newClock(opts), dir: dir}
}

// DefaultDir returns the user cache directory for the tool.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user cache directory")
	}

	return filepath.Join(dir, consts.CacheDirName), nil
}

// Dir returns the directory the backend writes to.
func (f *File) Dir() string {
	return f.dir
}

// Get implements Backend.
func (f *File) Get(key string, v any) (bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to read cache entry %s", key)
	}

	var it item
	if err := json.Unmarshal(data, &it); err != nil {
		// corrupt entries are treated as misses and rewritten by the caller
		return false, nil
	}

	if it.expired(f.now()) {
		_ = os.Remove(f.path(key))
		return false, nil
	}

	return true, it.decode(v)
}

// Set implements Backend.
func (f *File) Set(key string, v any, ttl time.Duration) error {
	it, err := newItem(key, v, ttl, f.now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(it)
	if err != nil {
		return errors.Wrapf(err, "failed to encode cache entry %s", key)
	}

	if err := os.MkdirAll(f.dir, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create cache directory: %s", f.dir)
	}

	// write then rename so readers never observe a partial entry
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write cache entry %s", key)
	}

	return errors.Wrapf(os.Rename(tmp, f.path(key)), "failed to write cache entry %s", key)
}

// Delete implements Backend.
func (f *File) Delete(key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete cache entry %s", key)
	}

	return nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, Key(key)+".json")
}
