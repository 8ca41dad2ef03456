package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Cache is a single cached document on disk
type Cache struct {
	path string
}

// New creates a Cache for path, expanding a leading "~/" and creating the parent directory.
func New(path string) (*Cache, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Cache{path: path}, nil
}

// Path returns the location of the cached document
func (c *Cache) Path() string {
	return c.path
}

// Exists reports whether a cached document is present
func (c *Cache) Exists() (bool, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking cache: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("cache path %s is a directory", c.path)
	}
	return true, nil
}

// Open opens the cached document for reading
func (c *Cache) Open() (io.ReadCloser, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return f, nil
}

// Write replaces the cached document with the contents of r.
func (c *Cache) Write(r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}

// Remove deletes the cached document. A missing document is not an error.
func (c *Cache) Remove() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cache: %w", err)
	}
	return nil
}
