// Package storage keeps uploaded bookmark files on local disk under opaque
// handles.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for a handle with no stored file.
	ErrNotFound = errors.New("storage: file not found")

	// ErrTooLarge is returned when an upload exceeds the size cap.
	ErrTooLarge = errors.New("storage: file too large")

	// ErrInvalidHandle is returned for handles that could escape the
	// upload directory.
	ErrInvalidHandle = errors.New("storage: invalid handle")
)

// Store saves uploads into a single flat directory.
type Store struct {
	dir      string
	maxBytes int64
}

// New creates dir if needed. maxBytes <= 0 disables the size cap.
func New(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Save writes r to a new file and returns its handle: a random UUID plus
// the original extension when it is .html or .htm.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	handle := uuid.NewString() + extension(originalName)

	f, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("storage: write upload: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return "", ErrTooLarge
	}

	if err := os.Rename(tmp, filepath.Join(s.dir, handle)); err != nil {
		return "", fmt.Errorf("storage: commit upload: %w", err)
	}
	return handle, nil
}

// Read returns the content stored under handle.
func (s *Store) Read(handle string) ([]byte, error) {
	path, err := s.path(handle)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", handle, err)
	}
	return data, nil
}

// Exists reports whether handle names a stored file.
func (s *Store) Exists(handle string) bool {
	path, err := s.path(handle)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *Store) path(handle string) (string, error) {
	if handle == "" || handle != filepath.Base(handle) || strings.HasPrefix(handle, ".") {
		return "", ErrInvalidHandle
	}
	return filepath.Join(s.dir, handle), nil
}

func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".html" || ext == ".htm" {
		return ext
	}
	return ""
}
