package blob

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// FSStore is a filesystem-backed Store for local development and tests.
// Keys map to paths under the root directory; content types are derived from
// the file extension on read.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at dir.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{root: dir}, nil
}

// Put writes the object to <root>/<key>, creating parent directories.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

// Get opens the object stored under key.
func (s *FSStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	path, err := s.path(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open blob %s: %w", key, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, contentType, nil
}

// path maps a key to a filesystem path, rejecting traversal outside the root.
func (s *FSStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
