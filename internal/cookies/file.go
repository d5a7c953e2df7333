package cookies

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore writes one snapshot file per owner under a directory, matching
// the per-account cookie files the service has always kept on disk.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("cookie store directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(owner string) string {
	return filepath.Join(s.dir, url.PathEscape(owner)+".json")
}

func (s *FileStore) Persist(_ context.Context, owner string, snapshot []byte) error {
	return os.WriteFile(s.path(owner), snapshot, 0o600)
}

func (s *FileStore) Restore(_ context.Context, owner string) ([]byte, error) {
	data, err := os.ReadFile(s.path(owner))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	return data, nil
}

func (s *FileStore) Drop(_ context.Context, owner string) error {
	err := os.Remove(s.path(owner))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
