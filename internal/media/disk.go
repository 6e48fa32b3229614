package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes blobs under a local uploads directory and returns
// absolute URLs below baseURL. The API server serves the directory as
// static files.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/uploads/" + filepath.Base(name), nil
}

// Dir exposes the backing directory for the static file route.
func (s *DiskStore) Dir() string { return s.dir }
