package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStorage keeps blobs as files under a local directory. It backs the CLI
// and local development when no Azure account is configured.
type FileStorage struct {
	dir string
}

// Ensure FileStorage implements StorageInterface
var _ StorageInterface = (*FileStorage)(nil)

// NewFileStorage creates dir if needed
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(filename string) (string, error) {
	clean := filepath.Clean("/" + filename)
	if clean == "/" {
		return "", fmt.Errorf("invalid blob name %q", filename)
	}
	return filepath.Join(f.dir, filepath.FromSlash(clean)), nil
}

func (f *FileStorage) Store(_ context.Context, filename string, data []byte) error {
	p, err := f.path(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	return os.WriteFile(p, data, 0644)
}

func (f *FileStorage) Retrieve(_ context.Context, filename string) ([]byte, error) {
	p, err := f.path(filename)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (f *FileStorage) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(f.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(f.dir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", f.dir, err)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FileStorage) Delete(_ context.Context, filename string) error {
	p, err := f.path(filename)
	if err != nil {
		return err
	}
	return os.Remove(p)
}
