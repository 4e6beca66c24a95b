package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
)

// DiskStore writes images into a local directory served under a URL prefix.
type DiskStore struct {
	dir    string
	prefix string
}

// NewDiskStore creates dir if needed. Files are exposed as prefix/<name>.
func NewDiskStore(dir, prefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, prefix: prefix}, nil
}

// Save writes r to the upload directory under name and returns its public path.
func (s *DiskStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	logger.Log.Infow(
		"upload", target,
		"content_type", contentType,
		"bytes", written,
		"error", err,
	)

	if err != nil {
		os.Remove(target)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path.Join(s.prefix, name), nil
}

// Delete removes the file saved under name.
func (s *DiskStore) Delete(ctx context.Context, name string) error {
	target := filepath.Join(s.dir, filepath.Base(name))
	err := os.Remove(target)

	logger.Log.Infow(
		"delete upload", target,
		"error", err,
	)

	if err != nil {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}
