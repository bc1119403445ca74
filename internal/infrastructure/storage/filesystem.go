// Package storage keeps attachment blobs on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxStoredNameLen = 100

// FilesystemStore writes each blob under <base>/<dir>/<uuid>-<name>. Paths
// returned by Save are relative to base.
type FilesystemStore struct {
	basePath string
}

func NewFilesystemStore(basePath string) (*FilesystemStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment dir: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve attachment dir: %w", err)
	}
	return &FilesystemStore{basePath: abs}, nil
}

func (s *FilesystemStore) Save(ctx context.Context, dir, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := filepath.Join(safeSegment(dir), uuid.NewString()+"-"+safeSegment(filename))
	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func (s *FilesystemStore) Open(path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Remove deletes the blob and its directory once empty. A missing file is
// not an error.
func (s *FilesystemStore) Remove(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if dir := filepath.Dir(full); dir != s.basePath {
		_ = os.Remove(dir) // fails while other attachments remain
	}
	return nil
}

// resolve maps a stored path into base and rejects anything escaping it.
func (s *FilesystemStore) resolve(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return "", fmt.Errorf("invalid attachment path %q", path)
	}
	full := filepath.Join(s.basePath, filepath.FromSlash(path))
	if !strings.HasPrefix(full, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid attachment path %q", path)
	}
	return full, nil
}

func safeSegment(name string) string {
	name = unsafeNameChars.ReplaceAllString(filepath.Base(strings.TrimSpace(name)), "_")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "file"
	}
	if len(name) > maxStoredNameLen {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:maxStoredNameLen-len(ext)] + ext
	}
	return name
}
