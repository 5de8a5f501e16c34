package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Local struct {
	dir       string
	publicURL string
}

func NewLocal(dir, publicURL string) (*Local, error) {
	if dir == "" {
		return nil, errors.New("storage: local dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &Local{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Upload(ctx context.Context, data []byte, filename, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(filename)
	full := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", key, err)
	}
	return l.publicURL + "/" + key, nil
}

func (l *Local) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prefix := l.publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return ErrForeignURL
	}
	key := strings.TrimPrefix(url, prefix)
	if strings.Contains(key, "..") {
		return ErrForeignURL
	}
	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}
