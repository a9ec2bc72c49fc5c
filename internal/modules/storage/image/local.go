package image

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images into a directory served statically under prefix.
type LocalStore struct {
	dir    string
	prefix string
}

func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("local image dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	prefix = "/" + strings.Trim(prefix, "/")
	return &LocalStore{dir: dir, prefix: prefix}, nil
}

func (l *LocalStore) Dir() string { return l.dir }

func (l *LocalStore) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return path.Join(l.prefix, name), nil
}

func (l *LocalStore) Remove(_ context.Context, url string) (bool, error) {
	name, ok := l.nameOf(url)
	if !ok {
		return false, nil
	}
	err := os.Remove(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *LocalStore) nameOf(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, l.prefix+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") || strings.Contains(rest, "..") {
		return "", false
	}
	return rest, true
}
