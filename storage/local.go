package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local writes objects below a directory that the router serves statically.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) *Local {
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	clean, full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return l.baseURL + "/" + clean, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	_, full, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// resolve keeps keys inside the upload directory.
func (l *Local) resolve(key string) (string, string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" {
		return "", "", fmt.Errorf("storage: empty key")
	}
	return clean, filepath.Join(l.dir, filepath.FromSlash(clean)), nil
}

// KeyFromURL maps a URL produced by Put back to its key.
func (l *Local) KeyFromURL(url string) string {
	prefix := l.baseURL + "/"
	if strings.HasPrefix(url, prefix) {
		return url[len(prefix):]
	}
	return ""
}
