package filestore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local writes files into a directory served under baseURL.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates dir if needed.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

// Save streams r into a uuid-named temp file and renames it over name, so a
// failed upload never leaves a truncated image behind.
func (l *Local) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	tmp := filepath.Join(l.dir, "."+uuid.NewString()+".part")

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close upload: %w", err)
	}

	if err := ctx.Err(); err != nil {
		os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, filepath.Join(l.dir, name)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename upload: %w", err)
	}

	return l.baseURL + "/uploads/" + url.PathEscape(name), nil
}
