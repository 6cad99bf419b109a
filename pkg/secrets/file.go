package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider loads secrets from individual files in a directory, one
// secret per file, the way container orchestrators mount them.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider rooted at dir, which must exist.
func NewFileProvider(dir string) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secrets directory: %w", err)
	}
	return &FileProvider{dir: abs}, nil
}

// GetSecret reads <dir>/<name> with surrounding whitespace trimmed.
func (p *FileProvider) GetSecret(_ context.Context, name string) (string, error) {
	path := filepath.Join(p.dir, name)
	if !strings.HasPrefix(path, p.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid secret name %q: escapes the secrets directory", name)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (file)", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("secret %q is a directory", name)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("secret file %s has insecure permissions %o: must be 0600 or 0400", name, perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Name returns "file".
func (p *FileProvider) Name() string {
	return "file"
}
