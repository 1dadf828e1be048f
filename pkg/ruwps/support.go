package ruwps

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ApplicationSupport returns the per-user data directory of the named
// application, creating it when missing.
func ApplicationSupport(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("failed to resolve application support: empty name")
	}
	dir := filepath.Join(xdg.DataHome, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create application support directory: %w", err)
	}
	return dir, nil
}

// Open opens a file for reading inside the application support directory.
func (a *App) Open(path ...string) (*os.File, error) {
	return a.OpenFile(filepath.Join(path...), os.O_RDONLY, 0)
}

// OpenFile opens name inside the application support directory with the
// given flags.
func (a *App) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	dir, err := ApplicationSupport(a.name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, name), flag, perm)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}
