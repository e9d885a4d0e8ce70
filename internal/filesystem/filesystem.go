package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the disk surface used by the scene lister and the coordinate store.
type FS interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	// Stat follows symlinks.
	Stat(path string) (fs.FileInfo, error)
	// WriteFileAtomic replaces path with data so that readers observe either
	// the old content or the new content, never a mix.
	WriteFileAtomic(path string, data []byte, perm fs.FileMode) error
}

type LocalFS struct{}

func (LocalFS) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (LocalFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (LocalFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// WriteFileAtomic writes to a temp file in the target directory, syncs it and
// renames it over path.
func (LocalFS) WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if err := tmpFile.Chmod(perm); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}
