// Package osfilesystem implements ports.FileSystem on the local disk.
package osfilesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// FileSystem is the local disk. Writes go through a temporary file in the
// target directory and are renamed into place, so a decoded payload is
// either complete or absent.
type FileSystem struct{}

// New creates a FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

func (FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile creates missing parent directories and replaces path atomically.
func (FileSystem) WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, dirMode)
}

// Exists reports whether path exists. Errors other than "not found" are
// returned as is.
func (FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (FileSystem) Remove(path string) error {
	return os.Remove(path)
}

// ReadDir returns the sorted names of the regular files in a directory.
// Subdirectories and temporary files left by WriteFile are skipped.
func (FileSystem) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && e.Name()[0] != '.' {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

var _ ports.FileSystem = (*FileSystem)(nil)
