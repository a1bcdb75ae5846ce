package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
)

const filePerm = 0o644

// FS is a Provider over a directory on disk.
type FS struct {
	root string
}

// NewFS opens the existing directory root.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: %s is not a directory", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute content directory.
func (f *FS) Root() string { return f.root }

// IsSection reports whether name is a visible top-level markdown file name.
func IsSection(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		!strings.ContainsAny(name, `/\`) &&
		strings.HasSuffix(name, Ext) &&
		len(name) > len(Ext)
}

// path maps a section file name into the root. Anything that is not a
// plain section name, including traversal attempts, is rejected.
func (f *FS) path(name string) (string, error) {
	if !IsSection(name) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: section file name %q", apperr.ErrInvalidInput, name)
	}
	return filepath.Join(f.root, name), nil
}

func (f *FS) Files() ([]FileInfo, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsSection(e.Name()) {
			continue
		}
		fi, err := f.stat(e)
		if err != nil {
			// Removed between ReadDir and the read; the watcher reports it.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		out = append(out, fi)
	}
	return out, nil
}

func (f *FS) stat(e fs.DirEntry) (FileInfo, error) {
	info, err := e.Info()
	if err != nil {
		return FileInfo{}, err
	}
	data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
	if err != nil {
		return FileInfo{}, fmt.Errorf("storage: read %s: %w", e.Name(), err)
	}
	return FileInfo{
		Name:     e.Name(),
		Slug:     strings.TrimSuffix(e.Name(), Ext),
		Size:     int64(len(data)),
		Checksum: checksum.Sum(data),
		ModTime:  info.ModTime(),
	}, nil
}

// Read returns the bytes of a section file. A missing file yields
// apperr.ErrNotFound.
func (f *FS) Read(name string) ([]byte, error) {
	p, err := f.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write stages content in a hidden sibling and renames it over name. The
// staging file is hidden so Files and the watcher ignore it.
func (f *FS) Write(name string, content []byte) error {
	p, err := f.path(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.root, "."+name+".*")
	if err != nil {
		return fmt.Errorf("storage: stage %s: %w", name, err)
	}
	if err := commit(tmp, content, p); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

func commit(tmp *os.File, content []byte, dst string) error {
	if _, err := tmp.Write(content); err != nil {
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
