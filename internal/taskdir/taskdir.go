// Package taskdir owns the directory of record files: listing them,
// reading them, and replacing them atomically.
//
// Writes go to a freshly created hidden temp file in the same directory,
// are flushed, and then renamed over the canonical path. A crash at any
// point leaves either the old file or the new file, never a torn one.
package taskdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"recurd/pkg/logx"
)

// ErrPersist marks a failed write or rename. The record's on-disk state is
// unchanged when this is returned.
var ErrPersist = errors.New("record persistence failed")

// Dir is one task directory. File names are operator-chosen identifiers;
// dotfiles (editor swap files, our own temp files) are ignored.
type Dir struct {
	path string
	log  logx.Logger
}

func Open(path string, log logx.Logger) (*Dir, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("taskdir: path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return &Dir{path: path, log: log}, nil
}

// List returns the record file names in lexical order, skipping hidden
// files and anything that is not a regular file.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Root returns the directory path itself.
func (d *Dir) Root() string { return d.path }

// Path returns the canonical path for a record name.
func (d *Dir) Path(name string) string { return filepath.Join(d.path, name) }

// Exists reports whether a record file is already present.
func (d *Dir) Exists(name string) bool {
	_, err := os.Stat(d.Path(name))
	return err == nil
}

// Read returns the raw bytes of one record file.
func (d *Dir) Read(name string) ([]byte, error) {
	return os.ReadFile(d.Path(name))
}

// WriteAtomic replaces the record file with data, atomically. On any
// failure the original file is untouched.
func (d *Dir) WriteAtomic(name string, data []byte) error {
	tmp, err := d.writeTemp(name, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, d.Path(name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename: %v", ErrPersist, err)
	}
	return nil
}

// writeTemp writes data to a fresh hidden temp file next to the records
// and returns its path. The dot prefix keeps half-written files out of
// List() even if a crash strands one.
func (d *Dir) writeTemp(name string, data []byte) (string, error) {
	f, err := os.CreateTemp(d.path, "."+name+"-*.tmp")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}
