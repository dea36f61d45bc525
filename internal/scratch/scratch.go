/*
Package scratch manages the temporary file a secret is staged in while the
user edits it.

The file lives in a private directory (mode 0700) created under a volatile,
memory-backed directory such as /dev/shm, so the plaintext never reaches a
disk. Remove deletes the whole private directory, which also takes care of
swap and backup files editors like vi drop next to the file they edit.
*/
package scratch

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultDir is the volatile directory scratch files are created under.
const DefaultDir = "/dev/shm"

// fileName is the name of the staged file inside its private directory.
const fileName = "secret"

// ErrNoScratchDir indicates the configured volatile directory is missing.
var ErrNoScratchDir = errors.New("scratch directory not available")

// File is a scoped scratch file. Create it with New and always pair it with
// a deferred Remove.
type File struct {
	dir     string
	path    string
	removed bool
}

// New creates an empty scratch file under dir (DefaultDir when empty).
func New(dir string) (*File, error) {
	if dir == "" {
		dir = DefaultDir
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = errors.Errorf("%s is not a directory", dir)
		}
		return nil, errors.Wrapf(ErrNoScratchDir, "%s: %v", dir, err)
	}

	private, err := os.MkdirTemp(dir, "vaultpass-")
	if err != nil {
		return nil, errors.Wrap(err, "create scratch directory")
	}
	// MkdirTemp already uses 0700; be explicit in case of an odd umask.
	if err := os.Chmod(private, 0o700); err != nil {
		os.RemoveAll(private)
		return nil, errors.Wrap(err, "restrict scratch directory")
	}

	path := filepath.Join(private, fileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		os.RemoveAll(private)
		return nil, errors.Wrap(err, "create scratch file")
	}
	if err := f.Close(); err != nil {
		os.RemoveAll(private)
		return nil, errors.Wrap(err, "create scratch file")
	}

	return &File{dir: private, path: path}, nil
}

// Path is the scratch file's location, suitable for passing to an editor.
func (f *File) Path() string {
	return f.path
}

// Create truncates the scratch file and opens it for writing.
func (f *File) Create() (*os.File, error) {
	w, err := os.OpenFile(f.path, os.O_TRUNC|os.O_WRONLY, 0o600)
	return w, errors.Wrap(err, "open scratch file")
}

// Open opens the scratch file for reading.
func (f *File) Open() (*os.File, error) {
	r, err := os.Open(f.path)
	return r, errors.Wrap(err, "open scratch file")
}

// Remove deletes the scratch file and its private directory. It is safe to
// call more than once.
func (f *File) Remove() error {
	if f.removed {
		return nil
	}
	if err := os.RemoveAll(f.dir); err != nil {
		return errors.Wrap(err, "remove scratch directory")
	}
	f.removed = true
	return nil
}
