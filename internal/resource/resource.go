// Package resource resolves named text resources for import.
//
// Three sources are supported: files embedded in the binary, files in a
// local directory, and objects in an S3-compatible bucket. All of them
// report unknown or invalid names with an error wrapping [ErrNotFound].
package resource

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ErrNotFound is returned when a resource name does not resolve.
var ErrNotFound = errors.New("resource not found")

// DefaultName is the bundled employee file.
const DefaultName = "data/employees.csv"

//go:embed static
var static embed.FS

// Opener resolves a resource name to a readable stream.
// Callers must close the returned stream.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

func notFound(name string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// FSOpener reads resources from an fs.FS.
type FSOpener struct {
	fsys fs.FS
}

// NewFSOpener returns an opener over fsys.
func NewFSOpener(fsys fs.FS) *FSOpener {
	return &FSOpener{fsys: fsys}
}

// Bundled returns an opener over the resources embedded in the binary.
func Bundled() *FSOpener {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err) // static is a literal directory in this package
	}
	return NewFSOpener(sub)
}

// Open opens name, a slash-separated path relative to the filesystem root.
func (o *FSOpener) Open(_ context.Context, name string) (io.ReadCloser, error) {
	name = path.Clean(name)
	if !fs.ValidPath(name) {
		return nil, notFound(name, nil)
	}
	f, err := o.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if err := rejectDir(f, name); err != nil {
		return nil, err
	}
	return f, nil
}

// DirOpener reads resources from a local directory. Names may not escape it.
type DirOpener struct {
	dir string
}

// NewDirOpener returns an opener rooted at dir.
func NewDirOpener(dir string) *DirOpener {
	return &DirOpener{dir: dir}
}

// Open opens name relative to the opener's directory.
func (o *DirOpener) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if name == "" || !filepath.IsLocal(name) {
		return nil, notFound(name, nil)
	}

	root, err := os.OpenRoot(o.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("open directory %s: %w", o.dir, err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if err := rejectDir(f, name); err != nil {
		return nil, err
	}
	return f, nil
}

func rejectDir(f fs.File, name string) error {
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return notFound(name, nil)
	}
	return nil
}
