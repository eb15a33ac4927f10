// Package filestore reads and writes whole files under one base
// directory.
//
// Names are joined to the directory verbatim. Nothing stops a name like
// "../etc/passwd" from escaping the directory.
package filestore

import (
	"errors"
	"fmt"
	"os"
)

var (
	ErrUnsupported = errors.New("filestore: backend not supported on this platform")
	ErrUnknownKind = errors.New("filestore: unknown backend")
)

// Store reads and writes whole files. Failures wrap the underlying OS
// error, so errors.Is(err, fs.ErrNotExist) identifies a missing file.
type Store interface {
	Read(name string) ([]byte, error)
	// Write creates or truncates the file and writes data fully.
	Write(name string, data []byte) error
	Close() error
}

type Kind string

const (
	KindOS      Kind = "os"
	KindIOURing Kind = "iouring"
	KindURing   Kind = "uring"
)

// Kinds lists every backend name Open accepts.
func Kinds() []Kind {
	return []Kind{KindOS, KindIOURing, KindURing}
}

// Open returns the backend named kind rooted at dir. The io_uring
// backends only exist on linux.
func Open(kind Kind, dir string) (Store, error) {
	switch kind {
	case KindOS, "":
		return NewDir(dir), nil
	case KindIOURing:
		return openIOURing(dir)
	case KindURing:
		return openURing(dir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Path is dir + "/" + name, with no cleaning.
func Path(dir, name string) string {
	return dir + "/" + name
}

func wrap(op, path string, err error) error {
	return fmt.Errorf("filestore: %s %s: %w", op, path, err)
}

// Dir is the portable backend on top of package os.
type Dir struct {
	dir string
}

func NewDir(dir string) *Dir {
	return &Dir{dir: dir}
}

func (d *Dir) Read(name string) ([]byte, error) {
	p := Path(d.dir, name)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, wrap("read", p, err)
	}
	return b, nil
}

func (d *Dir) Write(name string, data []byte) error {
	p := Path(d.dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return wrap("write", p, err)
	}
	return nil
}

func (d *Dir) Close() error { return nil }
