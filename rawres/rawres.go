// Package rawres resolves bundled raw resources by name.
//
// A raw resource is a read-only file shipped with the application and
// addressed by a stable name: its file name without the extension, the way
// Android names res/raw entries (create_tables.sql → "create_tables").
package rawres

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotFound is returned when no resource is registered under a name.
var ErrNotFound = errors.New("resource not found")

// Resources gives byte access to raw resources by name.
type Resources interface {
	// Open returns a stream over the resource. The caller closes it.
	Open(name string) (io.ReadCloser, error)
	// Has reports whether a resource is registered under name.
	Has(name string) bool
}

// Store is a Resources backed by a directory of an fs.FS.
// The name index is built once, on construction.
type Store struct {
	fsys  fs.FS
	dir   string
	index map[string]string // name → path within fsys
}

// NewStore indexes the regular files directly inside dir of fsys.
// If two files share a name (e.g. a.sql and a.txt), the first in lexical
// order wins.
func NewStore(fsys fs.FS, dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading resource dir %s: %w", dir, err)
	}

	s := &Store{fsys: fsys, dir: dir, index: make(map[string]string, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := Name(entry.Name())
		if _, dup := s.index[name]; dup {
			continue
		}
		s.index[name] = path.Join(dir, entry.Name())
	}
	return s, nil
}

// Name derives the resource name from a file name.
func Name(file string) string {
	base := path.Base(file)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// Open implements Resources.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	p, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	f, err := s.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	return f, nil
}

// Has implements Resources.
func (s *Store) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns all registered names, sorted.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.index))
}

// ReadString loads the named resource fully and decodes it as UTF-8,
// dropping a leading byte order mark. The stream is closed before returning.
func ReadString(res Resources, name string) (string, error) {
	rc, err := res.Open(name)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(rc, dec))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}
