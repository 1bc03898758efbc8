// Package classpath resolves class and resource names against ordered lists
// of artifact paths (directories and jar archives).
//
// Conventions:
//   - A class name is a dotted fully-qualified name ("a.b.C") mapping to the
//     entry-relative file "a/b/C.class".
//   - A resource path is a slash path looked up verbatim after sanitizing.
//   - Order is significant: the first entry that has a name wins.
//   - An entry whose backing path is missing on disk is a lookup miss, not
//     an error; diagnostics enumerate missing entries separately.
package classpath

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ClassSuffix is the file suffix of a binary class definition.
const ClassSuffix = ".class"

// Entry is a single element of a classpath.
type Entry interface {
	// Path returns the artifact path the entry was built from.
	Path() string
	// Class returns the binary definition for a dotted class name.
	Class(name string) (data []byte, ok bool, err error)
	// Resource returns the raw bytes of a resource by slash path.
	Resource(path string) (data []byte, ok bool, err error)
	// Close releases per-entry state. Archive handles are owned by the
	// shared cache and survive entry close.
	Close() error
}

// NewEntry builds an Entry for an artifact path. Directories become
// directory entries; everything else is treated as a zip archive. When the
// path does not exist yet, the extension decides.
func NewEntry(path string, cache *ArchiveCache) Entry {
	if cache == nil {
		cache = DefaultArchiveCache()
	}
	if st, err := os.Stat(path); err == nil {
		if st.IsDir() {
			return &dirEntry{root: path}
		}
		return &archiveEntry{path: path, cache: cache}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".zip":
		return &archiveEntry{path: path, cache: cache}
	}
	return &dirEntry{root: path}
}

// ClassFile maps a dotted class name to its entry-relative slash path.
// Returns false for names that cannot correspond to a definition file.
func ClassFile(name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", false
	}
	return strings.ReplaceAll(name, ".", "/") + ClassSuffix, true
}

// SanitizePath converts a resource lookup path into the entry-relative
// slash form used as an archive key. Windows drive prefixes are dropped,
// and the path is resolved as if rooted at the entry so ".." can never
// climb out. An empty result means the path names no entry member and the
// lookup is a miss.
func SanitizePath(p string) string {
	s := strings.ReplaceAll(p, `\`, "/")
	if len(s) >= 2 && s[1] == ':' {
		s = s[2:]
	}
	// Rooting before Clean pins leading ".." segments to the entry root
	// instead of leaving them in the result.
	return strings.TrimPrefix(path.Clean("/"+s), "/")
}

// ---------------- directory entries ----------------

type dirEntry struct {
	root string
}

func (d *dirEntry) Path() string { return d.root }

func (d *dirEntry) Class(name string) ([]byte, bool, error) {
	rel, ok := ClassFile(name)
	if !ok {
		return nil, false, nil
	}
	return d.read(rel)
}

func (d *dirEntry) Resource(path string) ([]byte, bool, error) {
	rel := SanitizePath(path)
	if rel == "" {
		return nil, false, nil
	}
	return d.read(rel)
}

func (d *dirEntry) read(rel string) ([]byte, bool, error) {
	full := filepath.Join(d.root, filepath.FromSlash(rel))
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (d *dirEntry) Close() error { return nil }

// ---------------- archive entries ----------------

type archiveEntry struct {
	path  string
	cache *ArchiveCache
}

func (a *archiveEntry) Path() string { return a.path }

func (a *archiveEntry) Class(name string) ([]byte, bool, error) {
	rel, ok := ClassFile(name)
	if !ok {
		return nil, false, nil
	}
	return a.read(rel)
}

func (a *archiveEntry) Resource(path string) ([]byte, bool, error) {
	rel := SanitizePath(path)
	if rel == "" {
		return nil, false, nil
	}
	return a.read(rel)
}

func (a *archiveEntry) read(rel string) ([]byte, bool, error) {
	ar, err := a.cache.Open(a.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return ar.read(rel)
}

func (a *archiveEntry) Close() error { return nil }
