package classpath

import (
	"errors"
	"os"

	"classlayers/internal/sortutil"
)

// Index resolves lookups against an ordered list of entries.
type Index struct {
	paths   []string
	entries []Entry
}

// NewIndex builds an index over the given artifact paths. cache may be nil,
// in which case the shared archive cache is used.
func NewIndex(paths []string, cache *ArchiveCache) *Index {
	entries := make([]Entry, 0, len(paths))
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		entries = append(entries, NewEntry(p, cache))
		kept = append(kept, p)
	}
	return &Index{paths: kept, entries: entries}
}

// Paths returns a copy of the artifact paths in lookup order.
func (ix *Index) Paths() []string {
	out := make([]string, len(ix.paths))
	copy(out, ix.paths)
	return out
}

// Class returns the definition bytes and the origin artifact path for a
// dotted class name. The first entry that has the name wins.
func (ix *Index) Class(name string) (data []byte, origin string, ok bool, err error) {
	for _, e := range ix.entries {
		data, ok, err := e.Class(name)
		if err != nil {
			return nil, "", false, err
		}
		if ok {
			return data, e.Path(), true, nil
		}
	}
	return nil, "", false, nil
}

// Resource returns the raw bytes and origin for a slash resource path.
func (ix *Index) Resource(path string) (data []byte, origin string, ok bool, err error) {
	for _, e := range ix.entries {
		data, ok, err := e.Resource(path)
		if err != nil {
			return nil, "", false, err
		}
		if ok {
			return data, e.Path(), true, nil
		}
	}
	return nil, "", false, nil
}

// Missing returns the sorted subset of artifact paths that no longer exist
// on disk. Used by post-close diagnostics.
func (ix *Index) Missing() []string {
	var out []string
	for _, p := range ix.paths {
		if _, err := os.Stat(p); err != nil {
			out = append(out, p)
		}
	}
	return sortutil.StablePathSort(out)
}

// Present returns the sorted subset of artifact paths that still exist.
func (ix *Index) Present() []string {
	var out []string
	for _, p := range ix.paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return sortutil.StablePathSort(out)
}

// Close releases per-entry state.
func (ix *Index) Close() error {
	var errs []error
	for _, e := range ix.entries {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
