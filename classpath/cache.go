package classpath

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultArchiveCapacity bounds the number of archive handles kept open by
// the shared cache.
const DefaultArchiveCapacity = 64

// Archive is an opened zip artifact with an entry lookup table.
type Archive struct {
	path   string
	rc     *zip.ReadCloser
	byName map[string]*zip.File
}

func (a *Archive) read(rel string) ([]byte, bool, error) {
	f, ok := a.byName[rel]
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false, fmt.Errorf("open %s!%s: %w", a.path, rel, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("read %s!%s: %w", a.path, rel, err)
	}
	return data, true, nil
}

// ArchiveCache keeps recently used archives open, keyed by path plus size
// and mtime so a replaced artifact is re-read rather than served stale.
// Evicted handles are closed; concurrent first opens of the same artifact
// are collapsed to a single read of the central directory.
type ArchiveCache struct {
	cache *lru.Cache[string, *Archive]
	sf    singleflight.Group
}

// NewArchiveCache builds a cache holding up to capacity open archives.
func NewArchiveCache(capacity int) *ArchiveCache {
	if capacity <= 0 {
		capacity = DefaultArchiveCapacity
	}
	c, err := lru.NewWithEvict[string, *Archive](capacity, func(_ string, a *Archive) {
		_ = a.rc.Close()
	})
	if err != nil {
		// Only reachable with a non-positive capacity, which is clamped above.
		panic(err)
	}
	return &ArchiveCache{cache: c}
}

var (
	defaultCacheOnce sync.Once
	defaultCache     *ArchiveCache
)

// DefaultArchiveCache returns the process-wide shared cache.
func DefaultArchiveCache() *ArchiveCache {
	defaultCacheOnce.Do(func() {
		defaultCache = NewArchiveCache(DefaultArchiveCapacity)
	})
	return defaultCache
}

// Open returns the cached archive for path, opening it on first use.
// A missing or unreadable artifact surfaces the underlying error.
func (c *ArchiveCache) Open(path string) (*Archive, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s|%d|%d", path, st.Size(), st.ModTime().UnixNano())
	if a, ok := c.cache.Get(key); ok {
		return a, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		if a, ok := c.cache.Get(key); ok {
			return a, nil
		}
		rc, err := zip.OpenReader(path)
		if err != nil {
			return nil, fmt.Errorf("open archive %s: %w", path, err)
		}
		a := &Archive{
			path:   path,
			rc:     rc,
			byName: make(map[string]*zip.File, len(rc.File)),
		}
		for _, f := range rc.File {
			a.byName[SanitizePath(f.Name)] = f
		}
		c.cache.Add(key, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Archive), nil
}

// Purge drops every cached handle, closing them via the eviction hook.
func (c *ArchiveCache) Purge() {
	c.cache.Purge()
}
