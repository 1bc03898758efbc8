package loader

import (
	"sync/atomic"

	"classlayers/classpath"
	"classlayers/native"
)

// DependencyLoader is the cacheable middle layer holding a task's library
// dependencies. Between tasks it parks in a Pool; while checked out it may
// consult the task layer above it through a reverse-lookup edge, and doing
// so marks it dirty so the pool retires it instead of caching it.
type DependencyLoader struct {
	*managed

	parent ClassLoader

	// descendant is the task layer currently stacked on this loader, set
	// at checkout and cleared at checkin.
	descendant atomic.Pointer[TaskLoader]

	// dirty is set the first time a reverse lookup succeeds and never
	// cleared.
	dirty atomic.Bool

	// resources answers resource lookups against the full (dependency +
	// task) classpath, rebuilt at each checkout.
	resources atomic.Pointer[classpath.Index]
}

func newDependencyLoader(urls []string, opts Options, cache *classpath.ArchiveCache) *DependencyLoader {
	stager := native.NewStager(nil, native.SearchPath())
	return &DependencyLoader{
		managed: newManaged("dependency", urls, cache, stager, opts.Log, opts.AllowZombies),
		parent:  opts.Parent,
	}
}

// LoadClass resolves name with reverse lookup enabled.
func (d *DependencyLoader) LoadClass(name string, resolve bool) (*Class, error) {
	return d.LoadClassEx(name, resolve, true)
}

// LoadClassEx resolves name through parent first, then this layer, then,
// when reverseLookup is set and a task layer is attached, the task layer.
// The whole resolution runs under the per-name lock so racing loads of one
// name observe a single definition.
func (d *DependencyLoader) LoadClassEx(name string, resolve, reverseLookup bool) (*Class, error) {
	var c *Class
	var err error
	d.locks.withLock(name, func() {
		c, err = d.loadClassLocked(name, reverseLookup)
	})
	return c, err
}

func (d *DependencyLoader) loadClassLocked(name string, reverseLookup bool) (*Class, error) {
	if c := d.findLoaded(name); c != nil {
		return c, nil
	}
	if d.parent != nil {
		c, err := d.parent.LoadClass(name, false)
		if err == nil {
			return c, nil
		}
		if !IsClassNotFound(err) {
			return nil, err
		}
	}
	c, err := d.findClassLocal(name)
	if err == nil {
		return c, nil
	}
	if !IsClassNotFound(err) {
		return nil, err
	}
	if reverseLookup {
		if task := d.descendant.Load(); task != nil {
			if c, lookErr := task.LookupClass(name); lookErr == nil {
				d.dirty.Store(true)
				return c, nil
			}
		}
	}
	return nil, err
}

// FindResource resolves path against the full classpath of the current
// checkout.
func (d *DependencyLoader) FindResource(path string) ([]byte, error) {
	if d.closed.Load() {
		return d.zombieFor().findResource(path)
	}
	ix := d.resources.Load()
	if ix == nil {
		return nil, &ResourceNotFoundError{Path: path}
	}
	data, _, ok, err := ix.Resource(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ResourceNotFoundError{Path: path}
	}
	return data, nil
}

// Dirty reports whether a reverse lookup has ever succeeded on this loader.
func (d *DependencyLoader) Dirty() bool { return d.dirty.Load() }

// Paths returns the loader's own classpath entries in lookup order.
func (d *DependencyLoader) Paths() []string {
	return append([]string(nil), d.urls...)
}

// setup prepares the loader for a new checkout: resource lookups cover the
// full classpath and native staging targets the task's temp directory.
func (d *DependencyLoader) setup(tempDir string, fullClasspath []string, cache *classpath.ArchiveCache) {
	old := d.resources.Swap(classpath.NewIndex(fullClasspath, cache))
	if old != nil {
		_ = old.Close()
	}
	d.stager.SetTempDir(tempDir)
}

// close releases the loader and its full-classpath resource index.
func (d *DependencyLoader) close() error {
	if ix := d.resources.Swap(nil); ix != nil {
		_ = ix.Close()
	}
	return d.closeManaged()
}
