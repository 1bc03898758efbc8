package loader

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"classlayers/classpath"
	"classlayers/native"
)

// managed carries the state shared by both loader layers: the classpath
// index, the defined-class table, per-name locks, the native stager and the
// zombie fallback that takes over after close.
type managed struct {
	id    string
	name  string
	urls  []string
	index *classpath.Index

	definedMu sync.Mutex
	defined   map[string]*Class

	locks  *nameLocks
	stager *native.Stager

	log          Logger
	allowZombies bool

	closed atomic.Bool

	zombieMu sync.Mutex
	zombie   *zombieLoader
}

func newManaged(name string, urls []string, cache *classpath.ArchiveCache, stager *native.Stager, log Logger, allowZombies bool) *managed {
	return &managed{
		id:           uuid.NewString(),
		name:         name,
		urls:         append([]string(nil), urls...),
		index:        classpath.NewIndex(urls, cache),
		defined:      make(map[string]*Class),
		locks:        newNameLocks(),
		stager:       stager,
		log:          log,
		allowZombies: allowZombies,
	}
}

// findLoaded returns the already-defined class for name, if any.
func (m *managed) findLoaded(name string) *Class {
	m.definedMu.Lock()
	defer m.definedMu.Unlock()
	return m.defined[name]
}

// define records a definition for name. If another goroutine defined the
// name first, the earlier definition wins and is returned, keeping class
// identity stable per loader.
func (m *managed) define(name string, data []byte, origin string) *Class {
	m.definedMu.Lock()
	defer m.definedMu.Unlock()
	if c, ok := m.defined[name]; ok {
		return c
	}
	c := &Class{Name: name, Bytes: data, Origin: origin}
	m.defined[name] = c
	return c
}

// findClassLocal resolves name against this layer's own classpath, without
// delegation. After close, resolution is served by the zombie fallback.
func (m *managed) findClassLocal(name string) (*Class, error) {
	if m.closed.Load() {
		return m.zombieFor().loadClass(name)
	}
	if c := m.findLoaded(name); c != nil {
		return c, nil
	}
	data, origin, ok, err := m.index.Class(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ClassNotFoundError{Name: name}
	}
	return m.define(name, data, origin), nil
}

// findResourceLocal resolves a resource path against this layer's own
// classpath.
func (m *managed) findResourceLocal(path string) ([]byte, error) {
	if m.closed.Load() {
		return m.zombieFor().findResource(path)
	}
	data, _, ok, err := m.index.Resource(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ResourceNotFoundError{Path: path}
	}
	return data, nil
}

// FindLibrary stages and returns the path of a native library visible to
// this layer.
func (m *managed) FindLibrary(name string) (string, bool, error) {
	if m.stager == nil {
		return "", false, nil
	}
	return m.stager.FindLibrary(name)
}

// zombieFor lazily builds the fallback loader on first post-close use.
func (m *managed) zombieFor() *zombieLoader {
	m.zombieMu.Lock()
	defer m.zombieMu.Unlock()
	if m.zombie == nil {
		m.zombie = newZombieLoader(m)
	}
	return m.zombie
}

// closeManaged releases the layer. Idempotent; only the first call tears
// anything down. A zombie built after this point stays open to serve the
// lookups it exists for.
func (m *managed) closeManaged() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	m.zombieMu.Lock()
	if m.zombie != nil {
		_ = m.zombie.close()
	}
	m.zombieMu.Unlock()
	if m.stager != nil {
		m.stager.Teardown()
	}
	return m.index.Close()
}
