package loader

import (
	"sync/atomic"
)

// TaskLoader is the short-lived top layer for a single task. It delegates
// to its dependency layer first and only then resolves against its own
// classpath, so task code sees library classes with the cached layer's
// identity. Closing the task loader returns the dependency layer to the
// pool.
type TaskLoader struct {
	*managed

	dep  *DependencyLoader
	pool *Pool

	closing atomic.Bool
}

// LoadClass resolves name through the dependency layer first, then this
// layer. After close, resolution goes straight to the zombie fallback so
// the pooled dependency layer is never consulted on behalf of a dead task.
func (t *TaskLoader) LoadClass(name string, resolve bool) (*Class, error) {
	if t.closed.Load() {
		return t.zombieFor().loadClass(name)
	}
	if c := t.findLoaded(name); c != nil {
		return c, nil
	}
	c, err := t.dep.LoadClassEx(name, false, false)
	if err == nil {
		return c, nil
	}
	if !IsClassNotFound(err) {
		return nil, err
	}
	return t.findClass(name)
}

// FindResource resolves path against the task's own classpath, falling
// back to the dependency layer's full-classpath index.
func (t *TaskLoader) FindResource(path string) ([]byte, error) {
	if t.closed.Load() {
		return t.zombieFor().findResource(path)
	}
	data, err := t.findResourceLocal(path)
	if err == nil {
		return data, nil
	}
	if !IsResourceNotFound(err) {
		return nil, err
	}
	return t.dep.FindResource(path)
}

// findClass resolves name against the task classpath only, double-checked
// under the per-name lock. Only this local step takes the lock; delegation
// to the dependency layer stays outside it so cross-layer lookups of one
// name cannot deadlock.
func (t *TaskLoader) findClass(name string) (*Class, error) {
	var c *Class
	var err error
	t.locks.withLock(name, func() {
		c, err = t.findClassLocal(name)
	})
	return c, err
}

// LookupClass is the reverse-lookup entry used by the dependency layer. It
// never delegates back down, only checks definitions made by this loader
// and its own classpath.
func (t *TaskLoader) LookupClass(name string) (*Class, error) {
	if c := t.findLoaded(name); c != nil {
		return c, nil
	}
	return t.findClass(name)
}

// Close detaches the task layer, returns the dependency layer to the pool
// and then closes itself. The parent stays live until checkin has decided
// its fate. Idempotent.
func (t *TaskLoader) Close() error {
	if !t.closing.CompareAndSwap(false, true) {
		return nil
	}
	t.dep.descendant.Store(nil)
	t.pool.checkin(t.dep)
	return t.closeManaged()
}
