package loader

import (
	"sync/atomic"

	"classlayers/classpath"
	"classlayers/native"
)

// Options configures a Pool and the loaders it builds.
type Options struct {
	// Parent, when set, is consulted before any layer's own classpath.
	Parent ClassLoader

	// AllowZombies suppresses the post-close lookup warning for loaders
	// whose callers deliberately keep using them after close.
	AllowZombies bool

	// Log receives lifecycle warnings. Nil installs a stdlib logger.
	Log Logger
}

// Pool caches a single DependencyLoader between tasks that share the same
// dependency classpath. Checkout hands the cached loader out (or builds a
// fresh one); checkin either parks it for reuse or retires it when it has
// become dirty or the pool has closed in the meantime.
type Pool struct {
	depClasspath []string
	opts         Options
	cache        *classpath.ArchiveCache
	key          string

	slot   atomic.Pointer[DependencyLoader]
	closed atomic.Bool
}

// NewPool builds a pool for the given dependency classpath.
func NewPool(depClasspath []string, opts Options) (*Pool, error) {
	if err := classpath.Validate(depClasspath); err != nil {
		return nil, err
	}
	if opts.Log == nil {
		opts.Log = stdLogger{}
	}
	return &Pool{
		depClasspath: append([]string(nil), depClasspath...),
		opts:         opts,
		cache:        classpath.DefaultArchiveCache(),
		key:          classpath.Key(depClasspath),
	}, nil
}

// Key identifies the pool's dependency classpath; pools built over the
// same ordered artifacts share a key.
func (p *Pool) Key() string { return p.key }

// Checkout returns a TaskLoader layered over a DependencyLoader for one
// task. fullClasspath is the task's complete ordered classpath, typically
// the dependency classpath plus the task's own artifacts. tempDir receives
// staged native libraries for the duration of the task. The caller must
// Close the returned loader when the task ends.
func (p *Pool) Checkout(fullClasspath []string, tempDir string) (*TaskLoader, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	if err := classpath.Validate(fullClasspath); err != nil {
		return nil, err
	}

	dep := p.slot.Swap(nil)
	if dep == nil {
		dep = newDependencyLoader(p.depClasspath, p.opts, p.cache)
	}
	dep.setup(tempDir, fullClasspath, p.cache)

	// The task layer carries the full classpath. Dependency classes still
	// resolve through the parent layer first, but post-close lookups can
	// re-read everything the task could see. The stager is the task's own:
	// closing this task must not disturb staging on a layer another task
	// may already be using.
	taskStager := native.NewStager(nil, native.SearchPath())
	taskStager.SetTempDir(tempDir)
	task := &TaskLoader{
		managed: newManaged("task", fullClasspath, p.cache, taskStager,
			p.opts.Log, p.opts.AllowZombies),
		dep:  dep,
		pool: p,
	}
	dep.descendant.Store(task)
	return task, nil
}

// checkin returns a dependency loader after its task closed. Dirty loaders
// are retired. A clean loader is parked in the slot; if another loader was
// parked in between, the newcomer stays and the previous occupant is
// closed. A pool that closed while the loader was out retires it too.
func (p *Pool) checkin(dep *DependencyLoader) {
	if dep.Dirty() || p.closed.Load() {
		_ = dep.close()
		return
	}
	prev := p.slot.Swap(dep)
	if prev != nil && prev != dep {
		_ = prev.close()
	}
	// Close may have run between the closed check and the swap; make sure
	// a loader parked after that point does not outlive the pool.
	if p.closed.Load() {
		if p.slot.CompareAndSwap(dep, nil) {
			_ = dep.close()
		}
	}
}

// Close shuts the pool down. The parked loader, if any, is closed; loaders
// still checked out are closed at their checkin. Later Checkout calls fail
// with ErrPoolClosed.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if dep := p.slot.Swap(nil); dep != nil {
		return dep.close()
	}
	return nil
}
