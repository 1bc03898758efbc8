// Package native stages native libraries into per-task temp directories and
// tracks every staged copy in a process-wide registry so the files are
// removed at the latest by process exit.
package native

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/dc0d/onexit"

	"classlayers/internal/sortutil"
)

// Registry is a process-wide set of staged native-library files.
type Registry struct {
	mu      sync.Mutex
	files   map[string]struct{}
	drained bool
}

// NewRegistry builds an empty registry without installing a shutdown hook.
// Intended for tests and embedded use; production code goes through
// SharedRegistry.
func NewRegistry() *Registry {
	return &Registry{files: make(map[string]struct{})}
}

var (
	sharedOnce sync.Once
	shared     *Registry
)

// SharedRegistry returns the singleton registry. The first call installs a
// one-shot exit hook that drains the registry.
func SharedRegistry() *Registry {
	sharedOnce.Do(func() {
		shared = NewRegistry()
		onexit.Register(func() { shared.Drain() })
	})
	return shared
}

// Register records a staged file. Registering after Drain is a no-op for
// bookkeeping but the caller's file is removed immediately so nothing leaks
// past shutdown.
func (r *Registry) Register(path string) {
	r.mu.Lock()
	drained := r.drained
	if !drained {
		r.files[path] = struct{}{}
	}
	r.mu.Unlock()
	if drained {
		_ = os.Remove(path)
	}
}

// Delete removes the file from disk and forgets it. Missing files are not
// an error.
func (r *Registry) Delete(path string) error {
	r.mu.Lock()
	delete(r.files, path)
	r.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Contains reports whether path is currently registered.
func (r *Registry) Contains(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.files[path]
	return ok
}

// Len returns the number of registered files.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// Drain deletes every registered file and then any containing directory
// that became empty. Runs at most once; later calls are no-ops.
func (r *Registry) Drain() {
	r.mu.Lock()
	if r.drained {
		r.mu.Unlock()
		return
	}
	r.drained = true
	files := make([]string, 0, len(r.files))
	for f := range r.files {
		files = append(files, f)
	}
	r.files = make(map[string]struct{})
	r.mu.Unlock()

	dirs := make(map[string]struct{}, len(files))
	for _, f := range sortutil.StablePathSort(files) {
		_ = os.Remove(f)
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for _, d := range sortutil.UniqueSorted(keys(dirs)) {
		removeWhileEmpty(d)
	}
}

// removeWhileEmpty removes dir and walks upward removing parents that
// became empty in turn. os.Remove fails on non-empty directories, which
// terminates the walk.
func removeWhileEmpty(dir string) {
	for dir != "" && dir != string(os.PathSeparator) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
