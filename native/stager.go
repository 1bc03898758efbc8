package native

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// EnvSearchPath names the environment variable holding the OS-specific
// search path for native libraries.
const EnvSearchPath = "CLASSLAYERS_NATIVE_PATH"

// ErrStagerClosed is returned by FindLibrary after Teardown, and before
// the first SetTempDir installs a staging directory.
var ErrStagerClosed = errors.New("native stager has no staging directory")

// StagingError reports a library that was found on the search path but
// could not be staged or loaded.
type StagingError struct {
	Library string
	Source  string
	Err     error
}

func (e *StagingError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("stage native library %s: %v", e.Library, e.Err)
	}
	return fmt.Sprintf("stage native library %s from %s: %v", e.Library, e.Source, e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }

// Stager copies native libraries from a fixed search path into a per-task
// temp directory so each consumer loads its own private copy. Every staged
// copy is recorded in the registry for cleanup at process exit.
type Stager struct {
	mu       sync.Mutex
	registry *Registry
	search   []string
	tempDir  string
	mapped   map[string]string
	probe    func(path string) error
}

// NewStager builds a stager over the given search directories. registry may
// be nil, in which case the shared registry is used. The initial temp
// directory is unset; callers install one with SetTempDir before lookups.
func NewStager(registry *Registry, search []string) *Stager {
	if registry == nil {
		registry = SharedRegistry()
	}
	return &Stager{
		registry: registry,
		search:   append([]string(nil), search...),
		mapped:   make(map[string]string),
		probe:    Probe,
	}
}

// SearchPath reads the configured library search path from the environment,
// split on the platform list separator with empty segments dropped.
func SearchPath() []string {
	raw := os.Getenv(EnvSearchPath)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, string(os.PathListSeparator)) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PlatformLibraryName maps a bare library name to the file name the current
// platform uses for shared objects.
func PlatformLibraryName(name string) string {
	switch runtime.GOOS {
	case "windows":
		return name + ".dll"
	case "darwin":
		return "lib" + name + ".dylib"
	default:
		return "lib" + name + ".so"
	}
}

// FindLibrary locates name on the search path, stages a private copy into
// the current temp directory and returns the staged path. The same name
// asked twice returns the same copy. A library absent from every search
// directory returns ok=false with no error; a library that is present but
// cannot be copied or loaded returns a StagingError and is not recorded,
// so a later call may retry.
func (s *Stager) FindLibrary(name string) (path string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, hit := s.mapped[name]; hit {
		return p, true, nil
	}
	if s.tempDir == "" {
		return "", false, &StagingError{Library: name, Err: ErrStagerClosed}
	}

	file := PlatformLibraryName(name)
	var src string
	for _, dir := range s.search {
		cand := filepath.Join(dir, file)
		if st, err := os.Stat(cand); err == nil && !st.IsDir() {
			src = cand
			break
		}
	}
	if src == "" {
		return "", false, nil
	}

	dst := filepath.Join(s.tempDir, file)
	if err := stageCopy(src, dst); err != nil {
		return "", false, &StagingError{Library: name, Source: src, Err: err}
	}
	s.registry.Register(dst)
	if s.probe != nil {
		if err := s.probe(dst); err != nil {
			_ = s.registry.Delete(dst)
			return "", false, &StagingError{Library: name, Source: src, Err: err}
		}
	}
	s.mapped[name] = dst
	return dst, true, nil
}

// SetTempDir discards every staged copy and directs future staging into
// dir. Safe to call between tasks that reuse the same stager.
func (s *Stager) SetTempDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.mapped {
		_ = s.registry.Delete(p)
	}
	s.mapped = make(map[string]string)
	s.tempDir = dir
}

// Teardown removes all staged copies and rejects further staging.
func (s *Stager) Teardown() {
	s.SetTempDir("")
}

// stageCopy writes src to dst via a temp file in the destination directory
// and an atomic rename, so a concurrent reader never sees a partial copy.
func stageCopy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
