package loader

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"classlayers/classpath"
	"classlayers/internal/diffutil"
	"classlayers/internal/jarmeta"
)

// zombieLoader serves lookups that arrive after its owner was closed. It
// consults the owner's already-defined classes first, then re-reads the
// same artifact paths fresh from disk. Definitions it creates itself live
// in its own table so post-close identity stays stable without mutating
// the closed owner.
type zombieLoader struct {
	owner *managed
	index *classpath.Index

	definedMu sync.Mutex
	defined   map[string]*Class

	warnOnce sync.Once
}

func newZombieLoader(owner *managed) *zombieLoader {
	return &zombieLoader{
		owner:   owner,
		index:   classpath.NewIndex(owner.urls, nil),
		defined: make(map[string]*Class),
	}
}

// warn emits a one-shot warning naming the goroutine and class that first
// touched the closed loader. Suppressed when the owner opted into zombie
// use.
func (z *zombieLoader) warn(name string) {
	if z.owner.allowZombies {
		return
	}
	z.warnOnce.Do(func() {
		z.owner.log.Warnf("goroutine %s loaded %s from a closed loader %s (%s)",
			goroutineID(), name, z.owner.name, z.owner.id)
	})
}

func (z *zombieLoader) loadClass(name string) (*Class, error) {
	z.warn(name)
	if c := z.owner.findLoaded(name); c != nil {
		return c, nil
	}
	z.definedMu.Lock()
	if c, ok := z.defined[name]; ok {
		z.definedMu.Unlock()
		return c, nil
	}
	z.definedMu.Unlock()

	data, origin, ok, err := z.index.Class(name)
	if err != nil {
		z.reportMissing(name, err)
		return nil, err
	}
	if !ok {
		z.reportMissing(name, nil)
		return nil, &ClassNotFoundError{Name: name}
	}

	z.definedMu.Lock()
	defer z.definedMu.Unlock()
	if c, ok := z.defined[name]; ok {
		return c, nil
	}
	c := &Class{Name: name, Bytes: data, Origin: origin}
	z.defined[name] = c
	return c, nil
}

func (z *zombieLoader) close() error {
	return z.index.Close()
}

func (z *zombieLoader) findResource(path string) ([]byte, error) {
	z.warn(path)
	data, _, ok, err := z.index.Resource(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ResourceNotFoundError{Path: path}
	}
	return data, nil
}

// reportMissing writes a diagnostic to stderr when a post-close lookup
// fails, listing which configured artifacts have vanished from disk. A
// common cause is a cleanup hook racing the lookup.
func (z *zombieLoader) reportMissing(name string, cause error) {
	missing := z.index.Missing()
	if len(missing) == 0 {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "zombie lookup of %s on closed loader %s failed", name, z.owner.name)
	if cause != nil {
		fmt.Fprintf(&b, ": %v", cause)
	}
	b.WriteString("\nmissing classpath entries (possibly deleted by a shutdown hook):\n")
	for _, p := range missing {
		fmt.Fprintf(&b, "  %s", p)
		if info, ok := jarmeta.Read(p); ok {
			fmt.Fprintf(&b, " (%s)", info)
		}
		b.WriteByte('\n')
	}
	if d := diffutil.Lists("configured", "present", z.index.Paths(), z.index.Present()); d != "" {
		b.WriteString(d)
	}
	fmt.Fprint(os.Stderr, b.String())
}

// goroutineID extracts the numeric goroutine id from a stack header. Used
// only in warnings; never for synchronization.
func goroutineID() string {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	// Header shape: "goroutine 123 [running]:".
	fields := bytes.Fields(buf)
	if len(fields) >= 2 {
		return string(fields[1])
	}
	return "?"
}
