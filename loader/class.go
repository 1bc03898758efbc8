// Package loader implements layered class loading over ordered artifact
// classpaths. A Pool hands out a cacheable dependency layer; each task gets
// its own short-lived layer on top, with a reverse-lookup edge from parent
// to child and zombie fallbacks for lookups that arrive after close.
package loader

import (
	"log"
)

// Class is a loaded class definition. Identity is pointer identity: two
// lookups that return the same *Class were served by the same loader from
// the same definition.
type Class struct {
	// Name is the dotted binary name, e.g. "com.example.Main".
	Name string
	// Bytes holds the raw definition as read from the artifact.
	Bytes []byte
	// Origin is the classpath entry the definition came from.
	Origin string
}

// ClassLoader resolves dotted class names and slash resource paths.
type ClassLoader interface {
	// LoadClass resolves name through the loader's delegation chain.
	// resolve is accepted for interface parity with linking loaders and
	// has no effect here.
	LoadClass(name string, resolve bool) (*Class, error)

	// FindResource returns the raw bytes of a resource path, or a
	// ResourceNotFoundError.
	FindResource(path string) ([]byte, error)
}

// Logger receives warnings about suspicious lifecycle events, such as
// lookups on closed loaders. The zero value of Options installs a stdlib
// logger writing to stderr.
type Logger interface {
	Warnf(format string, args ...any)
}

type stdLogger struct{}

func (stdLogger) Warnf(format string, args ...any) {
	log.Printf("WARN "+format, args...)
}
