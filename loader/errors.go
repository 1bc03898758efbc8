package loader

import (
	"errors"
	"fmt"
)

// ErrPoolClosed is returned by Checkout after the pool has been closed.
var ErrPoolClosed = errors.New("loader pool closed: clear caches and retry the task")

// ClassNotFoundError reports a dotted class name that no layer could
// resolve.
type ClassNotFoundError struct {
	Name string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class not found: %s", e.Name)
}

// ResourceNotFoundError reports a resource path with no match on any
// classpath entry.
type ResourceNotFoundError struct {
	Path string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Path)
}

// IsClassNotFound reports whether err is a ClassNotFoundError anywhere in
// its chain.
func IsClassNotFound(err error) bool {
	var cnf *ClassNotFoundError
	return errors.As(err, &cnf)
}

// IsResourceNotFound reports whether err is a ResourceNotFoundError
// anywhere in its chain.
func IsResourceNotFound(err error) bool {
	var rnf *ResourceNotFoundError
	return errors.As(err, &rnf)
}
