package native

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Probe verifies that the shared object at path actually loads by opening
// it with the system loader and closing the handle again. Staging a copy
// that the loader rejects would only defer the failure to first use.
func Probe(path string) error {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("dlopen %s: %w", path, err)
	}
	if err := purego.Dlclose(handle); err != nil {
		return fmt.Errorf("dlclose %s: %w", path, err)
	}
	return nil
}
