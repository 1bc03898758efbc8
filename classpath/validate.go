package classpath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks structural constraints on a classpath:
//
//   - The list must be non-empty.
//   - Each path must be non-empty.
//   - No duplicate entries (compared after absolutizing).
//
// Entries are not required to exist on disk; artifacts may be produced
// after the loader is configured. The function returns nil if everything
// looks fine, or a single aggregated error describing all issues found.
func Validate(paths []string) error {
	var errs errlist

	if len(paths) == 0 {
		errs.add("classpath must be non-empty")
	}

	seen := make(map[string]int, len(paths))
	for i, p := range paths {
		prefix := fmt.Sprintf("entries[%d]", i)
		if strings.TrimSpace(p) == "" {
			errs.add("%s: path must be non-empty", prefix)
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if j, dup := seen[abs]; dup {
			errs.add("%s: duplicate entry %q (same as entries[%d])", prefix, p, j)
			continue
		}
		seen[abs] = i
	}

	return errs.err()
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if e == nil || len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
