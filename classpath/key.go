package classpath

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Key returns a short, stable identifier for an ordered classpath. Paths
// are absolutized first so the same artifacts reached through different
// working directories share a key. We use sha256 over the joined list and
// keep the first 12 hex chars for a short key.
func Key(paths []string) string {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		a, err := filepath.Abs(p)
		if err != nil {
			a = p
		}
		abs = append(abs, a)
	}
	sum := sha256.Sum256([]byte(strings.Join(abs, "\x00")))
	return hex.EncodeToString(sum[:])[:12]
}
