package app

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"

	"depscan/internal/requirement"
)

// SpecCache stores a previous resolution keyed by CacheKey. Implementations
// live outside this core; the pipeline tolerates an absent or corrupt entry
// by proceeding as if none existed.
type SpecCache interface {
	Load(key string) (*Resolution, bool)
	Store(key string, res *Resolution) error
}

// Confirmer may present a resolution to a human and return an edited
// explicit set, which the pipeline accepts verbatim. Returning a nil set
// keeps the computed one.
type Confirmer interface {
	Confirm(res *Resolution) (*requirement.Set, error)
}

// CacheKey derives a stable cache key from the scanned root's absolute
// path.
func CacheKey(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha1.Sum([]byte(abs))
	return hex.EncodeToString(sum[:])
}
