// Package metacache implements the process-wide module-metadata cache
// spec.md §5 describes: a cross-file store of each module's signal/
// memo/alias classification, keyed by file path and content hash.
// Nothing in the compiler or the CLI reads or fills it, and the package
// offers no adapter to compiler.Options.ResolveModuleMetadata.
package metacache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/oskari/fictc/internal/compiler"
)

// HashContent returns the stable content hash Get/Put key entries by.
func HashContent(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Entry is one module's cached classification plus the content hash it
// was computed from, so a stale cache entry (source changed since last
// compile) can be detected and discarded.
type Entry struct {
	ContentHash string
	Metadata    compiler.ModuleMetadata
}

// Cache stores and retrieves Entries across compiles. Get reports
// whether a fresh entry exists for (path, contentHash); a hash mismatch
// is treated as a miss.
type Cache interface {
	Get(path, contentHash string) (compiler.ModuleMetadata, bool)
	Put(path, contentHash string, metadata compiler.ModuleMetadata) error
	Close() error
}
