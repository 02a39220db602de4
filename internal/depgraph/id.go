package depgraph

import (
	"crypto/sha256"
	"fmt"
)

// GenerateNodeID generates a stable ID for a reactive identifier,
// disambiguating same-named bindings in different files/positions.
// Format: <kind>:<name>:<hash>
func GenerateNodeID(kind NodeKind, name, filePath string, line uint32) string {
	data := fmt.Sprintf("%s:%s:%s:%d", kind, name, filePath, line)
	hash := sha256.Sum256([]byte(data))
	shortHash := fmt.Sprintf("%x", hash[:4])
	return fmt.Sprintf("%s:%s:%s", kind, name, shortHash)
}

// GenerateEdgeID generates a stable ID for a dependency edge.
// Format: edge:<kind>:<hash>
func GenerateEdgeID(kind EdgeKind, sourceID, targetID string) string {
	data := fmt.Sprintf("%s:%s:%s", kind, sourceID, targetID)
	hash := sha256.Sum256([]byte(data))
	shortHash := fmt.Sprintf("%x", hash[:4])
	return fmt.Sprintf("edge:%s:%s", kind, shortHash)
}
