package season

import (
	"crypto/sha256"
	"encoding/hex"

	"oicoach.dev/internal/persistence/snapshot"
)

// Digest is a stable hash of the full exported state, used by determinism
// tests and the week log. Snapshot JSON marshals map keys sorted, so equal
// states hash equally.
func (g *Game) Digest() string {
	body, err := snapshot.Encode(g.Export())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
