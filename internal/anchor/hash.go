package anchor

import (
	"encoding/hex"
	"strings"

	"github.com/jackzampolin/fingerprint/internal/fpdef"
	"lukechampine.com/blake3"
)

// ContentHash computes the BLAKE3 digest over the ordered concatenation of
// the resolved extract rules named in spec.Over, each separated by the
// fixed one-byte ASCII RS separator (spec §4.4). It reports ok=false if
// spec is nil or any named rule failed to resolve, in which case the
// caller must omit content_hash entirely while the match itself still
// stands.
func ContentHash(spec *fpdef.ContentHashSpec, resolved map[string]Resolved) (string, bool) {
	if spec == nil {
		return "", false
	}
	parts := make([]string, 0, len(spec.Over))
	for _, name := range spec.Over {
		r, ok := resolved[name]
		if !ok {
			return "", false
		}
		parts = append(parts, r.Content)
	}
	sum := blake3.Sum256([]byte(strings.Join(parts, recordSeparator)))
	return "blake3:" + hex.EncodeToString(sum[:]), true
}
