package service

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// hashContent fingerprints file content for snapshot deduplication.
func hashContent(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
