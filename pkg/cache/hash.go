package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// keyVersion is folded into every hashed key. Bumping it when the key
// schema or option structs change turns all older entries into misses
// instead of stale hits.
const keyVersion = "v1"

// hashKey builds a stage-prefixed cache key: stage:sha256(version, input
// hash, options). The options structs serialize deterministically, so two
// runs with identical inputs and options always share a key.
func hashKey(stage, inputHash string, opts any) string {
	payload, _ := json.Marshal(struct {
		Version string `json:"v"`
		Input   string `json:"input"`
		Opts    any    `json:"opts"`
	}{keyVersion, inputHash, opts})
	sum := sha256.Sum256(payload)
	return stage + ":" + hex.EncodeToString(sum[:])
}

// Hash computes the SHA-256 content hash used throughout the pipeline for
// source documents, graph documents, and diagram documents.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
