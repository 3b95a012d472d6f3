package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash represents a cryptographic content hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ContentHash hashes the canonical JSON serialization of the given values,
// in argument order. Equal inputs always hash equal; map keys are sorted by
// the JSON encoder so the serialization is deterministic.
func ContentHash(parts ...interface{}) Hash {
	var data []byte
	for _, part := range parts {
		raw, err := json.Marshal(part)
		if err != nil {
			// Unmarshalable parts degrade to their type-default encoding
			// rather than poisoning the whole hash.
			raw = []byte("null")
		}
		data = append(data, raw...)
		data = append(data, '\n')
	}
	return NewHash(data)
}
