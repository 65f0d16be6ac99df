package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
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

// Short returns the first 12 hex digits, enough to tell inputs apart in logs.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// HashRows fingerprints numeric input row by row. Row boundaries are part of the
// hash, so [[1,2],[3]] and [[1],[2,3]] differ.
func HashRows(kind AnalysisKind, rows ...[]float64) Hash {
	buf := make([]byte, 0, 64)
	buf = append(buf, kind...)
	buf = append(buf, 0)
	var word [8]byte
	for _, row := range rows {
		binary.LittleEndian.PutUint64(word[:], uint64(len(row)))
		buf = append(buf, word[:]...)
		for _, v := range row {
			binary.LittleEndian.PutUint64(word[:], math.Float64bits(v))
			buf = append(buf, word[:]...)
		}
	}
	return NewHash(buf)
}
