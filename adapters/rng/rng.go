package rng

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// StreamAdapter implements ports.RNGPort. Every call returns a fresh generator,
// so concurrent analyses never share random state.
type StreamAdapter struct{}

// NewStreamAdapter creates a new RNG stream adapter
func NewStreamAdapter() *StreamAdapter {
	return &StreamAdapter{}
}

// Stream creates a generator for the named operation.
func (a *StreamAdapter) Stream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seed == 0 {
		entropy, err := entropySeed()
		if err != nil {
			return nil, fmt.Errorf("failed to read entropy for %s: %w", name, err)
		}
		return rand.New(rand.NewSource(entropy)), nil
	}
	return rand.New(rand.NewSource(DeriveSeed(name, seed))), nil
}

// DeriveSeed mixes an operation name into a base seed so distinct operations
// sharing one configured seed draw distinct sequences.
func DeriveSeed(name string, seed int64) int64 {
	if name == "" {
		return seed
	}
	return int64(hashString(name)) + seed
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

func entropySeed() (int64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}
