package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream creates a random number generator for a named operation.
	// The same name and non-zero seed always yield the same sequence; a zero
	// seed asks for an entropy-seeded generator.
	Stream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
