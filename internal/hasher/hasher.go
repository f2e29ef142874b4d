//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks

// Package hasher wraps the Argon2 password-hashing primitive behind the
// small capability set the calibration engine needs: hash, verify, salt
// generation and the static parameter space of each variant.
package hasher

import (
	"context"

	"github.com/agbru/argontune/internal/params"
)

// Hasher is the hashing primitive consumed by calibration.
//
// Hash and Verify block for the whole native computation; a started call
// cannot be interrupted, the context is only consulted before work begins.
type Hasher interface {
	// Hash derives a digest of plain with salt under p.
	Hash(ctx context.Context, plain, salt []byte, p params.CostParameters) ([]byte, error)
	// Verify reports whether digest was produced from plain.
	Verify(ctx context.Context, digest, plain []byte) (bool, error)
	// GenerateSalt returns n cryptographically random bytes.
	GenerateSalt(ctx context.Context, n int) ([]byte, error)
	// DefaultParameters returns the starting point for variant v.
	DefaultParameters(v params.Variant) params.CostParameters
	// Limits returns the hard bounds for variant v.
	Limits(v params.Variant) params.Limits
}
