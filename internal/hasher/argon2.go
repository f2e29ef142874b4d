package hasher

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/params"
)

// Argon2 implements Hasher with golang.org/x/crypto/argon2.
//
// Non-raw digests use the PHC string format
// $argon2id$v=19$m=<KiB>,t=<passes>,p=<lanes>$<salt>$<hash>
// so they can be verified without out-of-band parameters.
type Argon2 struct {
	maxMemoryKiB uint64
	random       io.Reader
}

// Option configures an Argon2 hasher.
type Option func(*Argon2)

// WithMaxMemoryKiB refuses any hash whose memory exceeds kib. Zero disables the check.
func WithMaxMemoryKiB(kib uint64) Option {
	return func(a *Argon2) { a.maxMemoryKiB = kib }
}

// WithRandom replaces the salt source. Intended for tests.
func WithRandom(r io.Reader) Option {
	return func(a *Argon2) { a.random = r }
}

// NewArgon2 builds an Argon2 primitive.
func NewArgon2(opts ...Option) *Argon2 {
	a := &Argon2{random: rand.Reader}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ Hasher = (*Argon2)(nil)

// DefaultParameters returns params.DefaultParameters(v).
func (a *Argon2) DefaultParameters(v params.Variant) params.CostParameters {
	return params.DefaultParameters(v)
}

// Limits returns params.DefaultLimits(v).
func (a *Argon2) Limits(v params.Variant) params.Limits {
	return params.DefaultLimits(v)
}

// GenerateSalt reads n bytes from the configured random source.
func (a *Argon2) GenerateSalt(ctx context.Context, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.PrimitiveError{Op: "salt", Cause: err}
	}
	if n <= 0 {
		return nil, apperrors.PrimitiveError{Op: "salt", Cause: apperrors.ValidationError{Field: "saltLength", Message: "must be positive"}}
	}
	salt := make([]byte, n)
	if _, err := io.ReadFull(a.random, salt); err != nil {
		return nil, apperrors.PrimitiveError{Op: "salt", Cause: err}
	}
	return salt, nil
}

// Hash computes the Argon2 digest of plain. It returns the raw key when
// p.RawOutput is set and a PHC string otherwise.
func (a *Argon2) Hash(ctx context.Context, plain, salt []byte, p params.CostParameters) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.PrimitiveError{Op: "hash", Cause: err}
	}
	if len(salt) == 0 {
		return nil, apperrors.PrimitiveError{Op: "hash", Cause: apperrors.ValidationError{Field: "salt", Message: "must not be empty"}}
	}
	if err := a.admit(p, p.MemoryKiB()); err != nil {
		return nil, apperrors.PrimitiveError{Op: "hash", Cause: err}
	}

	key, err := derive(p.Variant, plain, salt, p.TimeCost, p.MemoryKiB(), p.Parallelism, p.HashLength)
	if err != nil {
		return nil, apperrors.PrimitiveError{Op: "hash", Cause: err}
	}
	if p.RawOutput {
		return key, nil
	}
	return []byte(encodePHC(p, salt, key)), nil
}

// Verify recomputes a PHC digest from plain and compares in constant time.
// Raw digests carry no parameters and cannot be verified.
func (a *Argon2) Verify(ctx context.Context, digest, plain []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.PrimitiveError{Op: "verify", Cause: err}
	}
	parsed, err := parsePHC(string(digest))
	if err != nil {
		return false, apperrors.PrimitiveError{Op: "verify", Cause: err}
	}
	// The digest is untrusted input: its cost must pass the same bounds as
	// Hash before any memory is allocated.
	cost := params.CostParameters{
		HashLength:  uint32(len(parsed.hash)),
		TimeCost:    parsed.time,
		MemoryCost:  params.MemoryExponent(uint64(parsed.memory)),
		Parallelism: parsed.parallelism,
		Variant:     parsed.variant,
	}
	if err := a.admit(cost, parsed.memory); err != nil {
		return false, apperrors.PrimitiveError{Op: "verify", Cause: err}
	}
	computed, err := derive(parsed.variant, plain, parsed.salt, parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.hash)))
	if err != nil {
		return false, apperrors.PrimitiveError{Op: "verify", Cause: err}
	}
	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1, nil
}

// admit checks p against the primitive limits and the configured memory
// ceiling. memoryKiB is passed separately because a PHC digest may carry a
// size that is not a power of two.
func (a *Argon2) admit(p params.CostParameters, memoryKiB uint32) error {
	limits := a.Limits(p.Variant)
	if err := params.Validate(p, limits); err != nil {
		return err
	}
	if uint64(memoryKiB) > uint64(1)<<limits.MemoryCost.Max {
		return apperrors.ValidationError{Field: "memoryCost", Message: fmt.Sprintf("%d KiB exceeds 2^%d KiB", memoryKiB, limits.MemoryCost.Max)}
	}
	if a.maxMemoryKiB > 0 && uint64(memoryKiB) > a.maxMemoryKiB {
		return apperrors.MemoryError{
			Requested: uint64(memoryKiB) * 1024,
			Available: a.maxMemoryKiB * 1024,
			Limit:     a.maxMemoryKiB * 1024,
		}
	}
	return nil
}

func derive(v params.Variant, plain, salt []byte, time, memoryKiB uint32, threads uint8, keyLen uint32) ([]byte, error) {
	switch v {
	case params.Argon2i:
		return argon2.Key(plain, salt, time, memoryKiB, threads, keyLen), nil
	case params.Argon2id:
		return argon2.IDKey(plain, salt, time, memoryKiB, threads, keyLen), nil
	default:
		return nil, apperrors.UnknownPolicyError{Kind: "variant", Name: v.String()}
	}
}

func encodePHC(p params.CostParameters, salt, key []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		p.Variant,
		argon2.Version,
		p.MemoryKiB(),
		p.TimeCost,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

type parsedPHC struct {
	variant     params.Variant
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

var errRawDigest = errors.New("digest is not a PHC string (raw output cannot be verified)")

func parsePHC(encoded string) (*parsedPHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errRawDigest
	}

	variant, err := params.ParseVariant(parts[1])
	if err != nil {
		return nil, err
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	out := &parsedPHC{variant: variant}
	var memorySet, timeSet, parallelismSet bool
	for _, pair := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.New("invalid parameter entry")
		}
		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return nil, errors.New("invalid memory parameter")
			}
			out.memory, memorySet = uint32(v), true
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 {
				return nil, errors.New("invalid time parameter")
			}
			out.time, timeSet = uint32(v), true
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v == 0 {
				return nil, errors.New("invalid parallelism parameter")
			}
			out.parallelism, parallelismSet = uint8(v), true
		default:
			return nil, fmt.Errorf("unsupported parameter %q", key)
		}
	}
	if !memorySet || !timeSet || !parallelismSet {
		return nil, errors.New("missing parameters")
	}

	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if out.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.hash) == 0 {
		return nil, errors.New("invalid hash encoding")
	}
	return out, nil
}
