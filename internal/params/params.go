// Package params models the Argon2 cost-parameter space: the tunable knobs,
// their per-variant defaults and hard limits, and the derived work-factor
// score used to compare parameter sets.
package params

import (
	"fmt"
	"math/bits"
	"strings"

	apperrors "github.com/agbru/argontune/internal/errors"
)

// Variant identifies an Argon2 flavour.
type Variant int

const (
	// Argon2i uses data-independent memory access.
	Argon2i Variant = iota
	// Argon2id mixes data-independent and data-dependent passes.
	Argon2id
)

// Variants lists every supported variant in declaration order.
var Variants = []Variant{Argon2i, Argon2id}

// String returns the PHC identifier of the variant.
func (v Variant) String() string {
	switch v {
	case Argon2i:
		return "argon2i"
	case Argon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant maps a PHC identifier to a Variant.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "argon2i", "i":
		return Argon2i, nil
	case "argon2id", "id":
		return Argon2id, nil
	}
	return 0, apperrors.UnknownPolicyError{Kind: "variant", Name: name}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// CostParameters is one point of the parameter space.
//
// MemoryCost is a base-2 exponent of the memory size in KiB, never a byte
// count: MemoryCost 16 means 64 MiB.
type CostParameters struct {
	HashLength  uint32  `json:"hashLength"`
	TimeCost    uint32  `json:"timeCost"`
	MemoryCost  uint32  `json:"memoryCost"`
	Parallelism uint8   `json:"parallelism"`
	Variant     Variant `json:"variant"`
	RawOutput   bool    `json:"raw"`
}

// MemoryKiB returns the memory size in KiB encoded by MemoryCost.
func (p CostParameters) MemoryKiB() uint32 {
	if p.MemoryCost >= 32 {
		return 1<<32 - 1
	}
	return 1 << p.MemoryCost
}

// DerivedCost is the unit-less work-factor proxy
// MemoryCost × Parallelism × TimeCost. It grows monotonically with each knob.
func (p CostParameters) DerivedCost() uint64 {
	return uint64(p.MemoryCost) * uint64(p.Parallelism) * uint64(p.TimeCost)
}

func (p CostParameters) String() string {
	return fmt.Sprintf("%s m=2^%d (%d KiB) t=%d p=%d len=%d",
		p.Variant, p.MemoryCost, p.MemoryKiB(), p.TimeCost, p.Parallelism, p.HashLength)
}

// Limit is an inclusive [Min, Max] range for one knob.
type Limit struct {
	Min uint32 `json:"min"`
	Max uint32 `json:"max"`
}

// Contains reports whether v lies within the limit.
func (l Limit) Contains(v uint32) bool { return v >= l.Min && v <= l.Max }

// Clamp returns v forced into the limit.
func (l Limit) Clamp(v uint32) uint32 {
	switch {
	case v < l.Min:
		return l.Min
	case v > l.Max:
		return l.Max
	}
	return v
}

// Span is the number of integer values the limit admits.
func (l Limit) Span() int {
	if l.Max < l.Min {
		return 0
	}
	return int(l.Max-l.Min) + 1
}

// Limits groups the hard bounds of every tunable knob. Values are supplied
// by the hashing primitive and never change during a process lifetime.
type Limits struct {
	HashLength  Limit `json:"hashLength"`
	MemoryCost  Limit `json:"memoryCost"`
	TimeCost    Limit `json:"timeCost"`
	Parallelism Limit `json:"parallelism"`
}

// DefaultParameters returns the starting point of a calibration run.
func DefaultParameters(v Variant) CostParameters {
	return CostParameters{
		HashLength:  32,
		TimeCost:    3,
		MemoryCost:  12,
		Parallelism: 1,
		Variant:     v,
	}
}

// DefaultLimits returns the bounds accepted by golang.org/x/crypto/argon2.
// Parallelism is capped by its uint8 thread count; memory stays below the
// uint32 KiB argument.
func DefaultLimits(Variant) Limits {
	return Limits{
		HashLength:  Limit{Min: 4, Max: 1024},
		MemoryCost:  Limit{Min: 3, Max: 31},
		TimeCost:    Limit{Min: 1, Max: 4096},
		Parallelism: Limit{Min: 1, Max: 255},
	}
}

// InBounds reports whether every knob of p lies within l.
func InBounds(p CostParameters, l Limits) bool {
	return Validate(p, l) == nil
}

// Validate returns a ValidationError naming the first knob outside l.
func Validate(p CostParameters, l Limits) error {
	checks := []struct {
		field string
		value uint32
		limit Limit
	}{
		{"hashLength", p.HashLength, l.HashLength},
		{"memoryCost", p.MemoryCost, l.MemoryCost},
		{"timeCost", p.TimeCost, l.TimeCost},
		{"parallelism", uint32(p.Parallelism), l.Parallelism},
	}
	for _, c := range checks {
		if !c.limit.Contains(c.value) {
			return apperrors.ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("%d is outside [%d, %d]", c.value, c.limit.Min, c.limit.Max),
			}
		}
	}
	return nil
}

// MemoryExponent returns floor(log2(kib)), the largest MemoryCost whose
// memory size fits in kib KiB. It returns 0 for kib == 0.
func MemoryExponent(kib uint64) uint32 {
	if kib == 0 {
		return 0
	}
	return uint32(bits.Len64(kib) - 1)
}
