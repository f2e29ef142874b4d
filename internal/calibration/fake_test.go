package calibration

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/sysmon"
)

// fakeClock only moves when a fake hash advances it.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// linearCost models one hash as a quarter microsecond per KiB per pass.
func linearCost(p params.CostParameters) time.Duration {
	return time.Duration(p.MemoryKiB()) * time.Duration(p.TimeCost) * time.Microsecond / 4
}

// fakeHasher spends modeled time on the fake clock instead of hashing.
type fakeHasher struct {
	clock    *fakeClock
	cost     func(params.CostParameters) time.Duration
	defaults params.CostParameters
	limits   params.Limits
	failAt   int // 1-based Hash call that fails; 0 never fails
	saltErr  error

	hashCalls int
	measured  []params.CostParameters
}

func newFakeHasher(clock *fakeClock) *fakeHasher {
	return &fakeHasher{
		clock:    clock,
		cost:     linearCost,
		defaults: params.DefaultParameters(params.Argon2id),
		limits:   params.DefaultLimits(params.Argon2id),
	}
}

func (f *fakeHasher) Hash(_ context.Context, _, _ []byte, p params.CostParameters) ([]byte, error) {
	f.hashCalls++
	if f.failAt > 0 && f.hashCalls == f.failAt {
		return nil, apperrors.PrimitiveError{Op: "hash", Cause: apperrors.MemoryError{Requested: uint64(p.MemoryKiB()) * 1024}}
	}
	f.measured = append(f.measured, p)
	f.clock.advance(f.cost(p))
	return []byte("digest"), nil
}

func (f *fakeHasher) Verify(context.Context, []byte, []byte) (bool, error) { return true, nil }

func (f *fakeHasher) GenerateSalt(_ context.Context, n int) ([]byte, error) {
	if f.saltErr != nil {
		return nil, f.saltErr
	}
	return make([]byte, n), nil
}

func (f *fakeHasher) DefaultParameters(v params.Variant) params.CostParameters {
	d := f.defaults
	d.Variant = v
	return d
}

func (f *fakeHasher) Limits(params.Variant) params.Limits { return f.limits }

// fixedProbe reports the given cores and free memory in KiB.
func fixedProbe(cores int, freeKiB uint64) sysmon.Probe {
	return func() sysmon.Resources {
		return sysmon.Resources{CPUCores: cores, TotalMemory: freeKiB * 2048, AvailableMemory: freeKiB * 1024}
	}
}

func newTestEngine(h *fakeHasher, probe sysmon.Probe, opts ...EngineOption) *Engine {
	base := []EngineOption{WithProbe(probe), WithClock(h.clock.Now)}
	return NewEngine(h, append(base, opts...)...)
}
