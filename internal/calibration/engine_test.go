package calibration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/metrics"
	"github.com/agbru/argontune/internal/params"
)

const budget = 100 * time.Millisecond

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"closest-match", ClosestMatch, false},
		{"  MAX-MEMORY ", MaxMemory, false},
		{"fastest", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.input, got, tt.want)
		}
		var upe apperrors.UnknownPolicyError
		if tt.wantErr && !errors.As(err, &upe) {
			t.Errorf("ParseStrategy(%q) error should be UnknownPolicyError, got %T", tt.input, err)
		}
	}
}

func TestClosestMatchStaircase(t *testing.T) {
	t.Parallel()
	h := newFakeHasher(newFakeClock())
	e := newTestEngine(h, fixedProbe(4, 1<<20))

	series, err := e.Run(context.Background(), ClosestMatch, RunOptions{Budget: budget, Variant: params.Argon2id})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// Levels 2^12..2^17 KiB climb timeCost until overshoot; 2^18 and 2^19
	// overshoot on their first attempt and end the search.
	if len(series) != 186 {
		t.Errorf("len(series) = %d, want 186", len(series))
	}
	last := series[len(series)-1]
	if last.Params.MemoryCost != 19 || last.Params.TimeCost != 3 {
		t.Errorf("last sample = %s, want m=2^19 t=3", last.Params)
	}
	for i, s := range series {
		if s.Params.Parallelism != 8 {
			t.Fatalf("sample %d parallelism = %d, want 8", i, s.Params.Parallelism)
		}
		if s.Cost != s.Params.DerivedCost() {
			t.Fatalf("sample %d cost = %d, want %d", i, s.Cost, s.Params.DerivedCost())
		}
	}
}

func TestClosestMatchStopsAtMemoryCeiling(t *testing.T) {
	t.Parallel()
	h := newFakeHasher(newFakeClock())
	e := newTestEngine(h, fixedProbe(1, 1<<14))

	series, err := e.Run(context.Background(), ClosestMatch, RunOptions{Budget: budget, Variant: params.Argon2i})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(series) != 166 {
		t.Errorf("len(series) = %d, want 166", len(series))
	}
	for _, s := range series {
		if s.Params.MemoryCost > 14 {
			t.Fatalf("sample above memory ceiling: %s", s.Params)
		}
		if s.Params.Variant != params.Argon2i {
			t.Fatalf("sample variant = %s", s.Params.Variant)
		}
	}
	if last := series[len(series)-1]; last.Elapsed <= budget {
		t.Errorf("last sample should overshoot, got %s", last.Elapsed)
	}
}

func TestMaxMemoryMarch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		freeKiB     uint64
		wantSamples int
		wantLast    [2]uint32 // memoryCost, timeCost
	}{
		{"memory alone reaches budget", 1 << 20, 7, [2]uint32{18, 3}},
		{"ceiling then time", 1 << 16, 9, [2]uint32{16, 7}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newFakeHasher(newFakeClock())
			e := newTestEngine(h, fixedProbe(2, tt.freeKiB))

			series, err := e.Run(context.Background(), MaxMemory, RunOptions{Budget: budget})
			if err != nil {
				t.Fatalf("Run error: %v", err)
			}
			if len(series) != tt.wantSamples {
				t.Fatalf("len(series) = %d, want %d", len(series), tt.wantSamples)
			}
			last := series[len(series)-1].Params
			if last.MemoryCost != tt.wantLast[0] || last.TimeCost != tt.wantLast[1] {
				t.Errorf("last = m=%d t=%d, want m=%d t=%d", last.MemoryCost, last.TimeCost, tt.wantLast[0], tt.wantLast[1])
			}
			for i := 1; i < len(series); i++ {
				if series[i].Cost <= series[i-1].Cost {
					t.Fatalf("march should strictly raise cost: %s then %s", series[i-1].Params, series[i].Params)
				}
			}
		})
	}
}

func TestMaxMemoryExhaustsSearchSpace(t *testing.T) {
	t.Parallel()
	h := newFakeHasher(newFakeClock())
	h.defaults = params.CostParameters{HashLength: 32, TimeCost: 1, MemoryCost: 3, Parallelism: 1}
	h.limits = params.Limits{
		HashLength:  params.Limit{Min: 4, Max: 64},
		MemoryCost:  params.Limit{Min: 3, Max: 5},
		TimeCost:    params.Limit{Min: 1, Max: 4},
		Parallelism: params.Limit{Min: 1, Max: 4},
	}
	e := newTestEngine(h, fixedProbe(8, 1<<30))

	series, err := e.Run(context.Background(), MaxMemory, RunOptions{Budget: time.Hour})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(series) != 6 {
		t.Fatalf("len(series) = %d, want 6", len(series))
	}
	if max := MaxSteps(h.limits); len(series) > max {
		t.Errorf("len(series) = %d exceeds bound %d", len(series), max)
	}
	last := series[len(series)-1].Params
	if last.MemoryCost != 5 || last.TimeCost != 4 || last.Parallelism != 4 {
		t.Errorf("last = %s, want m=2^5 t=4 p=4", last)
	}
}

func TestClosestMatchRespectsStepCap(t *testing.T) {
	t.Parallel()
	h := newFakeHasher(newFakeClock())
	h.cost = func(params.CostParameters) time.Duration { return time.Microsecond }
	e := newTestEngine(h, fixedProbe(1, 1<<20))

	series, err := e.Run(context.Background(), ClosestMatch, RunOptions{Budget: time.Hour})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(series) != MaxSteps(h.limits) {
		t.Errorf("len(series) = %d, want cap %d", len(series), MaxSteps(h.limits))
	}
}

func TestRunWarmsUpBeforeMeasuring(t *testing.T) {
	t.Parallel()
	h := newFakeHasher(newFakeClock())
	e := newTestEngine(h, fixedProbe(2, 1<<20))

	series, err := e.Run(context.Background(), MaxMemory, RunOptions{Budget: budget})
	if err != nil {
		t.Fatal(err)
	}
	if h.hashCalls != WarmupRounds+len(series) {
		t.Errorf("hash calls = %d, want %d", h.hashCalls, WarmupRounds+len(series))
	}
	for i := 0; i < WarmupRounds; i++ {
		if h.measured[i] != series[0].Params {
			t.Errorf("warm-up %d used %s, want %s", i, h.measured[i], series[0].Params)
		}
	}
}

func TestOnSampleStop(t *testing.T) {
	t.Parallel()
	h := newFakeHasher(newFakeClock())
	e := newTestEngine(h, fixedProbe(2, 1<<20))

	var seen []Sample
	series, err := e.Run(context.Background(), ClosestMatch, RunOptions{
		Budget: budget,
		OnSample: func(s Sample) Decision {
			seen = append(seen, s)
			if len(seen) == 2 {
				return Stop
			}
			return Continue
		},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(series) != 2 || len(seen) != 2 {
		t.Fatalf("got %d samples, %d callbacks; want 2 and 2", len(series), len(seen))
	}
	if seen[1] != series[1] {
		t.Errorf("callback saw %v, series holds %v", seen[1], series[1])
	}
}

func TestRunCanceledBetweenMeasurements(t *testing.T) {
	t.Parallel()
	h := newFakeHasher(newFakeClock())
	e := newTestEngine(h, fixedProbe(2, 1<<20))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	series, err := e.Run(ctx, ClosestMatch, RunOptions{
		Budget: budget,
		OnSample: func(Sample) Decision {
			cancel()
			return Continue
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if series != nil {
		t.Errorf("canceled run returned %d samples", len(series))
	}
}

func TestPrimitiveFailureAbortsRun(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		failAt int
	}{
		{"during warm-up", 2},
		{"during measurement", WarmupRounds + 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newFakeHasher(newFakeClock())
			h.failAt = tt.failAt
			e := newTestEngine(h, fixedProbe(2, 1<<20))

			series, err := e.Run(context.Background(), ClosestMatch, RunOptions{Budget: budget})
			var primErr apperrors.PrimitiveError
			if !errors.As(err, &primErr) {
				t.Fatalf("expected PrimitiveError, got %v", err)
			}
			var memErr apperrors.MemoryError
			if !errors.As(err, &memErr) {
				t.Errorf("cause should be preserved, got %v", err)
			}
			if series != nil {
				t.Errorf("failed run returned %d samples", len(series))
			}
		})
	}
}

func TestSaltFailureAbortsRun(t *testing.T) {
	t.Parallel()
	h := newFakeHasher(newFakeClock())
	h.saltErr = apperrors.PrimitiveError{Op: "salt", Cause: errors.New("entropy exhausted")}
	e := newTestEngine(h, fixedProbe(2, 1<<20))

	if _, err := e.Run(context.Background(), MaxMemory, RunOptions{Budget: budget}); !errors.Is(err, h.saltErr) {
		t.Fatalf("expected salt error, got %v", err)
	}
	if h.hashCalls != 0 {
		t.Errorf("no hash should run without a salt, got %d", h.hashCalls)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Parallel()
	e := newTestEngine(newFakeHasher(newFakeClock()), fixedProbe(2, 1<<20))

	_, err := e.Run(context.Background(), Strategy("random-walk"), RunOptions{Budget: budget})
	var upe apperrors.UnknownPolicyError
	if !errors.As(err, &upe) || upe.Kind != "calibration" {
		t.Errorf("unknown strategy: got %v", err)
	}

	_, err = e.Run(context.Background(), ClosestMatch, RunOptions{Budget: 0})
	var verr apperrors.ValidationError
	if !errors.As(err, &verr) || verr.Field != "budget" {
		t.Errorf("zero budget: got %v", err)
	}
}

func TestInitialBounds(t *testing.T) {
	t.Parallel()
	limits := params.DefaultLimits(params.Argon2id)
	base := params.DefaultParameters(params.Argon2id)

	tests := []struct {
		name            string
		cores           int
		freeKiB         uint64
		wantParallelism uint8
		wantCeiling     uint32
		wantMemory      uint32
	}{
		{"typical", 4, 1 << 20, 8, 20, 12},
		{"many cores", 200, 1 << 20, 255, 20, 12},
		{"no core info", 0, 1 << 20, 2, 20, 12},
		{"low memory", 2, 1 << 10, 4, 10, 10},
		{"tiny memory", 2, 4, 4, 3, 3},
		{"unknown memory", 2, 0, 4, 12, 12},
		{"huge memory", 2, 1 << 40, 4, 31, 12},
	}
	for _, tt := range tests {
		res := fixedProbe(tt.cores, tt.freeKiB)()
		got, ceiling := initialBounds(base, limits, res)
		if got.Parallelism != tt.wantParallelism {
			t.Errorf("%s: parallelism = %d, want %d", tt.name, got.Parallelism, tt.wantParallelism)
		}
		if ceiling != tt.wantCeiling {
			t.Errorf("%s: ceiling = %d, want %d", tt.name, ceiling, tt.wantCeiling)
		}
		if got.MemoryCost != tt.wantMemory {
			t.Errorf("%s: memoryCost = %d, want %d", tt.name, got.MemoryCost, tt.wantMemory)
		}
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	h := newFakeHasher(newFakeClock())
	e := newTestEngine(h, fixedProbe(2, 1<<20), WithMetrics(m))

	if _, err := e.Run(context.Background(), MaxMemory, RunOptions{Budget: budget}); err != nil {
		t.Fatal(err)
	}
	n, err := testutil.GatherAndCount(m.Registry(), "argontune_samples_total", "argontune_calibration_runs_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("metric series = %d, want 2", n)
	}
}
