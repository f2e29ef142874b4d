package calibration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/hasher"
	"github.com/agbru/argontune/internal/logging"
	"github.com/agbru/argontune/internal/metrics"
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/sysmon"
)

// WarmupRounds is the number of untimed hashes run before measuring.
const WarmupRounds = 3

// DefaultSaltLength is used when RunOptions.SaltLength is zero.
const DefaultSaltLength = 16

// DefaultPlain is hashed when RunOptions.Plain is empty.
var DefaultPlain = []byte("argontune-calibration")

const tracerName = "github.com/agbru/argontune/internal/calibration"

// RunOptions configures one calibration run.
type RunOptions struct {
	// Budget is the target wall-clock time of one hash.
	Budget time.Duration
	// Variant selects the Argon2 flavour measured.
	Variant params.Variant
	// SaltLength is the length of the random salt generated for the run.
	SaltLength int
	// Plain is the input hashed on every measurement.
	Plain []byte
	// OnSample, when set, is called after every measurement.
	OnSample func(Sample) Decision
}

// Engine runs calibration searches against a hashing primitive.
type Engine struct {
	hasher  hasher.Hasher
	probe   sysmon.Probe
	logger  logging.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
	warmups int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProbe replaces the hardware probe.
func WithProbe(p sysmon.Probe) EngineOption {
	return func(e *Engine) { e.probe = p }
}

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records hash durations and run outcomes.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer replaces the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

// WithClock replaces the time source used to measure hashes.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithWarmups overrides the number of warm-up hashes.
func WithWarmups(n int) EngineOption {
	return func(e *Engine) { e.warmups = n }
}

// NewEngine creates an engine measuring h.
func NewEngine(h hasher.Hasher, opts ...EngineOption) *Engine {
	e := &Engine{
		hasher:  h,
		probe:   sysmon.Detect,
		logger:  logging.NopLogger(),
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
		warmups: WarmupRounds,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one calibration search with the given strategy and returns
// the samples in measurement order. Any primitive failure aborts the run and
// no samples are returned.
func (e *Engine) Run(ctx context.Context, strategy Strategy, opts RunOptions) (Series, error) {
	switch strategy {
	case ClosestMatch:
		return run(ctx, e, strategy, closestMatch{}, opts)
	case MaxMemory:
		return run(ctx, e, strategy, maxMemoryMarch{}, opts)
	default:
		return nil, apperrors.UnknownPolicyError{Kind: "calibration", Name: string(strategy)}
	}
}

// MaxSteps bounds the number of samples any strategy may record for limits.
func MaxSteps(limits params.Limits) int {
	return limits.MemoryCost.Span() + limits.TimeCost.Span()
}

func run[S any](ctx context.Context, e *Engine, strategy Strategy, pol policy[S], opts RunOptions) (series Series, err error) {
	if opts.Budget <= 0 {
		return nil, apperrors.ValidationError{Field: "budget", Message: "must be positive"}
	}
	if opts.SaltLength == 0 {
		opts.SaltLength = DefaultSaltLength
	}
	if len(opts.Plain) == 0 {
		opts.Plain = DefaultPlain
	}

	runID := uuid.NewString()
	ctx, span := e.tracer.Start(ctx, "calibration.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("calibration.strategy", strategy.String()),
		attribute.String("argon2.variant", opts.Variant.String()),
		attribute.Int64("budget.ms", opts.Budget.Milliseconds()),
	))
	outcome := metrics.OutcomeOK
	defer func() {
		if err != nil {
			outcome = metrics.OutcomeError
			if apperrors.IsContextError(err) {
				outcome = metrics.OutcomeCanceled
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("samples", len(series)))
		span.End()
		e.metrics.ObserveRun(strategy.String(), outcome)
	}()

	limits := e.hasher.Limits(opts.Variant)
	s := &search[S]{
		budget:   opts.Budget,
		limits:   limits,
		baseline: e.hasher.DefaultParameters(opts.Variant),
	}
	res := e.probe()
	current := pol.prepare(s, res)

	e.logger.Info("calibration started",
		logging.String("run_id", runID),
		logging.String("strategy", strategy.String()),
		logging.String("variant", opts.Variant.String()),
		logging.Duration("budget", opts.Budget),
		logging.Int("cpu_cores", res.CPUCores),
		logging.Uint64("available_kib", res.AvailableKiB()),
		logging.String("start", current.String()),
	)

	salt, err := e.hasher.GenerateSalt(ctx, opts.SaltLength)
	if err != nil {
		return nil, err
	}

	for i := 0; i < e.warmups; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := e.hasher.Hash(ctx, opts.Plain, salt, current); err != nil {
			return nil, err
		}
	}

	maxSteps := MaxSteps(limits)
	for len(series) < maxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := e.now()
		if _, err := e.hasher.Hash(ctx, opts.Plain, salt, current); err != nil {
			return nil, err
		}
		elapsed := e.now().Sub(start)

		sample := NewSample(current, elapsed)
		series = append(series, sample)
		s.elapsed += elapsed
		e.metrics.ObserveHash(opts.Variant.String(), elapsed)
		e.metrics.ObserveSample(strategy.String())
		e.logger.Debug("sample",
			logging.String("run_id", runID),
			logging.Int("step", len(series)),
			logging.Uint64("memory_kib", uint64(current.MemoryKiB())),
			logging.Uint64("time_cost", uint64(current.TimeCost)),
			logging.Int("parallelism", int(current.Parallelism)),
			logging.Duration("elapsed", elapsed),
		)

		if opts.OnSample != nil && opts.OnSample(sample) == Stop {
			outcome = metrics.OutcomeStopped
			break
		}

		next, ok := pol.next(s, sample, current)
		if !ok || pol.done(s, sample) {
			break
		}
		current = next
	}

	e.logger.Info("calibration finished",
		logging.String("run_id", runID),
		logging.Int("samples", len(series)),
		logging.Duration("measured", s.elapsed),
	)
	return series, nil
}
