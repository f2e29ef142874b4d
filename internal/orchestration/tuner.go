package orchestration

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/argontune/internal/calibration"
	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/hasher"
	"github.com/agbru/argontune/internal/logging"
	"github.com/agbru/argontune/internal/metrics"
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/selection"
	"github.com/agbru/argontune/internal/store"
)

// Defaults applied by Request.withDefaults.
const (
	DefaultBudget      = 100 * time.Millisecond
	DefaultCalibration = calibration.ClosestMatch
	DefaultSelection   = selection.MaxCost
)

const tracerName = "github.com/agbru/argontune/internal/orchestration"

// Key identifies a tuning request. Identical keys never recompute.
type Key struct {
	Budget      time.Duration
	Calibration calibration.Strategy
	Selection   selection.Strategy
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Budget, k.Calibration, k.Selection)
}

// Request describes one call to Tune.
type Request struct {
	Budget      time.Duration
	Calibration calibration.Strategy
	Selection   selection.Strategy
	// OnSample observes the measurements when the request triggers a
	// calibration. Concurrent identical requests share a single run and only
	// the caller that started it is notified. Returning Stop ends the run
	// and leaves the cache untouched.
	OnSample func(calibration.Sample) calibration.Decision
}

func (r Request) withDefaults() Request {
	if r.Budget == 0 {
		r.Budget = DefaultBudget
	}
	if r.Calibration == "" {
		r.Calibration = DefaultCalibration
	}
	if r.Selection == "" {
		r.Selection = DefaultSelection
	}
	return r
}

// Key returns the cache key of the request.
func (r Request) Key() Key {
	return Key{Budget: r.Budget, Calibration: r.Calibration, Selection: r.Selection}
}

// Result is the outcome of Tune. Series and Chosen are only populated when
// the request was answered by a fresh calibration. Partial marks a run that
// OnSample stopped early; its parameters are returned but never stored.
type Result struct {
	Key     Key
	Params  params.CostParameters
	Cached  bool
	Partial bool
	Series  calibration.Series
	Chosen  calibration.Sample
}

// Tuner memoizes the parameters chosen for each Key.
type Tuner struct {
	hasher     hasher.Hasher
	engine     *calibration.Engine
	store      store.Store
	metrics    *metrics.Metrics
	logger     logging.Logger
	tracer     trace.Tracer
	variant    params.Variant
	saltLength int
	plain      []byte
	engineOpts []calibration.EngineOption

	flights flightGroup
}

// Option configures a Tuner.
type Option func(*Tuner)

// WithStore replaces the in-memory store.
func WithStore(s store.Store) Option { return func(t *Tuner) { t.store = s } }

// WithMetrics records cache lookups and calibration metrics.
func WithMetrics(m *metrics.Metrics) Option { return func(t *Tuner) { t.metrics = m } }

// WithLogger sets the logger shared with the calibration engine.
func WithLogger(l logging.Logger) Option { return func(t *Tuner) { t.logger = l } }

// WithTracer replaces the OpenTelemetry tracer.
func WithTracer(tr trace.Tracer) Option { return func(t *Tuner) { t.tracer = tr } }

// WithVariant sets the variant tuned by GetMaxParameters. Default Argon2id.
func WithVariant(v params.Variant) Option { return func(t *Tuner) { t.variant = v } }

// WithSaltLength sets the salt length used by calibration runs.
func WithSaltLength(n int) Option { return func(t *Tuner) { t.saltLength = n } }

// WithPlain sets the input hashed by calibration runs.
func WithPlain(p []byte) Option { return func(t *Tuner) { t.plain = p } }

// WithEngineOptions passes extra options to the calibration engine.
func WithEngineOptions(opts ...calibration.EngineOption) Option {
	return func(t *Tuner) { t.engineOpts = append(t.engineOpts, opts...) }
}

// NewTuner builds a tuner measuring h.
func NewTuner(h hasher.Hasher, opts ...Option) *Tuner {
	t := &Tuner{
		hasher:     h,
		logger:     logging.NopLogger(),
		tracer:     otel.Tracer(tracerName),
		variant:    params.Argon2id,
		saltLength: calibration.DefaultSaltLength,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.store == nil {
		t.store = store.NewMemoryStore()
	}
	engineOpts := append([]calibration.EngineOption{
		calibration.WithLogger(t.logger),
		calibration.WithMetrics(t.metrics),
	}, t.engineOpts...)
	t.engine = calibration.NewEngine(h, engineOpts...)
	return t
}

// Variant returns the variant tuned by GetMaxParameters.
func (t *Tuner) Variant() params.Variant { return t.variant }

// Hasher returns the primitive the tuner measures.
func (t *Tuner) Hasher() hasher.Hasher { return t.hasher }

func (t *Tuner) storeKey(k Key) string {
	return t.variant.String() + ":" + k.String()
}

// GetMaxParameters returns the parameters chosen for budget, calibrating
// only when the request has not been answered before.
func (t *Tuner) GetMaxParameters(ctx context.Context, budget time.Duration, cal calibration.Strategy, sel selection.Strategy) (params.CostParameters, error) {
	res, err := t.Tune(ctx, Request{Budget: budget, Calibration: cal, Selection: sel})
	if err != nil {
		return params.CostParameters{}, err
	}
	return res.Params, nil
}

// Tune answers req from the store, or calibrates, selects and stores the
// answer. Concurrent misses for the same key share one calibration.
func (t *Tuner) Tune(ctx context.Context, req Request) (res Result, err error) {
	req = req.withDefaults()
	key := req.Key()
	if _, err := selection.New(key.Selection); err != nil {
		return Result{}, err
	}
	if !slices.Contains(calibration.Strategies, key.Calibration) {
		return Result{}, apperrors.UnknownPolicyError{Kind: "calibration", Name: string(key.Calibration)}
	}

	ctx, span := t.tracer.Start(ctx, "Tuner.Tune", trace.WithAttributes(
		attribute.String("tune.key", key.String()),
		attribute.String("argon2.variant", t.variant.String()),
	))
	defer func() {
		span.SetAttributes(attribute.Bool("tune.cached", res.Cached))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sk := t.storeKey(key)
	if p, ok, err := t.store.Get(ctx, sk); err != nil {
		return Result{}, err
	} else if ok {
		t.metrics.ObserveCache(true)
		t.logger.Debug("cache hit", logging.String("key", sk))
		return Result{Key: key, Params: p, Cached: true}, nil
	}
	t.metrics.ObserveCache(false)

	if req.OnSample != nil {
		obs := &observer{fn: req.OnSample}
		defer obs.stop()
		req.OnSample = obs.observe
	}
	for {
		v, shared, led, err := t.flights.do(ctx, sk, func(fctx context.Context) (any, error) {
			return t.calibrate(fctx, sk, req)
		})
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, apperrors.WrapError(ctx.Err(), "waiting for %s", key)
			}
			return Result{}, err
		}
		res = v.(Result)
		// Another caller's observer cut the shared run short.
		if res.Partial && !led {
			continue
		}
		if shared {
			res.Series = append(calibration.Series(nil), res.Series...)
		}
		return res, nil
	}
}

// observer forwards samples to fn until stop. A shared run outlives the
// caller that started it when others still wait, and must not reach that
// caller's hook after Tune has returned.
type observer struct {
	mu      sync.Mutex
	fn      func(calibration.Sample) calibration.Decision
	stopped bool
}

func (o *observer) observe(s calibration.Sample) calibration.Decision {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return calibration.Continue
	}
	return o.fn(s)
}

func (o *observer) stop() {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()
}

func (t *Tuner) calibrate(ctx context.Context, sk string, req Request) (Result, error) {
	key := req.Key()
	// A flight that finished between our lookup and this one may have stored it.
	if p, ok, err := t.store.Get(ctx, sk); err != nil {
		return Result{}, err
	} else if ok {
		return Result{Key: key, Params: p, Cached: true}, nil
	}

	var stopped bool
	onSample := req.OnSample
	if onSample != nil {
		onSample = func(s calibration.Sample) calibration.Decision {
			d := req.OnSample(s)
			if d == calibration.Stop {
				stopped = true
			}
			return d
		}
	}
	series, err := t.RunCalibration(ctx, req.Budget, req.Calibration, t.variant, t.plain, t.saltLength, onSample)
	if err != nil {
		return Result{}, apperrors.WrapError(err, "calibrating %s", key)
	}

	sel, err := selection.New(req.Selection)
	if err != nil {
		return Result{}, err
	}
	if err := sel.Initialize(series); err != nil {
		return Result{}, apperrors.WrapError(err, "selecting %s", key)
	}
	chosen, err := sel.Select(req.Budget)
	if err != nil {
		return Result{}, apperrors.WrapError(err, "selecting %s", key)
	}

	if stopped {
		t.logger.Info("calibration stopped early, result not cached",
			logging.String("key", sk),
			logging.String("params", chosen.Params.String()),
			logging.Int("samples", len(series)),
		)
		return Result{Key: key, Params: chosen.Params, Partial: true, Series: series, Chosen: chosen}, nil
	}

	stored, _, err := t.store.PutIfAbsent(ctx, sk, chosen.Params)
	if err != nil {
		return Result{}, err
	}
	t.logger.Info("parameters tuned",
		logging.String("key", sk),
		logging.String("params", stored.String()),
		logging.Duration("elapsed", chosen.Elapsed),
		logging.Int("samples", len(series)),
	)
	return Result{Key: key, Params: stored, Series: series, Chosen: chosen}, nil
}

// RunCalibration runs one calibration search without touching the cache,
// for callers that persist the series themselves.
func (t *Tuner) RunCalibration(ctx context.Context, budget time.Duration, strategy calibration.Strategy, variant params.Variant, plain []byte, saltLength int, onSample func(calibration.Sample) calibration.Decision) (calibration.Series, error) {
	return t.engine.Run(ctx, strategy, calibration.RunOptions{
		Budget:     budget,
		Variant:    variant,
		SaltLength: saltLength,
		Plain:      plain,
		OnSample:   onSample,
	})
}
