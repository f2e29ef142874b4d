package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/agbru/argontune/internal/calibration"
	"github.com/agbru/argontune/internal/cli"
	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/logging"
	"github.com/agbru/argontune/internal/metrics"
	"github.com/agbru/argontune/internal/orchestration"
	"github.com/agbru/argontune/internal/store"
	"github.com/agbru/argontune/internal/sysmon"
	"github.com/agbru/argontune/internal/ui"
)

// ProfileMaxAge bounds how long a saved profile answers requests.
const ProfileMaxAge = 30 * 24 * time.Hour

// runTune orchestrates one tuning request from configuration to output.
func (a *Application) runTune(ctx context.Context, out io.Writer) int {
	cfg := a.Config
	ui.InitTheme(cfg.NoColor, cfg.Theme)
	logger := a.newLogger()

	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	interactive := !cfg.Quiet && !cfg.JSON
	if interactive {
		cli.PrintExecutionConfig(cfg, a.Probe(), out)
	}

	req := orchestration.Request{
		Budget:      cfg.Budget,
		Calibration: cfg.CalibrationStrategy(),
		Selection:   cfg.SelectionStrategy(),
	}

	profilePath := cfg.ProfilePath
	if profilePath == "" {
		profilePath = calibration.GetDefaultProfilePath()
	}
	profile, res, fromProfile := a.loadProfileResult(profilePath, req)
	if fromProfile && interactive {
		cli.PrintProfileReuse(profilePath, out)
	}

	met := metrics.New()
	start := time.Now()
	if !fromProfile {
		st, closeStore, err := a.openStore(ctx, profile)
		if err != nil {
			return cli.HandleError(err, a.ErrWriter)
		}
		defer closeStore()

		tuner := orchestration.NewTuner(a.Hasher,
			orchestration.WithStore(st),
			orchestration.WithMetrics(met),
			orchestration.WithLogger(logger),
			orchestration.WithVariant(cfg.ParsedVariant()),
			orchestration.WithSaltLength(cfg.SaltLength),
			orchestration.WithPlain([]byte(cfg.Plain)),
			orchestration.WithEngineOptions(append([]calibration.EngineOption{calibration.WithProbe(a.Probe)}, a.engineOpts...)...),
		)

		var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
		progressOut := out
		if !interactive {
			reporter, progressOut = orchestration.NullProgressReporter{}, io.Discard
		}
		res, err = orchestration.ExecuteTuning(ctx, tuner, req, reporter, progressOut)
		a.writeMetrics(met, logger)
		if err != nil {
			return cli.HandleError(timedOut(ctx, err, cfg.Timeout), a.ErrWriter)
		}
	}

	var verify *cli.Verification
	if cfg.Verify {
		v, err := a.verify(ctx, res)
		if err != nil {
			return cli.HandleError(timedOut(ctx, err, cfg.Timeout), a.ErrWriter)
		}
		verify = &v
	}

	if err := cli.DisplayResultWithConfig(out, res, verify, cli.OutputConfig{Quiet: cfg.Quiet, JSON: cfg.JSON, ShowSamples: cfg.ShowSamples}); err != nil {
		return cli.HandleError(err, a.ErrWriter)
	}

	if !fromProfile && !cfg.NoCacheProfile && !res.Partial && len(res.Series) > 0 {
		profile.Record(req.Budget, req.Calibration, string(req.Selection), res.Params, res.Series, time.Since(start))
		if err := profile.SaveProfile(profilePath); err != nil {
			logger.Error("saving calibration profile", err, logging.String("path", profilePath))
		}
	}

	if cfg.Verbose {
		load := sysmon.Sample()
		logger.Debug("system load after tuning",
			logging.Float64("cpu_percent", load.CPUPercent),
			logging.Float64("mem_percent", load.MemPercent))
	}
	if verify != nil && !verify.OK {
		return cli.HandleError(fmt.Errorf("verify round-trip failed for %s", res.Params), a.ErrWriter)
	}
	return apperrors.ExitSuccess
}

// timedOut reports a deadline reached through the --timeout context as a
// TimeoutError naming the limit.
func timedOut(ctx context.Context, err error, limit time.Duration) error {
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.TimeoutError{Operation: "tuning", Limit: limit}, err)
}

// newLogger logs to ErrWriter: debug when verbose, warnings only when the
// output is meant for scripts. Verbose JSON runs get plain prefixed lines
// so stderr stays greppable next to the JSON report.
func (a *Application) newLogger() logging.Logger {
	if a.Config.JSON && a.Config.Verbose {
		return logging.NewStdLoggerAdapter(log.New(a.ErrWriter, "argontune ", log.LstdFlags|log.LUTC))
	}
	level := zerolog.InfoLevel
	switch {
	case a.Config.Verbose:
		level = zerolog.DebugLevel
	case a.Config.Quiet || a.Config.JSON:
		level = zerolog.WarnLevel
	}
	w := zerolog.ConsoleWriter{Out: a.ErrWriter, TimeFormat: time.Kitchen, NoColor: a.Config.NoColor}
	return logging.NewZerologAdapter(zerolog.New(w).Level(level).With().Timestamp().Str("component", "argontune").Logger())
}

// loadProfileResult answers req from the saved profile when it was produced
// on this machine, is recent and matches the request. It always returns a
// profile to record into.
func (a *Application) loadProfileResult(path string, req orchestration.Request) (*calibration.Profile, orchestration.Result, bool) {
	if a.Config.NoCacheProfile {
		return calibration.NewProfile(), orchestration.Result{}, false
	}
	profile, loaded := calibration.LoadOrCreateProfile(path)
	if !loaded || profile.IsStale(ProfileMaxAge) ||
		!profile.Matches(req.Budget, req.Calibration, string(req.Selection), a.Config.ParsedVariant()) {
		return calibration.NewProfile(), orchestration.Result{}, false
	}
	res := orchestration.Result{Key: req.Key(), Params: profile.Parameters, Cached: true, Series: profile.Samples}
	for _, s := range profile.Samples {
		if s.Params == profile.Parameters {
			res.Chosen = s
		}
	}
	return profile, res, true
}

// openStore returns the parameter store for this run and its cleanup.
func (a *Application) openStore(ctx context.Context, profile *calibration.Profile) (store.Store, func(), error) {
	if a.Config.RedisAddr == "" {
		return store.NewMemoryStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
	rs := store.NewRedisStore(client, hardwareFingerprint(profile))
	if err := rs.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", a.Config.RedisAddr, err)
	}
	return rs, func() { client.Close() }, nil
}

// hardwareFingerprint names the machine class a tuned result is valid for.
// Hosts with the same fingerprint share Redis entries.
func hardwareFingerprint(p *calibration.Profile) string {
	name := fmt.Sprintf("%s/%s/%d/%d/%s", p.GOOS, p.GOARCH, p.NumCPU, p.TotalMemory>>30, strings.Join(p.CPUFeatures, ","))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()[:8]
}

// verify hashes once with the chosen parameters and checks the digest.
func (a *Application) verify(ctx context.Context, res orchestration.Result) (cli.Verification, error) {
	salt, err := a.Hasher.GenerateSalt(ctx, a.Config.SaltLength)
	if err != nil {
		return cli.Verification{}, err
	}
	plain := []byte(a.Config.Plain)
	start := time.Now()
	digest, err := a.Hasher.Hash(ctx, plain, salt, res.Params)
	if err != nil {
		return cli.Verification{}, err
	}
	elapsed := time.Since(start)
	ok, err := a.Hasher.Verify(ctx, digest, plain)
	if err != nil {
		return cli.Verification{}, err
	}
	return cli.Verification{Digest: string(digest), Elapsed: elapsed, OK: ok}, nil
}

func (a *Application) writeMetrics(met *metrics.Metrics, logger logging.Logger) {
	if a.Config.MetricsFile == "" {
		return
	}
	if err := met.WriteTextfile(a.Config.MetricsFile); err != nil {
		logger.Error("writing metrics textfile", err, logging.String("path", a.Config.MetricsFile))
	}
}
