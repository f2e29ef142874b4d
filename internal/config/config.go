// Package config parses the command line, environment and .env file into an
// AppConfig.
//
// Priority, highest first: command-line flags, ARGONTUNE_* environment
// variables (including those loaded from the .env file), built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/agbru/argontune/internal/calibration"
	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/selection"
	"github.com/agbru/argontune/internal/ui"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARGONTUNE_"

// DefaultEnvFile is loaded when present.
const DefaultEnvFile = ".env"

// Bounds accepted for --salt-length.
const (
	MinSaltLength = 8
	MaxSaltLength = 1024
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Budget is the maximum acceptable time for one hash.
	Budget time.Duration
	// Calibration names the calibration strategy.
	Calibration string
	// Selection names the selection strategy.
	Selection string
	// Variant names the Argon2 variant to tune.
	Variant string
	// SaltLength is the salt length used during calibration.
	SaltLength int
	// Plain is the input hashed during calibration.
	Plain string
	// ProfilePath is the calibration profile location; empty means the default.
	ProfilePath string
	// NoCacheProfile disables reading and writing the profile.
	NoCacheProfile bool
	// MetricsFile, when set, receives a Prometheus textfile after the run.
	MetricsFile string
	// RedisAddr, when set, shares tuned parameters through Redis.
	RedisAddr string
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Verify hashes and verifies once with the chosen parameters.
	Verify bool
	// ShowSamples prints every measured sample.
	ShowSamples bool
	// JSON switches the output to JSON.
	JSON bool
	// Quiet prints only the chosen parameters.
	Quiet bool
	// Verbose enables debug logging.
	Verbose bool
	// NoColor disables ANSI colors.
	NoColor bool
	// Theme names the color theme: dark, light or orange.
	Theme string
	// EnvFile is the dotenv file loaded before environment overrides.
	EnvFile string
}

// Default returns the configuration used when nothing is overridden.
func Default() AppConfig {
	return AppConfig{
		Budget:      100 * time.Millisecond,
		Calibration: string(calibration.ClosestMatch),
		Selection:   string(selection.MaxCost),
		Variant:     params.Argon2id.String(),
		SaltLength:  calibration.DefaultSaltLength,
		Plain:       string(calibration.DefaultPlain),
		Timeout:     5 * time.Minute,
		EnvFile:     DefaultEnvFile,
		Theme:       "dark",
	}
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Usage and parse errors are written to errorWriter.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	cfg := Default()
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	fs.DurationVar(&cfg.Budget, "budget", cfg.Budget, "Maximum time for one hash (e.g. 100ms, 1s).")
	fs.StringVar(&cfg.Calibration, "calibration", cfg.Calibration, "Calibration strategy: closest-match or max-memory.")
	fs.StringVar(&cfg.Selection, "selection", cfg.Selection, "Selection strategy: max-cost, closest-match or max-memory.")
	fs.StringVar(&cfg.Variant, "variant", cfg.Variant, "Argon2 variant: argon2id or argon2i.")
	fs.IntVar(&cfg.SaltLength, "salt-length", cfg.SaltLength, "Salt length in bytes used while calibrating.")
	fs.StringVar(&cfg.Plain, "plain", cfg.Plain, "Input hashed while calibrating.")
	fs.StringVar(&cfg.ProfilePath, "profile", "", "Calibration profile path (default ~/"+calibration.DefaultProfileFileName+").")
	fs.BoolVar(&cfg.NoCacheProfile, "no-cache-profile", false, "Neither read nor write the calibration profile.")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile.")
	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address used to share tuned parameters (host:port).")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum duration of the whole run.")
	fs.BoolVar(&cfg.Verify, "verify", false, "Hash and verify once with the chosen parameters.")
	fs.BoolVar(&cfg.ShowSamples, "samples", false, "Print every measured sample.")
	fs.BoolVar(&cfg.JSON, "json", false, "Print the result as JSON.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the chosen parameters.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Color theme: dark, light or orange.")
	fs.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "Dotenv file loaded before environment overrides.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
	}

	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return AppConfig{}, err
	}
	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errorWriter, err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return apperrors.NewConfigError("loading %s: %v", path, err)
	}
	return nil
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate() error {
	if c.Budget <= 0 {
		return apperrors.NewConfigError("budget must be positive, got %s", c.Budget)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.SaltLength < MinSaltLength || c.SaltLength > MaxSaltLength {
		return apperrors.NewConfigError("salt length must be between %d and %d, got %d", MinSaltLength, MaxSaltLength, c.SaltLength)
	}
	if c.Plain == "" {
		return apperrors.NewConfigError("plain input must not be empty")
	}
	if c.Quiet && c.JSON {
		return apperrors.NewConfigError("--quiet and --json are mutually exclusive")
	}
	if _, err := calibration.ParseStrategy(c.Calibration); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := selection.ParseStrategy(c.Selection); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := params.ParseVariant(c.Variant); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, ok := ui.LookupTheme(c.Theme); !ok || c.Theme == ui.NoColorTheme.Name {
		return apperrors.NewConfigError("unknown theme %q (use --no-color to disable colors)", c.Theme)
	}
	return nil
}

// CalibrationStrategy returns the parsed calibration strategy. The config
// must have passed Validate.
func (c AppConfig) CalibrationStrategy() calibration.Strategy {
	s, _ := calibration.ParseStrategy(c.Calibration)
	return s
}

// SelectionStrategy returns the parsed selection strategy. The config must
// have passed Validate.
func (c AppConfig) SelectionStrategy() selection.Strategy {
	s, _ := selection.ParseStrategy(c.Selection)
	return s
}

// ParsedVariant returns the parsed Argon2 variant. The config must have
// passed Validate.
func (c AppConfig) ParsedVariant() params.Variant {
	v, _ := params.ParseVariant(c.Variant)
	return v
}
