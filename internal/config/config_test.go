package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agbru/argontune/internal/calibration"
	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/selection"
)

// noEnvFile keeps a stray .env in the package directory out of the tests.
var noEnvFile = []string{"--env-file", ""}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig("argontune", noEnvFile, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Budget != 100*time.Millisecond {
		t.Errorf("Budget = %s", cfg.Budget)
	}
	if cfg.CalibrationStrategy() != calibration.ClosestMatch {
		t.Errorf("Calibration = %s", cfg.Calibration)
	}
	if cfg.SelectionStrategy() != selection.MaxCost {
		t.Errorf("Selection = %s", cfg.Selection)
	}
	if cfg.ParsedVariant() != params.Argon2id {
		t.Errorf("Variant = %s", cfg.Variant)
	}
	if cfg.SaltLength != calibration.DefaultSaltLength {
		t.Errorf("SaltLength = %d", cfg.SaltLength)
	}
}

func TestParseConfigFlags(t *testing.T) {
	args := append([]string{
		"--budget", "250ms",
		"--calibration", "max-memory",
		"--selection", "closest-match",
		"--variant", "argon2i",
		"--salt-length", "32",
		"--samples", "-v", "--verify",
		"--redis", "localhost:6379",
		"--theme", "light",
	}, noEnvFile...)
	cfg, err := ParseConfig("argontune", args, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Budget != 250*time.Millisecond || cfg.CalibrationStrategy() != calibration.MaxMemory ||
		cfg.SelectionStrategy() != selection.ClosestMatch || cfg.ParsedVariant() != params.Argon2i {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.SaltLength != 32 || !cfg.ShowSamples || !cfg.Verbose || !cfg.Verify || cfg.RedisAddr != "localhost:6379" || cfg.Theme != "light" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantConfig bool
	}{
		{"unknown flag", []string{"--nope"}, false},
		{"bad duration", []string{"--budget", "fast"}, false},
		{"zero budget", []string{"--budget", "0s"}, true},
		{"short salt", []string{"--salt-length", "4"}, true},
		{"unknown calibration", []string{"--calibration", "random"}, true},
		{"unknown selection", []string{"--selection", "cheapest"}, true},
		{"unknown variant", []string{"--variant", "argon2d"}, true},
		{"quiet and json", []string{"-q", "--json"}, true},
		{"unknown theme", []string{"--theme", "neon"}, true},
		{"positional argument", []string{"extra"}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var errBuf bytes.Buffer
			_, err := ParseConfig("argontune", append(tt.args, noEnvFile...), &errBuf)
			if err == nil {
				t.Fatal("expected error")
			}
			var cfgErr apperrors.ConfigError
			if got := errors.As(err, &cfgErr); got != tt.wantConfig {
				t.Errorf("ConfigError = %v, want %v (err: %v)", got, tt.wantConfig, err)
			}
			if errBuf.Len() == 0 && tt.name != "positional argument" {
				t.Error("expected diagnostics on the error writer")
			}
		})
	}
}

func TestParseConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "ARGONTUNE_BUDGET=2s\nARGONTUNE_SELECTION=max-memory\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("ARGONTUNE_BUDGET")
		os.Unsetenv("ARGONTUNE_SELECTION")
	})

	cfg, err := ParseConfig("argontune", []string{"--env-file", path, "--selection", "closest-match"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Budget != 2*time.Second {
		t.Errorf("Budget = %s, want 2s from the env file", cfg.Budget)
	}
	if cfg.Selection != "closest-match" {
		t.Errorf("Selection = %s, flag should beat the env file", cfg.Selection)
	}
}

func TestParseConfigMissingEnvFile(t *testing.T) {
	if _, err := ParseConfig("argontune", []string{"--env-file", filepath.Join(t.TempDir(), "absent.env")}, &bytes.Buffer{}); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}
}
