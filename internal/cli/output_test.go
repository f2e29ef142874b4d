package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/agbru/argontune/internal/ui"
)

func TestFormatQuietResult(t *testing.T) {
	t.Parallel()
	got := FormatQuietResult(freshResult().Params)
	if want := "$argon2id$v=19$m=65536,t=2,p=4"; got != want {
		t.Errorf("FormatQuietResult() = %q, want %q", got, want)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		res         func() Report
		wantSamples int
		wantElapsed float64
		wantCached  bool
	}{
		{"fresh with samples", func() Report { return NewReport(freshResult(), nil, true) }, 3, 80, false},
		{"fresh without samples", func() Report { return NewReport(freshResult(), nil, false) }, 0, 80, false},
		{"cached", func() Report { return NewReport(cachedResult(), nil, true) }, 0, 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := tt.res()
			if len(r.Samples) != tt.wantSamples || r.ElapsedMs != tt.wantElapsed || r.Cached != tt.wantCached {
				t.Errorf("report = %+v", r)
			}
			if r.MemoryKiB != 1<<16 || r.DerivedCost != 16*4*2 {
				t.Errorf("derived fields: memoryKiB=%d derivedCost=%d", r.MemoryKiB, r.DerivedCost)
			}
		})
	}

	var buf bytes.Buffer
	verify := &Verification{Digest: "$argon2id$...", Elapsed: time.Millisecond, OK: true}
	if err := WriteJSON(&buf, freshResult(), verify, false); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	for _, key := range []string{"budget", "calibration", "selection", "parameters", "verify"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, buf.String())
		}
	}
	if decoded["budget"] != "100ms" {
		t.Errorf("budget = %v, want 100ms", decoded["budget"])
	}
	if _, ok := decoded["samples"]; ok {
		t.Error("samples must be omitted unless requested")
	}
}

func TestDisplayResultWithConfig(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(ui.DarkTheme) })

	verify := &Verification{Digest: "$argon2id$v=19$m=65536,t=2,p=4$c2FsdA$aGFzaA", Elapsed: 80 * time.Millisecond, OK: true}
	tests := []struct {
		name     string
		cfg      OutputConfig
		verify   *Verification
		contains []string
		excludes []string
	}{
		{
			name:     "text",
			cfg:      OutputConfig{},
			contains: []string{"Tuned Parameters", "2^16 KiB", "64 MiB", "Iterations:   2", "80.0ms", "80% of budget", "fresh calibration"},
			excludes: []string{"Samples", "Verify"},
		},
		{
			name:     "text with samples and verify",
			cfg:      OutputConfig{ShowSamples: true},
			verify:   verify,
			contains: []string{"--- Samples ---", "elapsed", "120.0ms", "Verify round-trip: verified"},
		},
		{
			name:     "quiet",
			cfg:      OutputConfig{Quiet: true, ShowSamples: true},
			verify:   verify,
			contains: []string{"$argon2id$v=19$m=65536,t=2,p=4\n"},
			excludes: []string{"Tuned", "Samples", "Verify"},
		},
		{
			name:     "json wins over quiet",
			cfg:      OutputConfig{Quiet: true, JSON: true},
			contains: []string{`"parameters"`, `"timeCost": 2`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := DisplayResultWithConfig(&buf, freshResult(), tt.verify, tt.cfg); err != nil {
				t.Fatalf("DisplayResultWithConfig: %v", err)
			}
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output must not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestDisplayVerificationFailure(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(ui.DarkTheme) })

	var buf bytes.Buffer
	DisplayVerification(&buf, Verification{Digest: "x", OK: false})
	if !strings.Contains(buf.String(), "FAILED") {
		t.Errorf("got %q", buf.String())
	}
}
