package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// Tests in this file mutate the package-level theme and are not parallel.

func TestSetTheme(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	tests := []struct {
		name string
		want Theme
	}{
		{"dark", DarkTheme},
		{"light", LightTheme},
		{"orange", OrangeTheme},
		{"none", NoColorTheme},
		{"unknown", DarkTheme},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want.Name {
			t.Errorf("SetTheme(%q): got %q, want %q", tt.name, got, tt.want.Name)
		}
	}
}

func TestInitTheme(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	InitTheme(true, "light")
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("--no-color must disable escape codes")
	}

	InitTheme(false, "light")
	if GetCurrentTheme().Name != "light" {
		t.Errorf("got theme %q, want light", GetCurrentTheme().Name)
	}

	t.Setenv("NO_COLOR", "1")
	InitTheme(false, "light")
	if GetCurrentTheme().Name != "none" {
		t.Errorf("NO_COLOR set: got theme %q", GetCurrentTheme().Name)
	}
}

func TestColorsFollowTheme(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	SetCurrentTheme(DarkTheme)
	checks := map[string][2]string{
		"reset":     {ColorReset(), DarkTheme.Reset},
		"red":       {ColorRed(), DarkTheme.Error},
		"green":     {ColorGreen(), DarkTheme.Success},
		"yellow":    {ColorYellow(), DarkTheme.Warning},
		"blue":      {ColorBlue(), DarkTheme.Primary},
		"magenta":   {ColorMagenta(), DarkTheme.Info},
		"grey":      {ColorGrey(), DarkTheme.Secondary},
		"bold":      {ColorBold(), DarkTheme.Bold},
		"underline": {ColorUnderline(), DarkTheme.Underline},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s: got %q, want %q", name, c[0], c[1])
		}
	}
}

func TestLookupTheme(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"dark", "light", "orange", "none"} {
		if th, ok := LookupTheme(name); !ok || th.Name != name {
			t.Errorf("LookupTheme(%q) = %q, %v", name, th.Name, ok)
		}
	}
	if _, ok := LookupTheme("neon"); ok {
		t.Error("unknown theme must not resolve")
	}
}

func TestGetCurrentTableTheme(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	SetTheme("none")
	if _, ok := GetCurrentTableTheme().Chosen.(lipgloss.NoColor); !ok {
		t.Error("no-color theme must map to NoColor table colors")
	}
	SetTheme("light")
	if GetCurrentTableTheme() != LightTableTheme {
		t.Error("light theme must map to LightTableTheme")
	}
	SetTheme("orange")
	if GetCurrentTableTheme() != DarkTableTheme {
		t.Error("orange theme must map to DarkTableTheme")
	}
}
