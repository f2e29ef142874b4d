package ui

import (
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a set of ANSI escape codes, one per role.
type Theme struct {
	Name string

	Primary   string // headings and parameter values
	Secondary string // hints
	Success   string
	Warning   string
	Error     string
	Info      string

	Bold      string
	Underline string
	Reset     string
}

func ansi256(code string) string { return "\033[38;5;" + code + "m" }

const (
	escBold      = "\033[1m"
	escUnderline = "\033[4m"
	escReset     = "\033[0m"
)

var (
	// DarkTheme suits dark terminal backgrounds. It is the default.
	DarkTheme = Theme{
		Name:    "dark",
		Primary: ansi256("39"), Secondary: ansi256("245"),
		Success: ansi256("82"), Warning: ansi256("220"), Error: ansi256("196"), Info: ansi256("141"),
		Bold: escBold, Underline: escUnderline, Reset: escReset,
	}

	// LightTheme uses darker tones for light backgrounds.
	LightTheme = Theme{
		Name:    "light",
		Primary: ansi256("27"), Secondary: ansi256("240"),
		Success: ansi256("28"), Warning: ansi256("130"), Error: ansi256("124"), Info: ansi256("54"),
		Bold: escBold, Underline: escUnderline, Reset: escReset,
	}

	// OrangeTheme is a warm variant of DarkTheme.
	OrangeTheme = Theme{
		Name:    "orange",
		Primary: ansi256("208"), Secondary: ansi256("245"),
		Success: ansi256("82"), Warning: ansi256("214"), Error: ansi256("196"), Info: ansi256("69"),
		Bold: escBold, Underline: escUnderline, Reset: escReset,
	}

	// NoColorTheme emits no escape codes at all.
	NoColorTheme = Theme{Name: "none"}

	themes = []Theme{DarkTheme, LightTheme, OrangeTheme, NoColorTheme}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// LookupTheme returns the theme registered under name.
func LookupTheme(name string) (Theme, bool) {
	i := slices.IndexFunc(themes, func(t Theme) bool { return t.Name == name })
	if i < 0 {
		return Theme{}, false
	}
	return themes[i], true
}

// TableTheme holds lipgloss colors for the sample table.
type TableTheme struct {
	Header lipgloss.TerminalColor
	Border lipgloss.TerminalColor
	Text   lipgloss.TerminalColor
	Chosen lipgloss.TerminalColor
	Over   lipgloss.TerminalColor
}

var (
	// DarkTableTheme matches DarkTheme and OrangeTheme.
	DarkTableTheme = TableTheme{
		Header: lipgloss.Color("39"),
		Border: lipgloss.Color("245"),
		Text:   lipgloss.Color("252"),
		Chosen: lipgloss.Color("82"),
		Over:   lipgloss.Color("196"),
	}

	// LightTableTheme matches LightTheme.
	LightTableTheme = TableTheme{
		Header: lipgloss.Color("27"),
		Border: lipgloss.Color("240"),
		Text:   lipgloss.Color("235"),
		Chosen: lipgloss.Color("28"),
		Over:   lipgloss.Color("124"),
	}

	// NoColorTableTheme renders with the terminal's default colors.
	NoColorTableTheme = TableTheme{
		Header: lipgloss.NoColor{},
		Border: lipgloss.NoColor{},
		Text:   lipgloss.NoColor{},
		Chosen: lipgloss.NoColor{},
		Over:   lipgloss.NoColor{},
	}
)

// GetCurrentTableTheme returns the table theme matching the active theme.
func GetCurrentTableTheme() TableTheme {
	switch GetCurrentTheme().Name {
	case NoColorTheme.Name:
		return NoColorTableTheme
	case LightTheme.Name:
		return LightTableTheme
	default:
		return DarkTableTheme
	}
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates the theme registered under name; unknown names fall
// back to DarkTheme.
func SetTheme(name string) {
	t, ok := LookupTheme(name)
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme activates the named theme unless colors are disabled by
// --no-color or by a NO_COLOR environment variable (https://no-color.org/).
func InitTheme(noColor bool, name string) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(name)
}
