// Package ui holds the terminal themes of argontune: ANSI escape codes for
// the text presenters and lipgloss colors for the sample table. The active
// theme honours --no-color and the NO_COLOR environment variable.
package ui
