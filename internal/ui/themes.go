// Package ui provides theme and color support for the application's
// command-line interface.
package ui

import (
	"os"
	"sync"
)

// Theme groups the ANSI escape codes used across the CLI. A theme with empty
// codes renders plain text, which is what quiet terminals and piped output
// get.
type Theme struct {
	Reset     string
	Bold      string
	Underline string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
}

// defaultTheme is the standard colored theme.
var defaultTheme = Theme{
	Reset:     "\033[0m",
	Bold:      "\033[1m",
	Underline: "\033[4m",
	Primary:   "\033[34m", // blue
	Secondary: "\033[36m", // cyan
	Success:   "\033[32m", // green
	Warning:   "\033[33m", // yellow
	Error:     "\033[31m", // red
	Info:      "\033[35m", // magenta
}

// noColorTheme renders everything without escape codes.
var noColorTheme = Theme{}

var (
	themeMu      sync.RWMutex
	currentTheme = defaultTheme
)

// InitTheme selects the active theme. Colors are disabled when noColor is
// set or when the NO_COLOR environment variable is present, following the
// no-color.org convention.
//
// Parameters:
//   - noColor: Whether the user requested plain output.
func InitTheme(noColor bool) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if noColor || os.Getenv("NO_COLOR") != "" {
		currentTheme = noColorTheme
		return
	}
	currentTheme = defaultTheme
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}
