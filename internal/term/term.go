// Package term resolves whether terminal output is colored and whether
// stdout is interactive.
//
// [Configure] is called once during startup. It also pins the lipgloss
// color profile so styled output in the display package follows the same
// decision as the logger.
package term

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/backmassage/shortmix/internal/config"
)

var colorEnabled bool

// Configure resolves the color mode, applies it to lipgloss and reports
// whether colors are on.
func Configure(mode config.ColorMode) bool {
	colorEnabled = resolve(mode)
	if colorEnabled {
		if mode == config.ColorAlways {
			lipgloss.SetColorProfile(termenv.ANSI256)
		}
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return colorEnabled
}

// Enabled reports whether colors are currently active.
func Enabled() bool { return colorEnabled }

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
