package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const bannerArt = `     _                _             _
 ___| |__   ___  _ __| |_ _ __ ___ (_)_  __
/ __| '_ \ / _ \| '__| __| '_ ` + "`" + ` _ \| \ \/ /
\__ \ | | | (_) | |  | |_| | | | | | |>  <
|___/_| |_|\___/|_|   \__|_| |_| |_|_/_/\_\`

// PrintBanner writes the ASCII art banner followed by the version line.
// Colors follow the profile set by term.Configure.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprintln(w, bannerStyle.Render(bannerArt))
	fmt.Fprintln(w, mutedStyle.Render("v"+version+" - short clip assembler"))
}
