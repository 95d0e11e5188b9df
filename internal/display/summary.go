package display

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Summary is the end-of-run report.
type Summary struct {
	Planned       int
	Succeeded     int
	Failed        int
	JournalErrors int
	Stopped       bool
	OutputBytes   int64
	Elapsed       time.Duration
}

// PrintSummary writes a boxed end-of-run report.
func PrintSummary(w io.Writer, s Summary) {
	var b strings.Builder
	fmt.Fprintf(&b, "Groups planned:   %d\n", s.Planned)
	fmt.Fprintf(&b, "Videos produced:  %s\n", okStyle.Render(fmt.Sprint(s.Succeeded)))
	failed := fmt.Sprint(s.Failed)
	if s.Failed > 0 {
		failed = errStyle.Render(failed)
	}
	fmt.Fprintf(&b, "Groups failed:    %s\n", failed)
	if s.JournalErrors > 0 {
		fmt.Fprintf(&b, "Journal errors:   %s\n", errStyle.Render(fmt.Sprint(s.JournalErrors)))
	}
	fmt.Fprintf(&b, "Output size:      %s\n", FormatBytes(s.OutputBytes))
	fmt.Fprintf(&b, "Elapsed:          %s", FormatElapsed(s.Elapsed))
	if s.Stopped {
		b.WriteString("\n" + mutedStyle.Render("stopped before all groups ran"))
	}
	fmt.Fprintln(w, panelStyle.Render(b.String()))
}
