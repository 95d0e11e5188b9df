package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// ProgressPrinter renders one line per finished group. On a terminal the
// line carries a progress bar; otherwise it is a plain "[done/total]" line.
// Every line is newline-terminated so group logs never share it.
type ProgressPrinter struct {
	mu          sync.Mutex
	w           io.Writer
	interactive bool
	bar         progress.Model
}

// NewProgressPrinter returns a printer writing to w.
func NewProgressPrinter(w io.Writer, interactive bool) *ProgressPrinter {
	return &ProgressPrinter{
		w:           w,
		interactive: interactive,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(32)),
	}
}

// Update reports that done of total groups have finished; label describes
// the most recent one.
func (p *ProgressPrinter) Update(done, total int, ok bool, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := okStyle.Render("ok")
	if !ok {
		status = errStyle.Render("failed")
	}
	if !p.interactive {
		fmt.Fprintf(p.w, "[%d/%d] %s %s\n", done, total, status, label)
		return
	}

	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	fmt.Fprintf(p.w, "%s %d/%d %s %s\n", p.bar.ViewAs(pct), done, total, status, label)
}
