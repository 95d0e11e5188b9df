package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/shortmix/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = ""
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "shortmix.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	l.Success("done %d", 3)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte(`"level":"info"`)) || !bytes.Contains(b, []byte("to file")) {
		t.Errorf("log file content: %s", string(b))
	}
	if !bytes.Contains(b, []byte(`"level":"success"`)) || !bytes.Contains(b, []byte("done 3")) {
		t.Errorf("success line missing: %s", string(b))
	}
}

func TestLogger_DebugRequiresVerbose(t *testing.T) {
	var quiet, loud bytes.Buffer
	New(&quiet, false).Debug("hidden")
	New(&loud, true).Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("debug line written without verbose: %s", quiet.String())
	}
	if !strings.Contains(loud.String(), "shown") {
		t.Errorf("debug line missing with verbose: %s", loud.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false).With("group", 4)
	l.Warn("slow")

	out := buf.String()
	if !strings.Contains(out, `"group":4`) || !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	l.Success("nothing")
	if err := l.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestLevelLabel(t *testing.T) {
	tests := []struct {
		level string
		color bool
		want  string
	}{
		{"info", false, "[INFO]"},
		{"success", false, "[SUCCESS]"},
		{"error", true, ansiRed + "[ERROR]" + ansiReset},
		{"debug", true, ansiCyan + "[DEBUG]" + ansiReset},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := levelLabel(tt.level, tt.color); got != tt.want {
				t.Errorf("levelLabel(%q, %v) = %q, want %q", tt.level, tt.color, got, tt.want)
			}
		})
	}
}
