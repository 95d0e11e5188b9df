package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()
	r.GroupDone(true)
	r.GroupDone(true)
	r.GroupDone(false)
	r.NormalizeFallback()
	r.CleanupFailed()
	r.JournalAppendFailed()
	r.ObserveTranscode("normalize", 2*time.Second, nil)
	r.ObserveTranscode("mix", time.Second, errors.New("boom"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"success groups", testutil.ToFloat64(r.groups.WithLabelValues(OutcomeSuccess)), 2},
		{"failed groups", testutil.ToFloat64(r.groups.WithLabelValues(OutcomeFailure)), 1},
		{"fallbacks", testutil.ToFloat64(r.fallbacks), 1},
		{"cleanup failures", testutil.ToFloat64(r.cleanupFailures), 1},
		{"journal errors", testutil.ToFloat64(r.journalErrors), 1},
		{"mix errors", testutil.ToFloat64(r.transcodeErrors.WithLabelValues("mix")), 1},
		{"normalize errors", testutil.ToFloat64(r.transcodeErrors.WithLabelValues("normalize")), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(r.transcodeDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.GroupDone(true)
	r.NormalizeFallback()
	r.ObserveTranscode("concat", time.Second, nil)
	r.CleanupFailed()
	r.JournalAppendFailed()
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Errorf("nil WriteTextfile() = %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.GroupDone(true)
	path := filepath.Join(t.TempDir(), "shortmix.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`shortmix_groups_total{outcome="success"} 1`, "shortmix_last_run_timestamp_seconds"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}
