// Package metrics records per-run counters and timings in a private
// Prometheus registry. The CLI writes the registry to a textfile at exit
// (node_exporter textfile collector format) when --metrics-file is set.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Group outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder holds the run's metrics. A nil *Recorder ignores every call.
type Recorder struct {
	reg *prometheus.Registry

	groups            *prometheus.CounterVec
	fallbacks         prometheus.Counter
	transcodeDuration *prometheus.HistogramVec
	transcodeErrors   *prometheus.CounterVec
	cleanupFailures   prometheus.Counter
	journalErrors     prometheus.Counter
	lastRun           prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		groups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortmix_groups_total",
				Help: "Groups processed, by outcome",
			},
			[]string{"outcome"},
		),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "shortmix_normalize_fallbacks_total",
			Help: "Clips that fell back from the hardware to the software encoder",
		}),
		transcodeDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shortmix_transcode_duration_seconds",
				Help:    "Duration of ffmpeg invocations in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"op"}, // normalize, concat, mix
		),
		transcodeErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortmix_transcode_errors_total",
				Help: "Failed ffmpeg operations after all strategies",
			},
			[]string{"op"},
		),
		cleanupFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "shortmix_cleanup_failures_total",
			Help: "Temporary files or directories that could not be removed",
		}),
		journalErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "shortmix_journal_append_errors_total",
			Help: "Journal records that could not be written",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "shortmix_last_run_timestamp_seconds",
			Help: "Unix time the run finished",
		}),
	}
}

// GroupDone counts a finished group.
func (r *Recorder) GroupDone(ok bool) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	r.groups.WithLabelValues(outcome).Inc()
}

// NormalizeFallback counts one hardware to software fallback.
func (r *Recorder) NormalizeFallback() {
	if r == nil {
		return
	}
	r.fallbacks.Inc()
}

// ObserveTranscode records the duration of one operation and whether it
// failed.
func (r *Recorder) ObserveTranscode(op string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.transcodeDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		r.transcodeErrors.WithLabelValues(op).Inc()
	}
}

// CleanupFailed counts one temporary that was left behind.
func (r *Recorder) CleanupFailed() {
	if r == nil {
		return
	}
	r.cleanupFailures.Inc()
}

// JournalAppendFailed counts one lost journal record.
func (r *Recorder) JournalAppendFailed() {
	if r == nil {
		return
	}
	r.journalErrors.Inc()
}

// WriteTextfile stamps the finish time and writes every metric to path in
// the Prometheus text format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	r.lastRun.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, r.reg)
}
