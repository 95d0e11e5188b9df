package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/backmassage/shortmix/internal/display"
	"github.com/backmassage/shortmix/internal/journal"
	"github.com/backmassage/shortmix/internal/logging"
	"github.com/backmassage/shortmix/internal/metrics"
	"github.com/backmassage/shortmix/internal/probe"
)

// combinedName is the concatenated group inside its temp dir.
const combinedName = "combined.mp4"

// State is the orchestrator lifecycle: Idle -> Running -> Stopping -> Idle.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Normalizer turns the clips of one group into uniform parts inside dir.
type Normalizer interface {
	NormalizeGroup(ctx context.Context, clips []string, dir string) ([]string, error)
}

// Concatenator joins parts, in order, into out.
type Concatenator interface {
	Concat(ctx context.Context, parts []string, out string) error
}

// Mixer places a finished group into the output directory.
type Mixer interface {
	Mix(ctx context.Context, input, track, outputDir string) (string, error)
	CopyVerbatim(input, outputDir string) (string, error)
}

// MediaProber inspects a media file.
type MediaProber interface {
	Probe(ctx context.Context, path string) (*probe.Result, error)
}

// Layout is the video layout every combined group must have.
type Layout struct {
	Width, Height int
	PixFmt        string
}

// RecordWriter durably appends journal records.
type RecordWriter interface {
	Append(r journal.Record) error
}

// Progress is reported after each group. Done increases by one per call.
type Progress struct {
	Done   int
	Total  int
	Group  int // zero-based index into the planned groups
	Record journal.Record
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Journal      RecordWriter
	Normalizer   Normalizer
	Concatenator Concatenator
	Mixer        Mixer
	Prober       MediaProber // checks the combined video; nil skips the check
	Layout       Layout
	Tracks       []string   // background tracks; empty means verbatim copies
	Rand         *rand.Rand // track choice
	Log          *logging.Logger
	Metrics      *metrics.Recorder
	WorkDir      string // parent of per-group temp dirs; os.TempDir() when empty
	RunID        string
	OnProgress   func(Progress)
	Now          func() time.Time
}

// Orchestrator runs planned groups one at a time on a background worker.
// Stop is cooperative: the group in flight always finishes and is recorded.
type Orchestrator struct {
	deps Deps

	mu    sync.Mutex
	state State
	done  chan struct{}
	stats RunStats
}

// NewOrchestrator returns an idle orchestrator.
func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.WorkDir == "" {
		deps.WorkDir = os.TempDir()
	}
	return &Orchestrator{deps: deps}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Start launches the worker over groups, writing outputs into outputDir.
// Cancelling ctx acts like Stop; transcodes already running are not
// interrupted.
func (o *Orchestrator) Start(ctx context.Context, groups []Group, outputDir string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Idle {
		return ErrAlreadyRunning
	}
	o.state = Running
	o.stats = RunStats{Total: len(groups)}
	o.done = make(chan struct{})
	go o.loop(ctx, groups, outputDir, o.done)
	return nil
}

// Stop asks the worker to finish the current group and then return.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == Running {
		o.state = Stopping
		o.deps.Log.Warn("Stop requested, finishing current group")
	}
}

// Wait blocks until the worker is idle and returns the stats of the last run.
func (o *Orchestrator) Wait() RunStats {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// Run is Start followed by Wait.
func (o *Orchestrator) Run(ctx context.Context, groups []Group, outputDir string) (RunStats, error) {
	if err := o.Start(ctx, groups, outputDir); err != nil {
		return RunStats{}, err
	}
	return o.Wait(), nil
}

func (o *Orchestrator) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return o.State() == Stopping
}

func (o *Orchestrator) loop(ctx context.Context, groups []Group, outputDir string, done chan struct{}) {
	// Transcodes run to completion even after ctx is cancelled.
	work := context.WithoutCancel(ctx)
	var stats RunStats
	stats.Total = len(groups)

	for k, g := range groups {
		if o.stopping(ctx) {
			stats.Stopped = true
			break
		}
		rec, outBytes := o.runGroup(work, k, g, outputDir)

		stats.Done++
		if _, ok := rec.(journal.Success); ok {
			stats.Succeeded++
			stats.OutputBytes += outBytes
			o.deps.Metrics.GroupDone(true)
		} else {
			stats.Failed++
			o.deps.Metrics.GroupDone(false)
		}

		if err := o.deps.Journal.Append(rec); err != nil {
			stats.JournalErrors++
			o.deps.Metrics.JournalAppendFailed()
			o.deps.Log.Error("Journal append failed for group %d: %v", k+1, err)
		}

		o.mu.Lock()
		o.stats = stats
		o.mu.Unlock()

		if o.deps.OnProgress != nil {
			o.deps.OnProgress(Progress{Done: stats.Done, Total: stats.Total, Group: k, Record: rec})
		}
	}

	o.mu.Lock()
	o.stats = stats
	o.state = Idle
	o.mu.Unlock()
	close(done)
}

// runGroup produces one output for g and returns its journal record along
// with the output size. Temporaries are gone by the time it returns.
func (o *Orchestrator) runGroup(ctx context.Context, k int, g Group, outputDir string) (journal.Record, int64) {
	log := o.deps.Log.With("group", k+1)
	inputs := []string(g)

	out, track, err := o.produce(ctx, log, k, g, outputDir)
	if err != nil {
		log.Error("Group %d failed: %v", k+1, err)
		return journal.Failure{
			Inputs:  inputs,
			Message: err.Error(),
			Time:    o.deps.Now(),
			RunID:   o.deps.RunID,
		}, 0
	}

	var size int64
	if fi, err := os.Stat(out); err == nil {
		size = fi.Size()
	}
	log.Success("Group %d -> %s", k+1, filepath.Base(out))
	return journal.Success{
		Output: out,
		Inputs: inputs,
		BGM:    track,
		Time:   o.deps.Now(),
		RunID:  o.deps.RunID,
	}, size
}

// produce normalizes, concatenates and places one group, returning the
// output path and the track used ("" for none).
func (o *Orchestrator) produce(ctx context.Context, log *logging.Logger, k int, g Group, outputDir string) (string, string, error) {
	if err := os.MkdirAll(o.deps.WorkDir, 0o755); err != nil {
		return "", "", &GroupError{Step: "workdir", Err: err}
	}
	dir, err := os.MkdirTemp(o.deps.WorkDir, fmt.Sprintf("group-%d-*", k+1))
	if err != nil {
		return "", "", &GroupError{Step: "workdir", Err: err}
	}
	defer o.cleanup(log, dir)

	log.Info("Normalizing %d clips", len(g))
	parts, err := o.deps.Normalizer.NormalizeGroup(ctx, g, dir)
	if err != nil {
		return "", "", &GroupError{Step: "normalize", Err: err}
	}

	combined := filepath.Join(dir, combinedName)
	if err := o.deps.Concatenator.Concat(ctx, parts, combined); err != nil {
		return "", "", &GroupError{Step: "concat", Err: err}
	}
	if err := o.verify(ctx, log, combined); err != nil {
		return "", "", &GroupError{Step: "verify", Err: err}
	}

	track, missing := PickTrack(o.deps.Tracks, o.deps.Rand)
	if missing {
		log.Warn("Background track vanished, copying without music")
	}
	if track == "" {
		out, err := o.deps.Mixer.CopyVerbatim(combined, outputDir)
		if err != nil {
			return "", "", &GroupError{Step: "copy", Err: err}
		}
		return out, "", nil
	}

	log.Debug("Mixing with %s", filepath.Base(track))
	out, err := o.deps.Mixer.Mix(ctx, combined, track, outputDir)
	if err != nil {
		return "", "", &GroupError{Step: "mix", Err: err}
	}
	return out, track, nil
}

// verify inspects the combined video and rejects it unless it has the
// expected layout.
func (o *Orchestrator) verify(ctx context.Context, log *logging.Logger, path string) error {
	if o.deps.Prober == nil {
		return nil
	}
	r, err := o.deps.Prober.Probe(ctx, path)
	if err != nil {
		return err
	}
	l := o.deps.Layout
	if err := r.CheckLayout(l.Width, l.Height, l.PixFmt); err != nil {
		return err
	}
	log.Info("Combined %s %s %s, %s, %s", r.Video.Codec, r.Resolution(), r.Video.PixFmt,
		r.Duration.Round(time.Millisecond), display.FormatBytes(r.Size))
	for i, a := range r.AudioStreams {
		log.Debug("Combined audio stream %d: %s", i, a.Codec)
	}
	return nil
}

// cleanup removes every file in the group's temp dir and then the dir.
// Failures are logged and counted, never returned.
func (o *Orchestrator) cleanup(log *logging.Logger, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		o.cleanupFailed(log, dir, err)
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(p); err != nil {
			o.cleanupFailed(log, p, err)
		}
	}
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		o.cleanupFailed(log, dir, err)
	}
}

func (o *Orchestrator) cleanupFailed(log *logging.Logger, path string, err error) {
	o.deps.Metrics.CleanupFailed()
	log.Warn("Could not remove temporary %s: %v", path, err)
}
