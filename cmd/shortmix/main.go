// Command shortmix assembles short videos from a pool of clips.
//
// It loads configuration, validates paths, and either runs system
// diagnostics (--check) or groups unused clips into finished videos,
// recording every group in the journal.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/shortmix/internal/check"
	"github.com/backmassage/shortmix/internal/config"
	"github.com/backmassage/shortmix/internal/display"
	"github.com/backmassage/shortmix/internal/ffmpeg"
	"github.com/backmassage/shortmix/internal/journal"
	"github.com/backmassage/shortmix/internal/logging"
	"github.com/backmassage/shortmix/internal/metrics"
	"github.com/backmassage/shortmix/internal/pipeline"
	"github.com/backmassage/shortmix/internal/probe"
	"github.com/backmassage/shortmix/internal/term"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: bootstrap. No logger yet, so errors go straight to stderr.
	cfg := config.DefaultConfig()
	if err := config.Load(&cfg, config.ConfigFileArg(os.Args[1:])); err != nil {
		fmt.Fprintf(os.Stderr, "shortmix: %v\n", err)
		return exitConfig
	}
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "shortmix: %v\n", err)
		return exitConfig
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "shortmix: %v\n", err)
		return exitConfig
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shortmix: %v\n", err)
		return exitFailure
	}
	defer log.Close()

	// Phase 2: logger available.
	display.PrintBanner(os.Stdout, version)
	ctx := context.Background()
	runner := ffmpeg.ExecRunner{Binary: cfg.FFmpegPath, Verbose: cfg.Verbose}

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, &cfg, runner, log) {
			return exitFailure
		}
		return exitOK
	}

	sourceAbs, outputAbs, err := resolvePaths(&cfg)
	if err != nil {
		log.Error("%v", err)
		return exitConfig
	}
	if cfg.ConfigFile != "" {
		log.Info("Config: %s", cfg.ConfigFile)
	}
	log.Info("Source: %s", sourceAbs)
	log.Info("Output: %s", outputAbs)

	runID := uuid.NewString()
	lock, err := journal.AcquireLock(cfg.JournalPath, runID)
	if err != nil {
		log.Error("%v", err)
		if errors.Is(err, journal.ErrLocked) {
			log.Error("Another shortmix run is using %s", cfg.JournalPath)
		}
		return exitFailure
	}
	defer lock.Release()

	// Phase 3: plan.
	replayed, err := journal.Replay(cfg.JournalPath)
	if err != nil {
		log.Error("%v", err)
		return exitFailure
	}
	log.Info("Journal: %d records (%d ok, %d failed)", len(replayed.Records), replayed.Successes, replayed.Failures)
	if replayed.Skipped > 0 {
		log.Warn("Journal: skipped %d malformed lines", replayed.Skipped)
	}

	inv, err := pipeline.ScanInventory(sourceAbs, cfg.VideoExts, replayed.UsedSet())
	if err != nil {
		return fail(log, err)
	}
	tracks, err := pipeline.ListTracks(cfg.BGMDir, cfg.AudioExts)
	if err != nil {
		return fail(log, err)
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	groups, err := pipeline.BuildGroups(inv.Clips, cfg.GroupSize, cfg.MaxGroups, rng)
	if err != nil {
		return fail(log, err)
	}

	log.Info("Clips: %d found, %d already used, %d available", inv.Found, inv.Excluded, len(inv.Clips))
	log.Info("Plan: %d groups of %d clips (%d clips)", len(groups), cfg.GroupSize, pipeline.Clips(groups))
	if cfg.BGMDir != "" {
		log.Info("Music: %d tracks, volume %.2f", len(tracks), cfg.BGMVolume)
		if len(tracks) == 0 {
			log.Warn("No background tracks found, outputs are copied without music")
		}
	}
	if len(groups) == 0 {
		log.Warn("Not enough unused clips for one group of %d", cfg.GroupSize)
		return exitOK
	}
	if cfg.DryRun {
		printPlan(log, groups)
		return exitOK
	}

	if err := check.CheckDeps(ctx, &cfg, runner); err != nil {
		log.Error("%v", err)
		return exitFailure
	}
	encoder := ""
	if cfg.UseHardware {
		encoder = cfg.HWEncoder
	}
	profile := check.ProbeEncoders(ctx, runner, encoder, log)
	if enc := profile.HardwareEncoder(); enc != "" {
		log.Info("Encoder: %s (fallback %s)", enc, cfg.SWEncoder)
	} else {
		log.Info("Encoder: %s", cfg.SWEncoder)
	}

	// Phase 4: run.
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		log.Error("%v", err)
		return exitFailure
	}
	defer j.Close()

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	workDir = filepath.Join(workDir, "shortmix-"+runID)
	defer os.RemoveAll(workDir)

	rec := metrics.New()
	target := ffmpeg.NewTarget(&cfg)
	prober := &probe.Prober{Runner: ffmpeg.ExecRunner{Binary: cfg.FFprobePath}}
	progress := display.NewProgressPrinter(os.Stdout, term.IsTerminal(os.Stdout) && cfg.LogFormat == config.LogConsole)

	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Journal:      j,
		Normalizer:   &ffmpeg.Normalizer{Runner: runner, Caps: profile, Target: target, Log: log, Observer: rec},
		Concatenator: &ffmpeg.Concatenator{Runner: runner, Observer: rec, Verbose: cfg.Verbose},
		Mixer: &ffmpeg.Mixer{
			Runner:   runner,
			Prober:   prober,
			Volume:   cfg.BGMVolume,
			MaxDelay: cfg.BGMMaxDelay,
			Rand:     rng,
			Ext:      cfg.OutputExt,
			Log:      log,
			Observer: rec,
			Verbose:  cfg.Verbose,
		},
		Prober:  prober,
		Layout:  pipeline.Layout{Width: cfg.Width, Height: cfg.Height, PixFmt: cfg.PixFmt},
		Tracks:  tracks,
		Rand:    rng,
		Log:     log,
		Metrics: rec,
		WorkDir: workDir,
		RunID:   runID,
		OnProgress: func(p pipeline.Progress) {
			label := "failed"
			s, ok := p.Record.(journal.Success)
			if ok {
				label = filepath.Base(s.Output)
			}
			progress.Update(p.Done, p.Total, ok, label)
		},
	})

	// First SIGINT/SIGTERM stops after the current group; a second exits.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; !ok {
			return
		}
		log.Warn("Interrupted, finishing current group (interrupt again to abort)")
		orch.Stop()
		if _, ok := <-sigCh; !ok {
			return
		}
		log.Error("Aborted")
		lock.Release()
		os.Exit(130)
	}()

	start := time.Now()
	if err := orch.Start(ctx, groups, outputAbs); err != nil {
		log.Error("%v", err)
		return exitFailure
	}
	stats := orch.Wait()

	display.PrintSummary(os.Stdout, display.Summary{
		Planned:       stats.Total,
		Succeeded:     stats.Succeeded,
		Failed:        stats.Failed,
		JournalErrors: stats.JournalErrors,
		Stopped:       stats.Stopped,
		OutputBytes:   stats.OutputBytes,
		Elapsed:       time.Since(start),
	})
	log.Debug("run %s finished (%s)", runID, commit)

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("Cannot write metrics: %v", err)
		}
	}

	if stats.Failed > 0 || stats.JournalErrors > 0 {
		return exitFailure
	}
	return exitOK
}

// resolvePaths checks the source exists, creates the output directory and
// makes sure output is not inside source. Errors are configuration errors.
func resolvePaths(cfg *config.Config) (string, string, error) {
	sourceAbs, err := absPath(cfg.SourceDir)
	if err != nil {
		return "", "", &pipeline.ConfigError{Field: "source_dir", Err: fmt.Errorf("%w: %s", pipeline.ErrSourceNotFound, cfg.SourceDir)}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return "", "", &pipeline.ConfigError{Field: "output_dir", Err: err}
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		return "", "", &pipeline.ConfigError{Field: "output_dir", Err: err}
	}
	if err := cfg.ValidatePaths(sourceAbs, outputAbs); err != nil {
		return "", "", &pipeline.ConfigError{Field: "output_dir", Err: err}
	}
	return sourceAbs, outputAbs, nil
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of source vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// fail logs err and maps it to an exit code.
func fail(log *logging.Logger, err error) int {
	log.Error("%v", err)
	var cerr *pipeline.ConfigError
	if errors.As(err, &cerr) {
		return exitConfig
	}
	return exitFailure
}

func printPlan(log *logging.Logger, groups []pipeline.Group) {
	log.Warn("DRY RUN, nothing will be written")
	for i, g := range groups {
		log.Info("Group %d:", i+1)
		for _, clip := range g {
			log.Info("  %s", clip)
		}
	}
}
