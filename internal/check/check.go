// Package check provides system diagnostics (--check mode), pre-run
// dependency validation (CheckDeps) and hardware encoder capability probing
// for ffmpeg, ffprobe, the hardware H.264 encoder, libx264 and AAC.
package check

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/backmassage/shortmix/internal/config"
	"github.com/backmassage/shortmix/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound       = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound      = errors.New("ffprobe not found on PATH")
	ErrSoftwareEncodeFailed = errors.New("software test encode failed (libx264 unusable)")
)

// Logger is the minimal logging interface needed by this package.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(string, ...any)
}

// RunCheck runs the --check flow: prints availability of ffmpeg, ffprobe,
// the hardware encoder and its presets, and test-encodes with the hardware
// encoder, libx264 and AAC. It returns false when something the pipeline
// cannot run without is broken; a missing hardware encoder is only a warning.
func RunCheck(ctx context.Context, cfg *config.Config, r ffmpeg.Runner, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkFfmpeg(ctx, cfg, r, log)
	ok = checkFfprobe(cfg, log) && ok
	if !ok {
		return false
	}
	checkHardware(ctx, cfg, r, log)
	ok = checkSoftware(ctx, cfg, r, log) && ok
	ok = checkAAC(ctx, r, log) && ok
	return ok
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(ctx context.Context, cfg *config.Config, r ffmpeg.Runner, log Logger) bool {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		log.Error("ffmpeg not found (%s)", cfg.FFmpegPath)
		return false
	}
	res := r.Run(ctx, []string{"-version"})
	if res.Err != nil {
		log.Warn("ffmpeg found but -version failed: %v", res.Err)
		return false
	}
	firstLine := strings.TrimSpace(res.Stdout)
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("ffmpeg: %s", firstLine)
	return true
}

func checkFfprobe(cfg *config.Config, log Logger) bool {
	path, err := exec.LookPath(cfg.FFprobePath)
	if err != nil {
		log.Error("ffprobe not found (%s)", cfg.FFprobePath)
		return false
	}
	log.Success("ffprobe: %s", path)
	return true
}

// checkHardware probes the hardware encoder, lists its presets and runs a
// short test encode.
func checkHardware(ctx context.Context, cfg *config.Config, r ffmpeg.Runner, log Logger) {
	if !cfg.UseHardware {
		log.Info("Hardware encoding disabled")
		return
	}
	profile := ProbeEncoders(ctx, r, cfg.HWEncoder, log)
	if !profile.Hardware {
		log.Warn("%s not available; clips will be encoded with %s", cfg.HWEncoder, cfg.SWEncoder)
		return
	}
	log.Info("%s presets: %s", cfg.HWEncoder, strings.Join(profile.PresetNames(), " "))
	if profile.SupportsPreset(cfg.HWPreset) {
		log.Success("Preset %s supported", cfg.HWPreset)
	} else {
		log.Warn("Preset %s not supported; using %s", cfg.HWPreset, cfg.HWFallbackPreset)
	}

	log.Info("Testing %s...", cfg.HWEncoder)
	if res := r.Run(ctx, videoTestArgs(cfg.HWEncoder)); res.Err == nil {
		log.Success("%s works", cfg.HWEncoder)
	} else {
		log.Warn("%s test encode failed; software fallback will be used: %s",
			cfg.HWEncoder, ffmpeg.StderrTail(res.Stderr, 1))
	}
}

// checkSoftware runs a minimal libx264 encode.
func checkSoftware(ctx context.Context, cfg *config.Config, r ffmpeg.Runner, log Logger) bool {
	log.Info("Testing %s...", cfg.SWEncoder)
	if res := r.Run(ctx, videoTestArgs(cfg.SWEncoder)); res.Err != nil {
		log.Error("%s test encode failed", cfg.SWEncoder)
		return false
	}
	log.Success("%s works", cfg.SWEncoder)
	return true
}

// checkAAC runs a minimal AAC encode to verify the audio encoder works.
func checkAAC(ctx context.Context, r ffmpeg.Runner, log Logger) bool {
	log.Info("Testing AAC encoder...")
	res := r.Run(ctx, []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", "aac", "-f", "null", "-",
	})
	if res.Err != nil {
		log.Error("AAC encoder test failed")
		return false
	}
	log.Success("AAC encoder works")
	return true
}

// CheckDeps is the pre-run validation: ffmpeg and ffprobe must be on PATH
// and the software encoder must work, since it is the last resort for every
// clip. Returns a sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config, r ffmpeg.Runner) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return ErrFfprobeNotFound
	}
	if res := r.Run(ctx, videoTestArgs(cfg.SWEncoder)); res.Err != nil {
		return ErrSoftwareEncodeFailed
	}
	return nil
}

// videoTestArgs returns the ffmpeg arguments for a minimal test encode with
// encoder. Shared by the check flow and CheckDeps.
func videoTestArgs(encoder string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", encoder,
		"-f", "null", "-",
	}
}
