// Package config holds runtime configuration: defaults, config file and
// environment layering, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// LogFormat selects how console log lines are rendered.
type LogFormat string

const (
	LogConsole LogFormat = "console" // Human-readable leveled lines (default).
	LogJSON    LogFormat = "json"    // One JSON object per line.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then layered by [Load] (file + environment) and finally mutated by
// [ParseFlags] before being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (source and output are set from positional args).
	SourceDir   string `koanf:"source_dir"`
	OutputDir   string `koanf:"output_dir"`
	BGMDir      string `koanf:"bgm_dir"`
	JournalPath string `koanf:"journal" validate:"required"`
	WorkDir     string `koanf:"work_dir"` // Default: os.TempDir() when empty.

	// Grouping.
	GroupSize int      `koanf:"group_size" validate:"min=2,max=100"` // Default: 6.
	MaxGroups int      `koanf:"limit" validate:"min=0"`              // 0 = all groups.
	VideoExts []string `koanf:"video_exts" validate:"min=1,dive,startswith=."`
	AudioExts []string `koanf:"audio_exts" validate:"min=1,dive,startswith=."`
	OutputExt string   `koanf:"-"` // Fixed: "mp4".

	// Background music.
	BGMVolume   float64       `koanf:"bgm_volume" validate:"gte=0,lte=1"` // Default: 0.5.
	BGMMaxDelay time.Duration `koanf:"bgm_max_delay" validate:"gte=0s"`   // Default: 10s.

	// Transcoder binaries.
	FFmpegPath  string `koanf:"ffmpeg" validate:"required"`
	FFprobePath string `koanf:"ffprobe" validate:"required"`

	// Encoder settings.
	UseHardware      bool   `koanf:"hardware"`                        // Default: true. Cleared by --no-hw.
	HWEncoder        string `koanf:"hw_encoder" validate:"required"`  // Default: "h264_nvenc".
	HWPreset         string `koanf:"hw_preset" validate:"required"`   // Default: "p4".
	HWFallbackPreset string `koanf:"-"`                               // Fixed: "medium".
	HWBufsize        string `koanf:"-"`                               // Fixed: "24M".
	SWEncoder        string `koanf:"-"`                               // Fixed: "libx264".
	SWPreset         string `koanf:"-"`                               // Fixed: "medium".
	SWBufsize        string `koanf:"-"`                               // Fixed: "16M".
	Quality          int    `koanf:"quality" validate:"min=0,max=51"` // Default: 23 (CQ for hw, CRF for sw).
	VideoBitrate     string `koanf:"video_bitrate" validate:"required"`

	// Canonical normalization target.
	Width           int    `koanf:"width" validate:"min=16"`  // Default: 1080.
	Height          int    `koanf:"height" validate:"min=16"` // Default: 1920.
	FPS             int    `koanf:"fps" validate:"min=1,max=240"`
	PixFmt          string `koanf:"-"` // Fixed: "yuv420p".
	AudioSampleRate int    `koanf:"-"` // Fixed: 48000 Hz.
	AudioBitrate    string `koanf:"audio_bitrate" validate:"required"`

	// Display and logging.
	Verbose     bool      `koanf:"verbose"`
	ColorMode   ColorMode `koanf:"color" validate:"oneof=auto always never"`
	LogFormat   LogFormat `koanf:"log_format" validate:"oneof=console json"`
	LogFile     string    `koanf:"log_file"`
	MetricsFile string    `koanf:"metrics_file"`

	// Run mode (CLI only).
	CheckOnly  bool   `koanf:"-"`
	DryRun     bool   `koanf:"-"`
	ConfigFile string `koanf:"-"`
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [Load] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		JournalPath:      filepath.Join("log", "journal.jsonl"),
		GroupSize:        6,
		MaxGroups:        0,
		VideoExts:        []string{".mp4"},
		AudioExts:        []string{".mp3"},
		OutputExt:        "mp4",
		BGMVolume:        0.5,
		BGMMaxDelay:      10 * time.Second,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		UseHardware:      true,
		HWEncoder:        "h264_nvenc",
		HWPreset:         "p4",
		HWFallbackPreset: "medium",
		HWBufsize:        "24M",
		SWEncoder:        "libx264",
		SWPreset:         "medium",
		SWBufsize:        "16M",
		Quality:          23,
		VideoBitrate:     "12M",
		Width:            1080,
		Height:           1920,
		FPS:              60,
		PixFmt:           "yuv420p",
		AudioSampleRate:  48000,
		AudioBitrate:     "160k",
		ColorMode:        ColorAuto,
		LogFormat:        LogConsole,
	}
}

var validate = validator.New()

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks field ranges and enums. When not in CheckOnly mode, it
// also requires that both source and output directory paths are non-empty.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return err
	}

	for i, ext := range c.VideoExts {
		c.VideoExts[i] = strings.ToLower(ext)
	}
	for i, ext := range c.AudioExts {
		c.AudioExts[i] = strings.ToLower(ext)
	}

	if c.CheckOnly {
		return nil
	}
	if c.SourceDir == "" || c.OutputDir == "" {
		return errors.New("need exactly source_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved source directory, so produced videos never re-enter the
// clip pool. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(sourceAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == sourceAbs || strings.HasPrefix(outputAbs+sep, sourceAbs+sep) {
		return errors.New("output directory must not be inside source directory")
	}
	return nil
}
