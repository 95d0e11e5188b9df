package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/backmassage/shortmix/internal/config"
)

// Target is the canonical stream layout every clip is normalized to, plus
// the encoder settings used to reach it.
type Target struct {
	Width, Height int
	FPS           int
	PixFmt        string
	SampleRate    int
	AudioBitrate  string

	Quality      int    // CQ for hardware, CRF for software
	VideoBitrate string // -b:v / -maxrate

	HWPreset         string
	HWFallbackPreset string
	HWBufsize        string
	SWEncoder        string
	SWPreset         string
	SWBufsize        string

	Verbose bool
}

// NewTarget copies the normalization settings out of cfg.
func NewTarget(cfg *config.Config) Target {
	return Target{
		Width:            cfg.Width,
		Height:           cfg.Height,
		FPS:              cfg.FPS,
		PixFmt:           cfg.PixFmt,
		SampleRate:       cfg.AudioSampleRate,
		AudioBitrate:     cfg.AudioBitrate,
		Quality:          cfg.Quality,
		VideoBitrate:     cfg.VideoBitrate,
		HWPreset:         cfg.HWPreset,
		HWFallbackPreset: cfg.HWFallbackPreset,
		HWBufsize:        cfg.HWBufsize,
		SWEncoder:        cfg.SWEncoder,
		SWPreset:         cfg.SWPreset,
		SWBufsize:        cfg.SWBufsize,
		Verbose:          cfg.Verbose,
	}
}

// preamble is shared by every ffmpeg invocation.
func preamble(verbose bool) []string {
	level := "error"
	if verbose {
		level = "info"
	}
	return []string{"-hide_banner", "-nostdin", "-y", "-loglevel", level}
}

// NormalizeArgs builds the full argument list re-encoding in to out with
// the given video codec arguments.
//
//	-fflags +genpts -i in -vf fps=F,scale=W:H:flags=lanczos <codec>
//	-pix_fmt P -movflags +faststart -c:a aac -ar R -b:a B out
func NormalizeArgs(t Target, in, out string, videoCodec []string) []string {
	args := make([]string, 0, 48)
	args = append(args, preamble(t.Verbose)...)
	args = append(args,
		"-fflags", "+genpts",
		"-i", in,
		"-vf", fmt.Sprintf("fps=%d,scale=%d:%d:flags=lanczos", t.FPS, t.Width, t.Height),
	)
	args = append(args, videoCodec...)
	args = append(args,
		"-pix_fmt", t.PixFmt,
		"-movflags", "+faststart",
		"-c:a", "aac",
		"-ar", strconv.Itoa(t.SampleRate),
		"-b:a", t.AudioBitrate,
		out,
	)
	return args
}

// hardwareCodecArgs is the VBR constant-quality hardware encode.
func hardwareCodecArgs(t Target, encoder, preset string) []string {
	return []string{
		"-c:v", encoder,
		"-profile:v", "main",
		"-rc", "vbr",
		"-cq", strconv.Itoa(t.Quality),
		"-b:v", t.VideoBitrate,
		"-maxrate", t.VideoBitrate,
		"-bufsize", t.HWBufsize,
		"-preset", preset,
	}
}

// softwareCodecArgs is the CRF software encode used as the last resort.
func softwareCodecArgs(t Target) []string {
	return []string{
		"-c:v", t.SWEncoder,
		"-preset", t.SWPreset,
		"-profile:v", "main",
		"-level", "4.2",
		"-crf", strconv.Itoa(t.Quality),
		"-maxrate", t.VideoBitrate,
		"-bufsize", t.SWBufsize,
	}
}

// ConcatArgs stream-copies the parts listed in manifest into out.
func ConcatArgs(verbose bool, manifest, out string) []string {
	args := preamble(verbose)
	return append(args,
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		out,
	)
}

// MixGraph returns the filter graph that delays the background track by
// delayMs, scales it by volume and mixes it under the video's own audio.
// Without source audio the processed track becomes the only audio.
func MixGraph(delayMs int64, volume float64, sourceHasAudio bool) string {
	vol := strconv.FormatFloat(volume, 'f', -1, 64)
	if !sourceHasAudio {
		return fmt.Sprintf("[1:a]adelay=%d|%d,volume=%s[aout]", delayMs, delayMs, vol)
	}
	return fmt.Sprintf(
		"[1:a]adelay=%d|%d[delayed_bgm];[delayed_bgm]volume=%s[a_bgm];"+
			"[0:a][a_bgm]amix=inputs=2:duration=first:dropout_transition=3[aout]",
		delayMs, delayMs, vol)
}

// MixArgs overlays track onto input. The track loops so it always covers
// the video; -shortest trims to the video's length.
func MixArgs(verbose bool, input, track, out, graph string) []string {
	args := preamble(verbose)
	return append(args,
		"-i", input,
		"-stream_loop", "-1",
		"-i", track,
		"-filter_complex", graph,
		"-map", "0:v",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		out,
	)
}
