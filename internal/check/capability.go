package check

import (
	"bufio"
	"context"
	"slices"
	"strings"

	"github.com/backmassage/shortmix/internal/ffmpeg"
)

// EncoderProfile is what the local ffmpeg can do, probed once per run.
type EncoderProfile struct {
	Encoder  string // hardware encoder asked for
	Hardware bool   // Encoder is listed by ffmpeg
	Presets  map[string]struct{}
}

// HardwareEncoder returns the encoder name when present, else "".
func (p EncoderProfile) HardwareEncoder() string {
	if !p.Hardware {
		return ""
	}
	return p.Encoder
}

// SupportsPreset reports whether the hardware encoder accepts preset.
func (p EncoderProfile) SupportsPreset(preset string) bool {
	_, ok := p.Presets[preset]
	return ok
}

// PresetNames returns the supported presets in sorted order.
func (p EncoderProfile) PresetNames() []string {
	names := make([]string, 0, len(p.Presets))
	for n := range p.Presets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// ProbeEncoders asks ffmpeg whether encoder exists and which presets it
// takes. Failures never surface: a missing tool, non-zero exit or
// unparseable help text all leave the capability absent, logged at debug.
func ProbeEncoders(ctx context.Context, r ffmpeg.Runner, encoder string, log Logger) EncoderProfile {
	profile := EncoderProfile{Encoder: encoder, Presets: map[string]struct{}{}}
	if encoder == "" {
		return profile
	}

	res := r.Run(ctx, []string{"-hide_banner", "-encoders"})
	if res.Err != nil {
		log.Debug("listing encoders failed: %v", res.Err)
		return profile
	}
	if !ListsEncoder(res.Stdout, encoder) {
		log.Debug("encoder %s not listed by ffmpeg", encoder)
		return profile
	}
	profile.Hardware = true

	res = r.Run(ctx, []string{"-hide_banner", "-h", "encoder=" + encoder})
	if res.Err != nil {
		log.Debug("help for %s failed: %v", encoder, res.Err)
		return profile
	}
	for _, p := range ParsePresets(res.Stdout) {
		profile.Presets[p] = struct{}{}
	}
	if len(profile.Presets) == 0 {
		log.Debug("no preset list in help for %s", encoder)
	}
	return profile
}

// ListsEncoder reports whether `ffmpeg -encoders` output names encoder.
// Rows look like " V....D h264_nvenc   NVIDIA NVENC H.264 encoder".
func ListsEncoder(out, encoder string) bool {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[1] == encoder {
			return true
		}
	}
	return false
}

// ParsePresets extracts the named values of the -preset option from
// `ffmpeg -h encoder=<name>` output:
//
//	-preset            <int>        E..V....... Set the encoding preset (from 0 to 18) (default p4)
//	   default         0            E..V.......
//	   p4              15           E..V....... medium (default)
//
// Only the rows indented beneath -preset are read.
func ParsePresets(help string) []string {
	var presets []string
	inPreset := false
	presetIndent := 0

	sc := bufio.NewScanner(strings.NewReader(help))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			if inPreset {
				break
			}
			continue
		}
		indent := len(line) - len(trimmed)

		if strings.HasPrefix(trimmed, "-") {
			if inPreset {
				break
			}
			if f := strings.Fields(trimmed); f[0] == "-preset" {
				inPreset = true
				presetIndent = indent
			}
			continue
		}
		if !inPreset {
			continue
		}
		if indent <= presetIndent {
			break
		}
		presets = append(presets, strings.Fields(trimmed)[0])
	}
	return presets
}
