package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/shortmix/internal/logging"
)

// NormalizeWorkers bounds concurrent normalizations within one group.
const NormalizeWorkers = 8

// EncoderCaps describes the hardware encoder found on this machine.
type EncoderCaps interface {
	// HardwareEncoder returns the encoder name, or "" when unavailable.
	HardwareEncoder() string
	SupportsPreset(preset string) bool
}

// Observer receives timing and fallback events. The metrics package
// implements it; nil disables reporting.
type Observer interface {
	ObserveTranscode(op string, d time.Duration, err error)
	NormalizeFallback()
}

// Normalizer re-encodes clips to the canonical Target, preferring the
// hardware encoder and falling back to software.
type Normalizer struct {
	Runner   Runner
	Caps     EncoderCaps // nil means software only
	Target   Target
	Log      *logging.Logger
	Observer Observer
}

// HardwarePreset returns the configured preset when the encoder supports
// it, else the known-good fallback.
func (n *Normalizer) HardwarePreset() string {
	if n.Caps != nil && n.Caps.SupportsPreset(n.Target.HWPreset) {
		return n.Target.HWPreset
	}
	return n.Target.HWFallbackPreset
}

// Strategies returns the ordered attempts for in -> out: hardware first
// when available, software always last.
func (n *Normalizer) Strategies(in, out string) []Strategy {
	var list []Strategy
	if n.Caps != nil {
		if enc := n.Caps.HardwareEncoder(); enc != "" {
			list = append(list, Strategy{
				Name: enc,
				Args: NormalizeArgs(n.Target, in, out, hardwareCodecArgs(n.Target, enc, n.HardwarePreset())),
			})
		}
	}
	return append(list, Strategy{
		Name: n.Target.SWEncoder,
		Args: NormalizeArgs(n.Target, in, out, softwareCodecArgs(n.Target)),
	})
}

// Normalize re-encodes one clip. A hardware failure falls back to software
// silently apart from a warning; only total failure is returned.
func (n *Normalizer) Normalize(ctx context.Context, in, out string) error {
	start := time.Now()
	used, err := RunStrategies(ctx, n.Runner, "normalize", out, n.Strategies(in, out), func(s Strategy, res ExecResult) {
		reason := "failed"
		if MatchHardwareUnavailable(res.Stderr) {
			reason = "unavailable"
		}
		n.log().Warn("%s %s for %s, falling back to software", s.Name, reason, filepath.Base(in))
		n.log().Debug("%s stderr: %s", s.Name, StderrTail(res.Stderr, 3))
		if n.Observer != nil {
			n.Observer.NormalizeFallback()
		}
	})
	if n.Observer != nil {
		n.Observer.ObserveTranscode("normalize", time.Since(start), err)
	}
	if err != nil {
		return err
	}
	n.log().Debug("normalized %s with %s", filepath.Base(in), used.Name)
	return nil
}

// NormalizeGroup normalizes clips into dir as norm-<i>.mp4, at most
// NormalizeWorkers at a time. The result is indexed like clips regardless
// of completion order. The first failure cancels clips not yet started.
func (n *Normalizer) NormalizeGroup(ctx context.Context, clips []string, dir string) ([]string, error) {
	outs := make([]string, len(clips))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(NormalizeWorkers)
	for i, clip := range clips {
		out := filepath.Join(dir, fmt.Sprintf("norm-%d.mp4", i))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := n.Normalize(gctx, clip, out); err != nil {
				return fmt.Errorf("clip %s: %w", filepath.Base(clip), err)
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

func (n *Normalizer) log() *logging.Logger {
	if n.Log == nil {
		return logging.Nop()
	}
	return n.Log
}
