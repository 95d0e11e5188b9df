package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/shortmix/internal/logging"
	"github.com/backmassage/shortmix/internal/naming"
)

// AudioProber reports whether a media file carries an audio stream.
type AudioProber interface {
	HasAudio(ctx context.Context, path string) (bool, error)
}

// Mixer writes finished videos into the output directory, either with a
// background track mixed in or as a byte copy.
type Mixer struct {
	Runner   Runner
	Prober   AudioProber // nil assumes the input has audio
	Volume   float64
	MaxDelay time.Duration
	Rand     *rand.Rand
	Ext      string // output extension without dot
	Log      *logging.Logger
	Observer Observer
	Verbose  bool
}

// Mix overlays track onto input and writes the result to the next free
// numbered slot in outputDir, returning its path. The track starts after a
// random delay in [0, MaxDelay]. There is no retry; on failure any partial
// output is removed and input is left untouched.
func (m *Mixer) Mix(ctx context.Context, input, track, outputDir string) (string, error) {
	hasAudio := true
	if m.Prober != nil {
		ok, err := m.Prober.HasAudio(ctx, input)
		if err != nil {
			m.log().Warn("probe %s: %v; assuming it has audio", filepath.Base(input), err)
		} else {
			hasAudio = ok
		}
	}

	out, err := naming.NextOutputPath(outputDir, m.Ext)
	if err != nil {
		return "", err
	}

	delay := m.delayMillis()
	args := MixArgs(m.Verbose, input, track, out, MixGraph(delay, m.Volume, hasAudio))
	m.log().Debug("mixing %s at %dms, volume %.2f", filepath.Base(track), delay, m.Volume)

	start := time.Now()
	res := m.Runner.Run(ctx, args)
	if res.Err != nil {
		removeIfExists(out)
		err = newTranscodeError("mix", args, res)
	}
	if m.Observer != nil {
		m.Observer.ObserveTranscode("mix", time.Since(start), err)
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

// delayMillis draws uniformly from [0, MaxDelay] in whole milliseconds.
func (m *Mixer) delayMillis() int64 {
	maxMs := m.MaxDelay.Milliseconds()
	if maxMs <= 0 || m.Rand == nil {
		return 0
	}
	return m.Rand.Int64N(maxMs + 1)
}

// CopyVerbatim copies input byte-for-byte to the next free numbered slot in
// outputDir and syncs it. The slot is created exclusively so an existing
// file is never overwritten.
func (m *Mixer) CopyVerbatim(input, outputDir string) (string, error) {
	out, err := naming.NextOutputPath(outputDir, m.Ext)
	if err != nil {
		return "", err
	}
	if err := copyFile(input, out); err != nil {
		return "", fmt.Errorf("copy %s: %w", filepath.Base(input), err)
	}
	return out, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func (m *Mixer) log() *logging.Logger {
	if m.Log == nil {
		return logging.Nop()
	}
	return m.Log
}
