package ffmpeg

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// fakeRunner imitates ffmpeg closely enough for the package tests: it
// writes the output file (last argument) from its inputs. fail decides
// which invocations exit non-zero.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	fail  func(args []string) bool
}

func (f *fakeRunner) Run(_ context.Context, args []string) ExecResult {
	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(args))
	f.mu.Unlock()

	out := args[len(args)-1]
	if f.fail != nil && f.fail(args) {
		// Leave a partial file behind like a real crash would.
		_ = os.WriteFile(out, []byte("partial"), 0o644)
		return ExecResult{Stderr: "frame=1\nNo NVENC capable devices found\n", Err: errors.New("exit status 1")}
	}

	inputs := argValues(args, "-i")
	var data []byte
	switch {
	case hasArg(args, "concat"):
		manifest, err := os.ReadFile(inputs[0])
		if err != nil {
			return ExecResult{Err: err}
		}
		for _, p := range manifestPaths(string(manifest)) {
			b, err := os.ReadFile(p)
			if err != nil {
				return ExecResult{Err: err}
			}
			data = append(data, b...)
		}
	case hasArg(args, "-filter_complex"):
		b, err := os.ReadFile(inputs[0])
		if err != nil {
			return ExecResult{Err: err}
		}
		data = append(b, "+bgm"...)
	default:
		b, err := os.ReadFile(inputs[0])
		if err != nil {
			return ExecResult{Err: err}
		}
		data = append([]byte("norm:"), b...)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return ExecResult{Err: err}
	}
	return ExecResult{}
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func hasArg(args []string, want string) bool {
	return slices.Contains(args, want)
}

// argValues returns every value following flag.
func argValues(args []string, flag string) []string {
	var vals []string
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			vals = append(vals, args[i+1])
		}
	}
	return vals
}

func argValue(args []string, flag string) string {
	v := argValues(args, flag)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func usesEncoder(args []string, enc string) bool {
	return argValue(args, "-c:v") == enc
}

type staticCaps struct {
	encoder string
	presets []string
}

func (c staticCaps) HardwareEncoder() string { return c.encoder }
func (c staticCaps) SupportsPreset(p string) bool {
	return slices.Contains(c.presets, p)
}

type countingObserver struct {
	mu        sync.Mutex
	ops       []string
	fallbacks int
}

func (o *countingObserver) ObserveTranscode(op string, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
}

func (o *countingObserver) NormalizeFallback() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks++
}

func joinArgs(args []string) string { return strings.Join(args, " ") }

// manifestPaths returns the paths listed in a concat manifest, in order.
func manifestPaths(data string) []string {
	var paths []string
	for _, line := range strings.Split(data, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "file '")
		if !ok || !strings.HasSuffix(rest, "'") {
			continue
		}
		rest = strings.TrimSuffix(rest, "'")
		paths = append(paths, strings.ReplaceAll(rest, `'\''`, "'"))
	}
	return paths
}
