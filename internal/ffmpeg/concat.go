package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Concatenator joins normalized parts with the concat demuxer. Parts must
// share codecs and parameters; streams are copied, not re-encoded.
type Concatenator struct {
	Runner   Runner
	Observer Observer
	Verbose  bool
}

// Concat writes parts, in order, into out. The manifest is created next to
// out and removed on every path.
func (c *Concatenator) Concat(ctx context.Context, parts []string, out string) error {
	if len(parts) == 0 {
		return fmt.Errorf("concat: no parts")
	}
	manifest, err := writeManifest(filepath.Dir(out), parts)
	if err != nil {
		return fmt.Errorf("concat: %w", err)
	}
	defer os.Remove(manifest)

	start := time.Now()
	args := ConcatArgs(c.Verbose, manifest, out)
	res := c.Runner.Run(ctx, args)
	if res.Err != nil {
		removeIfExists(out)
		err = newTranscodeError("concat", args, res)
	}
	if c.Observer != nil {
		c.Observer.ObserveTranscode("concat", time.Since(start), err)
	}
	return err
}

func writeManifest(dir string, parts []string) (string, error) {
	f, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create manifest: %w", err)
	}
	var b strings.Builder
	for _, p := range parts {
		abs, err := filepath.Abs(p)
		if err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
		b.WriteString(ManifestLine(abs))
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return f.Name(), nil
}

// ManifestLine quotes path for the concat demuxer: single quotes around the
// path, with each embedded quote escaped as a closing quote, backslash-quote
// and reopening quote.
func ManifestLine(path string) string {
	return "file '" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
