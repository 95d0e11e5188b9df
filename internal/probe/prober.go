package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/backmassage/shortmix/internal/ffmpeg"
)

// Prober runs ffprobe through Runner, which must be bound to the ffprobe
// binary.
type Prober struct {
	Runner ffmpeg.Runner
}

// Probe inspects path and returns the parsed result.
func (p *Prober) Probe(ctx context.Context, path string) (*Result, error) {
	res := p.Runner.Run(ctx, []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	})
	if res.Err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, res.Err)
	}
	return ParseJSON([]byte(res.Stdout))
}

// HasAudio reports whether path has an audio stream.
func (p *Prober) HasAudio(ctx context.Context, path string) (bool, error) {
	r, err := p.Probe(ctx, path)
	if err != nil {
		return false, err
	}
	return r.HasAudio(), nil
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type ffprobeStream struct {
	CodecName   string         `json:"codec_name"`
	CodecType   string         `json:"codec_type"`
	PixFmt      string         `json:"pix_fmt"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Disposition map[string]int `json:"disposition"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *Result {
	r := &Result{
		Duration: parseSeconds(raw.Format.Duration),
		Size:     parseInt64(raw.Format.Size),
	}
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if s.Disposition["attached_pic"] == 1 || r.Video != nil {
				continue
			}
			r.Video = &VideoStream{
				Codec:  s.CodecName,
				Width:  s.Width,
				Height: s.Height,
				PixFmt: s.PixFmt,
			}
		case "audio":
			r.AudioStreams = append(r.AudioStreams, AudioStream{Codec: s.CodecName})
		}
	}
	return r
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseSeconds(s string) time.Duration {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second)).Round(time.Microsecond)
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}
