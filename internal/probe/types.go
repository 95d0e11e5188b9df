package probe

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// VideoStream holds the parsed properties of the primary video stream.
type VideoStream struct {
	Codec  string
	Width  int
	Height int
	PixFmt string
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Codec string
}

// Result is the parsed output of one ffprobe call. Video is the first video
// stream that is not an attached picture (nil if none).
type Result struct {
	Duration     time.Duration
	Size         int64
	Video        *VideoStream
	AudioStreams []AudioStream
}

// HasAudio reports whether the file has at least one audio stream.
func (r *Result) HasAudio() bool { return len(r.AudioStreams) > 0 }

// Resolution returns "WxH" for the video stream, or "unknown".
func (r *Result) Resolution() string {
	if r.Video == nil || r.Video.Width <= 0 || r.Video.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(r.Video.Width) + "x" + strconv.Itoa(r.Video.Height)
}

// CheckLayout reports an error unless the video stream is width x height
// with pixel format pixFmt. An empty pixFmt is not checked.
func (r *Result) CheckLayout(width, height int, pixFmt string) error {
	if r.Video == nil {
		return errors.New("no video stream")
	}
	if r.Video.Width != width || r.Video.Height != height {
		return fmt.Errorf("resolution %s, want %dx%d", r.Resolution(), width, height)
	}
	if pixFmt != "" && r.Video.PixFmt != pixFmt {
		return fmt.Errorf("pixel format %s, want %s", r.Video.PixFmt, pixFmt)
	}
	return nil
}
