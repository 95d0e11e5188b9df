package journal

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// Record is one journal line: a [Success] or a [Failure].
type Record interface {
	// UsedClips returns the source clips consumed by the group.
	UsedClips() []string
	isRecord()
}

// Success records a produced video. An empty BGM is written as null.
type Success struct {
	Output string
	Inputs []string
	BGM    string
	Time   time.Time
	RunID  string
}

// Failure records a group that produced no video.
type Failure struct {
	Inputs  []string
	Message string
	Time    time.Time
	RunID   string
}

func (s Success) UsedClips() []string { return s.Inputs }
func (f Failure) UsedClips() []string { return f.Inputs }

func (Success) isRecord() {}
func (Failure) isRecord() {}

type successLine struct {
	Output string   `json:"output"`
	Inputs []string `json:"inputs"`
	BGM    *string  `json:"bgm"`
	Time   string   `json:"time,omitempty"`
	Run    string   `json:"run,omitempty"`
}

type failureLine struct {
	Error  string   `json:"error"`
	Inputs []string `json:"inputs"`
	Time   string   `json:"time,omitempty"`
	Run    string   `json:"run,omitempty"`
}

// anyLine decodes either shape; pointer fields tell the variants apart.
type anyLine struct {
	Output *string  `json:"output"`
	Error  *string  `json:"error"`
	Inputs []string `json:"inputs"`
	BGM    *string  `json:"bgm"`
	Time   string   `json:"time"`
	Run    string   `json:"run"`
}

var errUnknownRecord = errors.New("line is neither a success nor a failure record")

// Marshal encodes r as a single JSON line without the trailing newline.
func Marshal(r Record) ([]byte, error) {
	switch v := r.(type) {
	case Success:
		line := successLine{Output: v.Output, Inputs: nonNil(v.Inputs), Time: formatTime(v.Time), Run: v.RunID}
		if v.BGM != "" {
			bgm := v.BGM
			line.BGM = &bgm
		}
		return json.Marshal(line)
	case Failure:
		return json.Marshal(failureLine{Error: v.Message, Inputs: nonNil(v.Inputs), Time: formatTime(v.Time), Run: v.RunID})
	default:
		return nil, errUnknownRecord
	}
}

// Unmarshal decodes one journal line. A line with an "output" key is a
// Success; one with an "error" key is a Failure.
func Unmarshal(data []byte) (Record, error) {
	var line anyLine
	if err := json.Unmarshal(data, &line); err != nil {
		return nil, err
	}
	ts := parseTime(line.Time)
	switch {
	case line.Output != nil:
		s := Success{Output: *line.Output, Inputs: line.Inputs, Time: ts, RunID: line.Run}
		if line.BGM != nil {
			s.BGM = *line.BGM
		}
		return s, nil
	case line.Error != nil:
		return Failure{Inputs: line.Inputs, Message: *line.Error, Time: ts, RunID: line.Run}, nil
	default:
		return nil, errUnknownRecord
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime tolerates absent or foreign timestamps; they decode as zero.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
