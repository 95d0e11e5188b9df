package ffmpeg

import (
	"fmt"
	"regexp"
	"strings"
)

// stderrTailLines bounds how much tool output a TranscodeError carries.
const stderrTailLines = 12

// TranscodeError reports a failed ffmpeg invocation.
type TranscodeError struct {
	Op     string   // normalize, concat, mix
	Args   []string // arguments of the last attempt
	Err    error    // exit error
	Stderr string   // tail of stderr
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.Stderr != "" {
		msg += ": " + lastLine(e.Stderr)
	}
	return msg
}

func (e *TranscodeError) Unwrap() error { return e.Err }

func newTranscodeError(op string, args []string, res ExecResult) *TranscodeError {
	err := res.Err
	if err == nil {
		err = fmt.Errorf("no output produced")
	}
	return &TranscodeError{Op: op, Args: args, Err: err, Stderr: StderrTail(res.Stderr, stderrTailLines)}
}

// StderrTail returns the last n non-empty lines of s.
func StderrTail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			kept = append(kept, l)
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "\n")
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Stderr patterns meaning the hardware encoder cannot run at all on this
// machine, as opposed to failing on one particular input.
var reHardwareUnavailable = regexp.MustCompile(
	`(?i)No NVENC capable devices found|` +
		`Cannot load libnvidia-encode|` +
		`Cannot load libcuda|` +
		`OpenEncodeSessionEx failed|` +
		`Driver does not support the required nvenc API version|` +
		`Failed to create a VAAPI device|` +
		`No VA display found|` +
		`Error creating a MFX session|` +
		`Failed to initialise VAAPI connection|` +
		`Device creation failed|` +
		`Unknown encoder '[^']+'`)

// MatchHardwareUnavailable reports whether stderr shows the hardware
// encoder is unusable on this machine.
func MatchHardwareUnavailable(stderr string) bool {
	return reHardwareUnavailable.MatchString(stderr)
}
