package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process
// is killed, in case a child process still holds them open.
const waitDelay = 2 * time.Second

// ExecResult holds the outcome of a single tool invocation.
type ExecResult struct {
	Stdout string
	Stderr string
	Err    error
}

// Runner runs one invocation of a command-line tool with args (the binary
// name excluded). Implementations must be safe for concurrent use.
type Runner interface {
	Run(ctx context.Context, args []string) ExecResult
}

// ExecRunner runs Binary as a subprocess. When Verbose is set, stderr is
// tee'd to Tee (os.Stderr when nil) in real time; it is always captured for
// error reporting.
type ExecRunner struct {
	Binary  string
	Verbose bool
	Tee     io.Writer
}

// Run executes the binary and waits for it. The process is killed if ctx is
// cancelled; callers that must not interrupt a transcode pass a context
// detached from cancellation.
func (r ExecRunner) Run(ctx context.Context, args []string) ExecResult {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.WaitDelay = waitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if r.Verbose {
		tee := r.Tee
		if tee == nil {
			tee = os.Stderr
		}
		cmd.Stderr = io.MultiWriter(&stderrBuf, tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}
