package ffmpeg

import (
	"context"
	"errors"
	"os"
)

// Strategy is one way of producing an output file.
type Strategy struct {
	Name string
	Args []string
}

var errNoStrategies = errors.New("no strategies to run")

// RunStrategies tries each strategy in order until one succeeds and returns
// it. Output left behind by a failed attempt is removed before the next one.
// onFail, if non-nil, is called for every failed attempt that is followed by
// another. When all fail, the last failure is returned as a *TranscodeError.
// A failure after ctx is done ends the loop and wraps ctx.Err().
func RunStrategies(ctx context.Context, r Runner, op, out string, strategies []Strategy, onFail func(Strategy, ExecResult)) (Strategy, error) {
	if len(strategies) == 0 {
		return Strategy{}, errNoStrategies
	}

	var last ExecResult
	for i, s := range strategies {
		last = r.Run(ctx, s.Args)
		if last.Err == nil {
			return s, nil
		}
		removeIfExists(out)
		if err := ctx.Err(); err != nil {
			return Strategy{}, newTranscodeError(op, s.Args, ExecResult{Stderr: last.Stderr, Err: err})
		}
		if onFail != nil && i < len(strategies)-1 {
			onFail(s, last)
		}
	}
	return Strategy{}, newTranscodeError(op, strategies[len(strategies)-1].Args, last)
}

// removeIfExists deletes a partial output; a missing file is fine.
func removeIfExists(path string) {
	_ = os.Remove(path)
}
