package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound means the clip source directory is missing or not a
	// directory.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrBGMNotFound means a configured background music directory is
	// missing or not a directory.
	ErrBGMNotFound = errors.New("background music directory not found")

	// ErrAlreadyRunning is returned by Start when a run is in progress.
	ErrAlreadyRunning = errors.New("orchestrator already running")
)

// ConfigError reports a setting that prevents any group from running.
// The CLI exits with status 2 on it.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// GroupError reports the step at which a group failed. Its message is what
// lands in the journal's failure record.
type GroupError struct {
	Step string // workdir, normalize, concat, verify, mix, copy
	Err  error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *GroupError) Unwrap() error { return e.Err }
