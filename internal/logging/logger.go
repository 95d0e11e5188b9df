// Package logging provides the leveled logger used across shortmix.
//
// The printf-style API (Info, Success, Warn, Error, Debug) is backed by
// zerolog. Console output is human-readable by default and JSON with
// --log-format json; errors go to stderr. An optional log file always
// receives JSON lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/shortmix/internal/config"
	"github.com/backmassage/shortmix/internal/term"
)

// successLevel is written into the level field of Success lines.
const successLevel = "success"

// ANSI label colors for console output.
const (
	ansiRed    = "\033[1;91m"
	ansiGreen  = "\033[1;92m"
	ansiYellow = "\033[1;93m"
	ansiBlue   = "\033[1;94m"
	ansiCyan   = "\033[1;96m"
	ansiReset  = "\033[0m"
)

// Logger provides leveled logging with an optional file sink. Child loggers
// from [Logger.With] share the parent's sinks.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger builds the process logger from cfg and resolves the color mode.
// Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	color := term.Configure(cfg.ColorMode)

	var console zerolog.LevelWriter
	if cfg.LogFormat == config.LogJSON {
		console = levelSplit{out: os.Stdout, err: os.Stderr}
	} else {
		console = levelSplit{
			out: consoleWriter(os.Stdout, color),
			err: consoleWriter(os.Stderr, color),
		}
	}

	l := &Logger{}
	writers := []io.Writer{console}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		writers = append(writers, f)
	}

	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(levelFor(cfg.Verbose)).
		With().Timestamp().Logger()
	return l, nil
}

// New returns a logger writing JSON lines to w. Used by tests and tools
// that capture output.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{zl: zerolog.New(w).Level(levelFor(verbose)).With().Timestamp().Logger()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func levelFor(verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// With returns a child logger that adds key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Success logs an INFO-priority line labeled SUCCESS.
func (l *Logger) Success(format string, args ...any) {
	if l.zl.GetLevel() > zerolog.InfoLevel {
		return
	}
	l.zl.Log().Str(zerolog.LevelFieldName, successLevel).Msgf(format, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs at ERROR level, to stderr on the console.
func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs at DEBUG level; dropped unless verbose.
func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// levelSplit routes error-and-above lines to err and everything else to out.
type levelSplit struct {
	out io.Writer
	err io.Writer
}

func (s levelSplit) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s levelSplit) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level < zerolog.NoLevel {
		return s.err.Write(p)
	}
	return s.out.Write(p)
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         out,
		NoColor:     !color,
		TimeFormat:  "2006-01-02 15:04:05",
		FormatLevel: func(i any) string { return levelLabel(fmt.Sprint(i), color) },
	}
}

// levelLabel renders "[INFO]" style labels, colored when enabled.
func levelLabel(level string, color bool) string {
	var code string
	switch level {
	case zerolog.LevelInfoValue:
		code = ansiBlue
	case successLevel:
		code = ansiGreen
	case zerolog.LevelWarnValue:
		code = ansiYellow
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		code = ansiRed
	case zerolog.LevelDebugValue:
		code = ansiCyan
	}
	label := "[" + strings.ToUpper(level) + "]"
	if !color || code == "" {
		return label
	}
	return code + label + ansiReset
}
