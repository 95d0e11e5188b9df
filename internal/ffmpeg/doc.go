// Package ffmpeg builds and runs the ffmpeg invocations that turn a group of
// clips into one video: per-clip normalization (hardware first, software
// fallback), stream-copy concatenation, and background music mixing.
//
// All tool execution goes through the [Runner] interface so tests can
// substitute a fake that writes deterministic files.
package ffmpeg
