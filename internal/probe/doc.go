// Package probe inspects media files with a single ffprobe JSON call and
// returns typed results: container duration and the video and audio
// streams present.
package probe
