package ffmpeg

import (
	"strings"
	"testing"

	"github.com/backmassage/shortmix/internal/config"
)

func defaultTarget() Target {
	cfg := config.DefaultConfig()
	return NewTarget(&cfg)
}

func TestNormalizeArgs_Software(t *testing.T) {
	tgt := defaultTarget()
	got := joinArgs(NormalizeArgs(tgt, "/in/a.mp4", "/tmp/norm-0.mp4", softwareCodecArgs(tgt)))
	want := "-hide_banner -nostdin -y -loglevel error -fflags +genpts -i /in/a.mp4 " +
		"-vf fps=60,scale=1080:1920:flags=lanczos " +
		"-c:v libx264 -preset medium -profile:v main -level 4.2 -crf 23 -maxrate 12M -bufsize 16M " +
		"-pix_fmt yuv420p -movflags +faststart -c:a aac -ar 48000 -b:a 160k /tmp/norm-0.mp4"
	if got != want {
		t.Errorf("NormalizeArgs() =\n%s\nwant\n%s", got, want)
	}
}

func TestHardwareCodecArgs(t *testing.T) {
	got := joinArgs(hardwareCodecArgs(defaultTarget(), "h264_nvenc", "p4"))
	want := "-c:v h264_nvenc -profile:v main -rc vbr -cq 23 -b:v 12M -maxrate 12M -bufsize 24M -preset p4"
	if got != want {
		t.Errorf("hardwareCodecArgs() = %s, want %s", got, want)
	}
}

func TestPreamble_Verbose(t *testing.T) {
	if got := joinArgs(preamble(true)); !strings.HasSuffix(got, "-loglevel info") {
		t.Errorf("verbose preamble = %s", got)
	}
}

func TestConcatArgs(t *testing.T) {
	got := joinArgs(ConcatArgs(false, "/tmp/list.txt", "/tmp/combined.mp4"))
	want := "-hide_banner -nostdin -y -loglevel error -f concat -safe 0 -i /tmp/list.txt -c copy /tmp/combined.mp4"
	if got != want {
		t.Errorf("ConcatArgs() = %s, want %s", got, want)
	}
}

func TestMixGraph(t *testing.T) {
	tests := []struct {
		name     string
		delay    int64
		volume   float64
		hasAudio bool
		want     string
	}{
		{
			"with source audio", 2500, 0.5, true,
			"[1:a]adelay=2500|2500[delayed_bgm];[delayed_bgm]volume=0.5[a_bgm];" +
				"[0:a][a_bgm]amix=inputs=2:duration=first:dropout_transition=3[aout]",
		},
		{
			"silent source", 0, 0.25, false,
			"[1:a]adelay=0|0,volume=0.25[aout]",
		},
		{
			"full volume", 10000, 1, true,
			"[1:a]adelay=10000|10000[delayed_bgm];[delayed_bgm]volume=1[a_bgm];" +
				"[0:a][a_bgm]amix=inputs=2:duration=first:dropout_transition=3[aout]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MixGraph(tt.delay, tt.volume, tt.hasAudio); got != tt.want {
				t.Errorf("MixGraph() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMixArgs(t *testing.T) {
	got := joinArgs(MixArgs(false, "/tmp/c.mp4", "/bgm/t.mp3", "/out/3.mp4", "G"))
	want := "-hide_banner -nostdin -y -loglevel error -i /tmp/c.mp4 -stream_loop -1 -i /bgm/t.mp3 " +
		"-filter_complex G -map 0:v -map [aout] -c:v copy -c:a aac -shortest /out/3.mp4"
	if got != want {
		t.Errorf("MixArgs() = %s, want %s", got, want)
	}
}
