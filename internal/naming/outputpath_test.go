package naming

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNextOutputPath(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		dirs  []string
		want  string
	}{
		{"empty dir", nil, nil, "1.mp4"},
		{"sequence", []string{"1.mp4", "2.mp4", "3.mp4"}, nil, "4.mp4"},
		{"gaps use max", []string{"2.mp4", "17.mp4"}, nil, "18.mp4"},
		{"case-insensitive ext", []string{"9.MP4"}, nil, "10.mp4"},
		{"leading zeros", []string{"007.mp4"}, nil, "8.mp4"},
		{"non-numeric ignored", []string{"intro.mp4", "12a.mp4", "a12.mp4", "5.mov", ".mp4", "-3.mp4"}, nil, "1.mp4"},
		{"directory occupies slot", []string{"1.mp4"}, []string{"2.mp4"}, "3.mp4"},
		{"directory is highest", []string{"2.mp4"}, []string{"40.mp4"}, "41.mp4"},
		{"other directories ignored", []string{"2.mp4"}, []string{"old", "3.mov"}, "3.mp4"},
		{"overflow ignored", []string{"99999999999999999999999.mp4", "4.mp4"}, nil, "5.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}
			for _, d := range tt.dirs {
				if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
					t.Fatal(err)
				}
			}
			got, err := NextOutputPath(dir, "mp4")
			if err != nil {
				t.Fatalf("NextOutputPath() error: %v", err)
			}
			if want := filepath.Join(dir, tt.want); got != want {
				t.Errorf("NextOutputPath() = %q, want %q", got, want)
			}
		})
	}
}

func TestNextOutputPath_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	got, err := NextOutputPath(dir, "mp4")
	if err != nil {
		t.Fatalf("NextOutputPath() error: %v", err)
	}
	if want := filepath.Join(dir, "1.mp4"); got != want {
		t.Errorf("NextOutputPath() = %q, want %q", got, want)
	}
}

func TestNextOutputPath_AdvancesAfterWrite(t *testing.T) {
	dir := t.TempDir()
	first, _ := NextOutputPath(dir, "mp4")
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, _ := NextOutputPath(dir, "mp4")
	if second == first || filepath.Base(second) != "2.mp4" {
		t.Errorf("second slot = %q after writing %q", second, first)
	}
}
