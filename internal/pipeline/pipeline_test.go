package pipeline

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/backmassage/shortmix/internal/journal"
)

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4")
	touch(t, dir, "b.MP4")
	touch(t, dir, "music.mp3")
	touch(t, dir, "readme.txt")
	touch(t, dir, "clip.mov")

	files, err := Discover(dir, []string{".mp4"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"a.mp4", "b.MP4"}
	if got := basenames(files); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_RecursiveSortedAbsolute(t *testing.T) {
	dir := t.TempDir()
	mkdir(t, dir, "day2")
	mkdir(t, dir, "day1")
	touch(t, filepath.Join(dir, "day2"), "x.mp4")
	touch(t, filepath.Join(dir, "day1"), "z.mp4")
	touch(t, filepath.Join(dir, "day1"), "y.mp4")

	files, err := Discover(dir, []string{".mp4"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	if !slices.IsSorted(files) {
		t.Errorf("not sorted: %v", files)
	}
	for _, f := range files {
		if !filepath.IsAbs(f) || filepath.Clean(f) != f {
			t.Errorf("path not absolute and clean: %q", f)
		}
	}
}

func TestDiscover_MultipleExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4")
	touch(t, dir, "b.mov")
	touch(t, dir, "c.mkv")

	files, err := Discover(dir, []string{".MP4", ".mov"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := basenames(files); !slices.Equal(got, []string{"a.mp4", "b.mov"}) {
		t.Errorf("got %v", got)
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	files, err := Discover(t.TempDir(), []string{".mp4"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), []string{".mp4"})
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "source_dir" {
		t.Errorf("err = %#v, want *ConfigError for source_dir", err)
	}
}

func TestDiscover_RootIsFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4")
	_, err := Discover(filepath.Join(dir, "a.mp4"), []string{".mp4"})
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestScanInventory_ExcludesUsed(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"1.mp4", "2.mp4", "3.mp4", "4.mp4"} {
		touch(t, dir, n)
	}
	used := make(journal.UsedSet)
	used.Add(filepath.Join(dir, "2.mp4"), filepath.Join(dir, "4.mp4"), "/elsewhere/9.mp4")

	inv, err := ScanInventory(dir, []string{".mp4"}, used)
	if err != nil {
		t.Fatalf("ScanInventory: %v", err)
	}
	if inv.Found != 4 || inv.Excluded != 2 {
		t.Errorf("Found=%d Excluded=%d, want 4 and 2", inv.Found, inv.Excluded)
	}
	if got := basenames(inv.Clips); !slices.Equal(got, []string{"1.mp4", "3.mp4"}) {
		t.Errorf("Clips = %v", got)
	}
}

func TestScanInventory_NilUsedSet(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1.mp4")
	inv, err := ScanInventory(dir, []string{".mp4"}, nil)
	if err != nil {
		t.Fatalf("ScanInventory: %v", err)
	}
	if len(inv.Clips) != 1 {
		t.Errorf("Clips = %v", inv.Clips)
	}
}

// --- BuildGroups tests ---

func TestBuildGroups_Counts(t *testing.T) {
	tests := []struct {
		name        string
		clips, size int
		limit       int
		want        int
	}{
		{"exact", 6, 3, 0, 2},
		{"remainder dropped", 7, 3, 0, 2},
		{"fewer than size", 2, 3, 0, 0},
		{"empty", 0, 2, 0, 0},
		{"limit applies", 20, 2, 3, 3},
		{"limit above available", 5, 2, 10, 2},
		{"default size", 13, 6, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clips := numbered(tt.clips)
			groups, err := BuildGroups(clips, tt.size, tt.limit, rand.New(rand.NewPCG(1, 2)))
			if err != nil {
				t.Fatalf("BuildGroups: %v", err)
			}
			if len(groups) != tt.want {
				t.Fatalf("got %d groups, want %d", len(groups), tt.want)
			}
			seen := map[string]bool{}
			for _, g := range groups {
				if len(g) != tt.size {
					t.Errorf("group size %d, want %d", len(g), tt.size)
				}
				for _, c := range g {
					if seen[c] {
						t.Errorf("clip %s in two groups", c)
					}
					seen[c] = true
				}
			}
			if Clips(groups) != tt.want*tt.size {
				t.Errorf("Clips = %d", Clips(groups))
			}
		})
	}
}

func TestBuildGroups_RejectsSmallSize(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		if _, err := BuildGroups(numbered(4), size, 0, nil); err == nil {
			t.Errorf("size %d: expected error", size)
		}
	}
	if _, err := BuildGroups(numbered(4), 2, -1, nil); err == nil {
		t.Error("negative limit: expected error")
	}
}

func TestBuildGroups_DoesNotModifyInput(t *testing.T) {
	clips := numbered(9)
	orig := slices.Clone(clips)
	if _, err := BuildGroups(clips, 3, 0, rand.New(rand.NewPCG(7, 7))); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(clips, orig) {
		t.Errorf("input reordered: %v", clips)
	}
}

func TestBuildGroups_SameSeedSameGroups(t *testing.T) {
	clips := numbered(12)
	a, _ := BuildGroups(clips, 4, 0, rand.New(rand.NewPCG(3, 9)))
	b, _ := BuildGroups(clips, 4, 0, rand.New(rand.NewPCG(3, 9)))
	for i := range a {
		if !slices.Equal(a[i], b[i]) {
			t.Fatalf("group %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestBuildGroups_GroupsDoNotAlias(t *testing.T) {
	groups, _ := BuildGroups(numbered(6), 3, 0, nil)
	_ = append(groups[0], "extra")
	if groups[1][0] == "extra" {
		t.Error("appending to one group overwrote the next")
	}
}

// --- BGM tests ---

func TestListTracks(t *testing.T) {
	dir := t.TempDir()
	mkdir(t, dir, "sub")
	touch(t, dir, "a.mp3")
	touch(t, filepath.Join(dir, "sub"), "b.MP3")
	touch(t, dir, "cover.jpg")

	tracks, err := ListTracks(dir, []string{".mp3"})
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if got := basenames(tracks); !slices.Equal(got, []string{"a.mp3", "b.MP3"}) {
		t.Errorf("got %v", got)
	}
}

func TestListTracks_EmptyDirSetting(t *testing.T) {
	tracks, err := ListTracks("", []string{".mp3"})
	if err != nil || tracks != nil {
		t.Errorf("ListTracks(\"\") = %v, %v", tracks, err)
	}
}

func TestListTracks_Missing(t *testing.T) {
	_, err := ListTracks(filepath.Join(t.TempDir(), "music"), []string{".mp3"})
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "bgm_dir" || !errors.Is(err, ErrBGMNotFound) {
		t.Errorf("err = %v, want bgm_dir ConfigError", err)
	}
}

func TestPickTrack(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp3")
	present := filepath.Join(dir, "a.mp3")

	if track, missing := PickTrack(nil, nil); track != "" || missing {
		t.Errorf("no tracks: got %q, %v", track, missing)
	}
	if track, missing := PickTrack([]string{present}, rand.New(rand.NewPCG(1, 1))); track != present || missing {
		t.Errorf("present: got %q, %v", track, missing)
	}
	if track, missing := PickTrack([]string{filepath.Join(dir, "gone.mp3")}, nil); track != "" || !missing {
		t.Errorf("vanished: got %q, %v", track, missing)
	}
}

// --- Error types ---

func TestGroupError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&GroupError{Step: "concat", Err: cause})
	if err.Error() != "concat: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("GroupError does not unwrap")
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Running: "running", Stopping: "stopping", State(9): "State(9)"} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func mkdir(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
		t.Fatal(err)
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = filepath.Join("/clips", string(rune('a'+i%26))+string(rune('0'+i/26))+".mp4")
	}
	return out
}
