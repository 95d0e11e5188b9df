package pipeline

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// ListTracks returns every audio file under dir (recursive) matching exts.
// An empty dir means no background music and returns nil.
func ListTracks(dir string, exts []string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
		return nil, &ConfigError{Field: "bgm_dir", Err: fmt.Errorf("%w: %s", ErrBGMNotFound, dir)}
	}
	return walkMatching(abs, exts)
}

// PickTrack chooses a track uniformly at random. It returns "" when there
// are no tracks; missing reports that the chosen file has since vanished.
func PickTrack(tracks []string, rng *rand.Rand) (track string, missing bool) {
	if len(tracks) == 0 {
		return "", false
	}
	i := 0
	if rng != nil {
		i = rng.IntN(len(tracks))
	}
	if fi, err := os.Stat(tracks[i]); err != nil || fi.IsDir() {
		return "", true
	}
	return tracks[i], false
}
