package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/shortmix/internal/journal"
)

// Inventory is the result of one scan of the source directory.
type Inventory struct {
	Clips    []string // unused clips, sorted
	Found    int      // every matching file
	Excluded int      // matching files already in the journal
}

// Discover walks root and returns the absolute, cleaned paths of files whose
// extension matches one of exts (case-insensitive), sorted lexicographically.
// A missing root yields a *ConfigError wrapping ErrSourceNotFound.
func Discover(root string, exts []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
		return nil, &ConfigError{Field: "source_dir", Err: fmt.Errorf("%w: %s", ErrSourceNotFound, root)}
	}
	return walkMatching(abs, exts)
}

// ScanInventory discovers clips under root and drops every clip in used.
func ScanInventory(root string, exts []string, used journal.UsedSet) (Inventory, error) {
	files, err := Discover(root, exts)
	if err != nil {
		return Inventory{}, err
	}
	inv := Inventory{Found: len(files)}
	for _, f := range files {
		if used.Contains(f) {
			inv.Excluded++
			continue
		}
		inv.Clips = append(inv.Clips, f)
	}
	return inv, nil
}

func walkMatching(root string, exts []string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if want[strings.ToLower(filepath.Ext(path))] {
			files = append(files, filepath.Clean(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
