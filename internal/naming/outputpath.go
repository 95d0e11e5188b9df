package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var numericStem = regexp.MustCompile(`^[0-9]+$`)

// NextOutputPath returns <dir>/<n>.<ext> where n is one greater than the
// largest integer stem among entries named <integer>.<ext> in dir
// (extension compared case-insensitively). Directories with such names
// count too, since they occupy the slot. Other entries are ignored. A
// missing or empty dir yields 1. ext is given without the dot.
//
// The slot is not reserved: callers must create the file before the next
// call, and only one writer may use dir at a time.
func NextOutputPath(dir, ext string) (string, error) {
	highest, err := HighestIndex(dir, ext)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%d.%s", highest+1, ext)), nil
}

// HighestIndex returns the largest integer stem of <integer>.<ext> entries
// in dir, or 0 when there are none.
func HighestIndex(dir, ext string) (uint64, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list output directory %s: %w", dir, err)
	}

	var highest uint64
	suffix := "." + ext
	for _, e := range entries {
		n, ok := indexOf(e.Name(), suffix)
		if ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

func indexOf(name, suffix string) (uint64, bool) {
	if len(name) <= len(suffix) || !strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		return 0, false
	}
	stem := name[:len(name)-len(suffix)]
	if !numericStem.MatchString(stem) {
		return 0, false
	}
	n, err := strconv.ParseUint(stem, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
