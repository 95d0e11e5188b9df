package journal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// UsedSet holds every clip path named by any journal record. Keys are
// absolute, so relative and absolute spellings of one file match.
type UsedSet map[string]struct{}

// Contains reports whether clip was already consumed.
func (u UsedSet) Contains(clip string) bool {
	_, ok := u[usedKey(clip)]
	return ok
}

// Add marks clips as consumed.
func (u UsedSet) Add(clips ...string) {
	for _, c := range clips {
		u[usedKey(c)] = struct{}{}
	}
}

func usedKey(clip string) string {
	abs, err := filepath.Abs(clip)
	if err != nil {
		return filepath.Clean(clip)
	}
	return abs
}

// Replayed is the result of reading a journal from the start.
type Replayed struct {
	Records   []Record
	Successes int
	Failures  int
	Skipped   int // malformed or partial lines
}

// UsedSet returns the union of inputs over all records, successes and
// failures alike.
func (r *Replayed) UsedSet() UsedSet {
	used := make(UsedSet)
	for _, rec := range r.Records {
		used.Add(rec.UsedClips()...)
	}
	return used
}

// Replay reads the journal at path. A missing file is an empty journal.
func Replay(path string) (*Replayed, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Replayed{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes journal lines from r. Blank lines are ignored; lines that do
// not decode into a record are counted in Skipped.
func Read(r io.Reader) (*Replayed, error) {
	out := &Replayed{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			out.add(bytes.TrimSpace(line))
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read journal: %w", err)
		}
	}
}

func (r *Replayed) add(line []byte) {
	rec, err := Unmarshal(line)
	if err != nil {
		r.Skipped++
		return
	}
	switch rec.(type) {
	case Success:
		r.Successes++
	case Failure:
		r.Failures++
	}
	r.Records = append(r.Records, rec)
}
