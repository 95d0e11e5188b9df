package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const lockOwnerFile = "owner.json"

// ErrLocked is returned by [AcquireLock] when another process holds the
// journal.
var ErrLocked = errors.New("journal is locked")

// Lock is a held single-writer lock on a journal, implemented as a
// directory next to it.
type Lock struct {
	dir string
}

type lockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
	RunID     string `json:"run,omitempty"`
}

// AcquireLock creates <journalPath>.lock. It fails with ErrLocked if the
// directory already exists.
func AcquireLock(journalPath, runID string) (Lock, error) {
	target := strings.TrimSpace(journalPath)
	if target == "" {
		return Lock{}, errors.New("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Lock{}, fmt.Errorf("create journal directory: %w", err)
	}

	dir := target + ".lock"
	ownerPath := filepath.Join(dir, lockOwnerFile)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			var owner lockOwner
			if data, readErr := os.ReadFile(ownerPath); readErr == nil && json.Unmarshal(data, &owner) == nil && owner.PID > 0 {
				return Lock{}, fmt.Errorf("%w: %s (pid=%d created_at=%s host=%s); remove %s if that process is gone",
					ErrLocked, target, owner.PID, owner.CreatedAt, owner.Hostname, dir)
			}
			return Lock{}, fmt.Errorf("%w: %s; remove %s if no other run is active", ErrLocked, target, dir)
		}
		return Lock{}, fmt.Errorf("acquire journal lock for %s: %w", target, err)
	}

	owner := lockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
		RunID:     runID,
	}
	data, err := json.MarshalIndent(owner, "", "  ")
	if err == nil {
		err = os.WriteFile(ownerPath, append(data, '\n'), 0o644)
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return Lock{}, fmt.Errorf("write journal lock owner for %s: %w", target, err)
	}
	return Lock{dir: dir}, nil
}

// Release removes the lock directory. Releasing a zero Lock is a no-op.
func (l Lock) Release() error {
	if l.dir == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.dir, lockOwnerFile))
	if err := os.Remove(l.dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release journal lock %s: %w", l.dir, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return "unknown"
	}
	return strings.TrimSpace(host)
}
