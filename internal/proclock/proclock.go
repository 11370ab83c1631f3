// Package proclock guards a store file against concurrent quitlog
// processes. The engine assumes a single writer per store; the lockfile
// makes that assumption fail loudly instead of corrupting data.
package proclock

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

var findProcessFunc = ps.FindProcess

// ErrLocked is returned when another live process holds the lock.
var ErrLocked = errors.New("store is locked by another quitlog process")

type Lock struct {
	path string
}

// Acquire takes the lock for storePath, writing <storePath>.lock with the
// holder's pid and executable name. A lockfile whose process is gone is
// treated as stale and replaced.
func Acquire(storePath string) (*Lock, error) {
	lockPath := storePath + ".lock"

	if content, err := os.ReadFile(lockPath); err == nil {
		pid, executable, parseErr := parseLockfile(string(content))
		if parseErr == nil && processAlive(pid, executable) {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, pid)
		}
		// Stale or malformed lockfile; take it over.
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}

	self, err := findProcessFunc(os.Getpid())
	if err != nil || self == nil {
		return nil, fmt.Errorf("failed to identify own process: %w", err)
	}

	content := fmt.Sprintf("%d|%s\n", os.Getpid(), self.Executable())
	if err := os.WriteFile(lockPath, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}

	return &Lock{path: lockPath}, nil
}

// Inspect reports the lockfile state for storePath without acquiring it.
// live means a process with the recorded pid and executable is running;
// stale means a lockfile exists but its holder is gone or unreadable.
func Inspect(storePath string) (pid int, live bool, stale bool) {
	content, err := os.ReadFile(storePath + ".lock")
	if err != nil {
		return 0, false, false
	}
	pid, executable, parseErr := parseLockfile(string(content))
	if parseErr != nil {
		return 0, false, true
	}
	if processAlive(pid, executable) {
		return pid, true, false
	}
	return pid, false, true
}

// Release removes the lockfile. Safe to call on an already-released lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// Path returns the lockfile location.
func (l *Lock) Path() string {
	return l.path
}

func parseLockfile(content string) (pid int, executable string, err error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 2 {
		return 0, "", errors.New("lockfile is malformed")
	}
	pid, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", errors.New("invalid process ID in lockfile")
	}
	return pid, parts[1], nil
}

func processAlive(pid int, executable string) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	// Pid reuse by an unrelated program does not count as a live holder.
	return strings.HasPrefix(process.Executable(), executable) || strings.HasPrefix(executable, process.Executable())
}
