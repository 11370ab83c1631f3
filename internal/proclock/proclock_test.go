package proclock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 0 }
func (p fakeProcess) Executable() string { return p.executable }

// stubProcesses routes findProcessFunc through a pid table for the duration
// of one test.
func stubProcesses(t *testing.T, table map[int]ps.Process) {
	t.Helper()
	original := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		return table[pid], nil
	}
	t.Cleanup(func() { findProcessFunc = original })
}

func TestAcquireRelease(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "quitlog.db")
	stubProcesses(t, map[int]ps.Process{
		os.Getpid(): fakeProcess{pid: os.Getpid(), executable: "quitlog"},
	})

	lock, err := Acquire(storePath)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if lock.Path() != storePath+".lock" {
		t.Errorf("Unexpected lock path: %s", lock.Path())
	}

	if _, err := os.Stat(lock.Path()); err != nil {
		t.Fatalf("Expected lockfile to exist: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(lock.Path()); !os.IsNotExist(err) {
		t.Error("Expected lockfile removed after release")
	}

	// Releasing again is fine.
	if err := lock.Release(); err != nil {
		t.Errorf("Second Release should succeed, got %v", err)
	}
}

func TestAcquire_HeldByLiveProcess(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "quitlog.db")
	lockPath := storePath + ".lock"

	otherPid := 4242
	if err := os.WriteFile(lockPath, []byte(fmt.Sprintf("%d|quitlog\n", otherPid)), 0600); err != nil {
		t.Fatalf("Failed to seed lockfile: %v", err)
	}

	stubProcesses(t, map[int]ps.Process{
		otherPid:    fakeProcess{pid: otherPid, executable: "quitlog"},
		os.Getpid(): fakeProcess{pid: os.Getpid(), executable: "quitlog"},
	})

	if _, err := Acquire(storePath); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked, got %v", err)
	}
}

func TestAcquire_TakesOverStaleLock(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "quitlog.db")
	lockPath := storePath + ".lock"

	deadPid := 4242
	if err := os.WriteFile(lockPath, []byte(fmt.Sprintf("%d|quitlog\n", deadPid)), 0600); err != nil {
		t.Fatalf("Failed to seed lockfile: %v", err)
	}

	// deadPid is absent from the table, so the holder is gone.
	stubProcesses(t, map[int]ps.Process{
		os.Getpid(): fakeProcess{pid: os.Getpid(), executable: "quitlog"},
	})

	lock, err := Acquire(storePath)
	if err != nil {
		t.Fatalf("Expected stale lock takeover, got %v", err)
	}
	defer lock.Release()

	content, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("Failed to read lockfile: %v", err)
	}
	pid, _, err := parseLockfile(string(content))
	if err != nil {
		t.Fatalf("Lockfile malformed after takeover: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("Expected our pid %d in the lockfile, got %d", os.Getpid(), pid)
	}
}

func TestAcquire_PidReusedByUnrelatedProgram(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "quitlog.db")
	lockPath := storePath + ".lock"

	reusedPid := 4242
	if err := os.WriteFile(lockPath, []byte(fmt.Sprintf("%d|quitlog\n", reusedPid)), 0600); err != nil {
		t.Fatalf("Failed to seed lockfile: %v", err)
	}

	stubProcesses(t, map[int]ps.Process{
		reusedPid:   fakeProcess{pid: reusedPid, executable: "firefox"},
		os.Getpid(): fakeProcess{pid: os.Getpid(), executable: "quitlog"},
	})

	lock, err := Acquire(storePath)
	if err != nil {
		t.Fatalf("Expected takeover when the pid belongs to another program, got %v", err)
	}
	lock.Release()
}

func TestAcquire_MalformedLockfile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "quitlog.db")
	lockPath := storePath + ".lock"

	if err := os.WriteFile(lockPath, []byte("garbage"), 0600); err != nil {
		t.Fatalf("Failed to seed lockfile: %v", err)
	}

	stubProcesses(t, map[int]ps.Process{
		os.Getpid(): fakeProcess{pid: os.Getpid(), executable: "quitlog"},
	})

	lock, err := Acquire(storePath)
	if err != nil {
		t.Fatalf("Expected takeover of malformed lockfile, got %v", err)
	}
	lock.Release()
}

func TestInspect(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "quitlog.db")

	otherPid := 4242
	stubProcesses(t, map[int]ps.Process{
		otherPid: fakeProcess{pid: otherPid, executable: "quitlog"},
	})

	if pid, live, stale := Inspect(storePath); pid != 0 || live || stale {
		t.Errorf("Expected clean state with no lockfile, got pid=%d live=%v stale=%v", pid, live, stale)
	}

	lockPath := storePath + ".lock"
	if err := os.WriteFile(lockPath, []byte(fmt.Sprintf("%d|quitlog\n", otherPid)), 0600); err != nil {
		t.Fatalf("Failed to seed lockfile: %v", err)
	}
	if pid, live, stale := Inspect(storePath); pid != otherPid || !live || stale {
		t.Errorf("Expected live holder, got pid=%d live=%v stale=%v", pid, live, stale)
	}

	if err := os.WriteFile(lockPath, []byte("9999|quitlog\n"), 0600); err != nil {
		t.Fatalf("Failed to reseed lockfile: %v", err)
	}
	if _, live, stale := Inspect(storePath); live || !stale {
		t.Errorf("Expected stale lockfile, got live=%v stale=%v", live, stale)
	}
}

func TestParseLockfile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantPid int
		wantErr bool
	}{
		{"valid", "123|quitlog\n", 123, false},
		{"missing separator", "123quitlog", 0, true},
		{"non-numeric pid", "abc|quitlog", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid, _, err := parseLockfile(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.content)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLockfile failed: %v", err)
			}
			if pid != tt.wantPid {
				t.Errorf("Expected pid %d, got %d", tt.wantPid, pid)
			}
		})
	}
}
