package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

// withProcesses replaces the process finder with one that only knows the given pids.
func withProcesses(t *testing.T, pids ...int) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })

	running := make(map[int]bool, len(pids))
	for _, pid := range pids {
		running[pid] = true
	}
	findProcessFunc = func(pid int) (ps.Process, error) {
		if running[pid] {
			return &mockProcess{pid: pid, executable: "momentum"}, nil
		}
		return nil, nil
	}
}

func newTestLock(dir string, pid int) *Lock {
	l := New(dir)
	l.pid = pid
	l.retries = 2
	l.delay = time.Millisecond
	l.guardTimeout = time.Minute
	return l
}

func TestLockUnlock(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 100)
	l := newTestLock(dir, 100)

	if err := l.Lock(); err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}

	content, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("lockfile not written: %v", err)
	}
	if string(content) != "100" {
		t.Errorf("expected pid 100 in lockfile, got %q", content)
	}

	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock() failed: %v", err)
	}
	if _, err := os.Stat(l.Path()); !os.IsNotExist(err) {
		t.Error("lockfile still present after Unlock()")
	}
}

func TestLockHeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 100, 200)

	owner := newTestLock(dir, 100)
	if err := owner.Lock(); err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}

	other := newTestLock(dir, 200)
	err := other.Lock()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	if err := other.Unlock(); err == nil {
		t.Error("expected Unlock() by a non-owner to fail")
	}
}

func TestLockClearsStaleOwner(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 200)

	if err := os.WriteFile(filepath.Join(dir, "momentum.lock"), []byte(strconv.Itoa(999)), 0600); err != nil {
		t.Fatal(err)
	}

	l := newTestLock(dir, 200)
	if err := l.Lock(); err != nil {
		t.Fatalf("Lock() over stale file failed: %v", err)
	}

	st, err := Inspect(l.Path())
	if err != nil {
		t.Fatalf("Inspect() failed: %v", err)
	}
	if st.PID != 200 || !st.Running {
		t.Errorf("expected live owner 200, got %+v", st)
	}
}

func TestLockClearsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 200)

	if err := os.WriteFile(filepath.Join(dir, "momentum.lock"), []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	l := newTestLock(dir, 200)
	if err := l.Lock(); err != nil {
		t.Fatalf("Lock() over malformed file failed: %v", err)
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 42)
	path := filepath.Join(dir, "momentum.lock")

	st, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() failed: %v", err)
	}
	if st.Present {
		t.Error("expected missing lockfile to report Present=false")
	}

	if err := os.WriteFile(path, []byte("42\n"), 0600); err != nil {
		t.Fatal(err)
	}
	st, err = Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() failed: %v", err)
	}
	if !st.Present || st.PID != 42 || !st.Running || st.Executable != "momentum" {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestUnlockWithoutLockfile(t *testing.T) {
	l := newTestLock(t.TempDir(), 1)
	if err := l.Unlock(); err != nil {
		t.Errorf("Unlock() without lockfile should be a no-op, got %v", err)
	}
}

func TestLockStaleTakeoverRace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "momentum.lock")
	if err := os.WriteFile(path, []byte("999"), 0600); err != nil {
		t.Fatal(err)
	}

	a := newTestLock(dir, 100)
	b := newTestLock(dir, 200)

	// b takes over the stale file right after a has seen it stale
	var bErr error
	triggered := false
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		switch pid {
		case 999:
			if !triggered {
				triggered = true
				bErr = b.Lock()
			}
			return nil, nil
		case 100, 200:
			return &mockProcess{pid: pid, executable: "momentum"}, nil
		}
		return nil, nil
	}

	aErr := a.Lock()
	if bErr != nil {
		t.Fatalf("b.Lock() failed: %v", bErr)
	}
	if !errors.Is(aErr, ErrLocked) {
		t.Fatalf("expected a to be locked out, got %v", aErr)
	}

	st, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() failed: %v", err)
	}
	if st.PID != 200 {
		t.Errorf("expected b (pid 200) to keep the lock, got %+v", st)
	}
	if _, err := os.Stat(a.guardPath()); !os.IsNotExist(err) {
		t.Error("takeover guard left behind")
	}
	assertNoTempFiles(t, dir)
}

func TestLockWaitsForHeldGuard(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 200)

	l := newTestLock(dir, 200)
	if err := os.WriteFile(l.Path(), []byte("999"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.guardPath(), []byte("300-1"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := l.Lock(); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked while another takeover is in progress, got %v", err)
	}
	content, err := os.ReadFile(l.guardPath())
	if err != nil || string(content) != "300-1" {
		t.Errorf("guard held by another process was modified: %q, %v", content, err)
	}
}

func TestLockClearsAbandonedGuard(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 200)

	l := newTestLock(dir, 200)
	if err := os.WriteFile(l.Path(), []byte("999"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.guardPath(), []byte("300-1"), 0600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(l.guardPath(), old, old); err != nil {
		t.Fatal(err)
	}

	if err := l.Lock(); err != nil {
		t.Fatalf("Lock() with an abandoned guard failed: %v", err)
	}
	st, err := Inspect(l.Path())
	if err != nil {
		t.Fatalf("Inspect() failed: %v", err)
	}
	if st.PID != 200 {
		t.Errorf("expected pid 200 to own the lock, got %+v", st)
	}
}

func TestRemoveIfUnchanged(t *testing.T) {
	dir := t.TempDir()
	l := newTestLock(dir, 1)
	path := filepath.Join(dir, "file")

	if err := os.WriteFile(path, []byte("mine"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := l.removeIfUnchanged(path, []byte("theirs")); err != nil {
		t.Fatalf("removeIfUnchanged() failed: %v", err)
	}
	if content, err := os.ReadFile(path); err != nil || string(content) != "mine" {
		t.Errorf("file with other content should be restored, got %q, %v", content, err)
	}

	if err := l.removeIfUnchanged(path, []byte("mine")); err != nil {
		t.Fatalf("removeIfUnchanged() failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("matching file should be removed")
	}
	if err := l.removeIfUnchanged(path, []byte("mine")); err != nil {
		t.Errorf("missing file should be a no-op, got %v", err)
	}
	assertNoTempFiles(t, dir)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) > 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}
