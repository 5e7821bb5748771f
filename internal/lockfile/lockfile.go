// Package lockfile provides an advisory PID lockfile that serialises
// completion writes across momentum processes sharing one database.
package lockfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrLocked is returned when another live process holds the lock after all retries.
var ErrLocked = errors.New("database is locked by another momentum process")

// Lock is a PID lockfile. It implements tracker.Locker.
type Lock struct {
	path    string
	pid     int
	retries int
	delay   time.Duration

	guardTimeout time.Duration
}

// New returns a lock stored in dir.
func New(dir string) *Lock {
	return &Lock{
		path:    filepath.Join(dir, constants.LockfileName),
		pid:     os.Getpid(),
		retries: constants.LockRetries,
		delay:   constants.LockRetryDelay,

		guardTimeout: constants.LockGuardTimeout,
	}
}

// Path returns the lockfile location.
func (l *Lock) Path() string {
	return l.path
}

// Lock acquires the lockfile. A file left behind by a process that is no
// longer running is cleared, but only under the takeover guard and only if
// it still names that dead owner.
func (l *Lock) Lock() error {
	for attempt := 0; attempt <= l.retries; attempt++ {
		err := l.tryCreate()
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create lockfile: %w", err)
		}

		owner, err := Inspect(l.path)
		if err != nil {
			return err
		}
		if owner.Present && !owner.Running {
			cleared, err := l.clearStale()
			if err != nil {
				return err
			}
			if cleared {
				continue
			}
		}
		time.Sleep(l.delay)
	}
	return fmt.Errorf("%w: %s", ErrLocked, l.path)
}

// tryCreate publishes the lockfile with its pid already written, so no
// other process can observe it empty.
func (l *Lock) tryCreate() error {
	return l.createExclusive(l.path, []byte(strconv.Itoa(l.pid)))
}

func (l *Lock) createExclusive(path string, content []byte) error {
	tmp := l.tempName(path)
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return err
	}
	defer os.Remove(tmp)
	return os.Link(tmp, path)
}

func (l *Lock) tempName(path string) string {
	return fmt.Sprintf("%s.%d.%d.tmp", path, l.pid, time.Now().UnixNano())
}

func (l *Lock) guardPath() string {
	return l.path + ".takeover"
}

// clearStale removes the lockfile if it is still stale once the takeover
// guard is held. The file may have been replaced since it was inspected.
func (l *Lock) clearStale() (bool, error) {
	release, ok, err := l.acquireGuard()
	if err != nil || !ok {
		return false, err
	}
	defer release()

	owner, err := Inspect(l.path)
	if err != nil {
		return false, err
	}
	if !owner.Present {
		return true, nil
	}
	if owner.Running {
		return false, nil
	}
	logger.Debug("Removing stale lockfile", "path", l.path, "pid", owner.PID)
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to remove stale lockfile: %w", err)
	}
	return true, nil
}

// acquireGuard takes the takeover guard. ok is false when another process
// holds it; a guard older than guardTimeout is treated as abandoned.
func (l *Lock) acquireGuard() (release func(), ok bool, err error) {
	guard := l.guardPath()
	token := []byte(fmt.Sprintf("%d-%d", l.pid, time.Now().UnixNano()))
	err = l.createExclusive(guard, token)
	if err == nil {
		return func() {
			if err := l.removeIfUnchanged(guard, token); err != nil {
				logger.Warn("Failed to release lockfile guard", "path", guard, "error", err)
			}
		}, true, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return nil, false, fmt.Errorf("failed to create lockfile guard: %w", err)
	}

	info, statErr := os.Stat(guard)
	if statErr == nil && time.Since(info.ModTime()) > l.guardTimeout {
		if held, readErr := os.ReadFile(guard); readErr == nil {
			logger.Debug("Removing abandoned lockfile guard", "path", guard)
			if err := l.removeIfUnchanged(guard, held); err != nil {
				return nil, false, err
			}
		}
	}
	return nil, false, nil
}

// removeIfUnchanged deletes path only if it still holds want. The file is
// first moved aside so the comparison and the delete see the same file;
// anything else found there is linked back unless the name was reused.
func (l *Lock) removeIfUnchanged(path string, want []byte) error {
	tmp := l.tempName(path)
	if err := os.Rename(path, tmp); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to move %s aside: %w", path, err)
	}
	got, err := os.ReadFile(tmp)
	if err == nil && !bytes.Equal(got, want) {
		if err := os.Link(tmp, path); err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to restore %s: %w", path, err)
		}
	}
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Unlock removes the lockfile if this process owns it.
func (l *Lock) Unlock() error {
	owner, err := Inspect(l.path)
	if err != nil {
		return err
	}
	if !owner.Present {
		return nil
	}
	if owner.PID != l.pid {
		return fmt.Errorf("lockfile %s is held by pid %d", l.path, owner.PID)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// Status describes the current owner of a lockfile.
type Status struct {
	Path       string
	Present    bool
	PID        int
	Running    bool
	Executable string
}

// Inspect reads the lockfile at path. A missing file is reported with
// Present=false; a malformed one is treated as stale.
func Inspect(path string) (Status, error) {
	st := Status{Path: path}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read lockfile: %w", err)
	}
	st.Present = true

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return st, nil
	}
	st.PID = pid

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return st, nil
	}
	st.Running = true
	st.Executable = process.Executable()
	return st, nil
}
