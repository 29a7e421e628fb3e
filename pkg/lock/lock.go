// Package lock provides file-based advisory locks shared across tlp
// invocations. Two flavors exist: flock(2)-backed exclusive locks held
// for the life of a critical section, and timed markers whose filename
// carries an absolute expiry timestamp, used for cooldown-style
// exclusion that must outlive the process.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/aadityabagga/TLP/pkg/trace"
)

const (
	// MaxTimedLock is the longest usable timed-lock duration. A marker
	// further than this in the future cannot have been written by a
	// sane invocation, so CheckTimedLock deletes it as corrupt; that is
	// a defensive guess, not a guarantee. Callers must not request
	// longer durations, or their markers are discarded on the next
	// check.
	MaxTimedLock = 120 * time.Second

	pollInterval = 100 * time.Millisecond
)

// Overridable in tests.
var now = time.Now

// Manager hands out locks keyed by id, all backed by files under Dir.
type Manager struct {
	Dir string

	mu   sync.Mutex
	held map[string]*os.File
}

func NewManager(dir string) *Manager {
	return &Manager{
		Dir:  dir,
		held: map[string]*os.File{},
	}
}

func (m *Manager) lockPath(id string) string {
	return filepath.Join(m.Dir, id+".lock")
}

func (m *Manager) open(id string) (*os.File, error) {
	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create lock directory %s", m.Dir)
	}
	f, err := os.OpenFile(m.lockPath(id), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open lock file for %s", id)
	}
	return f, nil
}

// AcquireBlocking takes the exclusive lock for id, waiting up to
// timeout. It reports success; failure is never fatal, the caller
// decides whether to abort the guarded operation.
func (m *Manager) AcquireBlocking(id string, timeout time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[id]; ok {
		return true
	}

	f, err := m.open(id)
	if err != nil {
		trace.Tracef("lock", "%v", err)
		return false
	}

	deadline := now().Add(timeout)
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			m.held[id] = f
			trace.Tracef("lock", "acquired %s", id)
			return true
		}
		if err != unix.EWOULDBLOCK || !now().Before(deadline) {
			break
		}
		time.Sleep(pollInterval)
	}

	_ = f.Close()
	trace.Tracef("lock", "failed to acquire %s: %v", id, err)
	return false
}

// AcquireNonBlocking takes the exclusive lock for id, failing
// immediately when it is already held elsewhere.
func (m *Manager) AcquireNonBlocking(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[id]; ok {
		return true
	}

	f, err := m.open(id)
	if err != nil {
		trace.Tracef("lock", "%v", err)
		return false
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		trace.Tracef("lock", "failed to acquire %s: %v", id, err)
		return false
	}

	m.held[id] = f
	trace.Tracef("lock", "acquired %s", id)
	return true
}

// Release drops the lock for id and removes its marker file. Releasing
// a lock that is not held is a no-op.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.held[id]
	if !ok {
		return
	}
	delete(m.held, id)

	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	_ = f.Close()
	_ = os.Remove(m.lockPath(id))
	trace.Tracef("lock", "released %s", id)
}

// Peek reports whether a marker file for id exists. It does not take
// the lock and is inherently racy; use it only as a coordination hint
// (e.g. "is a discharge test in progress"). Absence of the marker is
// not proof that nothing holds the lock.
func (m *Manager) Peek(id string) bool {
	_, err := os.Stat(m.lockPath(id))
	return err == nil
}

func (m *Manager) timedMarkers(id string) []string {
	matches, _ := filepath.Glob(filepath.Join(m.Dir, id+".*"))
	var out []string
	for _, p := range matches {
		if strings.HasSuffix(p, ".lock") {
			continue
		}
		out = append(out, p)
	}
	return out
}

func markerExpiry(path string) (time.Time, bool) {
	suffix := strings.TrimPrefix(filepath.Ext(path), ".")
	ts, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

// SetTimedLock drops a marker for id that expires after d. Expired
// markers of the same id are garbage-collected on the way.
func (m *Manager) SetTimedLock(id string, d time.Duration) error {
	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create lock directory %s", m.Dir)
	}

	t := now()
	for _, p := range m.timedMarkers(id) {
		exp, ok := markerExpiry(p)
		if !ok || !exp.After(t) {
			_ = os.Remove(p)
		}
	}

	expiry := t.Add(d).Unix()
	path := filepath.Join(m.Dir, fmt.Sprintf("%s.%d", id, expiry))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create timed lock %s", id)
	}
	_ = f.Close()
	trace.Tracef("lock", "timed lock %s set, expires %d", id, expiry)
	return nil
}

// CheckTimedLock reports whether a live timed marker for id exists.
// Expired markers are removed as a side effect, and so are markers more
// than MaxTimedLock in the future, which no invocation writes and which
// we therefore treat as corrupt.
func (m *Manager) CheckTimedLock(id string) bool {
	t := now()
	locked := false
	for _, p := range m.timedMarkers(id) {
		exp, ok := markerExpiry(p)
		switch {
		case !ok, exp.After(t.Add(MaxTimedLock)):
			trace.Tracef("lock", "removing corrupt timed lock marker %s", p)
			_ = os.Remove(p)
		case exp.After(t):
			locked = true
		default:
			_ = os.Remove(p)
		}
	}
	return locked
}
