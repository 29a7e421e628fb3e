package power

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/aadityabagga/TLP/pkg/trace"
)

const (
	stateFile  = "last_pwr"
	manualFile = "manual_mode"
)

// Tracker persists the last observed power mode and the manual mode
// override across invocations. Both live as single-token files under a
// runtime directory and have independent lifecycles.
type Tracker struct {
	Dir string
}

func (t *Tracker) statePath() string {
	return filepath.Join(t.Dir, stateFile)
}

func (t *Tracker) manualPath() string {
	return filepath.Join(t.Dir, manualFile)
}

func (t *Tracker) write(path string, m Mode) error {
	if err := os.MkdirAll(t.Dir, 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create runtime directory %s", t.Dir)
	}
	if err := os.WriteFile(path, []byte(m.Token()+"\n"), 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func (t *Tracker) read(path string) Mode {
	b, err := os.ReadFile(path)
	if err != nil {
		return ModeUnknown
	}
	return ParseToken(strings.TrimSpace(string(b)))
}

// CompareAndSave compares mode against the persisted state and reports
// whether it changed, persisting the new value on a transition. An
// invalid mode always reports a change without touching the persisted
// state, which forces a full policy re-application downstream. When the
// mode is unchanged only the file's mtime is refreshed, so external
// staleness checks keep working.
func (t *Tracker) CompareAndSave(mode Mode) bool {
	if mode != ModeAC && mode != ModeBattery {
		trace.Tracef("ps", "invalid mode %v, reporting change", mode)
		return true
	}

	if t.read(t.statePath()) == mode {
		nowts := time.Now()
		_ = os.Chtimes(t.statePath(), nowts, nowts)
		return false
	}

	if err := t.write(t.statePath(), mode); err != nil {
		trace.Tracef("ps", "%v", err)
	}
	return true
}

// Clear removes the persisted power state. Idempotent.
func (t *Tracker) Clear() {
	_ = os.Remove(t.statePath())
}

// SetManual stores the manual mode override. Only AC and battery are
// valid override values.
func (t *Tracker) SetManual(mode Mode) error {
	if mode != ModeAC && mode != ModeBattery {
		return pkgerrors.Errorf("invalid manual mode %v", mode)
	}
	return t.write(t.manualPath(), mode)
}

// GetManual returns the manual override, if one is active. Foreign or
// damaged file content reads as no override.
func (t *Tracker) GetManual() (Mode, bool) {
	m := t.read(t.manualPath())
	if m == ModeUnknown {
		return ModeUnknown, false
	}
	return m, true
}

// ClearManual removes the manual override. Idempotent.
func (t *Tracker) ClearManual() {
	_ = os.Remove(t.manualPath())
}
