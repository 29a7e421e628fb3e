package power

import (
	"path/filepath"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aadityabagga/TLP/pkg/config"
	"github.com/aadityabagga/TLP/pkg/lock"
	"github.com/aadityabagga/TLP/pkg/sysfs"
	"github.com/aadityabagga/TLP/pkg/trace"
)

const powerSupplyPath = "/sys/class/power_supply"

// LockIDDischarge marks a forced battery-discharge test in progress.
// While its lock marker exists, a discharging battery must not be
// mistaken for running on battery power.
const LockIDDischarge = "tlp_discharge"

// Overridable in tests.
var sleep = time.Sleep

// Detector resolves the current power source from the live device set.
type Detector struct {
	FS    sysfs.Accessor
	Cfg   *config.Config
	Locks *lock.Manager
}

// DetectPowerSupply enumerates the power-supply devices and decides
// the current power source. AC devices have absolute precedence: the
// first Mains/USB device ends the scan. Battery devices only ever
// contribute a provisional decision, so an AC device later in
// enumeration order still wins.
func (d *Detector) DetectPowerSupply() Mode {
	var ignore *regexp.Regexp
	if pat := d.Cfg.PSIgnore(); pat != "" {
		var err error
		ignore, err = regexp.Compile(pat)
		if err != nil {
			logrus.Warnf("ignoring invalid PS_IGNORE pattern %q: %v", pat, err)
		}
	}

	decided := ModeUnknown
	for _, dev := range d.FS.Glob(powerSupplyPath + "/*") {
		name := filepath.Base(dev)
		if ignore != nil && ignore.MatchString(name) {
			trace.Tracef("ps", "%s: ignored by PS_IGNORE", name)
			continue
		}

		typ, ok := d.FS.ReadValue(dev + "/type")
		if !ok {
			trace.Tracef("ps", "%s: unreadable type, skipped", name)
			continue
		}

		switch typ {
		case "Mains", "USB":
			if d.Cfg.PSACQuirk() {
				trace.Tracef("ps", "%s: skipped (AC quirk simulation)", name)
				continue
			}
			if d.FS.ReadNumeric(dev+"/online") == 1 {
				trace.Tracef("ps", "%s: online, deciding AC", name)
				return ModeAC
			}
			// An AC device that is present but offline means battery
			// power; nothing further can change that.
			trace.Tracef("ps", "%s: offline, deciding battery", name)
			return ModeBattery

		case "Battery":
			if decided == ModeBattery {
				continue
			}
			status, _ := d.FS.ReadValue(dev + "/status")
			if status == "Discharging" {
				if d.Locks.Peek(LockIDDischarge) {
					trace.Tracef("ps", "%s: discharging but forced-discharge active, deciding AC", name)
					return ModeAC
				}
				trace.Tracef("ps", "%s: discharging, deciding battery", name)
				decided = ModeBattery
				continue
			}

			// Charging/Idle/Unknown right after a plug event can be
			// stale. Re-read once after a short delay before trusting
			// it, and keep scanning either way so a later AC device
			// still takes precedence.
			trace.Tracef("ps", "%s: status %q, re-checking", name, status)
			sleep(d.Cfg.PSStatusDebounce())
			status, _ = d.FS.ReadValue(dev + "/status")
			if status == "Discharging" {
				decided = ModeBattery
			} else {
				decided = ModeAC
			}
			trace.Tracef("ps", "%s: status %q after re-check, deciding %s", name, status, decided)
		}
	}

	return decided
}

// ResolveEffectiveMode reduces detection to AC or battery. An unknown
// result falls back to TLP_DEFAULT_MODE (AC when unset). With
// TLP_PERSISTENT_DEFAULT the configured default pins the mode outright,
// regardless of the real hardware state (docked desktop setups).
func (d *Detector) ResolveEffectiveMode() Mode {
	def := ModeUnknown
	switch d.Cfg.DefaultMode() {
	case config.ModeTokenAC:
		def = ModeAC
	case config.ModeTokenBat:
		def = ModeBattery
	}

	if d.Cfg.PersistentDefault() && def != ModeUnknown {
		trace.Tracef("ps", "persistent default active, mode pinned to %s", def)
		return def
	}

	mode := d.DetectPowerSupply()
	if mode == ModeUnknown {
		if def != ModeUnknown {
			return def
		}
		return ModeAC
	}
	return mode
}
