// Package policy applies per-mode power-saving settings to PCI(e)
// devices, audio codecs, and wired network interfaces. Every control
// point is handled independently: a device that refuses a write is
// logged and skipped, never aborting the rest of the run. Re-applying
// the full policy is idempotent, so a partially applied run heals on
// the next invocation.
package policy

import (
	"github.com/sirupsen/logrus"

	"github.com/aadityabagga/TLP/pkg/config"
	"github.com/aadityabagga/TLP/pkg/power"
	"github.com/aadityabagga/TLP/pkg/sysfs"
)

// Engine maps the loaded configuration onto kernel control files.
type Engine struct {
	FS  sysfs.Accessor
	Cfg *config.Config
}

// Apply writes the full device policy for mode.
func (e *Engine) Apply(mode power.Mode) {
	onBattery := mode == power.ModeBattery
	logrus.Debugf("applying device policy for %s mode", mode)

	e.applyRuntimePM(onBattery)
	e.applyASPM(onBattery)
	e.applyAudio(onBattery)
	e.applyWOL()
}
