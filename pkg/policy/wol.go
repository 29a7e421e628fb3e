package policy

import (
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/aadityabagga/TLP/pkg/trace"
)

const netClassPath = "/sys/class/net"

// ARPHRD_ETHER, the interface type sysfs exposes for ethernet NICs.
const ifTypeEthernet = 1

// disableWOL switches wake-on-LAN off on one interface; overridable in
// tests.
var disableWOL = func(iface string) error {
	return exec.Command("ethtool", "-s", iface, "wol", "d").Run()
}

// applyWOL disables wake-on-LAN on every wired ethernet interface when
// WOL_DISABLE is set. Wireless interfaces are left alone, and a
// failing ethtool call only skips that one interface.
func (e *Engine) applyWOL() {
	if !e.Cfg.WOLDisable() {
		return
	}

	for _, dev := range e.FS.Glob(netClassPath + "/*") {
		name := filepath.Base(dev)

		if e.FS.Exists(dev+"/wireless") || e.FS.Exists(dev+"/phy80211") {
			continue
		}
		if e.FS.ReadNumeric(dev+"/type") != ifTypeEthernet {
			continue
		}

		if err := disableWOL(name); err != nil {
			logrus.Warnf("failed to disable wake-on-LAN on %s: %v", name, err)
			continue
		}
		trace.Tracef("pm", "wake-on-LAN disabled on %s", name)
	}
}
