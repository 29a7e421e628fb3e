package policy

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aadityabagga/TLP/pkg/trace"
)

const pciDevicesPath = "/sys/bus/pci/devices"

const (
	nvidiaVendor = "0x10de"
	// PCI class prefixes for display (0x0300xx) and 3D (0x0302xx)
	// controllers.
	classDisplay = "0x0300"
	class3D      = "0x0302"
)

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, i := range items {
		s[i] = struct{}{}
	}
	return s
}

// applyRuntimePM writes the configured runtime PM control value to
// every PCI(e) device that is not excluded by the address blacklist,
// the driver blacklist, or the Nvidia GPU demotion.
func (e *Engine) applyRuntimePM(onBattery bool) {
	value := e.Cfg.RuntimePMValue(onBattery)
	if value == "" {
		return
	}

	addrBlacklist := toSet(e.Cfg.RuntimePMBlacklist())
	driverBlacklist := toSet(e.Cfg.RuntimePMDriverBlacklist())

	for _, dev := range e.FS.Glob(pciDevicesPath + "/*") {
		control := dev + "/power/control"
		if !e.FS.Exists(control) {
			continue
		}

		if e.pciBlacklisted(dev, addrBlacklist, driverBlacklist) {
			trace.Tracef("pm", "%s: blacklisted, control left alone", filepath.Base(dev))
			continue
		}

		if !e.FS.WriteValue(control, value) {
			logrus.Warnf("failed to set runtime PM control %q on %s", value, filepath.Base(dev))
			continue
		}
		trace.Tracef("pm", "%s: control set to %q", filepath.Base(dev), value)
	}
}

// pciBlacklisted reports whether dev must not have its runtime PM
// control touched. Three rules apply: the explicit address blacklist,
// the blacklist of currently-bound driver names, and a vendor/class
// demotion for Nvidia display and 3D controllers whenever an nvidia
// driver is blacklisted. The last rule catches GPUs temporarily bound
// to a different driver (or none); flipping their control anyway is
// known to wedge the proprietary driver's own power management.
func (e *Engine) pciBlacklisted(dev string, addrBlacklist, driverBlacklist map[string]struct{}) bool {
	if _, ok := addrBlacklist[filepath.Base(dev)]; ok {
		return true
	}

	if driver, ok := e.FS.Readlink(dev + "/driver"); ok {
		if _, bad := driverBlacklist[driver]; bad {
			return true
		}
	}

	// The proprietary and open Nvidia kernel modules both register as
	// "nvidia"; some distros bind through "nvidia_drm".
	_, guardNvidia := driverBlacklist["nvidia"]
	if !guardNvidia {
		_, guardNvidia = driverBlacklist["nvidia_drm"]
	}
	if guardNvidia {
		vendor, _ := e.FS.ReadValue(dev + "/vendor")
		if vendor == nvidiaVendor {
			class, _ := e.FS.ReadValue(dev + "/class")
			if strings.HasPrefix(class, classDisplay) || strings.HasPrefix(class, class3D) {
				return true
			}
		}
	}

	return false
}
