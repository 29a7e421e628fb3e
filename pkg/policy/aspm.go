package policy

import (
	"github.com/sirupsen/logrus"

	"github.com/aadityabagga/TLP/pkg/trace"
)

const aspmPolicyPath = "/sys/module/pcie_aspm/parameters/policy"

// applyASPM writes the configured PCIe ASPM policy token. Kernels
// built without ASPM support, or booted with pcie_aspm locked by the
// BIOS, reject the write; that is logged and otherwise ignored.
func (e *Engine) applyASPM(onBattery bool) {
	policy := e.Cfg.PCIeASPMPolicy(onBattery)
	if policy == "" {
		return
	}

	if !e.FS.Exists(aspmPolicyPath) {
		trace.Tracef("pm", "ASPM not available, %s missing", aspmPolicyPath)
		return
	}

	if !e.FS.WriteValue(aspmPolicyPath, policy) {
		logrus.Warnf("kernel rejected ASPM policy %q", policy)
		return
	}
	trace.Tracef("pm", "ASPM policy set to %q", policy)
}
