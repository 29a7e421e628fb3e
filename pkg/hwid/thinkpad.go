// Package hwid identifies ThinkPad hardware from DMI data and
// classifies it by which battery-management kernel interface it
// supports.
package hwid

import (
	"os/exec"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aadityabagga/TLP/pkg/config"
	"github.com/aadityabagga/TLP/pkg/sysfs"
	"github.com/aadityabagga/TLP/pkg/trace"
)

const dmiProductVersion = "/sys/class/dmi/id/product_version"

// Tier is the battery-management capability class of a model.
type Tier int

const (
	// TierNotThinkPad marks non-Lenovo/non-ThinkPad hardware.
	TierNotThinkPad Tier = iota
	// TierSMAPIOnly covers pre-2011 models served by tp_smapi alone.
	TierSMAPIOnly
	// TierSMAPIAndACPI covers the transition generation (Sandy/Ivy
	// Bridge) where both tp_smapi and acpi_call work.
	TierSMAPIAndACPI
	// TierNone covers ThinkPads without any battery functions.
	TierNone
	// TierACPIDefault is the newest path (natacpi / acpi_call); any
	// unrecognized ThinkPad is assumed to be here.
	TierACPIDefault
)

func (t Tier) String() string {
	switch t {
	case TierNotThinkPad:
		return "not a ThinkPad"
	case TierSMAPIOnly:
		return "tp-smapi"
	case TierSMAPIAndACPI:
		return "tp-smapi, tpacpi-bat"
	case TierNone:
		return "no battery functions"
	case TierACPIDefault:
		return "natacpi"
	default:
		return "unknown"
	}
}

// Model is the hardware identity for one run. Build it once with
// Detect and pass it to everything that needs it.
type Model struct {
	// Raw is the sanitized DMI product version string.
	Raw string
	// Name is the bare model string with the vendor prefix removed,
	// e.g. "X220". Empty for non-ThinkPads.
	Name string
	Tier Tier
}

// IsThinkPad reports whether the machine identified as a ThinkPad.
func (m Model) IsThinkPad() bool {
	return m.Tier != TierNotThinkPad
}

// The three disjoint legacy tiers, matched in order against the bare
// model string. Models matching none of them get the newest path.
var (
	reSMAPIOnly    = regexp.MustCompile(`^(T23|T4[0-3]p?|T6[01]p?|R5[0-2]e?|R6[01]e?|R400|R500|X3[0-2]|X4[01]|X6[01]s?( Tablet)?|Z6[01][mpt]|SL[345]00|W500|W70[01](ds)?|G4[01])$`)
	reSMAPIAndACPI = regexp.MustCompile(`^(X1|X220|X230|T420s?|T430s?|T52[05]|T530|W52[05]|W530|L[45]20|S230u)( Tablet)?$`)
	reNone         = regexp.MustCompile(`^(Edge E?[0-9]+|E[1-5][0-9]{2}|S[0-9]{3}|SL[45]10|X1[0-3][0-5]e|11e|Yoga 11e)$`)
)

var reSanitize = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)

// modprobe loads a kernel module; overridable in tests. Module loads
// are best-effort: a kernel without the module is business as usual.
var modprobe = func(module string) error {
	return exec.Command("modprobe", module).Run()
}

// Detect reads the DMI product version (or the configured simulated
// value) and classifies the machine. It also loads the kernel modules
// the classified tier can use, ignoring failures.
func Detect(cfg *config.Config, fs sysfs.Accessor) Model {
	raw := cfg.SimulateModel()
	if raw == "" {
		raw, _ = fs.ReadValue(dmiProductVersion)
	} else {
		logrus.Warnf("simulating model %q", raw)
	}
	raw = strings.TrimSpace(reSanitize.ReplaceAllString(raw, ""))

	m := classify(raw)
	trace.Tracef("hwid", "product version %q, model %q, tier %q", m.Raw, m.Name, m.Tier)

	loadModules(m.Tier)
	return m
}

func classify(raw string) Model {
	m := Model{Raw: raw, Tier: TierNotThinkPad}

	idx := strings.Index(strings.ToLower(raw), "thinkpad")
	if idx < 0 {
		return m
	}
	m.Name = strings.TrimSpace(raw[idx+len("thinkpad"):])

	switch {
	case reSMAPIOnly.MatchString(m.Name):
		m.Tier = TierSMAPIOnly
	case reSMAPIAndACPI.MatchString(m.Name):
		m.Tier = TierSMAPIAndACPI
	case reNone.MatchString(m.Name):
		m.Tier = TierNone
	default:
		m.Tier = TierACPIDefault
	}
	return m
}

func loadModules(t Tier) {
	var modules []string
	switch t {
	case TierSMAPIOnly:
		modules = []string{"tp_smapi"}
	case TierSMAPIAndACPI:
		modules = []string{"tp_smapi", "acpi_call"}
	case TierACPIDefault:
		modules = []string{"acpi_call"}
	}

	for _, mod := range modules {
		if err := modprobe(mod); err != nil {
			trace.Tracef("hwid", "modprobe %s: %v", mod, err)
		}
	}
}
