// Package config loads the tlp configuration file. The on-disk format
// is the traditional sh-style assignment file (KEY=value, optionally
// quoted), but assignments are parsed against a strict key allow-list
// into a typed structure; nothing is ever evaluated.
package config

import (
	"strings"
	"time"

	"github.com/aadityabagga/TLP/pkg/utils/ptr"
)

// Mode selection tokens accepted by TLP_DEFAULT_MODE.
const (
	ModeTokenAC  = "AC"
	ModeTokenBat = "BAT"
)

var defaultConfig = &RawConfig{
	Enable:            ptr.To(true),
	DefaultMode:       ptr.To(""),
	PersistentDefault: ptr.To(false),
	Debug:             ptr.To(""),
	PSIgnore:          ptr.To(""),

	RuntimePMOnAC:      ptr.To(""),
	RuntimePMOnBat:     ptr.To(""),
	RuntimePMBlacklist: ptr.To(""),
	// Drivers with broken or self-managed runtime PM. The nvidia entry
	// also demotes Nvidia GPUs bound to other drivers, see pkg/policy.
	RuntimePMDriverBlacklist: ptr.To("amdgpu mei_me nouveau nvidia radeon"),

	PCIeASPMOnAC:  ptr.To(""),
	PCIeASPMOnBat: ptr.To(""),

	SoundPowerSaveOnAC:            ptr.To(""),
	SoundPowerSaveOnBat:           ptr.To(""),
	SoundPowerSaveController:      ptr.To(""),
	SoundPowerSaveControllerOnAC:  ptr.To(""),
	SoundPowerSaveControllerOnBat: ptr.To(""),

	WOLDisable: ptr.To(false),

	SimulateModel:    ptr.To(""),
	PSACQuirk:        ptr.To(false),
	PSStatusDebounce: ptr.To(0.5),
}

// RawConfig mirrors the configuration file. Nil fields fall back to
// defaultConfig in the getters, so a missing key and a key set to its
// default are indistinguishable to consumers.
type RawConfig struct {
	Enable            *bool
	DefaultMode       *string
	PersistentDefault *bool
	Debug             *string
	PSIgnore          *string

	RuntimePMOnAC            *string
	RuntimePMOnBat           *string
	RuntimePMBlacklist       *string
	RuntimePMDriverBlacklist *string

	PCIeASPMOnAC  *string
	PCIeASPMOnBat *string

	SoundPowerSaveOnAC            *string
	SoundPowerSaveOnBat           *string
	SoundPowerSaveController      *string
	SoundPowerSaveControllerOnAC  *string
	SoundPowerSaveControllerOnBat *string

	WOLDisable *bool

	SimulateModel    *string
	PSACQuirk        *bool
	PSStatusDebounce *float64
}

// Config is the typed view consumers work with.
type Config struct {
	c *RawConfig
}

// New wraps a RawConfig. A nil raw config yields pure defaults.
func New(c *RawConfig) *Config {
	if c == nil {
		c = &RawConfig{}
	}
	return &Config{c: c}
}

func str(v, def *string) string {
	if v != nil {
		return *v
	}
	return *def
}

func boolean(v, def *bool) bool {
	if v != nil {
		return *v
	}
	return *def
}

// Enabled reports whether tlp is allowed to act at all (TLP_ENABLE).
func (c *Config) Enabled() bool {
	return boolean(c.c.Enable, defaultConfig.Enable)
}

// DefaultMode returns the configured fallback mode token ("AC", "BAT")
// or an empty string when unset.
func (c *Config) DefaultMode() string {
	return strings.ToUpper(str(c.c.DefaultMode, defaultConfig.DefaultMode))
}

// PersistentDefault reports whether the configured default mode pins
// operation regardless of the detected power source.
func (c *Config) PersistentDefault() bool {
	return boolean(c.c.PersistentDefault, defaultConfig.PersistentDefault)
}

// Debug returns the whitespace-separated trace tag list (TLP_DEBUG).
func (c *Config) Debug() string {
	return str(c.c.Debug, defaultConfig.Debug)
}

// PSIgnore returns the regex matching power-supply device names to
// skip; some vendors expose bogus power sources (gaming mice, hubs).
func (c *Config) PSIgnore() string {
	return str(c.c.PSIgnore, defaultConfig.PSIgnore)
}

// RuntimePMValue returns the PCI runtime PM control value ("on",
// "auto") for the given mode; empty means unconfigured.
func (c *Config) RuntimePMValue(battery bool) string {
	if battery {
		return str(c.c.RuntimePMOnBat, defaultConfig.RuntimePMOnBat)
	}
	return str(c.c.RuntimePMOnAC, defaultConfig.RuntimePMOnAC)
}

// RuntimePMBlacklist returns the configured PCI address blacklist.
func (c *Config) RuntimePMBlacklist() []string {
	return strings.Fields(str(c.c.RuntimePMBlacklist, defaultConfig.RuntimePMBlacklist))
}

// RuntimePMDriverBlacklist returns the driver-name blacklist.
func (c *Config) RuntimePMDriverBlacklist() []string {
	return strings.Fields(str(c.c.RuntimePMDriverBlacklist, defaultConfig.RuntimePMDriverBlacklist))
}

// PCIeASPMPolicy returns the ASPM policy token for the given mode;
// empty means unconfigured.
func (c *Config) PCIeASPMPolicy(battery bool) string {
	if battery {
		return str(c.c.PCIeASPMOnBat, defaultConfig.PCIeASPMOnBat)
	}
	return str(c.c.PCIeASPMOnAC, defaultConfig.PCIeASPMOnAC)
}

// SoundPowerSave returns the audio power-save timeout in seconds for
// the given mode; empty means unconfigured.
func (c *Config) SoundPowerSave(battery bool) string {
	if battery {
		return str(c.c.SoundPowerSaveOnBat, defaultConfig.SoundPowerSaveOnBat)
	}
	return str(c.c.SoundPowerSaveOnAC, defaultConfig.SoundPowerSaveOnAC)
}

// SoundPowerSaveController resolves the HDA controller power-save flag
// ("Y"/"N"). SOUND_POWER_SAVE_CONTROLLER wins; the legacy per-mode keys
// are the fallback; with neither set the controller follows the codec.
func (c *Config) SoundPowerSaveController(battery bool) string {
	if v := str(c.c.SoundPowerSaveController, defaultConfig.SoundPowerSaveController); v != "" {
		return v
	}
	var legacy string
	if battery {
		legacy = str(c.c.SoundPowerSaveControllerOnBat, defaultConfig.SoundPowerSaveControllerOnBat)
	} else {
		legacy = str(c.c.SoundPowerSaveControllerOnAC, defaultConfig.SoundPowerSaveControllerOnAC)
	}
	if legacy != "" {
		return legacy
	}
	return "Y"
}

// WOLDisable reports whether wake-on-LAN should be switched off.
func (c *Config) WOLDisable() bool {
	return boolean(c.c.WOLDisable, defaultConfig.WOLDisable)
}

// SimulateModel returns the DMI product-version override for testing.
func (c *Config) SimulateModel() string {
	return str(c.c.SimulateModel, defaultConfig.SimulateModel)
}

// PSACQuirk reports whether Mains/USB power supplies are to be ignored
// entirely, simulating hardware that exposes false AC devices.
func (c *Config) PSACQuirk() bool {
	return boolean(c.c.PSACQuirk, defaultConfig.PSACQuirk)
}

// PSStatusDebounce returns the delay before re-reading an ambiguous
// battery status. The 0.5 s default dodges transient sysfs lag; the
// exact duration is a heuristic, hence configurable.
func (c *Config) PSStatusDebounce() time.Duration {
	v := c.c.PSStatusDebounce
	if v == nil {
		v = defaultConfig.PSStatusDebounce
	}
	return time.Duration(*v * float64(time.Second))
}
