package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/aadityabagga/TLP/pkg/trace"
)

// setters maps allow-listed keys to typed assignment functions. A key
// missing here does not exist as far as the parser is concerned.
var setters = map[string]func(c *RawConfig, value string) error{
	"TLP_ENABLE":             func(c *RawConfig, v string) error { return setBool(&c.Enable, v) },
	"TLP_DEFAULT_MODE":       func(c *RawConfig, v string) error { return setMode(&c.DefaultMode, v) },
	"TLP_PERSISTENT_DEFAULT": func(c *RawConfig, v string) error { return setBool(&c.PersistentDefault, v) },
	"TLP_DEBUG":              func(c *RawConfig, v string) error { return setString(&c.Debug, v) },
	"PS_IGNORE":              func(c *RawConfig, v string) error { return setString(&c.PSIgnore, v) },

	"RUNTIME_PM_ON_AC":            func(c *RawConfig, v string) error { return setToken(&c.RuntimePMOnAC, v, "on", "auto") },
	"RUNTIME_PM_ON_BAT":           func(c *RawConfig, v string) error { return setToken(&c.RuntimePMOnBat, v, "on", "auto") },
	"RUNTIME_PM_BLACKLIST":        func(c *RawConfig, v string) error { return setString(&c.RuntimePMBlacklist, v) },
	"RUNTIME_PM_DRIVER_BLACKLIST": func(c *RawConfig, v string) error { return setString(&c.RuntimePMDriverBlacklist, v) },

	"PCIE_ASPM_ON_AC":  func(c *RawConfig, v string) error { return setString(&c.PCIeASPMOnAC, v) },
	"PCIE_ASPM_ON_BAT": func(c *RawConfig, v string) error { return setString(&c.PCIeASPMOnBat, v) },

	"SOUND_POWER_SAVE_ON_AC":             func(c *RawConfig, v string) error { return setNumericString(&c.SoundPowerSaveOnAC, v) },
	"SOUND_POWER_SAVE_ON_BAT":            func(c *RawConfig, v string) error { return setNumericString(&c.SoundPowerSaveOnBat, v) },
	"SOUND_POWER_SAVE_CONTROLLER":        func(c *RawConfig, v string) error { return setToken(&c.SoundPowerSaveController, v, "Y", "N") },
	"SOUND_POWER_SAVE_CONTROLLER_ON_AC":  func(c *RawConfig, v string) error { return setToken(&c.SoundPowerSaveControllerOnAC, v, "Y", "N") },
	"SOUND_POWER_SAVE_CONTROLLER_ON_BAT": func(c *RawConfig, v string) error { return setToken(&c.SoundPowerSaveControllerOnBat, v, "Y", "N") },

	"WOL_DISABLE": func(c *RawConfig, v string) error { return setYesNo(&c.WOLDisable, v) },

	"X_SIMULATE_MODEL":     func(c *RawConfig, v string) error { return setString(&c.SimulateModel, v) },
	"X_PS_AC_QUIRK":        func(c *RawConfig, v string) error { return setBool(&c.PSACQuirk, v) },
	"X_PS_STATUS_DEBOUNCE": func(c *RawConfig, v string) error { return setFloat(&c.PSStatusDebounce, v) },
}

func setString(dst **string, v string) error {
	*dst = &v
	return nil
}

func setBool(dst **bool, v string) error {
	switch v {
	case "1":
		t := true
		*dst = &t
	case "0":
		f := false
		*dst = &f
	default:
		return pkgerrors.Errorf("not a 0/1 value: %q", v)
	}
	return nil
}

func setYesNo(dst **bool, v string) error {
	switch strings.ToUpper(v) {
	case "Y":
		t := true
		*dst = &t
	case "N":
		f := false
		*dst = &f
	default:
		return pkgerrors.Errorf("not a Y/N value: %q", v)
	}
	return nil
}

func setMode(dst **string, v string) error {
	return setToken(dst, strings.ToUpper(v), ModeTokenAC, ModeTokenBat)
}

func setToken(dst **string, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			*dst = &v
			return nil
		}
	}
	return pkgerrors.Errorf("value %q not in %v", v, allowed)
}

func setNumericString(dst **string, v string) error {
	if _, err := strconv.Atoi(v); err != nil {
		return pkgerrors.Errorf("not a number: %q", v)
	}
	*dst = &v
	return nil
}

func setFloat(dst **float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return pkgerrors.Errorf("not a non-negative number: %q", v)
	}
	*dst = &f
	return nil
}

// Load reads the configuration from path. A missing file yields pure
// defaults. Malformed or unrecognized assignments are dropped, never
// executed; each drop is traceable under the cfg tag.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, pkgerrors.Wrapf(err, "failed to open config %s", path)
	}
	defer f.Close()

	raw := &RawConfig{}
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitAssignment(line)
		if !ok {
			trace.Tracef("cfg", "%s:%d: dropping malformed line", path, lineno)
			continue
		}

		set, ok := setters[key]
		if !ok {
			trace.Tracef("cfg", "%s:%d: dropping unknown key %s", path, lineno, key)
			continue
		}
		if err := set(raw, value); err != nil {
			trace.Tracef("cfg", "%s:%d: dropping %s: %v", path, lineno, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read config %s", path)
	}

	return New(raw), nil
}

// splitAssignment parses a single KEY=value line. Values may be
// surrounded by single or double quotes; embedded quotes of the other
// kind are kept verbatim.
func splitAssignment(line string) (key, value string, ok bool) {
	eq := strings.IndexByte(line, '=')
	if eq <= 0 {
		return "", "", false
	}

	key = line[:eq]
	for _, r := range key {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return "", "", false
		}
	}

	value = line[eq+1:]
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	if strings.ContainsAny(value, "`$\\") {
		// Anything that smells like shell expansion is refused outright.
		return "", "", false
	}
	return key, value, true
}
