package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func loadString(t *testing.T, content string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tlp.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.conf"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.Enabled() {
		t.Errorf("default TLP_ENABLE should be on")
	}
	if c.WOLDisable() {
		t.Errorf("default WOL_DISABLE should be off")
	}
	if c.PSStatusDebounce() != 500*time.Millisecond {
		t.Errorf("default debounce = %v, want 500ms", c.PSStatusDebounce())
	}
}

func TestLoadBasicAssignments(t *testing.T) {
	c := loadString(t, `
# comment
TLP_ENABLE=1
TLP_DEFAULT_MODE=bat
TLP_PERSISTENT_DEFAULT=1
RUNTIME_PM_ON_BAT=auto
PCIE_ASPM_ON_BAT="powersave"
SOUND_POWER_SAVE_ON_BAT=10
WOL_DISABLE=Y
X_PS_STATUS_DEBOUNCE=0.2
`)

	if c.DefaultMode() != ModeTokenBat {
		t.Errorf("DefaultMode = %q, want BAT", c.DefaultMode())
	}
	if !c.PersistentDefault() {
		t.Errorf("PersistentDefault not set")
	}
	if got := c.RuntimePMValue(true); got != "auto" {
		t.Errorf("RuntimePMValue(bat) = %q, want auto", got)
	}
	if got := c.PCIeASPMPolicy(true); got != "powersave" {
		t.Errorf("quoted value not unwrapped: %q", got)
	}
	if got := c.SoundPowerSave(true); got != "10" {
		t.Errorf("SoundPowerSave(bat) = %q, want 10", got)
	}
	if !c.WOLDisable() {
		t.Errorf("WOL_DISABLE=Y not honored")
	}
	if c.PSStatusDebounce() != 200*time.Millisecond {
		t.Errorf("debounce = %v, want 200ms", c.PSStatusDebounce())
	}
}

func TestLoadDropsBadAssignments(t *testing.T) {
	c := loadString(t, `
NOT_A_REAL_KEY=1
TLP_ENABLE=maybe
RUNTIME_PM_ON_AC=sometimes
rm -rf /
PCIE_ASPM_ON_AC=$(reboot)
WOL_DISABLE=N
`)

	// The bad TLP_ENABLE assignment is dropped, default applies.
	if !c.Enabled() {
		t.Errorf("malformed TLP_ENABLE should fall back to default")
	}
	if got := c.RuntimePMValue(false); got != "" {
		t.Errorf("RUNTIME_PM_ON_AC with bad token = %q, want unset", got)
	}
	if got := c.PCIeASPMPolicy(false); got != "" {
		t.Errorf("shell-expansion value survived: %q", got)
	}
	if c.WOLDisable() {
		t.Errorf("valid assignment after bad lines was lost")
	}
}

func TestSoundControllerFallbackChain(t *testing.T) {
	tests := []struct {
		name    string
		conf    string
		battery bool
		want    string
	}{
		{
			name:    "new key wins",
			conf:    "SOUND_POWER_SAVE_CONTROLLER=N\nSOUND_POWER_SAVE_CONTROLLER_ON_BAT=Y\n",
			battery: true,
			want:    "N",
		},
		{
			name:    "legacy per-mode key",
			conf:    "SOUND_POWER_SAVE_CONTROLLER_ON_BAT=N\n",
			battery: true,
			want:    "N",
		},
		{
			name:    "legacy key for other mode ignored",
			conf:    "SOUND_POWER_SAVE_CONTROLLER_ON_BAT=N\n",
			battery: false,
			want:    "Y",
		},
		{
			name: "nothing set",
			conf: "",
			want: "Y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadString(t, tt.conf)
			if got := c.SoundPowerSaveController(tt.battery); got != tt.want {
				t.Errorf("controller flag = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDriverBlacklistDefault(t *testing.T) {
	c := New(nil)
	bl := c.RuntimePMDriverBlacklist()
	want := map[string]bool{"amdgpu": true, "mei_me": true, "nouveau": true, "nvidia": true, "radeon": true}
	if len(bl) != len(want) {
		t.Fatalf("default driver blacklist = %v", bl)
	}
	for _, d := range bl {
		if !want[d] {
			t.Errorf("unexpected blacklist entry %q", d)
		}
	}
}
