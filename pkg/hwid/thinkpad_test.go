package hwid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aadityabagga/TLP/pkg/config"
	"github.com/aadityabagga/TLP/pkg/sysfs"
	"github.com/aadityabagga/TLP/pkg/utils/ptr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw      string
		wantName string
		wantTier Tier
	}{
		{"ThinkPad X220", "X220", TierSMAPIAndACPI},
		{"ThinkPad X230", "X230", TierSMAPIAndACPI},
		{"ThinkPad T420s", "T420s", TierSMAPIAndACPI},
		{"ThinkPad T43", "T43", TierSMAPIOnly},
		{"ThinkPad X61 Tablet", "X61 Tablet", TierSMAPIOnly},
		{"ThinkPad R52", "R52", TierSMAPIOnly},
		{"ThinkPad E531", "E531", TierNone},
		{"ThinkPad Edge E320", "Edge E320", TierNone},
		{"ThinkPad T490", "T490", TierACPIDefault},
		{"ThinkPad X1", "X1", TierSMAPIAndACPI},
		{"ThinkPad X1 Carbon 7th", "X1 Carbon 7th", TierACPIDefault},
		{"ThinkPad P53", "P53", TierACPIDefault},
		{"thinkpad t480", "t480", TierACPIDefault},
		{"IdeaPad 5", "", TierNotThinkPad},
		{"", "", TierNotThinkPad},
	}

	for _, tt := range tests {
		m := classify(tt.raw)
		if m.Name != tt.wantName || m.Tier != tt.wantTier {
			t.Errorf("classify(%q) = (%q, %v), want (%q, %v)",
				tt.raw, m.Name, m.Tier, tt.wantName, tt.wantTier)
		}
	}
}

func TestDetectSanitizesAndReadsDMI(t *testing.T) {
	defer func(orig func(string) error) { modprobe = orig }(modprobe)
	modprobe = func(string) error { return nil }

	root := t.TempDir()
	path := filepath.Join(root, dmiProductVersion)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	// Firmware strings come with stray punctuation and whitespace.
	if err := os.WriteFile(path, []byte(" ThinkPad X220*\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := Detect(config.New(nil), sysfs.Accessor{Root: root})
	if m.Name != "X220" || m.Tier != TierSMAPIAndACPI {
		t.Fatalf("Detect = (%q, %v), want (X220, %v)", m.Name, m.Tier, TierSMAPIAndACPI)
	}
}

func TestDetectSimulatedModel(t *testing.T) {
	var loaded []string
	defer func(orig func(string) error) { modprobe = orig }(modprobe)
	modprobe = func(mod string) error {
		loaded = append(loaded, mod)
		return nil
	}

	cfg := config.New(&config.RawConfig{SimulateModel: ptr.To("ThinkPad T43")})
	m := Detect(cfg, sysfs.Accessor{Root: t.TempDir()})

	if m.Tier != TierSMAPIOnly {
		t.Fatalf("simulated T43 classified as %v", m.Tier)
	}
	if len(loaded) != 1 || loaded[0] != "tp_smapi" {
		t.Fatalf("expected tp_smapi load only, got %v", loaded)
	}
}

func TestDetectModuleLoadFailureIgnored(t *testing.T) {
	defer func(orig func(string) error) { modprobe = orig }(modprobe)
	modprobe = func(string) error { return os.ErrNotExist }

	cfg := config.New(&config.RawConfig{SimulateModel: ptr.To("ThinkPad X220")})
	m := Detect(cfg, sysfs.Accessor{Root: t.TempDir()})
	if m.Tier != TierSMAPIAndACPI {
		t.Fatalf("modprobe failure changed the detection result")
	}
}

func TestDetectNotAThinkPad(t *testing.T) {
	defer func(orig func(string) error) { modprobe = orig }(modprobe)
	called := false
	modprobe = func(string) error {
		called = true
		return nil
	}

	m := Detect(config.New(nil), sysfs.Accessor{Root: t.TempDir()})
	if m.IsThinkPad() {
		t.Fatalf("empty DMI detected as ThinkPad")
	}
	if called {
		t.Fatalf("modules loaded for non-ThinkPad hardware")
	}
}
