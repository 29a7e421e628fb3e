package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aadityabagga/TLP/pkg/config"
	"github.com/aadityabagga/TLP/pkg/utils/ptr"
)

func TestASPMApply(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, aspmPolicyPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[default] performance powersave\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := newEngine(root, &config.RawConfig{PCIeASPMOnBat: ptr.To("powersave")})
	e.applyASPM(true)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "powersave" {
		t.Fatalf("ASPM policy file = %q, want powersave", b)
	}
}

func TestASPMMissingControlIsNoop(t *testing.T) {
	root := t.TempDir()

	e := newEngine(root, &config.RawConfig{PCIeASPMOnBat: ptr.To("powersave")})
	// Must not create the file or fail.
	e.applyASPM(true)

	if _, err := os.Stat(filepath.Join(root, aspmPolicyPath)); !os.IsNotExist(err) {
		t.Fatalf("ASPM control file appeared out of nowhere")
	}
}

func TestASPMUnconfiguredIsNoop(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, aspmPolicyPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[default]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := newEngine(root, nil)
	e.applyASPM(false)

	b, _ := os.ReadFile(path)
	if string(b) != "[default]\n" {
		t.Fatalf("ASPM policy written without configuration: %q", b)
	}
}
