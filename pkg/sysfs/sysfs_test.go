package sysfs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", full, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", full, err)
		}
	}
}

func TestReadValue(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"sys/class/power_supply/AC/online": "1\n",
	})
	a := Accessor{Root: root}

	got, ok := a.ReadValue("/sys/class/power_supply/AC/online")
	if !ok || got != "1" {
		t.Fatalf("ReadValue = (%q, %v), want (\"1\", true)", got, ok)
	}

	if _, ok := a.ReadValue("/sys/class/power_supply/AC/nonexistent"); ok {
		t.Fatalf("ReadValue on missing file reported ok")
	}
}

func TestReadNumeric(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"num":     "42\n",
		"garbage": "not a number",
	})
	a := Accessor{Root: root}

	tests := []struct {
		path string
		want int
	}{
		{"/num", 42},
		{"/garbage", 0},
		{"/missing", 0},
	}
	for _, tt := range tests {
		if got := a.ReadNumeric(tt.path); got != tt.want {
			t.Errorf("ReadNumeric(%s) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestWriteValue(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"ctl": "on"})
	a := Accessor{Root: root}

	if !a.WriteValue("/ctl", "auto") {
		t.Fatalf("WriteValue failed on existing file")
	}
	if got, _ := a.ReadValue("/ctl"); got != "auto" {
		t.Fatalf("content after write = %q, want %q", got, "auto")
	}

	if a.WriteValue("/no/such/dir/ctl", "auto") {
		t.Fatalf("WriteValue to missing directory reported ok")
	}
}

func TestExistsAndReadable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"present": ""})
	a := Accessor{Root: root}

	if !a.Exists("/present") || a.Exists("/absent") {
		t.Fatalf("Exists gave wrong answers")
	}
	if !a.Readable("/present") || a.Readable("/absent") {
		t.Fatalf("Readable gave wrong answers")
	}
}

func TestGlobStripsRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"sys/bus/pci/devices/0000:00:02.0/vendor": "0x8086",
		"sys/bus/pci/devices/0000:01:00.0/vendor": "0x10de",
	})
	a := Accessor{Root: root}

	devs := a.Glob("/sys/bus/pci/devices/*")
	if len(devs) != 2 {
		t.Fatalf("Glob returned %d entries, want 2", len(devs))
	}
	if devs[0] != "/sys/bus/pci/devices/0000:00:02.0" {
		t.Fatalf("Glob[0] = %q, root not stripped", devs[0])
	}
	// Results must feed straight back into the accessor.
	if v, _ := a.ReadValue(devs[1] + "/vendor"); v != "0x10de" {
		t.Fatalf("readback through glob result = %q", v)
	}
}

func TestWithTag(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"sys/class/dmi/id/product_version": "ThinkPad X230"})
	base := Accessor{Root: root}

	tagged := base.WithTag("hwid")
	if tagged.Tag != "hwid" || tagged.Root != root {
		t.Fatalf("WithTag = %+v, want tag set and root kept", tagged)
	}
	if base.Tag != "" {
		t.Fatalf("WithTag mutated the receiver: %+v", base)
	}
	if v, _ := tagged.ReadValue("/sys/class/dmi/id/product_version"); v != "ThinkPad X230" {
		t.Fatalf("tagged accessor read %q", v)
	}
}
