// Package sysfs wraps reads and writes of kernel virtual files. Every
// operation is best-effort: missing or unreadable files never fail the
// caller, they only yield a zero value and a false ok.
package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aadityabagga/TLP/pkg/trace"
)

// Accessor reads and writes files below Root. An empty Root means the
// real filesystem; tests point Root at a fake tree.
type Accessor struct {
	// Root is prepended to every path given to the accessor.
	Root string

	// Tag is the trace tag used when reporting nonexistent paths.
	Tag string
}

// WithTag returns a copy of the accessor tracing under tag, so each
// subsystem's missing-path reports show up with its own tag.
func (a Accessor) WithTag(tag string) Accessor {
	a.Tag = tag
	return a
}

func (a Accessor) resolve(path string) string {
	if a.Root == "" {
		return path
	}
	return filepath.Join(a.Root, path)
}

// ReadValue returns the trimmed content of path. ok is false when the
// file does not exist or cannot be read.
func (a Accessor) ReadValue(path string) (string, bool) {
	b, err := os.ReadFile(a.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			trace.Tracef(a.Tag, "sysfs: %s nonexistent", path)
		}
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

// ReadNumeric returns the integer content of path, or 0 when the file
// is missing, unreadable, or not a number.
func (a Accessor) ReadNumeric(path string) int {
	s, ok := a.ReadValue(path)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// WriteValue writes content to path, reporting success. The kernel may
// reject a value it considers invalid; that surfaces as ok=false.
func (a Accessor) WriteValue(path, content string) bool {
	err := os.WriteFile(a.resolve(path), []byte(content), 0644)
	if err != nil {
		if os.IsNotExist(err) {
			trace.Tracef(a.Tag, "sysfs: %s nonexistent", path)
		}
		return false
	}
	return true
}

// Exists reports whether path exists.
func (a Accessor) Exists(path string) bool {
	_, err := os.Stat(a.resolve(path))
	return err == nil
}

// Readable reports whether path exists and can be opened for reading.
func (a Accessor) Readable(path string) bool {
	f, err := os.Open(a.resolve(path))
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// Glob returns the paths below Root matching pattern, with Root
// stripped again so results can be fed back into the accessor. Results
// are sorted, which fixes device enumeration order.
func (a Accessor) Glob(pattern string) []string {
	matches, err := filepath.Glob(a.resolve(pattern))
	if err != nil {
		return nil
	}
	if a.Root == "" {
		return matches
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(a.Root, m)
		if err != nil {
			continue
		}
		out = append(out, "/"+rel)
	}
	return out
}

// Readlink resolves the final element of the symlink at path, typically
// a device's bound driver. ok is false when path is not a symlink.
func (a Accessor) Readlink(path string) (string, bool) {
	dest, err := os.Readlink(a.resolve(path))
	if err != nil {
		return "", false
	}
	return filepath.Base(dest), true
}
