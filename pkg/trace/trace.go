// Package trace gates per-subsystem debug output. Each subsystem logs
// under a short tag (lock, ps, pm, hwid, cfg); only tags listed in
// TLP_DEBUG produce output, so a debug log level alone stays quiet.
package trace

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu   sync.RWMutex
	tags = map[string]struct{}{}
)

// SetTags replaces the enabled tag set from a whitespace-separated list.
// The special tag "all" enables every subsystem.
func SetTags(list string) {
	mu.Lock()
	defer mu.Unlock()

	tags = map[string]struct{}{}
	for _, t := range strings.Fields(list) {
		tags[strings.ToLower(t)] = struct{}{}
	}
}

// Enabled reports whether a tag is currently traced.
func Enabled(tag string) bool {
	mu.RLock()
	defer mu.RUnlock()

	if _, ok := tags["all"]; ok {
		return true
	}
	_, ok := tags[tag]
	return ok
}

// Tracef emits a debug line for tag if the tag is enabled.
func Tracef(tag string, format string, args ...interface{}) {
	if !Enabled(tag) {
		return
	}
	logrus.WithField("tag", tag).Debugf(format, args...)
}
