package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aadityabagga/TLP/pkg/hwid"
	"github.com/aadityabagga/TLP/pkg/lock"
	"github.com/aadityabagga/TLP/pkg/policy"
	"github.com/aadityabagga/TLP/pkg/power"
)

const (
	// lockIDMain serializes policy application across invocations;
	// udev can fire several events nearly at once.
	lockIDMain = "tlp"
	// lockIDPause is the timed lock suppressing event-triggered runs.
	lockIDPause = "tlp_pause"

	lockTimeout = 2 * time.Second

	defaultPauseSeconds = 60
)

func requireRoot() error {
	if os.Geteuid() != 0 {
		return errors.New("this command must be run as root")
	}
	return nil
}

func requireEnabled() error {
	if !conf.Enabled() {
		return errors.New("TLP is disabled, set TLP_ENABLE=1 in " + configPath)
	}
	return nil
}

// applyMode runs the device policy for mode under the main lock.
func applyMode(mode power.Mode) error {
	if !locks.AcquireBlocking(lockIDMain, lockTimeout) {
		return errors.New("tlp is locked by another operation")
	}
	defer locks.Release(lockIDMain)

	model := hwid.Detect(conf, fs.WithTag("hwid"))
	if model.IsThinkPad() {
		logrus.Debugf("ThinkPad %s (%s)", model.Name, model.Tier)
	}

	if tracker.CompareAndSave(mode) {
		logrus.Infof("power source changed, applying %s settings", mode)
	} else {
		logrus.Debugf("power source unchanged (%s), re-applying settings", mode)
	}

	engine := policy.Engine{FS: fs.WithTag("pm"), Cfg: conf}
	engine.Apply(mode)
	return nil
}

func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Detect the power source and apply its settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			if err := requireEnabled(); err != nil {
				return err
			}

			if locks.CheckTimedLock(lockIDPause) {
				logrus.Info("tlp is paused, skipping this run")
				return nil
			}

			detector := power.Detector{FS: fs.WithTag("ps"), Cfg: conf, Locks: locks}
			mode := detector.ResolveEffectiveMode()

			// A manual override pins the mode only when the persistent
			// default policy is on; otherwise live detection wins and
			// the override only lasts until the next event.
			if manual, ok := tracker.GetManual(); ok && conf.PersistentDefault() {
				mode = manual
			}

			return applyMode(mode)
		},
	}
}

func newManualModeCommand(use, short string, mode power.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			if err := requireEnabled(); err != nil {
				return err
			}

			if err := tracker.SetManual(mode); err != nil {
				return err
			}
			return applyMode(mode)
		},
	}
}

func NewACCommand() *cobra.Command {
	return newManualModeCommand("ac", "Apply AC settings and keep them until cleared", power.ModeAC)
}

func NewBatCommand() *cobra.Command {
	return newManualModeCommand("bat", "Apply battery settings and keep them until cleared", power.ModeBattery)
}

func NewAutoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Clear the manual mode and re-apply detected settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			if err := requireEnabled(); err != nil {
				return err
			}

			tracker.ClearManual()

			detector := power.Detector{FS: fs.WithTag("ps"), Cfg: conf, Locks: locks}
			return applyMode(detector.ResolveEffectiveMode())
		},
	}
}

// parsePauseSeconds validates the optional pause duration argument.
// Durations beyond lock.MaxTimedLock are rejected: the timed-lock
// checker discards markers that far in the future as corrupt, so a
// longer pause would be inert from the very next run.
func parsePauseSeconds(args []string) (int, error) {
	if len(args) == 0 {
		return defaultPauseSeconds, nil
	}

	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("invalid pause duration %q", args[0])
	}
	if max := int(lock.MaxTimedLock / time.Second); seconds > max {
		return 0, fmt.Errorf("pause duration %ds exceeds the maximum of %ds", seconds, max)
	}
	return seconds, nil
}

func NewPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause [seconds]",
		Short: "Suppress event-triggered runs for a while",
		Long: fmt.Sprintf(`Suppress event-triggered runs for a while.

"tlp start" becomes a no-op until the pause expires (default %d seconds,
maximum %d seconds). Useful around suspend/resume storms or hardware
tests that must not have settings re-applied underneath them.`,
			defaultPauseSeconds, int(lock.MaxTimedLock/time.Second)),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireRoot(); err != nil {
				return err
			}

			seconds, err := parsePauseSeconds(args)
			if err != nil {
				return err
			}

			if err := locks.SetTimedLock(lockIDPause, time.Duration(seconds)*time.Second); err != nil {
				return err
			}
			logrus.Infof("tlp paused for %d seconds", seconds)
			return nil
		},
	}
}
