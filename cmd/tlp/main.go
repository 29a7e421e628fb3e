package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aadityabagga/TLP/pkg/config"
	"github.com/aadityabagga/TLP/pkg/lock"
	"github.com/aadityabagga/TLP/pkg/power"
	"github.com/aadityabagga/TLP/pkg/sysfs"
	"github.com/aadityabagga/TLP/pkg/trace"
)

var (
	logLevel   = "info"
	configPath = "/etc/tlp.conf"
	runDir     = "/run/tlp"
)

// Shared by all commands, initialized in PersistentPreRunE.
var (
	conf    *config.Config
	locks   *lock.Manager
	tracker *power.Tracker
	fs      sysfs.Accessor
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	return nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tlp",
		Short: "tlp applies laptop power-saving settings on AC/battery transitions",
		Long: `tlp applies laptop power-saving settings on AC/battery transitions.

It is a one-shot helper: udev rules, systemd units, or the user invoke it
when the power source may have changed, and it reconciles PCI(e) runtime
power management, PCIe ASPM, audio power save, and wake-on-LAN with the
configured policy for the detected mode.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := setupLogger(); err != nil {
				return err
			}

			var err error
			conf, err = config.Load(configPath)
			if err != nil {
				return err
			}
			trace.SetTags(conf.Debug())

			locks = lock.NewManager(runDir)
			tracker = &power.Tracker{Dir: runDir}
			// Untagged base; consumers tag it per subsystem with
			// WithTag so TLP_DEBUG filters stay coherent.
			fs = sysfs.Accessor{}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&runDir, "run-dir", runDir, "runtime state directory")

	cmd.AddCommand(
		NewStartCommand(),
		NewACCommand(),
		NewBatCommand(),
		NewAutoCommand(),
		NewPauseCommand(),
		NewStatCommand(),
		NewVersionCommand(),
	)

	return cmd
}
