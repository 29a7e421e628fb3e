package main

import (
	"github.com/distatus/battery"
	"github.com/spf13/cobra"

	"github.com/aadityabagga/TLP/pkg/hwid"
	"github.com/aadityabagga/TLP/pkg/power"
	"github.com/aadityabagga/TLP/pkg/version"
)

func NewStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Show power source, hardware identity, and saved state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			model := hwid.Detect(conf, fs.WithTag("hwid"))
			detector := power.Detector{FS: fs.WithTag("ps"), Cfg: conf, Locks: locks}

			cmd.Println(bold("Hardware:"))
			if model.IsThinkPad() {
				cmd.Printf("  Model: ThinkPad %s\n", model.Name)
				cmd.Printf("  Battery interface: %s\n", model.Tier)
			} else {
				cmd.Println("  Model: not a ThinkPad")
			}

			cmd.Println(bold("Power:"))
			cmd.Printf("  Source: %s\n", detector.DetectPowerSupply())
			cmd.Printf("  Effective mode: %s\n", detector.ResolveEffectiveMode())

			if manual, ok := tracker.GetManual(); ok {
				cmd.Printf("  Manual override: %s (persistent: %s)\n",
					manual, bool2Text(conf.PersistentDefault()))
			} else {
				cmd.Println("  Manual override: none")
			}
			cmd.Printf("  Paused: %s\n", bool2Text(locks.CheckTimedLock(lockIDPause)))
			cmd.Printf("  Discharge test running: %s\n", bool2Text(locks.Peek(power.LockIDDischarge)))

			batteries, err := battery.GetAll()
			if err == nil && len(batteries) > 0 {
				cmd.Println(bold("Batteries:"))
				for i, bat := range batteries {
					cmd.Printf("  BAT%d: %v, %.0f/%.0f mWh (design %.0f mWh)\n",
						i, bat.State, bat.Current, bat.Full, bat.Design)
				}
			}

			cmd.Printf("%s %s %s\n", bold("Version:"), version.Version, version.GitCommit)
			return nil
		},
	}
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}
