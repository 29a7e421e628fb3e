// Package power determines the machine's effective power mode from the
// kernel's power-supply devices and tracks mode transitions between
// invocations.
package power

// Mode is the operating power mode.
type Mode int

const (
	// ModeAC means external power is connected.
	ModeAC Mode = iota
	// ModeBattery means the machine runs off battery.
	ModeBattery
	// ModeUnknown means no power-supply device produced a decision.
	ModeUnknown
)

func (m Mode) String() string {
	switch m {
	case ModeAC:
		return "AC"
	case ModeBattery:
		return "battery"
	default:
		return "unknown"
	}
}

// Token is the short string persisted in run-time state files.
func (m Mode) Token() string {
	switch m {
	case ModeAC:
		return "ac"
	case ModeBattery:
		return "bat"
	default:
		return ""
	}
}

// ParseToken maps a persisted token back to a Mode. Anything but the
// two known tokens reads as ModeUnknown.
func ParseToken(s string) Mode {
	switch s {
	case "ac":
		return ModeAC
	case "bat":
		return ModeBattery
	default:
		return ModeUnknown
	}
}
