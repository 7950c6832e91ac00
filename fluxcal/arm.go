package fluxcal

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Arm identifies a spectrograph channel.
type Arm int

const (
	ArmUnknown Arm = iota
	ArmBlue
	ArmRed
)

func (a Arm) String() string {
	switch a {
	case ArmBlue:
		return "blue"
	case ArmRed:
		return "red"
	default:
		return "unknown"
	}
}

// ParseArm parses "blue" or "red" (case-insensitive).
func ParseArm(s string) (Arm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blue":
		return ArmBlue, nil
	case "red":
		return ArmRed, nil
	default:
		return ArmUnknown, fmt.Errorf("%w: unknown arm %q", ErrInputFormat, s)
	}
}

// ArmFromName infers the arm from a file name containing "blue" or "red".
// It returns ArmUnknown when the name contains neither or both.
func ArmFromName(name string) Arm {
	base := strings.ToLower(filepath.Base(name))
	blue := strings.Contains(base, "blue")
	red := strings.Contains(base, "red")
	switch {
	case blue && !red:
		return ArmBlue
	case red && !blue:
		return ArmRed
	default:
		return ArmUnknown
	}
}

// DeviceState is the position of the optical corrector.
type DeviceState int

const (
	DeviceUnknown DeviceState = iota
	DeviceIn
	DeviceOut
)

func (d DeviceState) String() string {
	switch d {
	case DeviceIn:
		return "IN"
	case DeviceOut:
		return "OUT"
	default:
		return ""
	}
}

// ParseDeviceState parses "IN" or "OUT" (case-insensitive). An empty value
// yields DeviceUnknown without error.
func ParseDeviceState(s string) (DeviceState, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return DeviceUnknown, nil
	case "IN":
		return DeviceIn, nil
	case "OUT":
		return DeviceOut, nil
	default:
		return DeviceUnknown, fmt.Errorf("%w: unknown device state %q", ErrInputFormat, s)
	}
}
