package emu

import (
	"fmt"
	"strings"
)

// Profile selects which historical CHIP-8 behaviour the engine follows for
// the instructions that differ between interpreter generations.
type Profile uint8

// Compatibility profiles.
const (
	// ProfileModern follows the fixes adopted by SUPER-CHIP era interpreters.
	ProfileModern Profile = iota
	// ProfileOriginal follows the COSMAC VIP interpreter.
	ProfileOriginal
)

// Quirks lists the individual behaviours a Profile switches.
type Quirks struct {
	// ShiftUsesVy makes 8XY6/8XYE shift Vy into Vx instead of shifting Vx
	// in place.
	ShiftUsesVy bool
	// LoadStoreIncrementsI makes FX55/FX65 leave I pointing past the last
	// register transferred.
	LoadStoreIncrementsI bool
	// JumpUsesVx makes BNNN jump to XNN + VX instead of NNN + V0.
	JumpUsesVx bool
	// SysIsNoop makes 0NNN a recognised instruction that does nothing.
	SysIsNoop bool
}

// Quirks returns the behaviour switches for p.
func (p Profile) Quirks() Quirks {
	switch p {
	case ProfileOriginal:
		return Quirks{
			ShiftUsesVy:          true,
			LoadStoreIncrementsI: true,
			JumpUsesVx:           false,
			SysIsNoop:            true,
		}
	default:
		return Quirks{
			ShiftUsesVy:          false,
			LoadStoreIncrementsI: false,
			JumpUsesVx:           true,
			SysIsNoop:            false,
		}
	}
}

// String returns the profile name as accepted by ParseProfile.
func (p Profile) String() string {
	switch p {
	case ProfileOriginal:
		return "original"
	case ProfileModern:
		return "modern"
	default:
		return fmt.Sprintf("Profile(%d)", uint8(p))
	}
}

// ParseProfile converts a profile name into a Profile.
func ParseProfile(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "original":
		return ProfileOriginal, nil
	case "modern":
		return ProfileModern, nil
	default:
		return ProfileModern, fmt.Errorf("unknown profile %q (want original or modern)", name)
	}
}
