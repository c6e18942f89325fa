package dolphin

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is how much of MEM1 a Validator looks at
	HeaderSize = 0x20

	gameIDLength = 6

	wiiMagicOffset = 0x18
	gcMagicOffset  = 0x1C

	wiiMagic uint32 = 0x5D1C9EA3
	gcMagic  uint32 = 0xC2339F3D
)

// Console is what a validated MEM1 header says is running
type Console int

const (
	ConsoleUnknown Console = iota
	ConsoleGameCube
	ConsoleWii
)

func (c Console) String() string {
	switch c {
	case ConsoleGameCube:
		return "gamecube"
	case ConsoleWii:
		return "wii"
	}
	return "unknown"
}

// Validator confirms that a candidate MEM1 mapping really holds console RAM.
// header is the first HeaderSize bytes of the candidate.
type Validator interface {
	Validate(header []byte) (Console, error)
}

// HeaderValidator checks the disc header the boot process copies to 0x80000000:
// the Wii magic at 0x18 or the GameCube magic at 0x1C. With AllowGameID a well formed
// six character game ID is accepted on its own, which covers titles booted without a disc header.
type HeaderValidator struct {
	AllowGameID bool
}

// NewHeaderValidator returns the default validator
func NewHeaderValidator() *HeaderValidator {
	return &HeaderValidator{AllowGameID: true}
}

func (v *HeaderValidator) Validate(header []byte) (Console, error) {
	if len(header) < HeaderSize {
		return ConsoleUnknown, fmt.Errorf("header too short: %d bytes", len(header))
	}

	if binary.BigEndian.Uint32(header[wiiMagicOffset:]) == wiiMagic {
		return ConsoleWii, nil
	}
	if binary.BigEndian.Uint32(header[gcMagicOffset:]) == gcMagic {
		return ConsoleGameCube, nil
	}
	if v.AllowGameID && IsGameID(header[:gameIDLength]) {
		return ConsoleUnknown, nil
	}

	return ConsoleUnknown, fmt.Errorf("no disc magic or game ID in header % x", header[:8])
}

// IsGameID reports whether b looks like a game ID such as "GMSE01"
func IsGameID(b []byte) bool {
	if len(b) != gameIDLength {
		return false
	}
	for _, c := range b {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
