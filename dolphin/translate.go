package dolphin

import (
	"fmt"

	"dolphinmem/process"
)

// NormalizeGuest folds the uncached mirrors (0xC0000000, 0xD0000000) onto the cached windows
func NormalizeGuest(guest uint32) uint32 {
	if guest >= 0xC0000000 && guest < 0xE0000000 {
		return guest - uncachedMirror
	}
	return guest
}

// Translate converts the guest span [guest, guest+length) into a host address.
// The span must lie inside a single region; it is never split.
func Translate(guest uint32, length int, regions []MemoryRegion) (process.ProcessMemoryAddress, error) {
	if length <= 0 {
		return 0, fmt.Errorf("%w: invalid length %d", ErrOutOfRange, length)
	}

	g := NormalizeGuest(guest)
	for _, r := range regions {
		if r.Contains(g, uint64(length)) {
			return r.HostBase + process.ProcessMemoryAddress(g-r.GuestBase), nil
		}
	}

	return 0, fmt.Errorf("%w: %#08x+%d", ErrOutOfRange, guest, length)
}
