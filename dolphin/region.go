package dolphin

import (
	"fmt"

	"dolphinmem/process"
)

// Console memory layout
const (
	// MEM1GuestBase is the cached virtual address of main RAM
	MEM1GuestBase uint32 = 0x80000000
	// MEM1Size is the usable size of main RAM (24 MiB)
	MEM1Size uint32 = 0x01800000
	// MEM1HostSize is the size of the host mapping Dolphin uses to back main RAM
	MEM1HostSize = 0x02000000

	// MEM2GuestBase is the cached virtual address of the Wii's extra RAM
	MEM2GuestBase uint32 = 0x90000000
	// MEM2Size is the size of MEM2 (64 MiB)
	MEM2Size uint32 = 0x04000000
	// MEM2HostSize is the size of the host mapping backing MEM2
	MEM2HostSize = 0x04000000

	// mem2SharedOffset is MEM2's offset inside Dolphin's shared memory file
	mem2SharedOffset = 0x02040000
	// fastmemMEM2Gap is the distance between the MEM1 and MEM2 views in Dolphin's fastmem arena
	fastmemMEM2Gap = 0x10000000

	// uncachedMirror is the distance between the uncached (0xC/0xD) and cached (0x8/0x9) windows
	uncachedMirror uint32 = 0x40000000
)

// RegionKind identifies a segment of console RAM
type RegionKind int

const (
	MEM1 RegionKind = iota
	MEM2
)

func (k RegionKind) String() string {
	switch k {
	case MEM1:
		return "MEM1"
	case MEM2:
		return "MEM2"
	}
	return fmt.Sprintf("RegionKind(%d)", int(k))
}

// MemoryRegion maps one segment of console RAM into the host process.
// It is immutable for the lifetime of a hook.
type MemoryRegion struct {
	Kind      RegionKind
	HostBase  process.ProcessMemoryAddress
	Size      uint32
	GuestBase uint32
}

func (r MemoryRegion) String() string {
	return fmt.Sprintf("%s guest=[%#08x,%#08x) host=%s", r.Kind, r.GuestBase, r.guestEnd(), r.HostBase.ToString())
}

func (r MemoryRegion) guestEnd() uint64 {
	return uint64(r.GuestBase) + uint64(r.Size)
}

// Contains reports whether [guest, guest+length) lies entirely inside the region
func (r MemoryRegion) Contains(guest uint32, length uint64) bool {
	if length == 0 {
		return false
	}
	return guest >= r.GuestBase && uint64(guest)+length <= r.guestEnd()
}

func (r MemoryRegion) overlaps(o MemoryRegion) bool {
	return uint64(r.GuestBase) < o.guestEnd() && uint64(o.GuestBase) < r.guestEnd()
}

func (r MemoryRegion) hostOverlaps(o MemoryRegion) bool {
	return uint64(r.HostBase) < uint64(o.HostBase)+uint64(o.Size) && uint64(o.HostBase) < uint64(r.HostBase)+uint64(r.Size)
}

func newMEM1(host uint64) MemoryRegion {
	return MemoryRegion{Kind: MEM1, HostBase: process.ProcessMemoryAddress(host), Size: MEM1Size, GuestBase: MEM1GuestBase}
}

func newMEM2(host uint64) MemoryRegion {
	return MemoryRegion{Kind: MEM2, HostBase: process.ProcessMemoryAddress(host), Size: MEM2Size, GuestBase: MEM2GuestBase}
}

// checkRegions enforces the shape of a discovery result: MEM1 first, at most one MEM2,
// no overlapping guest or host intervals.
func checkRegions(regions []MemoryRegion) error {
	if len(regions) == 0 {
		return fmt.Errorf("no regions")
	}
	if len(regions) > 2 {
		return fmt.Errorf("%d regions, expected at most 2", len(regions))
	}
	if regions[0].Kind != MEM1 {
		return fmt.Errorf("first region is %s, expected MEM1", regions[0].Kind)
	}
	for i := range regions {
		if regions[i].Size == 0 || regions[i].HostBase == 0 {
			return fmt.Errorf("%s is empty", regions[i].Kind)
		}
		for j := i + 1; j < len(regions); j++ {
			if regions[i].Kind == regions[j].Kind {
				return fmt.Errorf("duplicate %s", regions[i].Kind)
			}
			if regions[i].overlaps(regions[j]) {
				return fmt.Errorf("guest ranges of %s and %s overlap", regions[i].Kind, regions[j].Kind)
			}
			if regions[i].hostOverlaps(regions[j]) {
				return fmt.Errorf("host ranges of %s and %s overlap", regions[i].Kind, regions[j].Kind)
			}
		}
	}
	return nil
}
