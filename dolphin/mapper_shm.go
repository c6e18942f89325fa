package dolphin

import (
	"fmt"
	"strings"

	"dolphinmem/process"
)

// SharedMemoryMapper finds guest RAM through the shared memory file Dolphin maps
// it from on Linux (/dev/shm/dolphinmem.<pid> or /dev/shm/dolphin-emu.<pid>).
// MEM1 is the 32 MiB view at file offset 0, MEM2 the 64 MiB view at 0x2040000.
type SharedMemoryMapper struct {
	Validator   Validator
	PathMarkers []string
}

func NewSharedMemoryMapper(v Validator) *SharedMemoryMapper {
	return &SharedMemoryMapper{
		Validator:   v,
		PathMarkers: []string{"dolphinmem", "dolphin-emu"},
	}
}

func (m *SharedMemoryMapper) Name() string {
	return "shared-memory"
}

func (m *SharedMemoryMapper) Discover(proc process.Process) ([]MemoryRegion, error) {
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return nil, err
	}

	var mem1, mem2 *uint64
	for i := range mm {
		item := mm[i]
		if !m.matchesPath(item.Path) || !item.IsReadable() || !item.IsWritable() {
			continue
		}
		addr := item.Address
		switch {
		case mem1 == nil && item.Size == MEM1HostSize && item.Offset == 0:
			mem1 = &addr
		case mem2 == nil && item.Size == MEM2HostSize && item.Offset == mem2SharedOffset:
			mem2 = &addr
		}
	}

	if mem1 == nil {
		return nil, fmt.Errorf("no 32 MiB shared mapping at offset 0")
	}
	return buildRegions(proc, m.Validator, *mem1, mem2, true)
}

func (m *SharedMemoryMapper) matchesPath(path string) bool {
	if path == "" {
		return false
	}
	for _, marker := range m.PathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}
