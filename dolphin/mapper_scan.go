package dolphin

import (
	"errors"
	"fmt"

	"dolphinmem/process"
)

// SizeScanMapper walks the memory map for read/write mappings of exactly the size
// Dolphin uses for MEM1 and validates each candidate's header.
type SizeScanMapper struct {
	Validator Validator
	// RequireShared limits candidates to shared/section mappings (MEM_MAPPED on Windows)
	RequireShared bool
}

func NewSizeScanMapper(v Validator, requireShared bool) *SizeScanMapper {
	return &SizeScanMapper{Validator: v, RequireShared: requireShared}
}

func (m *SizeScanMapper) Name() string {
	return "size-scan"
}

func (m *SizeScanMapper) Discover(proc process.Process) ([]MemoryRegion, error) {
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, item := range mm {
		if !isRAMCandidate(item, MEM1HostSize, m.RequireShared) {
			continue
		}
		mem2 := findMEM2(mm, item.Address, m.RequireShared)
		regions, err := buildRegions(proc, m.Validator, item.Address, mem2, false)
		if err == nil {
			return regions, nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("no 32 MiB read/write mapping")
	}
	return nil, errors.Join(errs...)
}
