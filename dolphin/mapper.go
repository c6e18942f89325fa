package dolphin

import (
	"errors"
	"fmt"

	"dolphinmem/process"
	"dolphinmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/logger"
)

// RegionMapper discovers the console RAM regions of an opened emulator process.
// Regions are returned MEM1 first.
type RegionMapper interface {
	Name() string
	Discover(proc process.Process) ([]MemoryRegion, error)
}

// ChainMapper tries each strategy in order and returns the first success
type ChainMapper struct {
	mappers []RegionMapper
	log     *logger.Logger
}

// NewChainMapper builds a chain; log may be nil
func NewChainMapper(log *logger.Logger, mappers ...RegionMapper) *ChainMapper {
	return &ChainMapper{mappers: mappers, log: log}
}

func (c *ChainMapper) Name() string {
	return "chain"
}

func (c *ChainMapper) Discover(proc process.Process) ([]MemoryRegion, error) {
	if err := proc.UpdateMemoryMap(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegionNotFound, err)
	}

	var errs []error
	for _, m := range c.mappers {
		regions, err := m.Discover(proc)
		if err == nil {
			if c.log != nil {
				c.log.Debugln("strategy", m.Name(), "found", len(regions), "regions")
			}
			return regions, nil
		}
		if c.log != nil {
			c.log.Debugln("strategy", m.Name(), "missed:", err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", m.Name(), err))
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no strategies configured", ErrRegionNotFound)
	}
	return nil, fmt.Errorf("%w: %w", ErrRegionNotFound, errors.Join(errs...))
}

// buildRegions validates the MEM1 candidate at mem1 and, when present, the MEM2 candidate.
// mem2Certain is set when the strategy has layout evidence that mem2 is console RAM;
// otherwise MEM2 is only accepted for a Wii header.
func buildRegions(proc process.Process, v Validator, mem1 uint64, mem2 *uint64, mem2Certain bool) ([]MemoryRegion, error) {
	header, err := proc.ReadMemory(process.ProcessMemoryAddress(mem1), HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("read header at %#x: %w", mem1, err)
	}

	console, err := v.Validate(header)
	if err != nil {
		return nil, fmt.Errorf("MEM1 candidate at %#x: %w", mem1, err)
	}

	regions := []MemoryRegion{newMEM1(mem1)}

	if mem2 != nil && (mem2Certain || console == ConsoleWii) {
		// Both ends of the region must be readable before it is handed out
		first := process.ProcessMemoryAddress(*mem2)
		last := first + process.ProcessMemoryAddress(MEM2Size-1)
		if proc.IsValidAddress(first) && proc.IsValidAddress(last) {
			regions = append(regions, newMEM2(*mem2))
		}
	}

	if err := checkRegions(regions); err != nil {
		return nil, err
	}
	return regions, nil
}

func isRAMCandidate(item memory_map.MemoryMapItem, size uint, requireShared bool) bool {
	if item.Size != size || !item.IsReadable() || !item.IsWritable() {
		return false
	}
	return !requireShared || item.IsShared()
}

// findMEM2 prefers the mapping at Dolphin's fastmem distance from MEM1, then any other
// 64 MiB candidate that does not overlap MEM1.
func findMEM2(mm []memory_map.MemoryMapItem, mem1 uint64, requireShared bool) *uint64 {
	var fallback *uint64
	for i := range mm {
		item := mm[i]
		if !isRAMCandidate(item, MEM2HostSize, requireShared) {
			continue
		}
		addr := item.Address
		if addr == mem1+fastmemMEM2Gap {
			return &addr
		}
		if fallback == nil && (addr >= mem1+MEM1HostSize || addr+MEM2HostSize <= mem1) {
			fallback = &addr
		}
	}
	return fallback
}
