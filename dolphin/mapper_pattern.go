package dolphin

import (
	"encoding/binary"
	"errors"
	"fmt"

	"dolphinmem/process"
	"dolphinmem/process/memory_map"

	"golang.org/x/exp/constraints"
)

const (
	patternChunkSize  = 0x400000
	patternPageSize   = 0x1000
	defaultMaxScanned = 0x20000000
)

// PatternScanMapper is the last resort: it reads every readable mapping large enough to
// hold MEM1 and scans for a disc magic word at its header offset on a page boundary.
// Found bases still go through the Validator.
type PatternScanMapper struct {
	Validator Validator
	// MaxMappingSize skips mappings larger than this, 0 means 512 MiB
	MaxMappingSize uint
}

func NewPatternScanMapper(v Validator) *PatternScanMapper {
	return &PatternScanMapper{Validator: v, MaxMappingSize: defaultMaxScanned}
}

func (m *PatternScanMapper) Name() string {
	return "pattern-scan"
}

type magicPattern struct {
	aob    process.AOB
	offset uint64
}

func magicPatterns() []magicPattern {
	wii := make([]byte, 4)
	gc := make([]byte, 4)
	binary.BigEndian.PutUint32(wii, wiiMagic)
	binary.BigEndian.PutUint32(gc, gcMagic)
	return []magicPattern{
		{aob: process.AOB{Pattern: wii}, offset: wiiMagicOffset},
		{aob: process.AOB{Pattern: gc}, offset: gcMagicOffset},
	}
}

func (m *PatternScanMapper) Discover(proc process.Process) ([]MemoryRegion, error) {
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return nil, err
	}

	limit := m.MaxMappingSize
	if limit == 0 {
		limit = defaultMaxScanned
	}

	patterns := magicPatterns()
	var errs []error

	for _, item := range mm {
		if item.Size < MEM1HostSize || item.Size > limit || !item.IsReadable() || !item.IsWritable() {
			continue
		}

		for _, base := range scanMapping(proc, item, patterns) {
			mem2 := mem2InMapping(mm, base)
			regions, err := buildRegions(proc, m.Validator, base, mem2, false)
			if err == nil {
				return regions, nil
			}
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("disc magic not found in any mapping")
	}
	return nil, errors.Join(errs...)
}

// scanMapping returns the page aligned bases inside item whose header carries a magic word
// and which leave room for a whole MEM1 view before the end of the mapping.
func scanMapping(proc process.Process, item memory_map.MemoryMapItem, patterns []magicPattern) []uint64 {
	var bases []uint64

	for off := uint64(0); off < uint64(item.Size); off += patternChunkSize {
		n := min(uint64(patternChunkSize), uint64(item.Size)-off)
		chunk, err := proc.ReadMemory(process.ProcessMemoryAddress(item.Address+off), process.ProcessMemorySize(n))
		if err != nil {
			continue
		}

		for _, p := range patterns {
			for _, hit := range p.aob.FindAll(chunk, 4) {
				rel := off + uint64(hit)
				if rel < p.offset {
					continue
				}
				base := rel - p.offset
				if alignDown(base, patternPageSize) != base {
					continue
				}
				if base+MEM1HostSize > uint64(item.Size) {
					continue
				}
				bases = append(bases, item.Address+base)
			}
		}
	}

	return bases
}

// mem2InMapping looks for a MEM2 view at the fastmem distance from base, either inside
// the same reservation or as a separate mapping.
func mem2InMapping(mm []memory_map.MemoryMapItem, base uint64) *uint64 {
	want := base + fastmemMEM2Gap
	if item := memory_map.ContainsSpan(want, MEM2HostSize, mm); item != nil && item.IsReadable() && item.IsWritable() {
		return &want
	}
	return nil
}

func alignDown[I constraints.Integer](v, align I) I {
	return v - v%align
}
