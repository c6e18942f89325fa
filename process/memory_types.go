package process

import (
	"bytes"
	"fmt"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// AOB (Array of Bytes) represents a pattern to search for in memory
type AOB struct {
	Pattern []byte // The byte pattern to search for
	Mask    []byte // Optional mask where 0xFF means exact match and 0x00 means wildcard
}

// IsValid checks if the AOB pattern is valid
func (aob AOB) IsValid() bool {
	return len(aob.Pattern) > 0 && (len(aob.Mask) == 0 || len(aob.Pattern) == len(aob.Mask))
}

// MatchAt reports whether the pattern matches data at offset, honouring the mask
func (aob AOB) MatchAt(data []byte, offset int) bool {
	if offset < 0 || offset+len(aob.Pattern) > len(data) {
		return false
	}
	for j := 0; j < len(aob.Pattern); j++ {
		mask := byte(0xFF)
		if len(aob.Mask) != 0 {
			mask = aob.Mask[j]
		}
		// Apply the mask: if mask byte is 0, skip this byte (wildcard)
		if mask == 0 {
			continue
		}
		if data[offset+j]&mask != aob.Pattern[j]&mask {
			return false
		}
	}
	return true
}

// FindAll returns every offset in data where the pattern matches.
// When stride is non-zero only offsets that are a multiple of stride are tried.
func (aob AOB) FindAll(data []byte, stride int) []int {
	if !aob.IsValid() || len(data) < len(aob.Pattern) {
		return nil
	}
	if stride <= 0 {
		stride = 1
	}

	var matches []int

	// An all-exact pattern lets bytes.Index skip ahead quickly
	if len(aob.Mask) == 0 || bytes.Count(aob.Mask, []byte{0xFF}) == len(aob.Mask) {
		for start := 0; start <= len(data)-len(aob.Pattern); {
			i := bytes.Index(data[start:], aob.Pattern)
			if i < 0 {
				break
			}
			off := start + i
			if off%stride == 0 {
				matches = append(matches, off)
			}
			start = off + 1
		}
		return matches
	}

	for i := 0; i <= len(data)-len(aob.Pattern); i += stride {
		if aob.MatchAt(data, i) {
			matches = append(matches, i)
		}
	}
	return matches
}
