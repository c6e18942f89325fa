package memory_map

import (
	"fmt"
	"sort"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-xp" for read, execute, private)
	Offset  uint64 // Offset into the backing file or shared object, 0 for anonymous memory
	Path    string // Backing file path if any
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Offset: %x, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Offset, mmItem.Path)
}

func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return len(mmItem.Perms) > 1 && mmItem.Perms[1] == 'w'
}

// IsShared reports a shared (file or section backed) mapping, "s" in the fourth perms column
func (mmItem MemoryMapItem) IsShared() bool {
	return len(mmItem.Perms) > 3 && mmItem.Perms[3] == 's'
}

// Helper functions for working with memory maps

// SortByAddress sorts the map in place, FindRegion requires it
func SortByAddress(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

// FindRegion returns the region containing addr in a map sorted by address, or nil
func FindRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// ContainsSpan reports whether [addr, addr+size) lies inside a single region of a sorted map
func ContainsSpan(addr uint64, size uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	item := FindRegion(addr, memoryMap)
	if item == nil {
		return nil
	}
	if addr+size < addr || addr+size > item.End() {
		return nil
	}
	return item
}
