//go:build windows

package memory_map

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const memMapped = 0x40000

// WindowsMemoryMap walks a process address space with VirtualQueryEx
type WindowsMemoryMap struct{}

// NewWindowsMemoryMap creates a new WindowsMemoryMap instance
func NewWindowsMemoryMap() *WindowsMemoryMap {
	return &WindowsMemoryMap{}
}

// ReadMemoryMapHandle walks the committed regions of an already opened process with VirtualQueryEx.
// Perms are synthesised in the /proc/[pid]/maps style so callers can treat both platforms alike;
// MEM_MAPPED sections report "s" in the fourth column.
func (w *WindowsMemoryMap) ReadMemoryMapHandle(h windows.Handle) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem
	var mbi windows.MemoryBasicInformation
	var address uintptr

	for {
		err := windows.VirtualQueryEx(h, address, &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			// ERROR_INVALID_PARAMETER marks the end of the user address space
			break
		}
		if mbi.RegionSize == 0 {
			break
		}

		if mbi.State == windows.MEM_COMMIT {
			memoryMap = append(memoryMap, MemoryMapItem{
				Address: uint64(mbi.BaseAddress),
				Size:    uint(mbi.RegionSize),
				Perms:   permsFromProtect(mbi.Protect, mbi.Type),
			})
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= address {
			break
		}
		address = next
	}

	if len(memoryMap) == 0 {
		return nil, fmt.Errorf("VirtualQueryEx returned no committed regions")
	}
	return memoryMap, nil
}

func permsFromProtect(protect, typ uint32) string {
	perms := []byte("---p")

	if protect&(windows.PAGE_GUARD|windows.PAGE_NOACCESS) != 0 {
		return string(perms)
	}

	switch protect & 0xFF {
	case windows.PAGE_READONLY:
		perms[0] = 'r'
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		perms[0], perms[1] = 'r', 'w'
	case windows.PAGE_EXECUTE:
		perms[2] = 'x'
	case windows.PAGE_EXECUTE_READ:
		perms[0], perms[2] = 'r', 'x'
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		perms[0], perms[1], perms[2] = 'r', 'w', 'x'
	}

	if typ == memMapped {
		perms[3] = 's'
	}
	return string(perms)
}
