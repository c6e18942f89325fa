package process

import (
	"dolphinmem/process/memory_map"
)

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// IsAlive reports whether the opened process is still running.
	// It is cheap enough to be polled.
	IsAlive() bool

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// ReadMemory reads memory from the process at the specified address.
	// Spans outside the map cached by UpdateMemoryMap, or that the OS refuses as
	// unmapped, fail with ErrAddressNotMapped on every backend.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// WriteMemory writes data to the process memory at the specified address.
	// Unmapped spans fail with ErrAddressNotMapped as in ReadMemory.
	WriteMemory(addr ProcessMemoryAddress, data []byte) error
}
