//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"sync"

	"dolphinmem/process"
	"dolphinmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LinuxProcess implements the process.Process interface for Linux systems
type LinuxProcess struct {
	pid       process.ProcessID
	startTime uint64
	log       *logger.Logger
	mm        []memory_map.MemoryMapItem
	mu        sync.Mutex
}

var _ process.Process = (*LinuxProcess)(nil)

// NewWithPID creates a new LinuxProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &LinuxProcess{}
	err := p.Open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinuxProcess) Open(pid process.ProcessID) error {
	// Check if process exists
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return fmt.Errorf("process with PID %d does not exist", pid)
	}

	st, err := readProcStat(pid)
	if err != nil {
		return fmt.Errorf("failed to read stat for PID %d: %w", pid, err)
	}
	if st.State.IsGone() {
		return fmt.Errorf("process with PID %d: %w", pid, process.ErrProcessExited)
	}

	p.mu.Lock()
	p.pid = pid
	p.startTime = st.StartTime
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	// Initialize memory map - call without holding the lock to avoid deadlock
	if err := p.UpdateMemoryMap(); err != nil {
		p.Close()
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")

	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil
	}

	// Reset process state
	p.pid = 0
	p.startTime = 0
	p.mm = nil

	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// IsAlive checks /proc/<pid>/stat. A zombie, a vanished PID, or a PID that was
// recycled for a different process (start time changed) all count as dead.
func (p *LinuxProcess) IsAlive() bool {
	p.mu.Lock()
	pid, start := p.pid, p.startTime
	p.mu.Unlock()

	if pid == 0 || !procExists(pid) {
		return false
	}

	st, err := readProcStat(pid)
	if err != nil {
		return false
	}
	return !st.State.IsGone() && st.StartTime == start
}

func (p *LinuxProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	// Read memory map without holding the lock
	mm, err := memoryMapHelper.ReadMemoryMap(int(pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	// FindRegion requires the memory map to be sorted by address
	memory_map.SortByAddress(mm)

	// Now update the memory map with the lock
	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()
	return nil
}

func (p *LinuxProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.isValidAddressInternal(addr)
}

// Internal helper function that assumes the mutex is already locked
func (p *LinuxProcess) isValidAddressInternal(addr process.ProcessMemoryAddress) bool {
	if addr <= 0x10000 {
		return false
	}

	if item := memory_map.FindRegion(uint64(addr), p.mm); item != nil {
		return isReadablePerms(item.Perms)
	}

	return false
}

// Internal helper function that assumes the mutex is already locked.
// Returns the single memory region holding the whole span, or nil.
func (p *LinuxProcess) regionForSpanInternal(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) *memory_map.MemoryMapItem {
	if addr <= 0x10000 {
		return nil
	}
	return memory_map.ContainsSpan(uint64(addr), uint64(size), p.mm)
}

func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	// Make a copy of the memory map to prevent external modification
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)

	return result, nil
}

// Helper functions for checking permissions using the Linux memory map
var memoryMapHelper = memory_map.NewLinuxMemoryMap()

// Helper function to check if memory region has read permissions
func isReadablePerms(perms string) bool {
	return memoryMapHelper.IsReadablePerms(perms)
}

// Helper function to check if memory region has write permissions
func isWritablePerms(perms string) bool {
	return memoryMapHelper.IsWritablePerms(perms)
}
