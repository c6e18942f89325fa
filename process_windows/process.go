//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"sync"

	"dolphinmem/process"
	"dolphinmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

const (
	processAccess = windows.PROCESS_VM_READ |
		windows.PROCESS_VM_WRITE |
		windows.PROCESS_VM_OPERATION |
		windows.PROCESS_QUERY_INFORMATION |
		windows.SYNCHRONIZE

	stillActive = 259
)

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid    process.ProcessID
	handle windows.Handle
	log    *logger.Logger
	mm     []memory_map.MemoryMapItem
	mu     sync.Mutex
}

var _ process.Process = (*WindowsProcess)(nil)

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &WindowsProcess{}
	err := p.Open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	handle, err := windows.OpenProcess(processAccess, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("OpenProcess failed: %w", err)
	}

	p.pid = pid
	p.handle = handle
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))

	if err := p.updateMemoryMapInternal(); err != nil {
		windows.CloseHandle(handle)
		p.pid = 0
		p.handle = 0
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")
	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return nil
	}

	err := windows.CloseHandle(p.handle)
	p.handle = 0
	p.pid = 0
	p.mm = nil
	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	if err != nil {
		return fmt.Errorf("CloseHandle failed: %w", err)
	}
	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// IsAlive asks for the exit code; the handle pins the process object so PID reuse cannot fool it
func (p *WindowsProcess) IsAlive() bool {
	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return false
	}

	var code uint32
	if err := windows.GetExitCodeProcess(handle, &code); err != nil {
		return false
	}
	return code == stillActive
}

func (p *WindowsProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updateMemoryMapInternal()
}

func (p *WindowsProcess) updateMemoryMapInternal() error {
	if p.handle == 0 {
		return process.ErrProcessNotOpen
	}

	mm, err := memoryMapHelper.ReadMemoryMapHandle(p.handle)
	if err != nil {
		return err
	}
	memory_map.SortByAddress(mm)
	p.mm = mm
	return nil
}

func (p *WindowsProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := memory_map.FindRegion(uint64(addr), p.mm)
	return item != nil && item.IsReadable()
}

func (p *WindowsProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	handle := p.handle
	region := memory_map.ContainsSpan(uint64(addr), uint64(size), p.mm)
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	if size == 0 {
		return []byte{}, nil
	}
	if region == nil || !region.IsReadable() {
		return nil, process.ErrAddressNotMapped
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead)
	if err != nil {
		return nil, p.accessError("ReadProcessMemory", addr, err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("read incomplete: expected %d, got %d", size, bytesRead)
	}

	return buf, nil
}

func (p *WindowsProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	handle := p.handle
	region := memory_map.ContainsSpan(uint64(addr), uint64(len(data)), p.mm)
	p.mu.Unlock()

	if handle == 0 {
		return process.ErrProcessNotOpen
	}
	if len(data) == 0 {
		return nil
	}
	if region == nil {
		return process.ErrAddressNotMapped
	}
	if !region.IsWritable() {
		return fmt.Errorf("memory region at %#x is not writable", region.Address)
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	var written uintptr
	err := windows.WriteProcessMemory(handle, uintptr(addr), &dataCopy[0], uintptr(len(dataCopy)), &written)
	if err != nil {
		return p.accessError("WriteProcessMemory", addr, err)
	}

	if written != uintptr(len(data)) {
		return fmt.Errorf("only wrote %d of %d bytes", written, len(data))
	}
	return nil
}

// accessError maps a failed transfer to ErrProcessExited when the target is gone
func (p *WindowsProcess) accessError(op string, addr process.ProcessMemoryAddress, err error) error {
	if !p.IsAlive() {
		return fmt.Errorf("%s at %#x: %w", op, uint64(addr), process.ErrProcessExited)
	}
	if errors.Is(err, windows.ERROR_PARTIAL_COPY) || errors.Is(err, windows.ERROR_NOACCESS) {
		return fmt.Errorf("%s at %#x: %w: %v", op, uint64(addr), process.ErrAddressNotMapped, err)
	}
	return fmt.Errorf("%s at %#x failed: %w", op, uint64(addr), err)
}

var memoryMapHelper = memory_map.NewWindowsMemoryMap()

// processStartTime returns the creation time of an open process in 100ns ticks since 1601
func processStartTime(h windows.Handle) (uint64, error) {
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(h, &creation, &exit, &kernel, &user); err != nil {
		return 0, err
	}
	return uint64(creation.HighDateTime)<<32 | uint64(creation.LowDateTime), nil
}
