// Package process_blob provides an in-memory process.Process.
// Mapped segments are plain byte slices, which makes it possible to drive
// memory hooks without a live emulator.
package process_blob

import (
	"fmt"
	"sync"

	"dolphinmem/process"
	"dolphinmem/process/memory_map"
)

type segment struct {
	item memory_map.MemoryMapItem
	data []byte
}

// BlobProcess is a fake process whose address space is a set of byte slices
type BlobProcess struct {
	mu       sync.RWMutex
	pid      process.ProcessID
	name     string
	start    uint64
	open     bool
	alive    bool
	fault    error
	segments []segment
	closes   int
}

var _ process.Process = (*BlobProcess)(nil)

// NewBlobProcess creates a running, not yet opened process
func NewBlobProcess(pid process.ProcessID, name string, startTime uint64) *BlobProcess {
	return &BlobProcess{
		pid:   pid,
		name:  name,
		start: startTime,
		alive: true,
	}
}

// Info describes the process the way a process.ProcessFinder would
func (p *BlobProcess) Info() process.ProcessInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	state := process.ProcessRunning
	if !p.alive {
		state = process.ProcessZombie
	}
	return process.ProcessInfo{
		PID:       p.pid,
		Name:      p.name,
		Exe:       p.name,
		State:     state,
		StartTime: p.start,
	}
}

// Map adds a zero-filled segment and returns its backing slice
func (p *BlobProcess) Map(addr uint64, size uint, perms string, offset uint64, path string) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := make([]byte, size)
	p.segments = append(p.segments, segment{
		item: memory_map.MemoryMapItem{
			Address: addr,
			Size:    size,
			Perms:   perms,
			Offset:  offset,
			Path:    path,
		},
		data: data,
	})
	return data
}

// Kill marks the process as exited; later accesses fail with process.ErrProcessExited
func (p *BlobProcess) Kill() {
	p.mu.Lock()
	p.alive = false
	p.mu.Unlock()
}

// InjectFault makes every read and write fail with err while the process stays alive.
// A nil err clears the fault.
func (p *BlobProcess) InjectFault(err error) {
	p.mu.Lock()
	p.fault = err
	p.mu.Unlock()
}

// Closes reports how many times Close released an open handle
func (p *BlobProcess) Closes() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closes
}

func (p *BlobProcess) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pid != p.pid {
		return fmt.Errorf("process with PID %d does not exist", pid)
	}
	if !p.alive {
		return fmt.Errorf("process with PID %d: %w", pid, process.ErrProcessExited)
	}
	p.open = true
	return nil
}

func (p *BlobProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.open {
		p.open = false
		p.closes++
	}
	return nil
}

func (p *BlobProcess) GetPID() process.ProcessID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return 0
	}
	return p.pid
}

func (p *BlobProcess) IsAlive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.open && p.alive
}

func (p *BlobProcess) UpdateMemoryMap() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return process.ErrProcessNotOpen
	}
	return nil
}

func (p *BlobProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seg := p.findSpan(uint64(addr), 1)
	return seg != nil && seg.item.IsReadable()
}

func (p *BlobProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return nil, process.ErrProcessNotOpen
	}

	mm := make([]memory_map.MemoryMapItem, 0, len(p.segments))
	for _, seg := range p.segments {
		mm = append(mm, seg.item)
	}
	memory_map.SortByAddress(mm)
	return mm, nil
}

func (p *BlobProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.checkAccess(); err != nil {
		return nil, err
	}

	seg := p.findSpan(uint64(addr), uint64(size))
	if seg == nil || !seg.item.IsReadable() {
		return nil, process.ErrAddressNotMapped
	}

	offset := uint64(addr) - seg.item.Address
	out := make([]byte, size)
	copy(out, seg.data[offset:offset+uint64(size)])
	return out, nil
}

func (p *BlobProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkAccess(); err != nil {
		return err
	}

	seg := p.findSpan(uint64(addr), uint64(len(data)))
	if seg == nil {
		return process.ErrAddressNotMapped
	}
	if !seg.item.IsWritable() {
		return fmt.Errorf("memory region at %#x is not writable", seg.item.Address)
	}

	offset := uint64(addr) - seg.item.Address
	copy(seg.data[offset:], data)
	return nil
}

// checkAccess assumes the mutex is held
func (p *BlobProcess) checkAccess() error {
	if !p.open {
		return process.ErrProcessNotOpen
	}
	if !p.alive {
		return process.ErrProcessExited
	}
	return p.fault
}

// findSpan assumes the mutex is held
func (p *BlobProcess) findSpan(addr, size uint64) *segment {
	for i := range p.segments {
		item := p.segments[i].item
		if addr >= item.Address && addr+size >= addr && addr+size <= item.End() {
			return &p.segments[i]
		}
	}
	return nil
}
