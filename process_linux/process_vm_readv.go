//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"unsafe"

	"dolphinmem/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv uses the process_vm_readv syscall to read memory from another process
func process_vm_readv(
	pid process.ProcessID,
	localBuf []byte,
	remoteAddr process.ProcessMemoryAddress,
	bytesToRead process.ProcessMemorySize,
) ([]byte, error) {
	// Allocate a buffer if one wasn't provided
	if localBuf == nil || len(localBuf) != int(bytesToRead) {
		localBuf = make([]byte, bytesToRead)
	}

	// Create iovec for local buffer
	localIov := unix.Iovec{
		Base: &localBuf[0],
	}
	localIov.SetLen(int(bytesToRead))

	// Create iovec for remote buffer
	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  int(bytesToRead),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	if errno != 0 {
		return nil, syscallError("process_vm_readv", errno)
	}

	// Check if we read the expected number of bytes
	if int(n) != int(bytesToRead) {
		return localBuf[:n], fmt.Errorf("partial read: %d of %d bytes", n, bytesToRead)
	}

	return localBuf, nil
}

// syscallError wraps errno, translating ESRCH into process.ErrProcessExited and
// EFAULT (range unmapped or protected since the map was read) into process.ErrAddressNotMapped
func syscallError(op string, errno unix.Errno) error {
	if errors.Is(errno, unix.ESRCH) {
		return fmt.Errorf("%s: %w", op, process.ErrProcessExited)
	}
	if errors.Is(errno, unix.EFAULT) {
		return fmt.Errorf("%s: %w: %v", op, process.ErrAddressNotMapped, errno)
	}
	return fmt.Errorf("%s failed: %w (errno: %d)", op, errno, int(errno))
}

// ReadMemory reads memory from the process at the specified address
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	pid := p.pid
	region := p.regionForSpanInternal(addr, size)
	// Release the lock before the system call
	p.mu.Unlock()

	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}
	if size == 0 {
		return []byte{}, nil
	}
	if region == nil || !isReadablePerms(region.Perms) {
		return nil, process.ErrAddressNotMapped
	}

	data, err := process_vm_readv(pid, nil, addr, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read process memory at %#x: %w", uint64(addr), err)
	}

	return data, nil
}
