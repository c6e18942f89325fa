//go:build linux

package process_linux

import (
	"bytes"
	"errors"
	"os"
	"runtime"
	"testing"
	"unsafe"

	"dolphinmem/process"

	"golang.org/x/sys/unix"
)

func TestParseProcStat(t *testing.T) {
	line := "4242 (dolphin-emu (x)) S 1 4242 4242 0 -1 4194560 100 0 0 0 12 3 0 0 20 0 30 0 987654 1000 200 18446744073709551615\n"

	st, err := parseProcStat(line)
	if err != nil {
		t.Fatalf("parseProcStat: %v", err)
	}
	if st.State != process.ProcessSleeping {
		t.Errorf("state = %q, want S", st.State)
	}
	if st.PPID != 1 {
		t.Errorf("ppid = %d, want 1", st.PPID)
	}
	if st.StartTime != 987654 {
		t.Errorf("starttime = %d, want 987654", st.StartTime)
	}
}

func TestParseProcStatMalformed(t *testing.T) {
	for _, line := range []string{"", "4242 dolphin S 1", "1 (x) S 1 2 3"} {
		if _, err := parseProcStat(line); err == nil {
			t.Errorf("parseProcStat(%q) succeeded, want error", line)
		}
	}
}

func openSelf(t *testing.T) process.Process {
	t.Helper()
	p, err := NewWithPID(process.ProcessID(os.Getpid()))
	if err != nil {
		t.Fatalf("open self: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSelfReadWrite(t *testing.T) {
	buf := []byte("GMSE01 dolphin-memory")
	p := openSelf(t)

	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[0])))

	got, err := p.ReadMemory(addr, process.ProcessMemorySize(len(buf)))
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Fatalf("ReadMemory = %q, want %q", got, buf)
	}

	if err := p.WriteMemory(addr, []byte("GZLE01")); err != nil {
		t.Fatalf("WriteMemory: %v", err)
	}
	if string(buf[:6]) != "GZLE01" {
		t.Fatalf("buffer after write = %q", buf[:6])
	}

	runtime.KeepAlive(buf)
}

func TestReadUnmappedAddress(t *testing.T) {
	p := openSelf(t)

	_, err := p.ReadMemory(0x1000, 4)
	if !errors.Is(err, process.ErrAddressNotMapped) {
		t.Fatalf("ReadMemory(0x1000) err = %v, want ErrAddressNotMapped", err)
	}
}

func TestSelfIsValidAddress(t *testing.T) {
	buf := make([]byte, 64)
	p := openSelf(t)

	if !p.IsValidAddress(process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[0])))) {
		t.Fatal("heap buffer reported invalid")
	}
	if p.IsValidAddress(0x1000) {
		t.Fatal("low page reported valid")
	}
	runtime.KeepAlive(buf)
}

func TestStaleMemoryMap(t *testing.T) {
	pageSize := os.Getpagesize()
	p := openSelf(t)

	mem, err := unix.Mmap(-1, 0, 2*pageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		t.Fatalf("mmap: %v", err)
	}
	defer unix.Munmap(mem)
	copy(mem, "RMGE01")
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&mem[0])))

	// Mapped after Open, so the cached map does not know it yet
	if _, err := p.ReadMemory(addr, 6); !errors.Is(err, process.ErrAddressNotMapped) {
		t.Fatalf("read before UpdateMemoryMap err = %v, want ErrAddressNotMapped", err)
	}

	if err := p.UpdateMemoryMap(); err != nil {
		t.Fatalf("UpdateMemoryMap: %v", err)
	}
	got, err := p.ReadMemory(addr, 6)
	if err != nil || string(got) != "RMGE01" {
		t.Fatalf("ReadMemory = %q, %v", got, err)
	}

	// The map still says readable, the kernel now refuses
	if err := unix.Mprotect(mem, unix.PROT_NONE); err != nil {
		t.Fatalf("mprotect: %v", err)
	}
	if _, err := p.ReadMemory(addr, 6); !errors.Is(err, process.ErrAddressNotMapped) {
		t.Fatalf("read of protected page err = %v, want ErrAddressNotMapped", err)
	}
	if err := p.WriteMemory(addr, []byte{1}); !errors.Is(err, process.ErrAddressNotMapped) {
		t.Fatalf("write of protected page err = %v, want ErrAddressNotMapped", err)
	}
}

func TestSelfIsAlive(t *testing.T) {
	p := openSelf(t)
	if !p.IsAlive() {
		t.Fatal("own process reported dead")
	}

	p.Close()
	if p.IsAlive() {
		t.Fatal("closed process reported alive")
	}
	if _, err := p.ReadMemory(0x10000000, 1); !errors.Is(err, process.ErrProcessNotOpen) {
		t.Fatalf("read after close err = %v, want ErrProcessNotOpen", err)
	}
}

func TestFindProcessByPID(t *testing.T) {
	f := NewProcessFinder()
	info, err := f.FindProcessByPID(process.ProcessID(os.Getpid()))
	if err != nil {
		t.Fatalf("FindProcessByPID: %v", err)
	}
	if info.StartTime == 0 {
		t.Error("start time not populated")
	}
	if info.Name == "" {
		t.Error("name not populated")
	}
}

func TestFindProcessByNameSkipsSelf(t *testing.T) {
	f := NewProcessFinder()
	info, err := f.FindProcessByPID(process.ProcessID(os.Getpid()))
	if err != nil {
		t.Fatalf("FindProcessByPID: %v", err)
	}

	list, err := f.FindProcessByName(info.Name)
	if err != nil {
		t.Fatalf("FindProcessByName: %v", err)
	}
	for _, pi := range list {
		if pi.PID == info.PID {
			t.Fatal("finder returned the calling process")
		}
	}
}
