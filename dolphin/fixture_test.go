package dolphin

import (
	"encoding/binary"
	"fmt"
	"sync"
	"testing"

	"dolphinmem/process"
	"dolphinmem/process_blob"
)

const (
	testMEM1Host uint64 = 0x7f2a40000000
	testMEM2Host        = testMEM1Host + fastmemMEM2Gap
)

type fakeDolphin struct {
	proc *process_blob.BlobProcess
	mem1 []byte
	mem2 []byte
}

// writeHeader fills in what the boot process leaves at 0x80000000
func writeHeader(mem []byte, gameID string, wii bool) {
	copy(mem, gameID)
	if wii {
		binary.BigEndian.PutUint32(mem[wiiMagicOffset:], wiiMagic)
	} else {
		binary.BigEndian.PutUint32(mem[gcMagicOffset:], gcMagic)
	}
}

// newFakeDolphin lays out a process the way Dolphin does on Linux: guest RAM views of
// /dev/shm/dolphinmem.<pid>, MEM2 only for Wii titles.
func newFakeDolphin(t *testing.T, pid process.ProcessID, start uint64, wii bool) *fakeDolphin {
	t.Helper()

	proc := process_blob.NewBlobProcess(pid, "dolphin-emu", start)
	shm := fmt.Sprintf("/dev/shm/dolphinmem.%d", pid)

	proc.Map(0x400000, 0x1000, "r-xp", 0, "/usr/bin/dolphin-emu")
	proc.Map(0x7ffd1c000000, 0x21000, "rw-p", 0, "[stack]")

	fd := &fakeDolphin{proc: proc}
	fd.mem1 = proc.Map(testMEM1Host, MEM1HostSize, "rw-s", 0, shm)
	if wii {
		writeHeader(fd.mem1, "RMGE01", true)
		fd.mem2 = proc.Map(testMEM2Host, MEM2HostSize, "rw-s", mem2SharedOffset, shm)
	} else {
		writeHeader(fd.mem1, "GMSE01", false)
	}
	return fd
}

func testMapper(v Validator) RegionMapper {
	return NewChainMapper(nil,
		NewSharedMemoryMapper(v),
		NewSizeScanMapper(v, false),
		NewPatternScanMapper(v),
	)
}

func newTestEngine(t *testing.T, finder *process_blob.BlobFinder, opts ...Option) *Engine {
	t.Helper()

	base := []Option{
		WithLocator(NewProcessLocator(finder, finder.Open, "dolphin-emu")),
		WithMapper(testMapper(NewHeaderValidator())),
	}
	e := New(append(base, opts...)...)
	t.Cleanup(e.UnHook)
	return e
}

func hookedEngine(t *testing.T, wii bool) (*Engine, *fakeDolphin) {
	t.Helper()

	fd := newFakeDolphin(t, 4242, 100, wii)
	e := newTestEngine(t, process_blob.NewBlobFinder(fd.proc))
	if err := e.Hook(); err != nil {
		t.Fatalf("Hook: %v", err)
	}
	return e, fd
}

// countingMapper records how often discovery runs
type countingMapper struct {
	RegionMapper
	mu    sync.Mutex
	calls int
}

func (c *countingMapper) Discover(proc process.Process) ([]MemoryRegion, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.RegionMapper.Discover(proc)
}

func (c *countingMapper) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
