package dolphin

import (
	"errors"
	"testing"

	"dolphinmem/process_blob"
)

func openBlob(t *testing.T, p *process_blob.BlobProcess) *process_blob.BlobProcess {
	t.Helper()
	if err := p.Open(p.Info().PID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSharedMemoryMapper(t *testing.T) {
	fd := newFakeDolphin(t, 500, 1, true)
	proc := openBlob(t, fd.proc)

	regions, err := NewSharedMemoryMapper(NewHeaderValidator()).Discover(proc)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("regions = %v", regions)
	}
	if uint64(regions[0].HostBase) != testMEM1Host || regions[0].Size != MEM1Size {
		t.Errorf("MEM1 = %v", regions[0])
	}
	if uint64(regions[1].HostBase) != testMEM2Host || regions[1].GuestBase != MEM2GuestBase {
		t.Errorf("MEM2 = %v", regions[1])
	}
}

func TestSharedMemoryMapperIgnoresOtherFiles(t *testing.T) {
	p := process_blob.NewBlobProcess(501, "dolphin-emu", 1)
	mem := p.Map(0x7f0000000000, MEM1HostSize, "rw-s", 0, "/dev/shm/pulse-shm-1234")
	writeHeader(mem, "GMSE01", false)
	proc := openBlob(t, p)

	if _, err := NewSharedMemoryMapper(NewHeaderValidator()).Discover(proc); err == nil {
		t.Fatal("Discover matched an unrelated shared mapping")
	}
	if _, err := NewSizeScanMapper(NewHeaderValidator(), true).Discover(proc); err != nil {
		t.Fatalf("size scan on the same mapping: %v", err)
	}
}

func TestSizeScanMapper(t *testing.T) {
	p := process_blob.NewBlobProcess(502, "Dolphin.exe", 1)
	// A 32 MiB decoy with no header comes first
	p.Map(0x10000000, MEM1HostSize, "rw-p", 0, "")
	mem1 := p.Map(0x20000000, MEM1HostSize, "rw-p", 0, "")
	writeHeader(mem1, "RSBE01", true)
	p.Map(0x20000000+fastmemMEM2Gap, MEM2HostSize, "rw-p", 0, "")
	proc := openBlob(t, p)

	regions, err := NewSizeScanMapper(NewHeaderValidator(), false).Discover(proc)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(regions) != 2 || regions[0].HostBase != 0x20000000 || regions[1].HostBase != 0x20000000+fastmemMEM2Gap {
		t.Fatalf("regions = %v", regions)
	}
}

func TestSizeScanRequireShared(t *testing.T) {
	p := process_blob.NewBlobProcess(503, "Dolphin.exe", 1)
	mem1 := p.Map(0x20000000, MEM1HostSize, "rw-p", 0, "")
	writeHeader(mem1, "GMSE01", false)
	proc := openBlob(t, p)

	if _, err := NewSizeScanMapper(NewHeaderValidator(), true).Discover(proc); err == nil {
		t.Fatal("private mapping accepted with RequireShared")
	}
	if _, err := NewSizeScanMapper(NewHeaderValidator(), false).Discover(proc); err != nil {
		t.Fatalf("private mapping without RequireShared: %v", err)
	}
}

func TestMEM2NeedsWiiHeader(t *testing.T) {
	p := process_blob.NewBlobProcess(504, "dolphin-emu", 1)
	mem1 := p.Map(0x20000000, MEM1HostSize, "rw-p", 0, "")
	writeHeader(mem1, "GMSE01", false)
	p.Map(0x20000000+fastmemMEM2Gap, MEM2HostSize, "rw-p", 0, "")
	proc := openBlob(t, p)

	regions, err := NewSizeScanMapper(NewHeaderValidator(), false).Discover(proc)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(regions) != 1 || regions[0].Kind != MEM1 {
		t.Fatalf("GameCube header mapped %v", regions)
	}
}

func TestPatternScanMapper(t *testing.T) {
	p := process_blob.NewBlobProcess(505, "dolphin-emu", 1)
	arena := p.Map(0x30000000, 0x04000000, "rw-p", 0, "")
	// A magic word off a page boundary is ignored
	writeHeader(arena[0x10:], "XXXX01", false)
	writeHeader(arena[0x4000:], "GMSE01", false)
	proc := openBlob(t, p)

	regions, err := NewPatternScanMapper(NewHeaderValidator()).Discover(proc)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(regions) != 1 || regions[0].HostBase != 0x30004000 {
		t.Fatalf("regions = %v", regions)
	}
}

func TestPatternScanSkipsHugeMappings(t *testing.T) {
	p := process_blob.NewBlobProcess(506, "dolphin-emu", 1)
	arena := p.Map(0x30000000, 0x04000000, "rw-p", 0, "")
	writeHeader(arena, "GMSE01", false)
	proc := openBlob(t, p)

	m := NewPatternScanMapper(NewHeaderValidator())
	m.MaxMappingSize = MEM1HostSize
	if _, err := m.Discover(proc); err == nil {
		t.Fatal("scanned a mapping above MaxMappingSize")
	}
}

func TestChainMapper(t *testing.T) {
	p := process_blob.NewBlobProcess(507, "dolphin-emu", 1)
	mem1 := p.Map(0x20000000, MEM1HostSize, "rw-p", 0, "")
	writeHeader(mem1, "GMSE01", false)
	proc := openBlob(t, p)

	v := NewHeaderValidator()
	regions, err := NewChainMapper(nil, NewSharedMemoryMapper(v), NewSizeScanMapper(v, false)).Discover(proc)
	if err != nil || len(regions) != 1 {
		t.Fatalf("Discover = %v, %v", regions, err)
	}

	_, err = NewChainMapper(nil, NewSharedMemoryMapper(v), NewSizeScanMapper(v, true)).Discover(proc)
	if !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("all strategies missing err = %v, want ErrRegionNotFound", err)
	}

	if _, err := NewChainMapper(nil).Discover(proc); !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("empty chain err = %v", err)
	}
}

func TestChainMapperNeedsOpenProcess(t *testing.T) {
	fd := newFakeDolphin(t, 508, 1, false)

	_, err := testMapper(NewHeaderValidator()).Discover(fd.proc)
	if !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("Discover on closed process err = %v", err)
	}
}

func TestCheckRegions(t *testing.T) {
	tests := []struct {
		name    string
		regions []MemoryRegion
		ok      bool
	}{
		{"MEM1 only", []MemoryRegion{newMEM1(0x1000000)}, true},
		{"MEM1 and MEM2", []MemoryRegion{newMEM1(0x10000000), newMEM2(0x20000000)}, true},
		{"empty", nil, false},
		{"MEM2 first", []MemoryRegion{newMEM2(0x20000000), newMEM1(0x10000000)}, false},
		{"host overlap", []MemoryRegion{newMEM1(0x10000000), newMEM2(0x11000000)}, false},
		{"duplicate", []MemoryRegion{newMEM1(0x10000000), newMEM1(0x20000000)}, false},
		{"null host", []MemoryRegion{newMEM1(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := checkRegions(tt.regions); (err == nil) != tt.ok {
				t.Fatalf("checkRegions err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestBuildRegionsNeedsReadableMEM2(t *testing.T) {
	p := process_blob.NewBlobProcess(509, "dolphin-emu", 1)
	mem1 := p.Map(0x20000000, MEM1HostSize, "rw-s", 0, "/dev/shm/dolphinmem.509")
	writeHeader(mem1, "RMGE01", true)
	p.Map(0x30000000, MEM2HostSize, "---p", 0, "")
	// Readable start, but the mapping ends 4 KiB short of a full MEM2
	p.Map(0x40000000, MEM2HostSize-0x1000, "rw-p", 0, "")
	p.Map(0x50000000, MEM2HostSize, "rw-p", 0, "")
	proc := openBlob(t, p)
	v := NewHeaderValidator()

	for _, host := range []uint64{0x30000000, 0x40000000, 0x60000000} {
		mem2 := host
		regions, err := buildRegions(proc, v, 0x20000000, &mem2, true)
		if err != nil {
			t.Fatalf("buildRegions(%#x): %v", host, err)
		}
		if len(regions) != 1 {
			t.Errorf("MEM2 candidate %#x accepted: %v", host, regions)
		}
	}

	mem2 := uint64(0x50000000)
	regions, err := buildRegions(proc, v, 0x20000000, &mem2, true)
	if err != nil || len(regions) != 2 || regions[1].HostBase != 0x50000000 {
		t.Fatalf("readable MEM2 = %v, %v", regions, err)
	}
}
