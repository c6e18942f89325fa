package dolphin

import (
	"errors"
	"testing"

	"dolphinmem/process"
)

func TestNormalizeGuest(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0x80000000, 0x80000000},
		{0xC0001234, 0x80001234},
		{0xD0000010, 0x90000010},
		{0x93FFFFFF, 0x93FFFFFF},
		{0xE0000000, 0xE0000000},
		{0x00001234, 0x00001234},
	}
	for _, tt := range tests {
		if got := NormalizeGuest(tt.in); got != tt.want {
			t.Errorf("NormalizeGuest(%#x) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	regions := []MemoryRegion{newMEM1(0x7f0000000000), newMEM2(0x7f0010000000)}

	tests := []struct {
		name   string
		guest  uint32
		length int
		want   process.ProcessMemoryAddress
		err    error
	}{
		{"MEM1 start", 0x80000000, 4, 0x7f0000000000, nil},
		{"MEM1 offset", 0x80123456, 2, 0x7f0000123456, nil},
		{"MEM1 last byte", 0x817FFFFF, 1, 0x7f00017FFFFF, nil},
		{"uncached MEM1", 0xC0000020, 4, 0x7f0000000020, nil},
		{"MEM2 start", 0x90000000, 8, 0x7f0010000000, nil},
		{"uncached MEM2", 0xD3FFFFFC, 4, 0x7f0013FFFFFC, nil},
		{"past MEM1", 0x817FFFFF, 2, 0, ErrOutOfRange},
		{"gap", 0x81800000, 4, 0, ErrOutOfRange},
		{"physical address", 0x00000000, 4, 0, ErrOutOfRange},
		{"negative length", 0x80000000, -1, 0, ErrOutOfRange},
		{"zero length", 0x80000000, 0, 0, ErrOutOfRange},
		{"wraps address space", 0xFFFFFFFF, 2, 0, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.guest, tt.length, regions)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Translate = %s, %v, want %s", got.ToString(), err, tt.want.ToString())
			}
		})
	}
}

func TestTranslateWithoutMEM2(t *testing.T) {
	regions := []MemoryRegion{newMEM1(0x7f0000000000)}
	if _, err := Translate(0x90000000, 4, regions); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("MEM2 address on GameCube err = %v", err)
	}
}
