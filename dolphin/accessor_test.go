package dolphin

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"dolphinmem/process"
	"dolphinmem/process_blob"
)

func TestEncodeDecodeInt(t *testing.T) {
	if got := encodeInt(uint32(0x01020304)); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("encodeInt(uint32) = % x", got)
	}
	if got := encodeInt(int16(-2)); !bytes.Equal(got, []byte{0xff, 0xfe}) {
		t.Errorf("encodeInt(int16(-2)) = % x", got)
	}
	if got := encodeInt(uint8(0xab)); !bytes.Equal(got, []byte{0xab}) {
		t.Errorf("encodeInt(uint8) = % x", got)
	}

	if got := decodeInt[uint16]([]byte{0x12, 0x34}); got != 0x1234 {
		t.Errorf("decodeInt[uint16] = %#x", got)
	}
	if got := decodeInt[int8]([]byte{0x80}); got != math.MinInt8 {
		t.Errorf("decodeInt[int8] = %d", got)
	}
	if got := decodeInt[int32]([]byte{0xff, 0xff, 0xff, 0xfe}); got != -2 {
		t.Errorf("decodeInt[int32] = %d", got)
	}
	if got := decodeInt[int64](encodeInt(int64(math.MinInt64))); got != math.MinInt64 {
		t.Errorf("int64 round trip = %d", got)
	}
}

func TestAlignDown(t *testing.T) {
	if got := alignDown(uint64(0x4fff), 0x1000); got != 0x4000 {
		t.Errorf("alignDown = %#x", got)
	}
	if got := alignDown(0x3000, 0x1000); got != 0x3000 {
		t.Errorf("alignDown aligned = %#x", got)
	}
}

func newAccessorProc(t *testing.T) (*Accessor, *process_blob.BlobProcess, []byte) {
	t.Helper()
	p := process_blob.NewBlobProcess(600, "dolphin-emu", 1)
	mem := p.Map(0x1000, 0x100, "rw-p", 0, "")
	if err := p.Open(600); err != nil {
		t.Fatal(err)
	}
	return NewAccessor(p), p, mem
}

func TestAccessorFloats(t *testing.T) {
	a, _, mem := newAccessorProc(t)

	if err := a.WriteFloat64(0x1000, 2.5); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(mem[:8], []byte{0x40, 0x04, 0, 0, 0, 0, 0, 0}) {
		t.Fatalf("float64 bytes = % x", mem[:8])
	}
	if f, err := a.ReadFloat64(0x1000); err != nil || f != 2.5 {
		t.Fatalf("ReadFloat64 = %v, %v", f, err)
	}
}

func TestAccessorErrors(t *testing.T) {
	a, p, _ := newAccessorProc(t)

	if _, err := a.ReadBytes(0x1000, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("zero length read err = %v", err)
	}
	if err := a.WriteBytes(0x1000, nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("empty write err = %v", err)
	}

	if _, err := a.ReadUint32(0x5000); !errors.Is(err, ErrAccessFailure) || !errors.Is(err, process.ErrAddressNotMapped) {
		t.Errorf("unmapped read err = %v", err)
	}

	p.Kill()
	if _, err := a.ReadUint32(0x1000); !errors.Is(err, ErrProcessUnavailable) {
		t.Errorf("read after exit err = %v", err)
	}
}
