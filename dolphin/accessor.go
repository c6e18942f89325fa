package dolphin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"dolphinmem/process"

	"golang.org/x/exp/constraints"
)

// Accessor performs reads and writes on host addresses of a hooked process.
// Multi-byte values are big-endian in console memory and native in Go.
// Nothing is locked in the target; a single call is only as atomic as the OS primitive.
type Accessor struct {
	proc process.Process
}

func NewAccessor(proc process.Process) *Accessor {
	return &Accessor{proc: proc}
}

// ReadBytes reads exactly n bytes at addr
func (a *Accessor) ReadBytes(addr process.ProcessMemoryAddress, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: invalid length %d", ErrOutOfRange, n)
	}
	data, err := a.proc.ReadMemory(addr, process.ProcessMemorySize(n))
	if err != nil {
		return nil, a.wrap("read", addr, n, err)
	}
	if len(data) != n {
		return nil, a.wrap("read", addr, n, fmt.Errorf("short read: %d of %d bytes", len(data), n))
	}
	return data, nil
}

// WriteBytes writes all of data at addr
func (a *Accessor) WriteBytes(addr process.ProcessMemoryAddress, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty write", ErrOutOfRange)
	}
	if err := a.proc.WriteMemory(addr, data); err != nil {
		return a.wrap("write", addr, len(data), err)
	}
	return nil
}

// wrap classifies a backend failure as ErrProcessUnavailable or ErrAccessFailure
func (a *Accessor) wrap(op string, addr process.ProcessMemoryAddress, n int, err error) error {
	if errors.Is(err, process.ErrProcessExited) || errors.Is(err, process.ErrProcessNotOpen) || !a.proc.IsAlive() {
		return fmt.Errorf("%w: %s %d bytes at %s: %w", ErrProcessUnavailable, op, n, addr.ToString(), err)
	}
	return fmt.Errorf("%w: %s %d bytes at %s: %w", ErrAccessFailure, op, n, addr.ToString(), err)
}

func readInt[T constraints.Integer](a *Accessor, addr process.ProcessMemoryAddress) (T, error) {
	var v T
	data, err := a.ReadBytes(addr, int(unsafe.Sizeof(v)))
	if err != nil {
		return v, err
	}
	return decodeInt[T](data), nil
}

func writeInt[T constraints.Integer](a *Accessor, addr process.ProcessMemoryAddress, v T) error {
	return a.WriteBytes(addr, encodeInt(v))
}

// decodeInt reads a big-endian integer the size of T; the final conversion truncates
// and so restores the sign of signed types.
func decodeInt[T constraints.Integer](b []byte) T {
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return T(u)
}

func encodeInt[T constraints.Integer](v T) []byte {
	n := int(unsafe.Sizeof(v))
	u := uint64(v)
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(u)
		u >>= 8
	}
	return b
}

func (a *Accessor) ReadUint8(addr process.ProcessMemoryAddress) (uint8, error) {
	return readInt[uint8](a, addr)
}

func (a *Accessor) ReadUint16(addr process.ProcessMemoryAddress) (uint16, error) {
	return readInt[uint16](a, addr)
}

func (a *Accessor) ReadUint32(addr process.ProcessMemoryAddress) (uint32, error) {
	return readInt[uint32](a, addr)
}

func (a *Accessor) ReadUint64(addr process.ProcessMemoryAddress) (uint64, error) {
	return readInt[uint64](a, addr)
}

func (a *Accessor) ReadInt8(addr process.ProcessMemoryAddress) (int8, error) {
	return readInt[int8](a, addr)
}

func (a *Accessor) ReadInt16(addr process.ProcessMemoryAddress) (int16, error) {
	return readInt[int16](a, addr)
}

func (a *Accessor) ReadInt32(addr process.ProcessMemoryAddress) (int32, error) {
	return readInt[int32](a, addr)
}

func (a *Accessor) ReadInt64(addr process.ProcessMemoryAddress) (int64, error) {
	return readInt[int64](a, addr)
}

func (a *Accessor) ReadFloat32(addr process.ProcessMemoryAddress) (float32, error) {
	bits, err := a.ReadUint32(addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (a *Accessor) ReadFloat64(addr process.ProcessMemoryAddress) (float64, error) {
	bits, err := a.ReadUint64(addr)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func (a *Accessor) WriteUint8(addr process.ProcessMemoryAddress, v uint8) error {
	return writeInt(a, addr, v)
}

func (a *Accessor) WriteUint16(addr process.ProcessMemoryAddress, v uint16) error {
	return writeInt(a, addr, v)
}

func (a *Accessor) WriteUint32(addr process.ProcessMemoryAddress, v uint32) error {
	return writeInt(a, addr, v)
}

func (a *Accessor) WriteUint64(addr process.ProcessMemoryAddress, v uint64) error {
	return writeInt(a, addr, v)
}

func (a *Accessor) WriteInt8(addr process.ProcessMemoryAddress, v int8) error {
	return writeInt(a, addr, v)
}

func (a *Accessor) WriteInt16(addr process.ProcessMemoryAddress, v int16) error {
	return writeInt(a, addr, v)
}

func (a *Accessor) WriteInt32(addr process.ProcessMemoryAddress, v int32) error {
	return writeInt(a, addr, v)
}

func (a *Accessor) WriteInt64(addr process.ProcessMemoryAddress, v int64) error {
	return writeInt(a, addr, v)
}

func (a *Accessor) WriteFloat32(addr process.ProcessMemoryAddress, v float32) error {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return a.WriteBytes(addr, b)
}

func (a *Accessor) WriteFloat64(addr process.ProcessMemoryAddress, v float64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return a.WriteBytes(addr, b)
}
