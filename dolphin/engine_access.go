package dolphin

import (
	"bytes"
	"fmt"
	"math"

	"dolphinmem/process"
)

// ReadBytes reads length bytes at a guest address
func (e *Engine) ReadBytes(guest uint32, length int) ([]byte, error) {
	var out []byte
	err := e.access(guest, length, func(a *Accessor, host process.ProcessMemoryAddress) error {
		var err error
		out, err = a.ReadBytes(host, length)
		return err
	})
	return out, err
}

// WriteBytes writes data at a guest address. A span that is not fully mapped
// is rejected before anything is written.
func (e *Engine) WriteBytes(guest uint32, data []byte) error {
	return e.access(guest, len(data), func(a *Accessor, host process.ProcessMemoryAddress) error {
		return a.WriteBytes(host, data)
	})
}

func engineRead[T any](e *Engine, guest uint32, size int, read func(*Accessor, process.ProcessMemoryAddress) (T, error)) (T, error) {
	var out T
	err := e.access(guest, size, func(a *Accessor, host process.ProcessMemoryAddress) error {
		var err error
		out, err = read(a, host)
		return err
	})
	return out, err
}

func engineWrite[T any](e *Engine, guest uint32, size int, v T, write func(*Accessor, process.ProcessMemoryAddress, T) error) error {
	return e.access(guest, size, func(a *Accessor, host process.ProcessMemoryAddress) error {
		return write(a, host, v)
	})
}

func (e *Engine) ReadUint8(guest uint32) (uint8, error) {
	return engineRead(e, guest, 1, (*Accessor).ReadUint8)
}

func (e *Engine) ReadUint16(guest uint32) (uint16, error) {
	return engineRead(e, guest, 2, (*Accessor).ReadUint16)
}

func (e *Engine) ReadUint32(guest uint32) (uint32, error) {
	return engineRead(e, guest, 4, (*Accessor).ReadUint32)
}

func (e *Engine) ReadUint64(guest uint32) (uint64, error) {
	return engineRead(e, guest, 8, (*Accessor).ReadUint64)
}

func (e *Engine) ReadInt8(guest uint32) (int8, error) {
	return engineRead(e, guest, 1, (*Accessor).ReadInt8)
}

func (e *Engine) ReadInt16(guest uint32) (int16, error) {
	return engineRead(e, guest, 2, (*Accessor).ReadInt16)
}

func (e *Engine) ReadInt32(guest uint32) (int32, error) {
	return engineRead(e, guest, 4, (*Accessor).ReadInt32)
}

func (e *Engine) ReadInt64(guest uint32) (int64, error) {
	return engineRead(e, guest, 8, (*Accessor).ReadInt64)
}

func (e *Engine) ReadFloat32(guest uint32) (float32, error) {
	return engineRead(e, guest, 4, (*Accessor).ReadFloat32)
}

func (e *Engine) ReadFloat64(guest uint32) (float64, error) {
	return engineRead(e, guest, 8, (*Accessor).ReadFloat64)
}

func (e *Engine) WriteUint8(guest uint32, v uint8) error {
	return engineWrite(e, guest, 1, v, (*Accessor).WriteUint8)
}

func (e *Engine) WriteUint16(guest uint32, v uint16) error {
	return engineWrite(e, guest, 2, v, (*Accessor).WriteUint16)
}

func (e *Engine) WriteUint32(guest uint32, v uint32) error {
	return engineWrite(e, guest, 4, v, (*Accessor).WriteUint32)
}

func (e *Engine) WriteUint64(guest uint32, v uint64) error {
	return engineWrite(e, guest, 8, v, (*Accessor).WriteUint64)
}

func (e *Engine) WriteInt8(guest uint32, v int8) error {
	return engineWrite(e, guest, 1, v, (*Accessor).WriteInt8)
}

func (e *Engine) WriteInt16(guest uint32, v int16) error {
	return engineWrite(e, guest, 2, v, (*Accessor).WriteInt16)
}

func (e *Engine) WriteInt32(guest uint32, v int32) error {
	return engineWrite(e, guest, 4, v, (*Accessor).WriteInt32)
}

func (e *Engine) WriteInt64(guest uint32, v int64) error {
	return engineWrite(e, guest, 8, v, (*Accessor).WriteInt64)
}

func (e *Engine) WriteFloat32(guest uint32, v float32) error {
	return engineWrite(e, guest, 4, v, (*Accessor).WriteFloat32)
}

func (e *Engine) WriteFloat64(guest uint32, v float64) error {
	return engineWrite(e, guest, 8, v, (*Accessor).WriteFloat64)
}

// GameID returns the six character ID at the start of MEM1, e.g. "GMSE01".
// Trailing NULs are dropped, so an empty string means no game is booted.
func (e *Engine) GameID() (string, error) {
	b, err := e.ReadBytes(MEM1GuestBase, gameIDLength)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(b, "\x00")), nil
}

// FollowPointers walks a chain of 32-bit guest pointers. Every offset but the last
// is added to the current address and dereferenced; the last is added to the final
// pointer. The returned address is checked against the mapped regions but not read.
// Null pointers, sums past 0xFFFFFFFF and addresses outside RAM fail with ErrOutOfRange.
//
//	// *(*(0x80400000 + 0x10) + 0x24) + 0x8
//	addr, err := e.FollowPointers(0x80400000, 0x10, 0x24, 0x8)
func (e *Engine) FollowPointers(base uint32, offsets ...uint32) (uint32, error) {
	current := base

	for i := 0; i < len(offsets)-1; i++ {
		addr, err := addOffset(current, offsets[i])
		if err != nil {
			return 0, fmt.Errorf("pointer step %d: %w", i, err)
		}
		ptr, err := e.ReadUint32(addr)
		if err != nil {
			return 0, fmt.Errorf("pointer step %d at %#08x: %w", i, addr, err)
		}
		if ptr == 0 {
			return 0, fmt.Errorf("%w: null pointer at step %d (%#08x)", ErrOutOfRange, i, addr)
		}
		current = ptr
	}

	if len(offsets) > 0 {
		addr, err := addOffset(current, offsets[len(offsets)-1])
		if err != nil {
			return 0, fmt.Errorf("final offset: %w", err)
		}
		current = addr
	}

	if err := e.access(current, 1, func(*Accessor, process.ProcessMemoryAddress) error { return nil }); err != nil {
		return 0, err
	}
	return current, nil
}

func addOffset(addr, offset uint32) (uint32, error) {
	sum := uint64(addr) + uint64(offset)
	if sum > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %#08x + %#x overflows", ErrOutOfRange, addr, offset)
	}
	return uint32(sum), nil
}
