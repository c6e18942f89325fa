package dolphin

import "errors"

var (
	// ErrProcessNotFound is returned by Hook when no emulator process could be found and opened.
	ErrProcessNotFound = errors.New("emulator process not found")

	// ErrRegionNotFound is returned by Hook when the process was found but emulated RAM
	// could not be located or did not validate.
	ErrRegionNotFound = errors.New("emulated RAM region not found")

	// ErrNotHooked is returned by accessors outside the Hooked state.
	ErrNotHooked = errors.New("not hooked")

	// ErrProcessUnavailable is returned by accessors once the hooked process has exited
	// or can no longer be accessed. Call UnHook to reset.
	ErrProcessUnavailable = errors.New("emulator process not available")

	// ErrOutOfRange is returned when a guest span is not fully inside one mapped region.
	ErrOutOfRange = errors.New("guest address out of range")

	// ErrAccessFailure is returned when the cross-process read or write itself failed.
	ErrAccessFailure = errors.New("memory access failed")
)
