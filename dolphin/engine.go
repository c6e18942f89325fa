// Package dolphin hooks a running Dolphin emulator and reads and writes emulated
// GameCube/Wii RAM by guest address.
package dolphin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"dolphinmem/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Engine owns one hook: the process handle, the discovered regions and the state machine.
//
// Hook and UnHook hold the write lock for the whole transition. Reads, writes and
// IsHooked hold the read lock for the duration of the call, so a concurrent UnHook
// waits for in-flight accesses instead of closing the handle under them.
type Engine struct {
	mu       sync.RWMutex
	state    HookState
	proc     process.Process
	regions  []MemoryRegion
	accessor *Accessor

	names     []string
	locator   Locator
	mapper    RegionMapper
	validator Validator
	log       *logger.Logger
}

// New creates an unhooked engine
func New(opts ...Option) *Engine {
	e := &Engine{
		state: Unhooked,
		names: defaultProcessNames,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "dolphin-hook"))
	}
	if e.validator == nil {
		e.validator = NewHeaderValidator()
	}
	if e.locator == nil {
		e.locator = defaultLocator(e.names)
	}
	if e.mapper == nil {
		e.mapper = NewChainMapper(e.log, defaultMappers(e.validator)...)
	}

	return e
}

// Hook attaches to the emulator. It is a no-op when already hooked, even if the
// emulator has since exited: when IsHooked reports false, call UnHook before hooking again.
// On failure every acquired resource is released and the engine is Unhooked again;
// the error wraps ErrProcessNotFound or ErrRegionNotFound.
func (e *Engine) Hook() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Hooked {
		return nil
	}
	e.state = Hooking

	proc, err := e.locator.Locate()
	if err != nil {
		e.state = Unhooked
		e.log.Debugln("hook failed:", err)
		if !errors.Is(err, ErrProcessNotFound) {
			err = fmt.Errorf("%w: %w", ErrProcessNotFound, err)
		}
		return err
	}

	regions, err := e.mapper.Discover(proc)
	if err != nil {
		if cerr := proc.Close(); cerr != nil {
			e.log.Warn("close after failed discovery: ", cerr)
		}
		e.state = Unhooked
		e.log.Debugln("hook failed for pid", proc.GetPID(), ":", err)
		if !errors.Is(err, ErrRegionNotFound) {
			err = fmt.Errorf("%w: %w", ErrRegionNotFound, err)
		}
		return err
	}

	e.proc = proc
	e.regions = regions
	e.accessor = NewAccessor(proc)
	e.state = Hooked

	e.log.Infoln("Hooked pid", proc.GetPID(), describeRegions(regions))
	return nil
}

// UnHook releases the process handle and forgets the regions. It never fails and is a
// no-op when not hooked, including after the emulator already exited.
func (e *Engine) UnHook() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Hooked {
		return
	}
	e.state = Unhooking

	pid := e.proc.GetPID()
	if err := e.proc.Close(); err != nil {
		e.log.Warn("close process handle: ", err)
	}

	e.proc = nil
	e.regions = nil
	e.accessor = nil
	e.state = Unhooked

	e.log.Infoln("Unhooked pid", pid)
}

// IsHooked is true while the engine is Hooked and the process is still alive.
// A dead process does not change the state; call UnHook to reset.
func (e *Engine) IsHooked() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state == Hooked && e.locator.IsAlive(e.proc)
}

func (e *Engine) State() HookState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// PID of the hooked process, 0 when not hooked
func (e *Engine) PID() process.ProcessID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state != Hooked {
		return 0
	}
	return e.proc.GetPID()
}

// Regions returns a copy of the mapped regions, MEM1 first
func (e *Engine) Regions() []MemoryRegion {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]MemoryRegion, len(e.regions))
	copy(out, e.regions)
	return out
}

// HasMEM2 reports whether the Wii's MEM2 was mapped
func (e *Engine) HasMEM2() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.regions) > 1
}

// access runs fn against the host address of [guest, guest+length) under the read lock
func (e *Engine) access(guest uint32, length int, fn func(a *Accessor, host process.ProcessMemoryAddress) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.state != Hooked {
		return fmt.Errorf("%w: state is %s", ErrNotHooked, e.state)
	}
	if !e.locator.IsAlive(e.proc) {
		return fmt.Errorf("%w: pid %d", ErrProcessUnavailable, e.proc.GetPID())
	}

	host, err := Translate(guest, length, e.regions)
	if err != nil {
		return err
	}
	return fn(e.accessor, host)
}

func describeRegions(regions []MemoryRegion) string {
	parts := make([]string, len(regions))
	for i, r := range regions {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
