package dolphin

import (
	"fmt"
	"sort"

	"dolphinmem/process"
)

// Locator finds and opens the emulator process and probes its liveness
type Locator interface {
	Locate() (process.Process, error)
	IsAlive(proc process.Process) bool
}

// OpenFunc opens a process for memory access, e.g. process_linux.NewWithPID
type OpenFunc func(pid process.ProcessID) (process.Process, error)

// ProcessLocator matches processes by executable name. When several emulators are
// running the most recently started one wins, since older instances are usually on
// their way out.
type ProcessLocator struct {
	finder process.ProcessFinder
	open   OpenFunc
	names  []string
}

func NewProcessLocator(finder process.ProcessFinder, open OpenFunc, names ...string) *ProcessLocator {
	return &ProcessLocator{finder: finder, open: open, names: names}
}

// Candidates lists matching, still running processes, newest first
func (l *ProcessLocator) Candidates() ([]process.ProcessInfo, error) {
	seen := make(map[process.ProcessID]bool)
	var out []process.ProcessInfo

	for _, name := range l.names {
		found, err := l.finder.FindProcessByName(name)
		if err != nil {
			return nil, fmt.Errorf("find %q: %w", name, err)
		}
		for _, info := range found {
			if seen[info.PID] || info.State.IsGone() {
				continue
			}
			seen[info.PID] = true
			out = append(out, info)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime > out[j].StartTime
		}
		return out[i].PID > out[j].PID
	})
	return out, nil
}

// Locate opens the newest candidate, falling back to older ones if it cannot be opened
func (l *ProcessLocator) Locate() (process.Process, error) {
	candidates, err := l.Candidates()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessNotFound, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no process named %v", ErrProcessNotFound, l.names)
	}

	var lastErr error
	for _, c := range candidates {
		proc, err := l.open(c.PID)
		if err == nil {
			return proc, nil
		}
		lastErr = fmt.Errorf("open %s (pid %d): %w", c.Name, c.PID, err)
	}
	return nil, fmt.Errorf("%w: %w", ErrProcessNotFound, lastErr)
}

func (l *ProcessLocator) IsAlive(proc process.Process) bool {
	return proc != nil && proc.IsAlive()
}
