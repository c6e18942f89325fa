package process_blob

import (
	"fmt"
	"regexp"
	"sync"

	"dolphinmem/process"
)

// BlobFinder is a process.ProcessFinder over a fixed set of BlobProcess values
type BlobFinder struct {
	mu    sync.Mutex
	procs []*BlobProcess
}

var _ process.ProcessFinder = (*BlobFinder)(nil)

func NewBlobFinder(procs ...*BlobProcess) *BlobFinder {
	return &BlobFinder{procs: procs}
}

// Add registers another process
func (f *BlobFinder) Add(p *BlobProcess) {
	f.mu.Lock()
	f.procs = append(f.procs, p)
	f.mu.Unlock()
}

// Open opens the registered process with the given PID, mirroring process_linux.NewWithPID
func (f *BlobFinder) Open(pid process.ProcessID) (process.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.procs {
		if p.pid == pid {
			if err := p.Open(pid); err != nil {
				return nil, err
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("process with PID %d does not exist", pid)
}

func (f *BlobFinder) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.procs {
		if info := p.Info(); info.PID == pid && !info.State.IsGone() {
			return &info, nil
		}
	}
	return nil, fmt.Errorf("process with PID %d does not exist", pid)
}

func (f *BlobFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	return f.FindProcessByNamePattern("^" + regexp.QuoteMeta(name) + "$")
}

func (f *BlobFinder) FindProcessByNamePattern(pattern string) ([]process.ProcessInfo, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var results []process.ProcessInfo
	for _, p := range f.procs {
		info := p.Info()
		// Exited processes drop out of the table like they would from /proc
		if info.State.IsGone() {
			continue
		}
		if re.MatchString(info.Name) {
			results = append(results, info)
		}
	}
	return results, nil
}

func (f *BlobFinder) FindAllProcesses() ([]process.ProcessInfo, error) {
	return f.FindProcessByNamePattern(".*")
}
