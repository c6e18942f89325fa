//go:build linux

package process_linux

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"dolphinmem/process"
)

// LinuxProcessFinder implements the process.ProcessFinder interface
type LinuxProcessFinder struct {
	// skipSelf excludes the calling process from results
	skipSelf bool
}

// NewProcessFinder creates a new LinuxProcessFinder
func NewProcessFinder() process.ProcessFinder {
	return &LinuxProcessFinder{skipSelf: true}
}

// FindProcessByPID finds a process by its PID
func (f *LinuxProcessFinder) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	procPath := fmt.Sprintf("/proc/%d", pid)

	// Check if the process exists
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("process with PID %d does not exist", pid)
	}

	return getProcessInfo(pid)
}

// FindProcessByName finds processes by their name (exact match).
// The kernel truncates comm to 15 bytes, so the exe basename is matched as well.
func (f *LinuxProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	return f.findProcesses("^" + regexp.QuoteMeta(name) + "$")
}

// FindProcessByNamePattern finds processes by their name (pattern match)
func (f *LinuxProcessFinder) FindProcessByNamePattern(pattern string) ([]process.ProcessInfo, error) {
	return f.findProcesses(pattern)
}

// FindAllProcesses returns information about all running processes
func (f *LinuxProcessFinder) FindAllProcesses() ([]process.ProcessInfo, error) {
	return f.findProcesses(".*")
}

func (f *LinuxProcessFinder) findProcesses(pattern string) ([]process.ProcessInfo, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	// List all directories in /proc that are numbers (PIDs)
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("failed to read /proc: %w", err)
	}

	selfPID := os.Getpid()
	var results []process.ProcessInfo

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 {
			// Not a PID directory
			continue
		}
		if f.skipSelf && pid == selfPID {
			continue
		}

		info, err := getProcessInfo(process.ProcessID(pid))
		if err != nil {
			// Process may have terminated while we were reading
			continue
		}

		if re.MatchString(info.Name) || (info.Exe != "" && re.MatchString(filepath.Base(info.Exe))) {
			results = append(results, *info)
		}
	}

	return results, nil
}

// Helper function to get process information
func getProcessInfo(pid process.ProcessID) (*process.ProcessInfo, error) {
	procPath := fmt.Sprintf("/proc/%d", pid)

	// Read process name from /proc/<pid>/comm
	nameBytes, err := os.ReadFile(filepath.Join(procPath, "comm"))
	if err != nil {
		return nil, fmt.Errorf("failed to read process name: %w", err)
	}
	name := string(bytesTrimNL(nameBytes))

	st, err := readProcStat(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to read process stat: %w", err)
	}

	// Resolve /proc/<pid>/exe symlink; may fail if zombie or permission
	exe, err := os.Readlink(filepath.Join(procPath, "exe"))
	if err != nil {
		exe = ""
	}

	// Read the command line from /proc/<pid>/cmdline
	var cmdline []string
	if cmdlineBytes, err := os.ReadFile(filepath.Join(procPath, "cmdline")); err == nil && len(cmdlineBytes) > 0 {
		// Remove the trailing NULL byte
		if cmdlineBytes[len(cmdlineBytes)-1] == 0 {
			cmdlineBytes = cmdlineBytes[:len(cmdlineBytes)-1]
		}

		// Split by NULL bytes
		for _, arg := range bytes.Split(cmdlineBytes, []byte{0}) {
			cmdline = append(cmdline, string(arg))
		}
	}

	return &process.ProcessInfo{
		PID:       pid,
		PPID:      st.PPID,
		Name:      name,
		Exe:       exe,
		Cmdline:   cmdline,
		State:     st.State,
		StartTime: st.StartTime,
	}, nil
}
