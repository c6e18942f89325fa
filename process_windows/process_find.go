//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"regexp"
	"unsafe"

	"dolphinmem/process"

	"golang.org/x/sys/windows"
)

// WindowsProcessFinder implements process.ProcessFinder using a Toolhelp32 snapshot
type WindowsProcessFinder struct{}

// NewProcessFinder creates a new WindowsProcessFinder
func NewProcessFinder() process.ProcessFinder {
	return &WindowsProcessFinder{}
}

// FindProcessByPID finds a process by its PID
func (f *WindowsProcessFinder) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	all, err := f.FindAllProcesses()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].PID == pid {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("process with PID %d does not exist", pid)
}

// FindProcessByName finds processes by executable name, case-insensitive like the Windows shell
func (f *WindowsProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	return f.findProcesses("(?i)^" + regexp.QuoteMeta(name) + "$")
}

// FindProcessByNamePattern finds processes by their name (pattern match)
func (f *WindowsProcessFinder) FindProcessByNamePattern(pattern string) ([]process.ProcessInfo, error) {
	return f.findProcesses(pattern)
}

// FindAllProcesses returns information about all running processes
func (f *WindowsProcessFinder) FindAllProcesses() ([]process.ProcessInfo, error) {
	return f.findProcesses(".*")
}

func (f *WindowsProcessFinder) findProcesses(pattern string) ([]process.ProcessInfo, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	err = windows.Process32First(snapshot, &entry)
	var results []process.ProcessInfo

	for err == nil {
		name := windows.UTF16ToString(entry.ExeFile[:])
		if entry.ProcessID != 0 && re.MatchString(name) {
			info := process.ProcessInfo{
				PID:  process.ProcessID(entry.ProcessID),
				PPID: process.ProcessID(entry.ParentProcessID),
				Name: name,
				Exe:  name,
			}
			// Start time needs a handle; processes we may not query keep a zero stamp
			if h, herr := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, entry.ProcessID); herr == nil {
				if start, terr := processStartTime(h); terr == nil {
					info.StartTime = start
				}
				windows.CloseHandle(h)
			}
			results = append(results, info)
		}
		err = windows.Process32Next(snapshot, &entry)
	}

	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, fmt.Errorf("Process32Next failed: %w", err)
	}

	return results, nil
}

