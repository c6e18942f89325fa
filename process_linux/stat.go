//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dolphinmem/process"

	"golang.org/x/sys/unix"
)

// procStat holds the fields of /proc/<pid>/stat this package cares about
type procStat struct {
	State     process.ProcessState
	PPID      process.ProcessID
	StartTime uint64 // clock ticks since boot
}

func readProcStat(pid process.ProcessID) (procStat, error) {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(int(pid)), "stat"))
	if err != nil {
		return procStat{}, err
	}
	return parseProcStat(string(data))
}

// parseProcStat parses "pid (comm) state ppid ... starttime ...".
// comm may itself contain spaces and parentheses, so fields are counted from the last ')'.
func parseProcStat(s string) (procStat, error) {
	end := strings.LastIndexByte(s, ')')
	if end < 0 {
		return procStat{}, fmt.Errorf("malformed stat line")
	}
	fields := strings.Fields(s[end+1:])
	// fields[0] is field 3 (state), starttime is field 22
	if len(fields) < 20 {
		return procStat{}, fmt.Errorf("short stat line: %d fields", len(fields))
	}

	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return procStat{}, fmt.Errorf("bad ppid %q: %w", fields[1], err)
	}
	start, err := strconv.ParseUint(fields[19], 10, 64)
	if err != nil {
		return procStat{}, fmt.Errorf("bad starttime %q: %w", fields[19], err)
	}

	return procStat{
		State:     process.ProcessState(fields[0][:1]),
		PPID:      process.ProcessID(ppid),
		StartTime: start,
	}, nil
}

func procExists(pid process.ProcessID) bool {
	// Fast path: stat /proc/<pid>
	_, err := os.Stat(filepath.Join("/proc", strconv.Itoa(int(pid))))
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	// For transient errors (permission, EIO): fall back to kill 0
	err = unix.Kill(int(pid), 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func bytesTrimNL(b []byte) []byte {
	// Trim trailing '\n' if present (comm has a newline).
	for len(b) > 0 {
		switch b[len(b)-1] {
		case '\n', '\r', ' ', '\t':
			b = b[:len(b)-1]
		default:
			return b
		}
	}
	return b
}
