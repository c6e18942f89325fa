package process

// ProcessID represents a unique identifier for a process
type ProcessID int

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID       ProcessID    // Process ID
	PPID      ProcessID    // Parent Process ID
	Name      string       // Process name (comm on linux, exe file name on windows)
	Exe       string       // Path to the executable
	Cmdline   []string     // Command line arguments
	State     ProcessState // Process state (R, S, D, Z, etc.)
	StartTime uint64       // Monotonic start stamp, only comparable between processes of the same host
}
