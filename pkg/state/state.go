package state

import "time"

// Status describes the debug bridge of the running process so that tools
// outside the host can find it.
type Status struct {
	// Running is true while the debug bridge is serving.
	Running bool `json:"running"`

	// DebugHosts are the addresses a remote debugger should try.
	DebugHosts []string `json:"debug_hosts"`

	// DebugPort is the port the debug server listens on.
	DebugPort int `json:"debug_port"`

	// FilesDir is the canonical default directory for database files.
	FilesDir string `json:"files_dir"`

	// PID of the host process.
	PID int `json:"pid"`

	StartedAt time.Time `json:"started_at"`
	StoppedAt time.Time `json:"stopped_at"`
}

// IsEmpty returns true if no status was ever recorded.
func (s Status) IsEmpty() bool {
	return s.StartedAt.IsZero()
}

// MarkStarted records a debug bridge start.
func (s *Status) MarkStarted(hosts []string, port int, pid int) {
	s.Running = true
	s.DebugHosts = hosts
	s.DebugPort = port
	s.PID = pid
	s.StartedAt = time.Now().UTC()
	s.StoppedAt = time.Time{}
}

// MarkStopped records a debug bridge shutdown.
func (s *Status) MarkStopped() {
	s.Running = false
	s.StoppedAt = time.Now().UTC()
}
