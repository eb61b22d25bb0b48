package debugserver

// Version information for the debugserver module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)
