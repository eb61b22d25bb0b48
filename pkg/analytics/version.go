package analytics

// Version information for the analytics module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)
