package taskloop

// Version information for the taskloop module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)
