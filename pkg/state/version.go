package state

// Version information for the state module.
const (
	Version              = "2.0.0"
	MinCompatibleVersion = "2.0.0"
)
