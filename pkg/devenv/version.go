package devenv

// Version information for the devenv module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)
