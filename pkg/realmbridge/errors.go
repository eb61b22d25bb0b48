package realmbridge

import "github.com/bft-labs/realmbridge/internal/domain"

// Errors returned by the public API. Check them with errors.Is.
var (
	ErrAlreadyRunning      = domain.ErrAlreadyRunning
	ErrNotRunning          = domain.ErrNotRunning
	ErrShutdownTimeout     = domain.ErrShutdownTimeout
	ErrInvalidConfig       = domain.ErrInvalidConfig
	ErrFilesDir            = domain.ErrFilesDir
	ErrEngineLoad          = domain.ErrEngineLoad
	ErrUnsupportedJSEngine = domain.ErrUnsupportedJSEngine
)
