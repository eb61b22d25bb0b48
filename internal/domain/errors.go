package domain

import "errors"

// Domain errors represent error conditions in the bridge.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when the debug bridge is started twice.
	ErrAlreadyRunning = errors.New("realmbridge: already running")

	// ErrNotRunning is returned when stopping a bridge that was never started.
	ErrNotRunning = errors.New("realmbridge: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("realmbridge: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("realmbridge: invalid configuration")

	// ErrFilesDir is returned when the host files directory cannot be resolved.
	ErrFilesDir = errors.New("realmbridge: cannot resolve files directory")

	// ErrEngineLoad is returned when the native engine cannot be loaded.
	ErrEngineLoad = errors.New("realmbridge: cannot load native engine")

	// ErrUnsupportedJSEngine is returned when the native engine was built
	// against a JS engine the host does not provide.
	ErrUnsupportedJSEngine = errors.New("realmbridge: unsupported JS engine")
)
