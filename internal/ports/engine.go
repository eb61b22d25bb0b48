package ports

import (
	"context"
	"io/fs"
)

// Engine is the set of entry points exported by the native database engine.
// Implementations must be safe for concurrent use: the debug server and the
// task worker call in from different goroutines.
type Engine interface {
	// IsContextInjected reports whether the JS runtime already has the
	// native API attached. When false the runtime is being debugged remotely
	// and the debug bridge must be started.
	IsContextInjected(ctx context.Context) (bool, error)

	// ClearContextInjectedFlag resets the flag set when the API was injected.
	ClearContextInjectedFlag(ctx context.Context) error

	// SetDefaultFileDirectory sets where database files are created by default.
	SetDefaultFileDirectory(ctx context.Context, dir string) error

	// SetAssets sets the read-only asset source the engine reads bundled
	// files from. Nil means the host bundles none.
	SetAssets(assets fs.FS)

	// SetupDebugContext creates the engine-side RPC server used by the
	// remote debugger and returns an opaque handle to it.
	SetupDebugContext(ctx context.Context) (int64, error)

	// ProcessDebugCommand runs one debugger command and returns the JSON
	// payload to post back.
	ProcessDebugCommand(ctx context.Context, cmd, args string) (string, error)

	// TryRunTask runs at most one queued engine task. A true result tells the
	// caller to stop polling.
	TryRunTask(ctx context.Context) (bool, error)

	// SetupFlushUIQueue hands the host call invoker to the engine so it can
	// flush the UI queue whenever it calls into JS.
	SetupFlushUIQueue(ctx context.Context, invoker CallInvoker) error

	// Close releases the engine.
	Close(ctx context.Context) error
}
