package ports

import (
	"io/fs"

	"github.com/bft-labs/realmbridge/pkg/devenv"
)

// CallInvoker schedules work on the host's JS thread.
type CallInvoker interface {
	InvokeAsync(fn func())
}

// CallInvokerFunc adapts a function to CallInvoker.
type CallInvokerFunc func(fn func())

// InvokeAsync calls f(fn).
func (f CallInvokerFunc) InvokeAsync(fn func()) { f(fn) }

// HostContext is what the host application exposes to the bridge.
type HostContext interface {
	// FilesDir returns the application's private files directory.
	FilesDir() (string, error)

	// CallInvoker returns the JS thread scheduler, or nil if the host has none.
	CallInvoker() CallInvoker

	// DeviceInfo describes the device the host runs on.
	DeviceInfo() devenv.DeviceInfo

	// Assets returns the application's bundled assets, or nil if it has none.
	Assets() fs.FS
}
