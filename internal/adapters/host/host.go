package host

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/bft-labs/realmbridge/internal/ports"
	"github.com/bft-labs/realmbridge/pkg/devenv"
)

// Standalone is a HostContext backed by the local machine.
type Standalone struct {
	filesDir string
	device   devenv.DeviceInfo
	invoker  ports.CallInvoker
	assets   fs.FS
}

var _ ports.HostContext = (*Standalone)(nil)

// NewStandalone creates the files directory if needed and reads device
// info from buildProp when it is set. A non-empty assetsDir must be an
// existing directory; it is served read-only as the bundled assets.
func NewStandalone(filesDir, buildProp, assetsDir string, invoker ports.CallInvoker) (*Standalone, error) {
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}

	var device devenv.DeviceInfo
	if buildProp != "" {
		info, err := devenv.LoadDeviceInfo(buildProp)
		if err != nil {
			return nil, fmt.Errorf("load device info: %w", err)
		}
		device = info
	}

	var assets fs.FS
	if assetsDir != "" {
		fi, err := os.Stat(assetsDir)
		if err != nil {
			return nil, fmt.Errorf("open assets dir: %w", err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("assets dir %s is not a directory", assetsDir)
		}
		assets = os.DirFS(assetsDir)
	}

	return &Standalone{
		filesDir: filesDir,
		device:   device,
		invoker:  invoker,
		assets:   assets,
	}, nil
}

// FilesDir returns the configured files directory.
func (s *Standalone) FilesDir() (string, error) {
	return s.filesDir, nil
}

// CallInvoker returns the JS thread stand-in.
func (s *Standalone) CallInvoker() ports.CallInvoker {
	return s.invoker
}

// DeviceInfo returns the device description.
func (s *Standalone) DeviceInfo() devenv.DeviceInfo {
	return s.device
}

// Assets returns the bundled assets, or nil when no assets dir was given.
func (s *Standalone) Assets() fs.FS {
	return s.assets
}
