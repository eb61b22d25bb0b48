package realmbridge

import (
	"context"

	"github.com/bft-labs/realmbridge/pkg/log"
)

// OriginSetter changes the CORS origin of the debug server.
type OriginSetter interface {
	SetAllowedOrigin(origin string)
}

// PluginConfig is what a plugin receives on Initialize.
type PluginConfig struct {
	// ConfigPath is the configuration file the bridge was started from, if any.
	ConfigPath string

	// FilesDir is the canonical files directory given to the engine.
	FilesDir string

	// StateDir holds status.json.
	StateDir string

	// DebugServer allows plugins to retune the running debug server.
	DebugServer OriginSetter

	// Logger is the bridge logger.
	Logger log.Logger
}

// Plugin extends the bridge. Plugins are initialized after the Realm module,
// in registration order, and shut down in reverse order before it.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// BasePlugin provides no-op Initialize and Shutdown.
type BasePlugin struct{}

// Initialize does nothing.
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }

// Shutdown does nothing.
func (BasePlugin) Shutdown(context.Context) error { return nil }

// pluginModule runs a Plugin as a lifecycle.HostModule.
type pluginModule struct {
	plugin Plugin
	cfg    func() PluginConfig
}

func (m *pluginModule) Name() string { return m.plugin.Name() }

func (m *pluginModule) Initialize(ctx context.Context) error {
	return m.plugin.Initialize(ctx, m.cfg())
}

func (m *pluginModule) Destroy(ctx context.Context) error {
	return m.plugin.Shutdown(ctx)
}
