package realmbridge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	hostAdapter "github.com/bft-labs/realmbridge/internal/adapters/host"
	"github.com/bft-labs/realmbridge/internal/adapters/wasm"
	"github.com/bft-labs/realmbridge/internal/app"
	"github.com/bft-labs/realmbridge/pkg/analytics"
	"github.com/bft-labs/realmbridge/pkg/debugserver"
	"github.com/bft-labs/realmbridge/pkg/lifecycle"
	"github.com/bft-labs/realmbridge/pkg/log"
	"github.com/bft-labs/realmbridge/pkg/state"
	"github.com/bft-labs/realmbridge/pkg/taskloop"
)

// Config holds the configuration of an embedded bridge.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// EnginePath is the engine WebAssembly binary. Not needed with WithEngine.
	EnginePath string

	// FilesDir is the default directory for database files.
	FilesDir string

	// BuildProp is an optional Android build.prop used for emulator detection.
	BuildProp string

	// AssetsDir holds the bundled assets the engine may read. Optional.
	AssetsDir string

	// StateDir holds status.json. Default: FilesDir/.realmbridge
	StateDir string

	// DebugHost and DebugPort are the debug server address. DefaultConfig
	// sets port 8083; zero binds any free port.
	DebugHost string
	DebugPort int

	// AllowedOrigin is the CORS origin of debug responses.
	// Default: http://localhost:8081
	AllowedOrigin string

	// TaskInterval is the delay between engine task polls.
	// Default: 10ms
	TaskInterval time.Duration

	// AnalyticsURL enables the one-time usage ping when set.
	AnalyticsURL string

	// ShutdownTimeout bounds Stop.
	// Default: 30s
	ShutdownTimeout time.Duration

	// ConfigPath is handed to plugins that watch the configuration file.
	ConfigPath string
}

// DefaultConfig returns a Config with sensible default values.
// At minimum, FilesDir and EnginePath must be set before calling New.
func DefaultConfig() Config {
	c := Config{DebugPort: debugserver.DefaultPort}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with their defaults. DebugPort is left alone
// since zero is a valid request for a free port.
func (c *Config) SetDefaults() {
	if c.AllowedOrigin == "" {
		c.AllowedOrigin = debugserver.DefaultAllowedOrigin
	}
	if c.TaskInterval <= 0 {
		c.TaskInterval = taskloop.DefaultInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = lifecycle.ShutdownTimeout
	}
	if c.StateDir == "" && c.FilesDir != "" {
		c.StateDir = filepath.Join(c.FilesDir, ".realmbridge")
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FilesDir == "" {
		return fmt.Errorf("%w: files dir is required", ErrInvalidConfig)
	}
	if c.DebugPort < 0 || c.DebugPort > 65535 {
		return fmt.Errorf("%w: debug port %d out of range", ErrInvalidConfig, c.DebugPort)
	}
	return nil
}

// Bridge is an embeddable Realm bridge: the Realm host module plus its
// plugins, driven through one host lifecycle.
type Bridge struct {
	config Config
	opts   options
	logger log.Logger

	engine     Engine
	ownsEngine bool
	loop       *hostAdapter.Loop
	module     *app.Bridge
	host       *lifecycle.Host

	mu        sync.Mutex
	started   bool
	constants map[string]any
}

// New loads the engine and creates the Realm module. The bridge does nothing
// until Start.
func New(ctx context.Context, cfg Config, opts ...Option) (*Bridge, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Bridge{
		config: cfg,
		opts:   o,
		logger: o.logger,
	}
	if err := b.build(ctx); err != nil {
		b.release(ctx)
		return nil, err
	}
	return b, nil
}

func (b *Bridge) build(ctx context.Context) error {
	cfg, o := b.config, b.opts

	b.engine = o.engine
	if b.engine == nil {
		if cfg.EnginePath == "" {
			return fmt.Errorf("%w: engine path is required", ErrInvalidConfig)
		}
		engine, err := wasm.LoadFile(ctx, cfg.EnginePath, wasm.WithLogger(b.logger))
		if err != nil {
			return err
		}
		b.engine = engine
		b.ownsEngine = true
	}

	host := o.host
	if host == nil {
		invoker := o.invoker
		if invoker == nil {
			b.loop = hostAdapter.NewLoop(0, log.With(b.logger, "jsthread"))
			invoker = b.loop
		}
		standalone, err := hostAdapter.NewStandalone(cfg.FilesDir, cfg.BuildProp, cfg.AssetsDir, invoker)
		if err != nil {
			return err
		}
		host = standalone
	}

	appOpts := []app.Option{
		app.WithLogger(b.logger),
		app.WithDebugAddress(cfg.DebugHost, cfg.DebugPort),
		app.WithAllowedOrigin(cfg.AllowedOrigin),
		app.WithTaskInterval(cfg.TaskInterval),
		app.WithShutdownTimeout(cfg.ShutdownTimeout),
		app.WithStateRepository(state.NewFileRepository(cfg.StateDir)),
		app.WithEventEmitter(&eventEmitterWrapper{handler: o.eventHandler}),
		app.WithVersion(Version),
	}
	if o.interfaces != nil {
		appOpts = append(appOpts, app.WithInterfaceLister(o.interfaces))
	}
	if analytics.Enabled(cfg.AnalyticsURL) {
		sender := analytics.NewHTTPSender(cfg.AnalyticsURL, o.httpClient, log.With(b.logger, "analytics"))
		appOpts = append(appOpts, app.WithAnalytics(sender))
	}

	module, err := app.New(ctx, b.engine, host, appOpts...)
	if err != nil {
		return err
	}
	b.module = module

	b.host = lifecycle.NewHost(b.logger)
	b.host.Register(module)
	for _, p := range o.plugins {
		b.host.Register(&pluginModule{plugin: p, cfg: b.pluginConfig})
	}
	return nil
}

func (b *Bridge) pluginConfig() PluginConfig {
	return PluginConfig{
		ConfigPath:  b.config.ConfigPath,
		FilesDir:    b.module.FilesDir(),
		StateDir:    b.config.StateDir,
		DebugServer: b.module.DebugServer(),
		Logger:      b.logger,
	}
}

// Start initializes the Realm module and the plugins, then asks the module
// for its constants, which starts the debug bridge unless the JS runtime
// already carries the native API.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return ErrAlreadyRunning
	}
	if err := b.host.Initialize(ctx); err != nil {
		return err
	}

	constants, err := b.module.Constants(ctx)
	if err != nil {
		_ = b.host.Destroy(ctx)
		return err
	}
	b.constants = constants
	b.started = true
	return nil
}

// Stop destroys the plugins and the Realm module.
// Returns ErrNotRunning if the bridge was not started.
func (b *Bridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return ErrNotRunning
	}
	b.started = false
	b.constants = nil

	err := b.host.Destroy(ctx)
	if errors.Is(err, lifecycle.ErrNotRunning) {
		return nil
	}
	return err
}

// Close stops the bridge if needed and releases the engine and JS thread.
func (b *Bridge) Close(ctx context.Context) error {
	err := b.Stop(ctx)
	if errors.Is(err, ErrNotRunning) {
		err = nil
	}
	if rerr := b.release(ctx); err == nil {
		err = rerr
	}
	return err
}

func (b *Bridge) release(ctx context.Context) error {
	var err error
	if b.ownsEngine && b.engine != nil {
		err = b.engine.Close(ctx)
		b.engine = nil
	}
	if b.loop != nil {
		b.loop.Close()
	}
	return err
}

// Constants returns the values exported to JS by the last Start.
func (b *Bridge) Constants() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]any, len(b.constants))
	for k, v := range b.constants {
		out[k] = v
	}
	return out
}

// Status returns the debug bridge state.
// Safe to call concurrently from any goroutine.
func (b *Bridge) Status() State {
	return b.module.State()
}

// DebugAddr returns the address the debug server listens on, or "".
func (b *Bridge) DebugAddr() string {
	return b.module.DebugServer().Addr()
}

// FilesDir returns the canonical files directory given to the engine.
func (b *Bridge) FilesDir() string {
	return b.module.FilesDir()
}
