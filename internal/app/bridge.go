package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bft-labs/realmbridge/internal/domain"
	"github.com/bft-labs/realmbridge/internal/ports"
	"github.com/bft-labs/realmbridge/pkg/analytics"
	"github.com/bft-labs/realmbridge/pkg/debugserver"
	"github.com/bft-labs/realmbridge/pkg/devenv"
	"github.com/bft-labs/realmbridge/pkg/lifecycle"
	"github.com/bft-labs/realmbridge/pkg/log"
	"github.com/bft-labs/realmbridge/pkg/state"
	"github.com/bft-labs/realmbridge/pkg/taskloop"
)

// ModuleName is the name the bridge registers under in the host.
const ModuleName = "Realm"

// Keys of the map returned by Constants.
const (
	ConstDebugHosts = "debugHosts"
	ConstDebugPort  = "debugPort"
)

// analyticsTimeout bounds the usage ping sent from Initialize.
const analyticsTimeout = 5 * time.Second

// Bridge exposes the native engine to the JS host and runs the debug bridge
// when the JS runtime is remote (Chrome debugging).
type Bridge struct {
	engine   ports.Engine
	host     ports.HostContext
	filesDir string
	opts     options
	logger   log.Logger

	manager *lifecycle.DefaultManager
	server  *debugserver.Server
	worker  *taskloop.Worker

	mu     sync.Mutex
	status state.Status
}

var _ lifecycle.HostModule = (*Bridge)(nil)

// New creates the bridge, hands the engine the host's bundled assets and
// points it at the host's files directory, resolved to a canonical path.
func New(ctx context.Context, engine ports.Engine, host ports.HostContext, opts ...Option) (*Bridge, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.interfaces == nil {
		o.interfaces = devenv.SystemInterfaces{Logger: log.With(o.logger, "devenv")}
	}

	filesDir, err := canonicalFilesDir(host)
	if err != nil {
		return nil, err
	}
	engine.SetAssets(host.Assets())
	if err := engine.SetDefaultFileDirectory(ctx, filesDir); err != nil {
		return nil, fmt.Errorf("set default file directory: %w", err)
	}

	b := &Bridge{
		engine:   engine,
		host:     host,
		filesDir: filesDir,
		opts:     o,
		logger:   o.logger,
		manager:  lifecycle.NewManager(o.logger, o.emitter),
	}
	b.server = debugserver.New(engine, debugserver.Config{
		Host:          o.debugHost,
		Port:          o.debugPort,
		AllowedOrigin: o.allowedOrigin,
	}, log.With(o.logger, "debugserver"))
	b.worker = taskloop.New(engine.TryRunTask, o.taskInterval, log.With(o.logger, "taskloop"))

	b.logger.Info("bridge created", log.String("files_dir", filesDir))
	return b, nil
}

func canonicalFilesDir(host ports.HostContext) (string, error) {
	dir, err := host.FilesDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFilesDir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFilesDir, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFilesDir, err)
	}
	return canonical, nil
}

// Name returns ModuleName.
func (b *Bridge) Name() string {
	return ModuleName
}

// FilesDir returns the canonical directory given to the engine.
func (b *Bridge) FilesDir() string {
	return b.filesDir
}

// DebugServer returns the debug HTTP server.
func (b *Bridge) DebugServer() *debugserver.Server {
	return b.server
}

// State returns the debug bridge lifecycle state.
func (b *Bridge) State() lifecycle.State {
	return b.manager.State()
}

// Initialize hands the host's call invoker to the engine and sends the
// usage ping once per process.
func (b *Bridge) Initialize(ctx context.Context) error {
	if invoker := b.host.CallInvoker(); invoker != nil {
		if err := b.engine.SetupFlushUIQueue(ctx, invoker); err != nil {
			return fmt.Errorf("setup flush ui queue: %w", err)
		}
	} else {
		b.logger.Warn("host has no call invoker, UI queue flushes disabled")
	}

	b.sendAnalytics(ctx)
	return nil
}

func (b *Bridge) sendAnalytics(ctx context.Context) {
	if b.opts.sender == nil || b.opts.markSent == nil {
		return
	}
	if !b.opts.markSent() {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, analyticsTimeout)
	defer cancel()
	if err := b.opts.sender.Send(sendCtx, analytics.NewEvent(b.opts.version)); err != nil {
		b.logger.Warn("analytics send failed", log.Err(err))
	}
}

// Constants returns the values exported to JS. When the JS runtime already
// carries the native API the map is empty; otherwise the debug bridge is
// started and its hosts and port are returned. Later calls reuse the running
// debug bridge but read the addresses again, since the device may have
// changed networks.
func (b *Bridge) Constants(ctx context.Context) (map[string]any, error) {
	injected, err := b.engine.IsContextInjected(ctx)
	if err != nil {
		return nil, fmt.Errorf("check context injected: %w", err)
	}
	if injected {
		return map[string]any{}, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.manager.CanStart() {
		if err := b.startLocked(ctx); err != nil {
			return nil, err
		}
	} else if hosts := b.debugHosts(); !slices.Equal(hosts, b.status.DebugHosts) {
		b.logger.Info("debug hosts changed", log.Strings("hosts", hosts))
		b.status.DebugHosts = hosts
		b.saveStatus(ctx)
	}

	return map[string]any{
		ConstDebugHosts: slices.Clone(b.status.DebugHosts),
		ConstDebugPort:  b.server.Port(),
	}, nil
}

func (b *Bridge) debugHosts() []string {
	return devenv.DebugHosts(b.host.DeviceInfo(), b.opts.interfaces, b.logger)
}

func (b *Bridge) startLocked(ctx context.Context) error {
	if err := b.manager.TransitionTo(lifecycle.StateStarting, "constants requested"); err != nil {
		return err
	}

	if _, err := b.engine.SetupDebugContext(ctx); err != nil {
		_ = b.manager.TransitionTo(lifecycle.StateCrashed, "setup debug context failed")
		return fmt.Errorf("setup debug context: %w", err)
	}

	// The worker outlives the caller's context.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.manager.SetCancel(cancel)
	b.worker.Start(runCtx)
	b.manager.AddWorker()
	go func() {
		defer b.manager.WorkerDone()
		select {
		case <-b.worker.Done():
		case <-runCtx.Done():
		}
	}()

	if err := b.server.Start(ctx); err != nil {
		b.logger.Error("failed to start debug server", log.Err(err))
	} else {
		b.logger.Info("debug server started", log.String("addr", b.server.Addr()))
	}

	b.status.FilesDir = b.filesDir
	b.status.MarkStarted(b.debugHosts(), b.server.Port(), os.Getpid())
	b.saveStatus(ctx)

	return b.manager.TransitionTo(lifecycle.StateRunning, "debug bridge started")
}

// Destroy clears the engine's injected flag and tears the debug bridge down.
func (b *Bridge) Destroy(ctx context.Context) error {
	var firstErr error
	if err := b.engine.ClearContextInjectedFlag(ctx); err != nil {
		b.logger.Error("failed to clear context injected flag", log.Err(err))
		firstErr = fmt.Errorf("clear context injected flag: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.manager.CanStop() {
		return firstErr
	}
	_ = b.manager.TransitionTo(lifecycle.StateStopping, "host destroyed")

	stopCtx, cancel := context.WithTimeout(ctx, b.opts.shutdownTimeout)
	defer cancel()
	if err := b.server.Stop(stopCtx); err != nil {
		b.logger.Error("failed to stop debug server", log.Err(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("stop debug server: %w", err)
		}
	}

	b.manager.Cancel()
	b.worker.Stop()
	if err := b.manager.WaitWithTimeout(b.opts.shutdownTimeout); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("%w: %w", domain.ErrShutdownTimeout, err)
	}

	b.status.MarkStopped()
	b.saveStatus(ctx)

	_ = b.manager.TransitionTo(lifecycle.StateStopped, "debug bridge stopped")
	b.logger.Info("debug bridge stopped", log.Int("task_polls", b.worker.Polls()))
	return firstErr
}

func (b *Bridge) saveStatus(ctx context.Context) {
	if b.opts.stateRepo == nil {
		return
	}
	if err := b.opts.stateRepo.Save(ctx, b.status); err != nil {
		b.logger.Warn("failed to save status", log.Err(err))
	}
}
