package wasm

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/bft-labs/realmbridge/internal/domain"
	"github.com/bft-labs/realmbridge/internal/ports"
	"github.com/bft-labs/realmbridge/pkg/log"
)

// HostModuleName is the import module the host provides to the guest.
const HostModuleName = "realm_host"

// jscModuleName is the import module of engines built against JavaScriptCore.
const jscModuleName = "jsc"

// guestModuleName is the instance name of the loaded engine.
const guestModuleName = "realm"

// Option configures Load.
type Option func(*options)

type options struct {
	logger           log.Logger
	memoryLimitPages uint32
}

// WithLogger sets the logger used for adapter and guest log output.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMemoryLimitPages caps guest memory in 64KiB pages. Zero keeps the
// runtime default.
func WithMemoryLimitPages(pages uint32) Option {
	return func(o *options) {
		o.memoryLimitPages = pages
	}
}

// Engine is a ports.Engine backed by a WebAssembly guest.
// Calls into the guest are serialized.
type Engine struct {
	runtime wazero.Runtime
	module  api.Module
	logger  log.Logger

	mu      sync.Mutex
	invoker ports.CallInvoker
	invMu   sync.RWMutex

	assets   fs.FS
	assetsMu sync.RWMutex
}

var _ ports.Engine = (*Engine)(nil)

// LoadFile reads a WebAssembly binary from path and loads it.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineLoad, errors.Wrap(err, "read engine binary"))
	}
	return Load(ctx, wasmBytes, opts...)
}

// Load compiles and instantiates the engine. The returned Engine owns its
// runtime; Close releases it.
func Load(ctx context.Context, wasmBytes []byte, opts ...Option) (*Engine, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.With(o.logger, "engine")

	cfg := wazero.NewRuntimeConfig()
	if o.memoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(o.memoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	e := &Engine{runtime: rt, logger: logger}
	mod, err := e.instantiate(ctx, wasmBytes)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	e.module = mod

	logger.Info("engine loaded", log.Int("memory_bytes", int(mod.Memory().Size())))
	return e, nil
}

func (e *Engine) instantiate(ctx context.Context, wasmBytes []byte) (api.Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineLoad, errors.Wrap(err, "compile engine"))
	}
	defer compiled.Close(ctx)

	for _, f := range compiled.ImportedFunctions() {
		if mod, name, _ := f.Import(); mod == jscModuleName {
			return nil, fmt.Errorf("%w: engine imports %s.%s; it was built for JavaScriptCore, "+
				"which this host does not embed. Rebuild the engine for the host's JS engine",
				domain.ErrUnsupportedJSEngine, mod, name)
		}
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, e.runtime); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineLoad, errors.Wrap(err, "instantiate wasi"))
	}
	if err := e.registerHostFunctions(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineLoad, errors.Wrap(err, "register host functions"))
	}

	// Start functions are disabled: a command module's _start would run to exit.
	modCfg := wazero.NewModuleConfig().WithName(guestModuleName).WithStartFunctions()
	mod, err := e.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineLoad, errors.Wrap(err, "instantiate engine"))
	}

	if mod.Memory() == nil {
		_ = mod.Close(ctx)
		return nil, fmt.Errorf("%w: engine does not export %q", domain.ErrEngineLoad, exportMemory)
	}
	var missing []string
	for _, name := range requiredExports {
		if mod.ExportedFunction(name) == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		_ = mod.Close(ctx)
		return nil, fmt.Errorf("%w: engine is missing exports: %s",
			domain.ErrEngineLoad, strings.Join(missing, ", "))
	}

	if init := mod.ExportedFunction(exportInitialize); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("%w: %w", domain.ErrEngineLoad, errors.Wrap(err, "call _initialize"))
		}
	}
	return mod, nil
}

// IsContextInjected reports whether the JS runtime already carries the
// native API.
func (e *Engine) IsContextInjected(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.call(ctx, exportIsContextInjected)
	if err != nil {
		return false, err
	}
	return uint32(res) != 0, nil
}

// ClearContextInjectedFlag resets the injected flag.
func (e *Engine) ClearContextInjectedFlag(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.call(ctx, exportClearInjectedFlag)
	return err
}

// SetDefaultFileDirectory tells the engine where to place database files.
func (e *Engine) SetDefaultFileDirectory(ctx context.Context, dir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	packed, err := e.writeString(ctx, dir)
	if err != nil {
		return err
	}
	_, err = e.call(ctx, exportSetFileDirectory, packed)
	return err
}

// SetAssets sets the source read_asset serves from. Nil disables it.
func (e *Engine) SetAssets(assets fs.FS) {
	e.assetsMu.Lock()
	e.assets = assets
	e.assetsMu.Unlock()
}

// SetupDebugContext creates the engine-side RPC server and returns its handle.
func (e *Engine) SetupDebugContext(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.call(ctx, exportSetupDebugContext)
	if err != nil {
		return 0, err
	}
	return int64(res), nil
}

// ProcessDebugCommand runs one debugger command and returns its JSON result.
func (e *Engine) ProcessDebugCommand(ctx context.Context, cmd, args string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmdPacked, err := e.writeString(ctx, cmd)
	if err != nil {
		return "", err
	}
	argsPacked, err := e.writeString(ctx, args)
	if err != nil {
		return "", err
	}
	res, err := e.call(ctx, exportProcessDebugCmd, cmdPacked, argsPacked)
	if err != nil {
		return "", err
	}
	return e.readString(ctx, res)
}

// TryRunTask runs at most one queued engine task. True means polling can stop.
func (e *Engine) TryRunTask(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.call(ctx, exportTryRunTask)
	if err != nil {
		return false, err
	}
	return uint32(res) != 0, nil
}

// SetupFlushUIQueue stores invoker for flush_ui_queue callbacks and notifies
// the guest when it exports setup_flush_ui_queue.
func (e *Engine) SetupFlushUIQueue(ctx context.Context, invoker ports.CallInvoker) error {
	e.invMu.Lock()
	e.invoker = invoker
	e.invMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.module.ExportedFunction(exportSetupFlushUIQueue) == nil {
		return nil
	}
	_, err := e.call(ctx, exportSetupFlushUIQueue)
	return err
}

// Close releases the guest and its runtime.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return errors.Wrap(e.runtime.Close(ctx), "close engine runtime")
}

// call invokes a guest export and returns its first result, or zero for
// void exports. Callers hold e.mu.
func (e *Engine) call(ctx context.Context, name string, params ...uint64) (uint64, error) {
	f := e.module.ExportedFunction(name)
	if f == nil {
		return 0, errors.Errorf("engine export %q not found", name)
	}
	results, err := f.Call(ctx, params...)
	if err != nil {
		return 0, errors.Wrapf(err, "call %s", name)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}

// writeString copies s into guest memory and returns it packed.
func (e *Engine) writeString(ctx context.Context, s string) (uint64, error) {
	if len(s) == 0 {
		return 0, nil
	}
	ptr, err := e.call(ctx, exportAllocate, uint64(len(s)))
	if err != nil {
		return 0, err
	}
	if !e.module.Memory().WriteString(uint32(ptr), s) {
		return 0, errors.Errorf("write %d bytes at %#x out of guest memory range", len(s), uint32(ptr))
	}
	return packPtrLen(uint32(ptr), uint32(len(s))), nil
}

// readString copies a packed string out of guest memory and hands the
// buffer back to the guest allocator when it exports deallocate.
func (e *Engine) readString(ctx context.Context, packed uint64) (string, error) {
	ptr, length := unpackPtrLen(packed)
	if length == 0 {
		return "", nil
	}
	data, ok := e.module.Memory().Read(ptr, length)
	if !ok {
		return "", errors.Errorf("read %d bytes at %#x out of guest memory range", length, ptr)
	}
	s := string(data)
	if dealloc := e.module.ExportedFunction(exportDeallocate); dealloc != nil {
		if _, err := dealloc.Call(ctx, uint64(ptr), uint64(length)); err != nil {
			e.logger.Warn("deallocate result buffer failed", log.Err(err))
		}
	}
	return s, nil
}
