package wasm

import (
	"context"
	"io/fs"

	"github.com/tetratelabs/wazero/api"

	"github.com/bft-labs/realmbridge/pkg/log"
)

func (e *Engine) registerHostFunctions(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder(HostModuleName)

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context) {
			e.flushUIQueue()
		}).
		Export(hostFuncFlushUIQueue)

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, level int32, packed uint64) {
			ptr, length := unpackPtrLen(packed)
			msg, ok := m.Memory().Read(ptr, length)
			if !ok {
				e.logger.Warn("guest log message out of memory range",
					log.Int64("ptr", int64(ptr)), log.Int64("len", int64(length)))
				return
			}
			e.guestLog(level, string(msg))
		}).
		Export(hostFuncLogMessage)

	builder.NewFunctionBuilder().
		WithFunc(e.readAsset).
		Export(hostFuncReadAsset)

	_, err := builder.Instantiate(ctx)
	return err
}

// flushUIQueue schedules an empty callback on the JS thread so the host
// drains its UI queue after the engine has called into JS.
func (e *Engine) flushUIQueue() {
	e.invMu.RLock()
	invoker := e.invoker
	e.invMu.RUnlock()

	if invoker == nil {
		return
	}
	invoker.InvokeAsync(func() {})
}

// readAsset copies a bundled asset into guest memory. It runs inside a guest
// call, so it allocates through m directly and must not take e.mu.
func (e *Engine) readAsset(ctx context.Context, m api.Module, packed uint64) uint64 {
	e.assetsMu.RLock()
	assets := e.assets
	e.assetsMu.RUnlock()
	if assets == nil {
		return 0
	}

	ptr, length := unpackPtrLen(packed)
	raw, ok := m.Memory().Read(ptr, length)
	if !ok {
		e.logger.Warn("asset path out of memory range",
			log.Int64("ptr", int64(ptr)), log.Int64("len", int64(length)))
		return 0
	}
	name := string(raw)
	if !fs.ValidPath(name) {
		e.logger.Warn("invalid asset path", log.String("path", name))
		return 0
	}

	data, err := fs.ReadFile(assets, name)
	if err != nil {
		e.logger.Debug("asset not readable", log.String("path", name), log.Err(err))
		return 0
	}
	if len(data) == 0 {
		return 0
	}

	res, err := m.ExportedFunction(exportAllocate).Call(ctx, uint64(len(data)))
	if err != nil {
		e.logger.Warn("allocate asset buffer failed", log.String("path", name), log.Err(err))
		return 0
	}
	dst := uint32(res[0])
	if !m.Memory().Write(dst, data) {
		e.logger.Warn("asset buffer out of memory range", log.String("path", name))
		return 0
	}
	return packPtrLen(dst, uint32(len(data)))
}

func (e *Engine) guestLog(level int32, msg string) {
	switch level {
	case guestLogDebug:
		e.logger.Debug(msg)
	case guestLogWarn:
		e.logger.Warn(msg)
	case guestLogError:
		e.logger.Error(msg)
	default:
		e.logger.Info(msg)
	}
}
